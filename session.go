package paywall

import (
	"context"

	"github.com/xraph/paywall/fee"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/session"
	"github.com/xraph/paywall/types"
	"github.com/xraph/paywall/vault"
)

// StartSession opens a billing session for the calling reader against a
// content binding, funded by the given deposit. The deposit is drained
// into the session; the caller's handle is empty afterward. The session
// starts Active with both clocks at the current instant.
func (e *Engine) StartSession(ctx context.Context, contentID id.ContentID, deposit *types.Value) (*session.Session, error) {
	owner := CallerFromContext(ctx)
	if owner == "" {
		return nil, ErrUnauthorized
	}
	if deposit == nil || deposit.IsZero() {
		return nil, ErrInvalidAmount
	}

	b, err := e.store.GetBinding(ctx, contentID)
	if err != nil {
		return nil, err
	}

	v, err := e.store.GetVault(ctx, b.VaultID)
	if err != nil {
		return nil, err
	}
	// Referential-integrity guard against a stale or mismatched vault.
	if v.ID.String() != b.VaultID.String() {
		return nil, ErrVaultMismatch
	}

	now := e.clock.NowMS()
	s := &session.Session{
		Entity:           types.NewEntity(),
		ID:               id.NewSessionID(),
		ContentID:        b.ID,
		VaultID:          v.ID,
		Owner:            owner,
		Rate:             b.Rate,
		Deposit:          deposit.SplitAll(),
		StartMS:          now,
		LastCheckpointMS: now,
		Status:           session.StatusActive,
	}

	if err := e.store.CreateSession(ctx, s); err != nil {
		return nil, err
	}

	e.plugins.EmitSessionStarted(ctx, s, s.Deposit.Amount())

	e.logger.Info("session started",
		"session_id", s.ID,
		"content_id", b.ID,
		"owner", owner,
		"deposit", s.Deposit.Amount(),
	)

	return s, nil
}

// Checkpoint settles the time elapsed since the session's last checkpoint,
// moving the owed value from the deposit into the creator's vault.
// Owner-only; the session must be Active. A clock regression is fatal,
// never clamped. When the computed fee (capped at the deposit balance) is
// zero the call is a defined no-op: no field changes, including the
// checkpoint clock, so unsettled fractional time is preserved for the
// next call. A settlement that empties the deposit pauses the session.
func (e *Engine) Checkpoint(ctx context.Context, sessionID id.SessionID) (*session.Settlement, error) {
	caller := CallerFromContext(ctx)
	if caller == "" {
		return nil, ErrUnauthorized
	}

	release := e.locks.acquire(lockSession(sessionID.String()))
	defer release()

	s, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.OwnedBy(caller) {
		return nil, ErrUnauthorized
	}
	if !s.IsActive() {
		return nil, ErrInactiveSession
	}

	releaseVault := e.locks.acquire(lockVault(s.VaultID.String()))
	defer releaseVault()

	v, err := e.store.GetVault(ctx, s.VaultID)
	if err != nil {
		return nil, err
	}

	out, err := settle(s, v, e.clock.NowMS())
	if err != nil {
		return nil, err
	}
	if out.Paid == 0 {
		// Nothing moved and nothing changed; there is nothing to persist.
		return out, nil
	}

	if err := e.store.CommitSettlement(ctx, s, v); err != nil {
		return nil, err
	}

	e.plugins.EmitCheckpointSettled(ctx, out)
	if out.Status == session.StatusPaused {
		e.plugins.EmitSessionPaused(ctx, s)
	}

	e.logger.Debug("checkpoint settled",
		"session_id", s.ID,
		"elapsed_ms", out.ElapsedMS,
		"paid", out.Paid,
		"remaining", out.Remaining,
		"status", out.Status,
	)

	return out, nil
}

// TopUp adds value to a session's deposit. Owner-only; the session must
// not be Ended. Resuming a Paused session resets the billing clock to the
// top-up instant — paused duration is never retroactively billed.
func (e *Engine) TopUp(ctx context.Context, sessionID id.SessionID, deposit *types.Value) (*session.Session, error) {
	caller := CallerFromContext(ctx)
	if caller == "" {
		return nil, ErrUnauthorized
	}
	if deposit == nil || deposit.IsZero() {
		return nil, ErrInvalidAmount
	}

	release := e.locks.acquire(lockSession(sessionID.String()))
	defer release()

	s, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.OwnedBy(caller) {
		return nil, ErrUnauthorized
	}
	if s.IsEnded() {
		return nil, ErrInactiveSession
	}

	amount := deposit.Amount()
	s.Deposit.Join(deposit)
	if s.Status == session.StatusPaused {
		s.Status = session.StatusActive
		s.LastCheckpointMS = e.clock.NowMS()
	}
	s.Touch()

	if err := e.store.UpdateSession(ctx, s); err != nil {
		return nil, err
	}

	e.plugins.EmitSessionToppedUp(ctx, s, amount, s.Deposit.Amount())

	e.logger.Info("session topped up",
		"session_id", s.ID,
		"amount", amount,
		"balance", s.Deposit.Amount(),
	)

	return s, nil
}

// EndSession closes a session. Owner-only; the session must not already
// be Ended. An Active session gets one implicit settlement first, under
// the same rules as Checkpoint. The entire remaining deposit is then
// refunded to the owner — a zero remainder still produces a zero-amount
// refund. Ended is absorbing: any later mutating call fails, queries
// remain permitted.
func (e *Engine) EndSession(ctx context.Context, sessionID id.SessionID) (*types.Value, *session.Closeout, error) {
	caller := CallerFromContext(ctx)
	if caller == "" {
		return nil, nil, ErrUnauthorized
	}

	release := e.locks.acquire(lockSession(sessionID.String()))
	defer release()

	s, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if !s.OwnedBy(caller) {
		return nil, nil, ErrUnauthorized
	}
	if s.IsEnded() {
		return nil, nil, ErrInactiveSession
	}

	releaseVault := e.locks.acquire(lockVault(s.VaultID.String()))
	defer releaseVault()

	v, err := e.store.GetVault(ctx, s.VaultID)
	if err != nil {
		return nil, nil, err
	}

	if s.IsActive() {
		if _, err := settle(s, v, e.clock.NowMS()); err != nil {
			return nil, nil, err
		}
	}

	refund := s.Deposit.SplitAll()
	s.Status = session.StatusEnded
	s.Touch()

	if err := e.store.CommitSettlement(ctx, s, v); err != nil {
		return nil, nil, err
	}

	out := &session.Closeout{
		SessionID:  s.ID,
		Refund:     refund.Amount(),
		TotalSpent: s.TotalSpent,
	}

	e.plugins.EmitSessionEnded(ctx, out)

	e.logger.Info("session ended",
		"session_id", s.ID,
		"refund", out.Refund,
		"total_spent", out.TotalSpent,
		"total_streamed_ms", s.TotalStreamedMS,
	)

	return refund, out, nil
}

// GetSession retrieves a session by ID. Reads stay permitted after the
// session has ended.
func (e *Engine) GetSession(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	return e.store.GetSession(ctx, sessionID)
}

// SessionStatus returns a session's lifecycle status.
func (e *Engine) SessionStatus(ctx context.Context, sessionID id.SessionID) (session.Status, error) {
	s, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return s.Status, nil
}

// SessionBalance returns a session's remaining deposit.
func (e *Engine) SessionBalance(ctx context.Context, sessionID id.SessionID) (uint64, error) {
	s, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return s.Deposit.Amount(), nil
}

// SessionStats returns a session's cumulative totals: units settled into
// the creator's vault and milliseconds of billed streaming time.
func (e *Engine) SessionStats(ctx context.Context, sessionID id.SessionID) (totalSpent, totalStreamedMS uint64, err error) {
	s, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return 0, 0, err
	}
	return s.TotalSpent, s.TotalStreamedMS, nil
}

// ListSessions retrieves a reader's sessions.
func (e *Engine) ListSessions(ctx context.Context, owner string, opts session.ListOpts) ([]*session.Session, error) {
	return e.store.ListSessions(ctx, owner, opts)
}

// settle applies one checkpoint settlement to s against v at nowMS.
// The caller holds both record locks. A zero-fee settlement mutates
// nothing: the checkpoint clock only advances when value actually moves,
// so leftover fractional time folds into the next billable tick instead
// of being discarded or double-counted.
func settle(s *session.Session, v *vault.Vault, nowMS uint64) (*session.Settlement, error) {
	if v.ID.String() != s.VaultID.String() {
		return nil, ErrVaultMismatch
	}
	if nowMS < s.LastCheckpointMS {
		return nil, ErrClockRegression
	}

	elapsed := nowMS - s.LastCheckpointMS
	toPay := min(fee.Calc(elapsed, s.Rate), s.Deposit.Amount())

	out := &session.Settlement{
		SessionID: s.ID,
		ElapsedMS: elapsed,
		Paid:      toPay,
		Remaining: s.Deposit.Amount(),
		Status:    s.Status,
	}
	if toPay == 0 {
		return out, nil
	}

	payment, err := s.Deposit.Split(toPay)
	if err != nil {
		return nil, err
	}
	v.Credit(payment)

	s.TotalSpent += toPay
	s.TotalStreamedMS += elapsed
	s.LastCheckpointMS = nowMS
	if s.Deposit.IsZero() {
		s.Status = session.StatusPaused
	}
	s.Touch()
	v.Touch()

	out.Remaining = s.Deposit.Amount()
	out.Status = s.Status

	return out, nil
}
