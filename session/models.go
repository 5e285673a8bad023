package session

import (
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/types"
)

// Status is the lifecycle state of a session.
type Status string

const (
	// StatusActive means elapsed time is billable; checkpoints settle it.
	StatusActive Status = "active"
	// StatusPaused means the deposit ran dry; no time is billed until a
	// top-up resumes the session.
	StatusPaused Status = "paused"
	// StatusEnded is terminal and absorbing; no field changes afterward.
	StatusEnded Status = "ended"
)

// Session is the per-reader, per-content streaming billing record.
// It is a single-writer record: created by StartSession, mutated only by
// its recorded owner through checkpoint/top-up/end, and frozen on the
// transition to Ended.
type Session struct {
	types.Entity
	ID               id.SessionID `json:"id"`
	ContentID        id.ContentID `json:"content_id"`
	VaultID          id.VaultID   `json:"vault_id"`
	Owner            string       `json:"owner"`
	Rate             uint64       `json:"rate"` // value units per fee.QuantumMS, fixed at start
	Deposit          *types.Value `json:"deposit"`
	StartMS          uint64       `json:"start_ms"`
	LastCheckpointMS uint64       `json:"last_checkpoint_ms"`
	Status           Status       `json:"status"`
	TotalSpent       uint64       `json:"total_spent"`
	TotalStreamedMS  uint64       `json:"total_streamed_ms"`
}

// OwnedBy reports whether the given principal is the session's owner.
func (s *Session) OwnedBy(principal string) bool {
	return principal != "" && s.Owner == principal
}

// IsActive reports whether elapsed time is currently billable.
func (s *Session) IsActive() bool { return s.Status == StatusActive }

// IsEnded reports whether the session has reached its terminal state.
func (s *Session) IsEnded() bool { return s.Status == StatusEnded }

// CanTransition reports whether moving from the current status to next is
// a permitted lifecycle transition. Ended is absorbing.
func (s *Session) CanTransition(next Status) bool {
	switch s.Status {
	case StatusActive:
		return next == StatusPaused || next == StatusEnded
	case StatusPaused:
		return next == StatusActive || next == StatusEnded
	default:
		return false
	}
}

// Settlement reports the outcome of a checkpoint: how much time was
// billed, how much value moved to the vault, and what remains on deposit.
// A zero-fee checkpoint yields a Settlement with Paid == 0 and no state
// change.
type Settlement struct {
	SessionID id.SessionID `json:"session_id"`
	ElapsedMS uint64       `json:"elapsed_ms"`
	Paid      uint64       `json:"paid"`
	Remaining uint64       `json:"remaining"`
	Status    Status       `json:"status"`
}

/// Closeout reports the outcome of ending a session: the final settlement
// (zeroed when the session was already paused) and the refunded remainder.
type Closeout struct {
	SessionID  id.SessionID `json:"session_id"`
	Refund     uint64       `json:"refund"`
	TotalSpent uint64       `json:"total_spent"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	out := *s
	out.Deposit = types.NewValue(s.Deposit.Amount())
	return &out
}
