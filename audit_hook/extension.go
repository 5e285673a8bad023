// Package audithook bridges Paywall lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit system. Callers inject a RecorderFunc adapter that
// bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/paywall/content"
	"github.com/xraph/paywall/plugin"
	"github.com/xraph/paywall/session"
	"github.com/xraph/paywall/vault"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnContentRegistered = (*Extension)(nil)
	_ plugin.OnListingFeePaid    = (*Extension)(nil)
	_ plugin.OnVaultCreated      = (*Extension)(nil)
	_ plugin.OnRateUpdated       = (*Extension)(nil)
	_ plugin.OnSessionStarted    = (*Extension)(nil)
	_ plugin.OnCheckpointSettled = (*Extension)(nil)
	_ plugin.OnSessionPaused     = (*Extension)(nil)
	_ plugin.OnSessionToppedUp   = (*Extension)(nil)
	_ plugin.OnSessionEnded      = (*Extension)(nil)
	_ plugin.OnVaultWithdrawn    = (*Extension)(nil)
	_ plugin.OnPlatformWithdrawn = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so that the audit_hook package carries no
// dependency on a concrete audit system.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Paywall lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Content registry hooks
// ──────────────────────────────────────────────────

// OnContentRegistered implements plugin.OnContentRegistered.
func (e *Extension) OnContentRegistered(ctx context.Context, binding interface{}) error {
	var resourceID string
	kv := []any{"event", "content_registered"}
	if b, ok := binding.(*content.Binding); ok {
		resourceID = b.ID.String()
		kv = append(kv, "creator", b.Creator, "rate", b.Rate)
	}
	return e.record(ctx, ActionContentRegistered, SeverityInfo, OutcomeSuccess,
		ResourceContent, resourceID, CategoryRegistry, nil, kv...)
}

// OnListingFeePaid implements plugin.OnListingFeePaid.
func (e *Extension) OnListingFeePaid(ctx context.Context, creator string, amount uint64) error {
	return e.record(ctx, ActionListingFeePaid, SeverityInfo, OutcomeSuccess,
		ResourcePlatform, "", CategoryRegistry, nil,
		"creator", creator,
		"amount", amount,
	)
}

// OnVaultCreated implements plugin.OnVaultCreated.
func (e *Extension) OnVaultCreated(ctx context.Context, vlt interface{}) error {
	var resourceID string
	kv := []any{"event", "vault_created"}
	if v, ok := vlt.(*vault.Vault); ok {
		resourceID = v.ID.String()
		kv = append(kv, "creator", v.Creator)
	}
	return e.record(ctx, ActionVaultCreated, SeverityInfo, OutcomeSuccess,
		ResourceVault, resourceID, CategoryRegistry, nil, kv...)
}

// OnRateUpdated implements plugin.OnRateUpdated.
func (e *Extension) OnRateUpdated(ctx context.Context, binding interface{}, oldRate, newRate uint64) error {
	var resourceID string
	if b, ok := binding.(*content.Binding); ok {
		resourceID = b.ID.String()
	}
	return e.record(ctx, ActionRateUpdated, SeverityInfo, OutcomeSuccess,
		ResourceContent, resourceID, CategoryRegistry, nil,
		"old_rate", oldRate,
		"new_rate", newRate,
	)
}

// ──────────────────────────────────────────────────
// Session lifecycle hooks
// ──────────────────────────────────────────────────

// OnSessionStarted implements plugin.OnSessionStarted.
func (e *Extension) OnSessionStarted(ctx context.Context, sess interface{}, deposit uint64) error {
	var resourceID string
	kv := []any{"deposit", deposit}
	if s, ok := sess.(*session.Session); ok {
		resourceID = s.ID.String()
		kv = append(kv, "owner", s.Owner, "content_id", s.ContentID.String())
	}
	return e.record(ctx, ActionSessionStarted, SeverityInfo, OutcomeSuccess,
		ResourceSession, resourceID, CategorySettlement, nil, kv...)
}

// OnCheckpointSettled implements plugin.OnCheckpointSettled.
func (e *Extension) OnCheckpointSettled(ctx context.Context, settlement interface{}) error {
	var resourceID string
	kv := []any{"event", "checkpoint_settled"}
	if out, ok := settlement.(*session.Settlement); ok {
		resourceID = out.SessionID.String()
		kv = append(kv,
			"elapsed_ms", out.ElapsedMS,
			"paid", out.Paid,
			"remaining", out.Remaining,
		)
	}
	return e.record(ctx, ActionCheckpointSettled, SeverityInfo, OutcomeSuccess,
		ResourceSession, resourceID, CategorySettlement, nil, kv...)
}

// OnSessionPaused implements plugin.OnSessionPaused.
func (e *Extension) OnSessionPaused(ctx context.Context, sess interface{}) error {
	var resourceID string
	if s, ok := sess.(*session.Session); ok {
		resourceID = s.ID.String()
	}
	return e.record(ctx, ActionSessionPaused, SeverityWarning, OutcomeSuccess,
		ResourceSession, resourceID, CategorySettlement, nil,
		"event", "session_paused",
	)
}

// OnSessionToppedUp implements plugin.OnSessionToppedUp.
func (e *Extension) OnSessionToppedUp(ctx context.Context, sess interface{}, amount, newBalance uint64) error {
	var resourceID string
	if s, ok := sess.(*session.Session); ok {
		resourceID = s.ID.String()
	}
	return e.record(ctx, ActionSessionToppedUp, SeverityInfo, OutcomeSuccess,
		ResourceSession, resourceID, CategorySettlement, nil,
		"amount", amount,
		"balance", newBalance,
	)
}

// OnSessionEnded implements plugin.OnSessionEnded.
func (e *Extension) OnSessionEnded(ctx context.Context, closeout interface{}) error {
	var resourceID string
	kv := []any{"event", "session_ended"}
	if out, ok := closeout.(*session.Closeout); ok {
		resourceID = out.SessionID.String()
		kv = append(kv, "refund", out.Refund, "total_spent", out.TotalSpent)
	}
	return e.record(ctx, ActionSessionEnded, SeverityInfo, OutcomeSuccess,
		ResourceSession, resourceID, CategorySettlement, nil, kv...)
}

// ──────────────────────────────────────────────────
// Withdrawal hooks
// ──────────────────────────────────────────────────

// OnVaultWithdrawn implements plugin.OnVaultWithdrawn.
func (e *Extension) OnVaultWithdrawn(ctx context.Context, vaultID string, amount uint64) error {
	return e.record(ctx, ActionVaultWithdrawn, SeverityInfo, OutcomeSuccess,
		ResourceVault, vaultID, CategoryPayout, nil,
		"amount", amount,
	)
}

// OnPlatformWithdrawn implements plugin.OnPlatformWithdrawn.
func (e *Extension) OnPlatformWithdrawn(ctx context.Context, amount uint64) error {
	return e.record(ctx, ActionPlatformWithdrawn, SeverityInfo, OutcomeSuccess,
		ResourcePlatform, "", CategoryPayout, nil,
		"amount", amount,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
