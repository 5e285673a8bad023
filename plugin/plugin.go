// Package plugin provides an extensible plugin system for Paywall.
// Plugins can hook into settlement lifecycle events to extend
// functionality. Delivery is best-effort and non-authoritative: no core
// invariant depends on a hook being observed.
package plugin

import "context"

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Content registry hooks
// ──────────────────────────────────────────────────

// OnContentRegistered is called when new content is registered.
type OnContentRegistered interface {
	Plugin
	OnContentRegistered(ctx context.Context, binding interface{}) error
}

// OnListingFeePaid is called when a registration pays the listing fee.
type OnListingFeePaid interface {
	Plugin
	OnListingFeePaid(ctx context.Context, creator string, amount uint64) error
}

// OnVaultCreated is called when a first-time creator gets a vault.
type OnVaultCreated interface {
	Plugin
	OnVaultCreated(ctx context.Context, vault interface{}) error
}

// OnRateUpdated is called when a creator changes a binding's rate.
type OnRateUpdated interface {
	Plugin
	OnRateUpdated(ctx context.Context, binding interface{}, oldRate, newRate uint64) error
}

// ──────────────────────────────────────────────────
// Session lifecycle hooks
// ──────────────────────────────────────────────────

// OnSessionStarted is called when a reader opens a session.
type OnSessionStarted interface {
	Plugin
	OnSessionStarted(ctx context.Context, session interface{}, deposit uint64) error
}

// OnCheckpointSettled is called after a checkpoint that moved value.
// Zero-fee checkpoints do not emit.
type OnCheckpointSettled interface {
	Plugin
	OnCheckpointSettled(ctx context.Context, settlement interface{}) error
}

// OnSessionPaused is called when a settlement empties the deposit.
type OnSessionPaused interface {
	Plugin
	OnSessionPaused(ctx context.Context, session interface{}) error
}

// OnSessionToppedUp is called when a deposit is refilled.
type OnSessionToppedUp interface {
	Plugin
	OnSessionToppedUp(ctx context.Context, session interface{}, amount, newBalance uint64) error
}

// OnSessionEnded is called when a session is closed and refunded.
// The refund amount may be zero; emission is not suppressed.
type OnSessionEnded interface {
	Plugin
	OnSessionEnded(ctx context.Context, closeout interface{}) error
}

// ──────────────────────────────────────────────────
// Withdrawal hooks
// ──────────────────────────────────────────────────

// OnVaultWithdrawn is called when a creator withdraws earnings.
type OnVaultWithdrawn interface {
	Plugin
	OnVaultWithdrawn(ctx context.Context, vaultID string, amount uint64) error
}

// OnPlatformWithdrawn is called when the admin withdraws listing fees.
type OnPlatformWithdrawn interface {
	Plugin
	OnPlatformWithdrawn(ctx context.Context, amount uint64) error
}
