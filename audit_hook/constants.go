package audithook

// Action constants for audit events.
const (
	// Content actions
	ActionContentRegistered = "content.registered"
	ActionListingFeePaid    = "listing_fee.paid"
	ActionRateUpdated       = "content.rate_updated"

	// Vault actions
	ActionVaultCreated   = "vault.created"
	ActionVaultWithdrawn = "vault.withdrawn"

	// Session actions
	ActionSessionStarted    = "session.started"
	ActionCheckpointSettled = "checkpoint.settled"
	ActionSessionPaused     = "session.paused"
	ActionSessionToppedUp   = "session.topped_up"
	ActionSessionEnded      = "session.ended"

	// Platform actions
	ActionPlatformWithdrawn = "platform.withdrawn"
)

// Resource constants for audit events.
const (
	ResourceContent  = "content"
	ResourceVault    = "vault"
	ResourceSession  = "session"
	ResourcePlatform = "platform"
)

// Category constants for audit events.
const (
	CategoryRegistry   = "registry"
	CategorySettlement = "settlement"
	CategoryPayout     = "payout"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
