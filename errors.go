package paywall

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios. Every error aborts its
// enclosing call with no partial state change; nothing is retried
// internally.
var (
	// General errors
	ErrNotFound      = errors.New("paywall: not found")
	ErrAlreadyExists = errors.New("paywall: already exists")
	ErrInvalidInput  = errors.New("paywall: invalid input")
	ErrUnauthorized  = errors.New("paywall: caller is not the recorded owner")

	// Content registry errors
	ErrContentNotFound        = errors.New("paywall: content binding not found")
	ErrInvalidRate            = errors.New("paywall: rate must be greater than zero")
	ErrInsufficientListingFee = errors.New("paywall: payment does not cover the listing fee")

	// Session errors
	ErrSessionNotFound = errors.New("paywall: session not found")
	ErrInactiveSession = errors.New("paywall: session status forbids this operation")
	ErrClockRegression = errors.New("paywall: timestamp precedes last checkpoint")
	ErrVaultMismatch   = errors.New("paywall: vault reference does not match record")

	// Amount errors
	ErrInvalidAmount = errors.New("paywall: zero or insufficient amount")

	// Vault / platform errors
	ErrVaultNotFound    = errors.New("paywall: vault not found")
	ErrPlatformNotReady = errors.New("paywall: platform accumulator not initialized")

	// Store errors
	ErrStoreNotReady   = errors.New("paywall: store not ready")
	ErrStoreClosed     = errors.New("paywall: store is closed")
	ErrMigrationFailed = errors.New("paywall: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("paywall: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrContentNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrVaultNotFound)
}

// IsAuthorization returns true if the error means the caller is not the
// recorded owner, creator, or admin for the record it touched.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsPrecondition returns true if the error is a rejected precondition the
// caller can correct and resubmit (bad amount, bad rate, stale reference,
// clock regression, wrong session state).
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrInsufficientListingFee) ||
		errors.Is(err, ErrVaultMismatch) ||
		errors.Is(err, ErrClockRegression) ||
		errors.Is(err, ErrInactiveSession)
}
