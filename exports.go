package paywall

import "github.com/xraph/paywall/types"

// Re-export common types for convenience so users don't have to import types package.

// Value is re-exported from types package.
type Value = types.Value

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Value constructors
var (
	NewValue = types.NewValue
	Zero     = types.Zero
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
