// Package types provides common types used across Paywall.
package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSplitExceedsBalance is returned by Split when the requested amount
// is larger than the current balance.
var ErrSplitExceedsBalance = errors.New("value: split amount exceeds balance")

// Value is an opaque fungible balance measured in indivisible units.
// All arithmetic is integer-only and exact — no floating point, no
// rounding loss. Units move between Values via Split and Join; the sum
// of units across all Values is conserved by construction.
//
// A Value is not safe for concurrent use; callers serialize access to
// the record that owns it.
type Value struct {
	amount uint64
}

// NewValue creates a Value holding the given number of units.
func NewValue(units uint64) *Value { return &Value{amount: units} }

// Zero returns an empty Value.
func Zero() *Value { return &Value{} }

// Amount returns the number of units currently held.
func (v *Value) Amount() uint64 { return v.amount }

// IsZero reports whether the Value holds no units.
func (v *Value) IsZero() bool { return v.amount == 0 }

// Split removes units from v and returns them as a new Value.
// It fails with ErrSplitExceedsBalance when units > v.Amount(); v is
// left unchanged on failure.
func (v *Value) Split(units uint64) (*Value, error) {
	if units > v.amount {
		return nil, ErrSplitExceedsBalance
	}
	v.amount -= units
	return &Value{amount: units}, nil
}

// SplitAll drains v completely and returns the removed units as a new
// Value. Draining an empty Value yields an empty Value.
func (v *Value) SplitAll() *Value {
	out := &Value{amount: v.amount}
	v.amount = 0
	return out
}

// Join moves all units from other into v, leaving other empty.
// Addition is exact; a nil or empty other is a no-op.
func (v *Value) Join(other *Value) {
	if other == nil {
		return
	}
	v.amount += other.amount
	other.amount = 0
}

// Equal reports whether two Values hold the same number of units.
func (v *Value) Equal(other *Value) bool {
	if other == nil {
		return false
	}
	return v.amount == other.amount
}

// String returns a human-readable representation.
func (v *Value) String() string {
	return fmt.Sprintf("%d units", v.amount)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount uint64 `json:"amount"`
	}{Amount: v.amount})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount uint64 `json:"amount"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.amount = raw.Amount
	return nil
}
