package platform

import "github.com/xraph/paywall/types"

// Accumulator is the single shared record that collects one-time content
// listing fees. It is credited on registration when the configured fee is
// nonzero and debited only by admin withdrawal.
type Accumulator struct {
	types.Entity
	Admin      string       `json:"admin"`
	ListingFee uint64       `json:"listing_fee"`
	Balance    *types.Value `json:"balance"`
}

// AdministeredBy reports whether the given principal is the recorded admin.
func (a *Accumulator) AdministeredBy(principal string) bool {
	return principal != "" && a.Admin == principal
}

// Credit moves all units from payment into the accumulator balance.
func (a *Accumulator) Credit(payment *types.Value) {
	a.Balance.Join(payment)
}

// Debit removes units from the accumulator balance. units == 0 means
// "withdraw everything available"; Debit fails when units exceeds the
// available balance.
func (a *Accumulator) Debit(units uint64) (*types.Value, error) {
	if units == 0 {
		return a.Balance.SplitAll(), nil
	}
	return a.Balance.Split(units)
}

// Clone returns a deep copy of the accumulator.
func (a *Accumulator) Clone() *Accumulator {
	out := *a
	out.Balance = types.NewValue(a.Balance.Amount())
	return &out
}
