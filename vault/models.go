package vault

import (
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/types"
)

// Vault accumulates a creator's settled earnings. It is shared: any of
// the creator's sessions credits it during settlement, and only the
// creator debits it by withdrawal. A vault is created lazily on the
// creator's first content registration and persists indefinitely.
type Vault struct {
	types.Entity
	ID      id.VaultID   `json:"id"`
	Creator string       `json:"creator"`
	Balance *types.Value `json:"balance"`
}

// OwnedBy reports whether the given principal is the vault's creator.
func (v *Vault) OwnedBy(principal string) bool {
	return principal != "" && v.Creator == principal
}

// Credit moves all units from payment into the vault balance.
func (v *Vault) Credit(payment *types.Value) {
	v.Balance.Join(payment)
}

// Debit removes units from the vault balance. units == 0 means
// "withdraw everything available". The balance can never go negative:
// Debit fails when units exceeds the available balance.
func (v *Vault) Debit(units uint64) (*types.Value, error) {
	if units == 0 {
		return v.Balance.SplitAll(), nil
	}
	return v.Balance.Split(units)
}

// Clone returns a deep copy of the vault.
func (v *Vault) Clone() *Vault {
	out := *v
	out.Balance = types.NewValue(v.Balance.Amount())
	return &out
}
