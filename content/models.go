package content

import (
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/types"
)

// Binding ties registered content to its creator's vault and the rate
// readers pay for streaming it. The vault reference is immutable after
// creation; only the creator may change the rate.
type Binding struct {
	types.Entity
	ID       id.ContentID      `json:"id"`
	Creator  string            `json:"creator"`
	Rate     uint64            `json:"rate"` // value units per fee.QuantumMS of streamed time
	VaultID  id.VaultID        `json:"vault_id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// OwnedBy reports whether the given principal is the binding's creator.
func (b *Binding) OwnedBy(principal string) bool {
	return principal != "" && b.Creator == principal
}

// Clone returns a deep copy of the binding.
func (b *Binding) Clone() *Binding {
	out := *b
	if b.Metadata != nil {
		out.Metadata = make(map[string]string, len(b.Metadata))
		for k, v := range b.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}
