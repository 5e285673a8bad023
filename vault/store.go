package vault

import (
	"context"

	"github.com/xraph/paywall/id"
)

type Store interface {
	Create(ctx context.Context, v *Vault) error
	Get(ctx context.Context, vaultID id.VaultID) (*Vault, error)
	GetByCreator(ctx context.Context, creator string) (*Vault, error)
	Update(ctx context.Context, v *Vault) error
}
