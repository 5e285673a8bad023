package store

import (
	"context"

	"github.com/xraph/paywall/content"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/platform"
	"github.com/xraph/paywall/session"
	"github.com/xraph/paywall/vault"
)

// Store is the unified storage interface for all Paywall records.
// Instead of embedding the sub-interfaces, we explicitly declare all
// methods to avoid naming conflicts.
//
// Individual methods persist one record. CommitSettlement persists a
// session and its vault together so a settlement is observed all at once
// or not at all.
type Store interface {
	// Content binding methods
	CreateBinding(ctx context.Context, b *content.Binding) error
	GetBinding(ctx context.Context, contentID id.ContentID) (*content.Binding, error)
	ListBindings(ctx context.Context, creator string, opts content.ListOpts) ([]*content.Binding, error)
	UpdateBinding(ctx context.Context, b *content.Binding) error

	// Vault methods
	CreateVault(ctx context.Context, v *vault.Vault) error
	GetVault(ctx context.Context, vaultID id.VaultID) (*vault.Vault, error)
	GetVaultByCreator(ctx context.Context, creator string) (*vault.Vault, error)
	UpdateVault(ctx context.Context, v *vault.Vault) error

	// Session methods
	CreateSession(ctx context.Context, s *session.Session) error
	GetSession(ctx context.Context, sessionID id.SessionID) (*session.Session, error)
	ListSessions(ctx context.Context, owner string, opts session.ListOpts) ([]*session.Session, error)
	UpdateSession(ctx context.Context, s *session.Session) error
	CommitSettlement(ctx context.Context, s *session.Session, v *vault.Vault) error

	// Platform accumulator methods
	GetPlatform(ctx context.Context) (*platform.Accumulator, error)
	SavePlatform(ctx context.Context, p *platform.Accumulator) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
