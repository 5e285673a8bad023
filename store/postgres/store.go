package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/paywall"
	"github.com/xraph/paywall/content"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/platform"
	"github.com/xraph/paywall/session"
	paywallstore "github.com/xraph/paywall/store"
	"github.com/xraph/paywall/vault"
)

// compile-time interface check
var _ paywallstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("paywall/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("paywall/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Content Binding Store ====================

func (s *Store) CreateBinding(ctx context.Context, b *content.Binding) error {
	m := toBindingModel(b)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetBinding(ctx context.Context, contentID id.ContentID) (*content.Binding, error) {
	m := new(bindingModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", contentID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paywall.ErrContentNotFound
		}
		return nil, err
	}
	return fromBindingModel(m)
}

func (s *Store) ListBindings(ctx context.Context, creator string, opts content.ListOpts) ([]*content.Binding, error) {
	var models []bindingModel
	q := s.pg.NewSelect(&models).Where("creator = ?", creator)

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*content.Binding, len(models))
	for i := range models {
		b, err := fromBindingModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

func (s *Store) UpdateBinding(ctx context.Context, b *content.Binding) error {
	m := toBindingModel(b)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return paywall.ErrContentNotFound
	}
	return nil
}

// ==================== Vault Store ====================

func (s *Store) CreateVault(ctx context.Context, v *vault.Vault) error {
	m := toVaultModel(v)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetVault(ctx context.Context, vaultID id.VaultID) (*vault.Vault, error) {
	m := new(vaultModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", vaultID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paywall.ErrVaultNotFound
		}
		return nil, err
	}
	return fromVaultModel(m)
}

func (s *Store) GetVaultByCreator(ctx context.Context, creator string) (*vault.Vault, error) {
	m := new(vaultModel)
	err := s.pg.NewSelect(m).
		Where("creator = ?", creator).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paywall.ErrVaultNotFound
		}
		return nil, err
	}
	return fromVaultModel(m)
}

func (s *Store) UpdateVault(ctx context.Context, v *vault.Vault) error {
	m := toVaultModel(v)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return paywall.ErrVaultNotFound
	}
	return nil
}

// ==================== Session Store ====================

func (s *Store) CreateSession(ctx context.Context, sess *session.Session) error {
	m := toSessionModel(sess)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetSession(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	m := new(sessionModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", sessionID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paywall.ErrSessionNotFound
		}
		return nil, err
	}
	return fromSessionModel(m)
}

func (s *Store) ListSessions(ctx context.Context, owner string, opts session.ListOpts) ([]*session.Session, error) {
	var models []sessionModel
	q := s.pg.NewSelect(&models).Where("owner = ?", owner)

	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*session.Session, len(models))
	for i := range models {
		sess, err := fromSessionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sess
	}
	return result, nil
}

func (s *Store) UpdateSession(ctx context.Context, sess *session.Session) error {
	m := toSessionModel(sess)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return paywall.ErrSessionNotFound
	}
	return nil
}

// CommitSettlement persists a settled session together with the credited
// vault. Callers serialize settlements per session, so the two updates
// never interleave with a competing settlement of the same records.
func (s *Store) CommitSettlement(ctx context.Context, sess *session.Session, v *vault.Vault) error {
	if err := s.UpdateSession(ctx, sess); err != nil {
		return err
	}
	return s.UpdateVault(ctx, v)
}

// ==================== Platform Accumulator Store ====================

func (s *Store) GetPlatform(ctx context.Context) (*platform.Accumulator, error) {
	m := new(platformModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", platformRowID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paywall.ErrNotFound
		}
		return nil, err
	}
	return fromPlatformModel(m), nil
}

func (s *Store) SavePlatform(ctx context.Context, p *platform.Accumulator) error {
	m := toPlatformModel(p)
	m.UpdatedAt = now()
	_, err := s.pg.NewInsert(m).
		OnConflict("(id) DO UPDATE").
		Set("admin = EXCLUDED.admin").
		Set("listing_fee = EXCLUDED.listing_fee").
		Set("balance = EXCLUDED.balance").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
