package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/paywall"
	"github.com/xraph/paywall/content"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/platform"
	"github.com/xraph/paywall/session"
	paywallstore "github.com/xraph/paywall/store"
	"github.com/xraph/paywall/vault"
)

// Collection name constants.
const (
	colBindings = "paywall_bindings"
	colVaults   = "paywall_vaults"
	colSessions = "paywall_sessions"
	colPlatform = "paywall_platform"
)

// compile-time interface check
var _ paywallstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all paywall collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("paywall/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("paywall/mongo: create binding: %w", err)
	}
	return nil
}

func (s *Store) GetBinding(ctx context.Context, contentID id.ContentID) (*content.Binding, error) {
	var m bindingModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": contentID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paywall.ErrContentNotFound
		}
		return nil, fmt.Errorf("paywall/mongo: get binding: %w", err)
	}
	return fromBindingModel(&m)
}

func (s *Store) ListBindings(ctx context.Context, creator string, opts content.ListOpts) ([]*content.Binding, error) {
	var models []bindingModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{"creator": creator}).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("paywall/mongo: list bindings: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paywall/mongo: update binding: %w", err)
	}
	if res.MatchedCount() == 0 {
		return paywall.ErrContentNotFound
	}
	return nil
}

// ==================== Vault Store ====================

func (s *Store) CreateVault(ctx context.Context, v *vault.Vault) error {
	m := toVaultModel(v)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("paywall/mongo: create vault: %w", err)
	}
	return nil
}

func (s *Store) GetVault(ctx context.Context, vaultID id.VaultID) (*vault.Vault, error) {
	var m vaultModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": vaultID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paywall.ErrVaultNotFound
		}
		return nil, fmt.Errorf("paywall/mongo: get vault: %w", err)
	}
	return fromVaultModel(&m)
}

func (s *Store) GetVaultByCreator(ctx context.Context, creator string) (*vault.Vault, error) {
	var m vaultModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"creator": creator}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paywall.ErrVaultNotFound
		}
		return nil, fmt.Errorf("paywall/mongo: get vault by creator: %w", err)
	}
	return fromVaultModel(&m)
}

func (s *Store) UpdateVault(ctx context.Context, v *vault.Vault) error {
	m := toVaultModel(v)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paywall/mongo: update vault: %w", err)
	}
	if res.MatchedCount() == 0 {
		return paywall.ErrVaultNotFound
	}
	return nil
}

// ==================== Session Store ====================

func (s *Store) CreateSession(ctx context.Context, sess *session.Session) error {
	m := toSessionModel(sess)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("paywall/mongo: create session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	var m sessionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": sessionID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paywall.ErrSessionNotFound
		}
		return nil, fmt.Errorf("paywall/mongo: get session: %w", err)
	}
	return fromSessionModel(&m)
}

func (s *Store) ListSessions(ctx context.Context, owner string, opts session.ListOpts) ([]*session.Session, error) {
	var models []sessionModel

	filter := bson.M{"owner": owner}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("paywall/mongo: list sessions: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paywall/mongo: update session: %w", err)
	}
	if res.MatchedCount() == 0 {
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
	var m platformModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": platformRowID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paywall.ErrNotFound
		}
		return nil, fmt.Errorf("paywall/mongo: get platform: %w", err)
	}
	return fromPlatformModel(&m), nil
}

func (s *Store) SavePlatform(ctx context.Context, p *platform.Accumulator) error {
	m := toPlatformModel(p)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paywall/mongo: save platform: %w", err)
	}
	if res.MatchedCount() == 0 {
		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
			return fmt.Errorf("paywall/mongo: save platform: %w", err)
		}
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all paywall collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colBindings: {
			{Keys: bson.D{{Key: "creator", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "vault_id", Value: 1}}},
		},
		colVaults: {
			{
				Keys:    bson.D{{Key: "creator", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colSessions: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "content_id", Value: 1}}},
			{Keys: bson.D{{Key: "vault_id", Value: 1}}},
		},
		colPlatform: {},
	}
}
