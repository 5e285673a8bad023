// Package memory provides an in-memory Store for tests and embedded use.
package memory

import (
	"context"
	"sync"

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

// Store implements store.Store with in-process maps. Records are deep
// copied on every read and write so callers never share mutable state
// with the store; a settlement becomes observable only when
// CommitSettlement copies both records under one lock.
type Store struct {
	mu sync.RWMutex

	bindings map[string]*content.Binding
	vaults   map[string]*vault.Vault
	sessions map[string]*session.Session
	platform *platform.Accumulator

	closed bool
}

func New() *Store {
	return &Store{
		bindings: make(map[string]*content.Binding),
		vaults:   make(map[string]*vault.Vault),
		sessions: make(map[string]*session.Session),
	}
}

// Content binding store implementation

func (s *Store) CreateBinding(_ context.Context, b *content.Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return paywall.ErrStoreClosed
	}
	if _, exists := s.bindings[b.ID.String()]; exists {
		return paywall.ErrAlreadyExists
	}
	s.bindings[b.ID.String()] = b.Clone()
	return nil
}

func (s *Store) GetBinding(_ context.Context, contentID id.ContentID) (*content.Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.bindings[contentID.String()]; ok {
		return b.Clone(), nil
	}
	return nil, paywall.ErrContentNotFound
}

func (s *Store) ListBindings(_ context.Context, creator string, opts content.ListOpts) ([]*content.Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*content.Binding, 0)
	for _, b := range s.bindings {
		if b.Creator == creator {
			result = append(result, b.Clone())
		}
	}

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateBinding(_ context.Context, b *content.Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bindings[b.ID.String()]; !exists {
		return paywall.ErrContentNotFound
	}
	s.bindings[b.ID.String()] = b.Clone()
	return nil
}

// Vault store implementation

func (s *Store) CreateVault(_ context.Context, v *vault.Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return paywall.ErrStoreClosed
	}
	if _, exists := s.vaults[v.ID.String()]; exists {
		return paywall.ErrAlreadyExists
	}
	s.vaults[v.ID.String()] = v.Clone()
	return nil
}

func (s *Store) GetVault(_ context.Context, vaultID id.VaultID) (*vault.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.vaults[vaultID.String()]; ok {
		return v.Clone(), nil
	}
	return nil, paywall.ErrVaultNotFound
}

func (s *Store) GetVaultByCreator(_ context.Context, creator string) (*vault.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.vaults {
		if v.Creator == creator {
			return v.Clone(), nil
		}
	}
	return nil, paywall.ErrVaultNotFound
}

func (s *Store) UpdateVault(_ context.Context, v *vault.Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vaults[v.ID.String()]; !exists {
		return paywall.ErrVaultNotFound
	}
	s.vaults[v.ID.String()] = v.Clone()
	return nil
}

// Session store implementation

func (s *Store) CreateSession(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return paywall.ErrStoreClosed
	}
	if _, exists := s.sessions[sess.ID.String()]; exists {
		return paywall.ErrAlreadyExists
	}
	s.sessions[sess.ID.String()] = sess.Clone()
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID id.SessionID) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[sessionID.String()]; ok {
		return sess.Clone(), nil
	}
	return nil, paywall.ErrSessionNotFound
}

func (s *Store) ListSessions(_ context.Context, owner string, opts session.ListOpts) ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*session.Session, 0)
	for _, sess := range s.sessions {
		if sess.Owner == owner {
			if opts.Status == "" || sess.Status == opts.Status {
				result = append(result, sess.Clone())
			}
		}
	}

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateSession(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID.String()]; !exists {
		return paywall.ErrSessionNotFound
	}
	s.sessions[sess.ID.String()] = sess.Clone()
	return nil
}

func (s *Store) CommitSettlement(_ context.Context, sess *session.Session, v *vault.Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID.String()]; !exists {
		return paywall.ErrSessionNotFound
	}
	if _, exists := s.vaults[v.ID.String()]; !exists {
		return paywall.ErrVaultNotFound
	}

	// Both records flip together under one lock.
	s.sessions[sess.ID.String()] = sess.Clone()
	s.vaults[v.ID.String()] = v.Clone()
	return nil
}

// Platform accumulator store implementation

func (s *Store) GetPlatform(_ context.Context) (*platform.Accumulator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.platform == nil {
		return nil, paywall.ErrNotFound
	}
	return s.platform.Clone(), nil
}

func (s *Store) SavePlatform(_ context.Context, p *platform.Accumulator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return paywall.ErrStoreClosed
	}
	s.platform = p.Clone()
	return nil
}

// Core methods

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return paywall.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// paginate applies limit/offset to a result slice.
func paginate[T any](result []T, offset, limit int) []T {
	start := offset
	if start > len(result) {
		start = len(result)
	}
	end := start + limit
	if limit == 0 || end > len(result) {
		end = len(result)
	}
	return result[start:end]
}
