package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/paywall"
	"github.com/xraph/paywall/content"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/platform"
	"github.com/xraph/paywall/session"
	"github.com/xraph/paywall/types"
	"github.com/xraph/paywall/vault"
)

func newBinding(creator string) *content.Binding {
	return &content.Binding{
		Entity:  types.NewEntity(),
		ID:      id.NewContentID(),
		Creator: creator,
		Rate:    1000,
		VaultID: id.NewVaultID(),
	}
}

func newVault(creator string, balance uint64) *vault.Vault {
	return &vault.Vault{
		Entity:  types.NewEntity(),
		ID:      id.NewVaultID(),
		Creator: creator,
		Balance: types.NewValue(balance),
	}
}

func newSession(owner string, deposit uint64) *session.Session {
	return &session.Session{
		Entity:    types.NewEntity(),
		ID:        id.NewSessionID(),
		ContentID: id.NewContentID(),
		VaultID:   id.NewVaultID(),
		Owner:     owner,
		Rate:      1000,
		Deposit:   types.NewValue(deposit),
		Status:    session.StatusActive,
	}
}

func TestBindingCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	b := newBinding("alice")
	if err := s.CreateBinding(ctx, b); err != nil {
		t.Fatalf("CreateBinding: %v", err)
	}
	if err := s.CreateBinding(ctx, b); !errors.Is(err, paywall.ErrAlreadyExists) {
		t.Fatalf("duplicate create: got %v, want ErrAlreadyExists", err)
	}

	got, err := s.GetBinding(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBinding: %v", err)
	}
	if got.ID != b.ID || got.Creator != "alice" || got.Rate != 1000 {
		t.Fatalf("GetBinding mismatch: %+v", got)
	}

	got.Rate = 2000
	if err := s.UpdateBinding(ctx, got); err != nil {
		t.Fatalf("UpdateBinding: %v", err)
	}
	got2, _ := s.GetBinding(ctx, b.ID)
	if got2.Rate != 2000 {
		t.Fatalf("update not persisted: rate = %d", got2.Rate)
	}

	if _, err := s.GetBinding(ctx, id.NewContentID()); !errors.Is(err, paywall.ErrContentNotFound) {
		t.Fatalf("missing binding: got %v, want ErrContentNotFound", err)
	}
	if err := s.UpdateBinding(ctx, newBinding("bob")); !errors.Is(err, paywall.ErrContentNotFound) {
		t.Fatalf("update missing: got %v, want ErrContentNotFound", err)
	}
}

func TestListBindings(t *testing.T) {
	ctx := context.Background()
	s := New()

	for range 3 {
		if err := s.CreateBinding(ctx, newBinding("alice")); err != nil {
			t.Fatalf("CreateBinding: %v", err)
		}
	}
	if err := s.CreateBinding(ctx, newBinding("bob")); err != nil {
		t.Fatalf("CreateBinding: %v", err)
	}

	all, err := s.ListBindings(ctx, "alice", content.ListOpts{})
	if err != nil {
		t.Fatalf("ListBindings: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d bindings, want 3", len(all))
	}

	page, err := s.ListBindings(ctx, "alice", content.ListOpts{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListBindings paged: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("got %d bindings, want 1", len(page))
	}
}

func TestVaultStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	v := newVault("alice", 500)
	if err := s.CreateVault(ctx, v); err != nil {
		t.Fatalf("CreateVault: %v", err)
	}

	got, err := s.GetVaultByCreator(ctx, "alice")
	if err != nil {
		t.Fatalf("GetVaultByCreator: %v", err)
	}
	if got.ID != v.ID || got.Balance.Amount() != 500 {
		t.Fatalf("GetVaultByCreator mismatch: %+v", got)
	}

	if _, err := s.GetVaultByCreator(ctx, "carol"); !errors.Is(err, paywall.ErrVaultNotFound) {
		t.Fatalf("missing creator vault: got %v, want ErrVaultNotFound", err)
	}
	if _, err := s.GetVault(ctx, id.NewVaultID()); !errors.Is(err, paywall.ErrVaultNotFound) {
		t.Fatalf("missing vault: got %v, want ErrVaultNotFound", err)
	}
}

func TestStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()

	v := newVault("alice", 500)
	if err := s.CreateVault(ctx, v); err != nil {
		t.Fatalf("CreateVault: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	v.Balance.SplitAll()
	got, _ := s.GetVault(ctx, v.ID)
	if got.Balance.Amount() != 500 {
		t.Fatalf("store shares state with caller: balance = %d", got.Balance.Amount())
	}

	// Mutating a read copy must not leak either.
	got.Balance.SplitAll()
	again, _ := s.GetVault(ctx, v.ID)
	if again.Balance.Amount() != 500 {
		t.Fatalf("store shares state with reader: balance = %d", again.Balance.Amount())
	}
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	active := newSession("reader", 1000)
	if err := s.CreateSession(ctx, active); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	ended := newSession("reader", 0)
	ended.Status = session.StatusEnded
	if err := s.CreateSession(ctx, ended); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	all, err := s.ListSessions(ctx, "reader", session.ListOpts{})
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d sessions, want 2", len(all))
	}

	activeOnly, err := s.ListSessions(ctx, "reader", session.ListOpts{Status: session.StatusActive})
	if err != nil {
		t.Fatalf("ListSessions filtered: %v", err)
	}
	if len(activeOnly) != 1 || activeOnly[0].ID != active.ID {
		t.Fatalf("status filter failed: %+v", activeOnly)
	}

	if _, err := s.GetSession(ctx, id.NewSessionID()); !errors.Is(err, paywall.ErrSessionNotFound) {
		t.Fatalf("missing session: got %v, want ErrSessionNotFound", err)
	}
}

func TestCommitSettlement(t *testing.T) {
	ctx := context.Background()
	s := New()

	v := newVault("alice", 0)
	sess := newSession("reader", 1000)
	sess.VaultID = v.ID
	if err := s.CreateVault(ctx, v); err != nil {
		t.Fatalf("CreateVault: %v", err)
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	paid, err := sess.Deposit.Split(300)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	v.Credit(paid)
	sess.TotalSpent = 300

	if err := s.CommitSettlement(ctx, sess, v); err != nil {
		t.Fatalf("CommitSettlement: %v", err)
	}

	gotSess, _ := s.GetSession(ctx, sess.ID)
	gotVault, _ := s.GetVault(ctx, v.ID)
	if gotSess.Deposit.Amount() != 700 || gotSess.TotalSpent != 300 {
		t.Fatalf("session not committed: %+v", gotSess)
	}
	if gotVault.Balance.Amount() != 300 {
		t.Fatalf("vault not committed: balance = %d", gotVault.Balance.Amount())
	}

	missing := newSession("reader", 0)
	if err := s.CommitSettlement(ctx, missing, v); !errors.Is(err, paywall.ErrSessionNotFound) {
		t.Fatalf("commit missing session: got %v, want ErrSessionNotFound", err)
	}
}

func TestPlatformStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetPlatform(ctx); !errors.Is(err, paywall.ErrNotFound) {
		t.Fatalf("empty platform: got %v, want ErrNotFound", err)
	}

	p := &platform.Accumulator{
		Entity:     types.NewEntity(),
		Admin:      "admin",
		ListingFee: 500,
		Balance:    types.NewValue(0),
	}
	if err := s.SavePlatform(ctx, p); err != nil {
		t.Fatalf("SavePlatform: %v", err)
	}

	got, err := s.GetPlatform(ctx)
	if err != nil {
		t.Fatalf("GetPlatform: %v", err)
	}
	if got.Admin != "admin" || got.ListingFee != 500 {
		t.Fatalf("GetPlatform mismatch: %+v", got)
	}
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, paywall.ErrStoreClosed) {
		t.Fatalf("Ping after close: got %v, want ErrStoreClosed", err)
	}
	if err := s.CreateVault(ctx, newVault("alice", 0)); !errors.Is(err, paywall.ErrStoreClosed) {
		t.Fatalf("create after close: got %v, want ErrStoreClosed", err)
	}
}
