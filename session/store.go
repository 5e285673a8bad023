package session

import (
	"context"

	"github.com/xraph/paywall/id"
)

type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, sessionID id.SessionID) (*Session, error)
	List(ctx context.Context, owner string, opts ListOpts) ([]*Session, error)
	Update(ctx context.Context, s *Session) error
}

type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
