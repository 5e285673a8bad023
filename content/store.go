package content

import (
	"context"

	"github.com/xraph/paywall/id"
)

type Store interface {
	Create(ctx context.Context, b *Binding) error
	Get(ctx context.Context, contentID id.ContentID) (*Binding, error)
	List(ctx context.Context, creator string, opts ListOpts) ([]*Binding, error)
	Update(ctx context.Context, b *Binding) error
}

type ListOpts struct {
	Limit  int
	Offset int
}
