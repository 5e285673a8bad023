package paywall

import (
	"context"
	"log/slog"

	"github.com/xraph/paywall/clock"
	"github.com/xraph/paywall/config"
	"github.com/xraph/paywall/platform"
	"github.com/xraph/paywall/plugin"
	"github.com/xraph/paywall/store"
	"github.com/xraph/paywall/types"
)

// Engine is the time-based settlement engine. It meters access to paid
// content by debiting a reader's prepaid session deposit and crediting
// the creator's vault, one explicit checkpoint at a time. Time never
// advances on its own: there are no internal timers, and every state
// change happens inside a caller-invoked operation.
type Engine struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   clock.Clock

	listingFee    uint64
	listingFeeSet bool
	admin         string

	locks recordLocks
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
		clock:   clock.System{},
	}
	e.locks.init()

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithClock sets the millisecond time source. Defaults to the system
// wall clock; tests inject a clock.Manual.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithListingFee sets the one-time fee charged per content registration.
// Zero disables the fee.
func WithListingFee(units uint64) Option {
	return func(e *Engine) {
		e.listingFee = units
		e.listingFeeSet = true
	}
}

// WithAdmin sets the principal allowed to withdraw accumulated listing
// fees from the platform accumulator.
func WithAdmin(principal string) Option {
	return func(e *Engine) {
		e.admin = principal
	}
}

// WithConfig applies an environment-loaded configuration.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		e.listingFee = cfg.ListingFee
		e.listingFeeSet = true
		if cfg.Admin != "" {
			e.admin = cfg.Admin
		}
	}
}

// Start migrates the store, initializes the platform fee accumulator,
// and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	if err := e.ensurePlatform(ctx); err != nil {
		return err
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("paywall started",
		"listing_fee", e.listingFee,
		"plugins", e.plugins.Count(),
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// ensurePlatform creates the platform accumulator record on first start
// and syncs the configured listing fee and admin on subsequent starts.
func (e *Engine) ensurePlatform(ctx context.Context) error {
	release := e.locks.acquire(lockPlatform)
	defer release()

	acc, err := e.store.GetPlatform(ctx)
	if err != nil {
		if !IsNotFound(err) {
			return err
		}
		acc = &platform.Accumulator{
			Entity:     types.NewEntity(),
			Admin:      e.admin,
			ListingFee: e.listingFee,
			Balance:    types.Zero(),
		}
		return e.store.SavePlatform(ctx, acc)
	}

	changed := false
	if e.listingFeeSet && acc.ListingFee != e.listingFee {
		acc.ListingFee = e.listingFee
		changed = true
	}
	if e.admin != "" && acc.Admin != e.admin {
		acc.Admin = e.admin
		changed = true
	}
	if changed {
		acc.Touch()
		return e.store.SavePlatform(ctx, acc)
	}
	return nil
}

// PlatformBalance returns the accumulated listing fees not yet withdrawn.
func (e *Engine) PlatformBalance(ctx context.Context) (uint64, error) {
	acc, err := e.store.GetPlatform(ctx)
	if err != nil {
		return 0, err
	}
	return acc.Balance.Amount(), nil
}
