package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit              []OnInit
	onShutdown          []OnShutdown
	onContentRegistered []OnContentRegistered
	onListingFeePaid    []OnListingFeePaid
	onVaultCreated      []OnVaultCreated
	onRateUpdated       []OnRateUpdated
	onSessionStarted    []OnSessionStarted
	onCheckpointSettled []OnCheckpointSettled
	onSessionPaused     []OnSessionPaused
	onSessionToppedUp   []OnSessionToppedUp
	onSessionEnded      []OnSessionEnded
	onVaultWithdrawn    []OnVaultWithdrawn
	onPlatformWithdrawn []OnPlatformWithdrawn
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnContentRegistered); ok {
		r.onContentRegistered = append(r.onContentRegistered, v)
	}
	if v, ok := p.(OnListingFeePaid); ok {
		r.onListingFeePaid = append(r.onListingFeePaid, v)
	}
	if v, ok := p.(OnVaultCreated); ok {
		r.onVaultCreated = append(r.onVaultCreated, v)
	}
	if v, ok := p.(OnRateUpdated); ok {
		r.onRateUpdated = append(r.onRateUpdated, v)
	}
	if v, ok := p.(OnSessionStarted); ok {
		r.onSessionStarted = append(r.onSessionStarted, v)
	}
	if v, ok := p.(OnCheckpointSettled); ok {
		r.onCheckpointSettled = append(r.onCheckpointSettled, v)
	}
	if v, ok := p.(OnSessionPaused); ok {
		r.onSessionPaused = append(r.onSessionPaused, v)
	}
	if v, ok := p.(OnSessionToppedUp); ok {
		r.onSessionToppedUp = append(r.onSessionToppedUp, v)
	}
	if v, ok := p.(OnSessionEnded); ok {
		r.onSessionEnded = append(r.onSessionEnded, v)
	}
	if v, ok := p.(OnVaultWithdrawn); ok {
		r.onVaultWithdrawn = append(r.onVaultWithdrawn, v)
	}
	if v, ok := p.(OnPlatformWithdrawn); ok {
		r.onPlatformWithdrawn = append(r.onPlatformWithdrawn, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnContentRegistered)(nil)).Elem(), "OnContentRegistered")
	checkInterface(reflect.TypeOf((*OnListingFeePaid)(nil)).Elem(), "OnListingFeePaid")
	checkInterface(reflect.TypeOf((*OnVaultCreated)(nil)).Elem(), "OnVaultCreated")
	checkInterface(reflect.TypeOf((*OnRateUpdated)(nil)).Elem(), "OnRateUpdated")
	checkInterface(reflect.TypeOf((*OnSessionStarted)(nil)).Elem(), "OnSessionStarted")
	checkInterface(reflect.TypeOf((*OnCheckpointSettled)(nil)).Elem(), "OnCheckpointSettled")
	checkInterface(reflect.TypeOf((*OnSessionPaused)(nil)).Elem(), "OnSessionPaused")
	checkInterface(reflect.TypeOf((*OnSessionToppedUp)(nil)).Elem(), "OnSessionToppedUp")
	checkInterface(reflect.TypeOf((*OnSessionEnded)(nil)).Elem(), "OnSessionEnded")
	checkInterface(reflect.TypeOf((*OnVaultWithdrawn)(nil)).Elem(), "OnVaultWithdrawn")
	checkInterface(reflect.TypeOf((*OnPlatformWithdrawn)(nil)).Elem(), "OnPlatformWithdrawn")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitContentRegistered emits a content registered event.
func (r *Registry) EmitContentRegistered(ctx context.Context, binding interface{}) {
	r.mu.RLock()
	plugins := r.onContentRegistered
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnContentRegistered(ctx, binding)
		}); err != nil {
			r.logger.Warn("plugin OnContentRegistered failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitListingFeePaid emits a listing fee paid event.
func (r *Registry) EmitListingFeePaid(ctx context.Context, creator string, amount uint64) {
	r.mu.RLock()
	plugins := r.onListingFeePaid
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnListingFeePaid(ctx, creator, amount)
		}); err != nil {
			r.logger.Warn("plugin OnListingFeePaid failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitVaultCreated emits a vault created event.
func (r *Registry) EmitVaultCreated(ctx context.Context, vault interface{}) {
	r.mu.RLock()
	plugins := r.onVaultCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnVaultCreated(ctx, vault)
		}); err != nil {
			r.logger.Warn("plugin OnVaultCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRateUpdated emits a rate updated event.
func (r *Registry) EmitRateUpdated(ctx context.Context, binding interface{}, oldRate, newRate uint64) {
	r.mu.RLock()
	plugins := r.onRateUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRateUpdated(ctx, binding, oldRate, newRate)
		}); err != nil {
			r.logger.Warn("plugin OnRateUpdated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSessionStarted emits a session started event.
func (r *Registry) EmitSessionStarted(ctx context.Context, session interface{}, deposit uint64) {
	r.mu.RLock()
	plugins := r.onSessionStarted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionStarted(ctx, session, deposit)
		}); err != nil {
			r.logger.Warn("plugin OnSessionStarted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCheckpointSettled emits a checkpoint settled event.
func (r *Registry) EmitCheckpointSettled(ctx context.Context, settlement interface{}) {
	r.mu.RLock()
	plugins := r.onCheckpointSettled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCheckpointSettled(ctx, settlement)
		}); err != nil {
			r.logger.Warn("plugin OnCheckpointSettled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSessionPaused emits a session paused event.
func (r *Registry) EmitSessionPaused(ctx context.Context, session interface{}) {
	r.mu.RLock()
	plugins := r.onSessionPaused
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionPaused(ctx, session)
		}); err != nil {
			r.logger.Warn("plugin OnSessionPaused failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSessionToppedUp emits a session topped up event.
func (r *Registry) EmitSessionToppedUp(ctx context.Context, session interface{}, amount, newBalance uint64) {
	r.mu.RLock()
	plugins := r.onSessionToppedUp
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionToppedUp(ctx, session, amount, newBalance)
		}); err != nil {
			r.logger.Warn("plugin OnSessionToppedUp failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSessionEnded emits a session ended event.
func (r *Registry) EmitSessionEnded(ctx context.Context, closeout interface{}) {
	r.mu.RLock()
	plugins := r.onSessionEnded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionEnded(ctx, closeout)
		}); err != nil {
			r.logger.Warn("plugin OnSessionEnded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitVaultWithdrawn emits a vault withdrawn event.
func (r *Registry) EmitVaultWithdrawn(ctx context.Context, vaultID string, amount uint64) {
	r.mu.RLock()
	plugins := r.onVaultWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnVaultWithdrawn(ctx, vaultID, amount)
		}); err != nil {
			r.logger.Warn("plugin OnVaultWithdrawn failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPlatformWithdrawn emits a platform withdrawn event.
func (r *Registry) EmitPlatformWithdrawn(ctx context.Context, amount uint64) {
	r.mu.RLock()
	plugins := r.onPlatformWithdrawn
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPlatformWithdrawn(ctx, amount)
		}); err != nil {
			r.logger.Warn("plugin OnPlatformWithdrawn failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the settlement pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
