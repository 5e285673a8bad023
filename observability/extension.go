// Package observability provides a metrics extension for Paywall that
// records settlement lifecycle counts via a pluggable MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/paywall/plugin"
	"github.com/xraph/paywall/session"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnContentRegistered = (*MetricsExtension)(nil)
	_ plugin.OnListingFeePaid    = (*MetricsExtension)(nil)
	_ plugin.OnVaultCreated      = (*MetricsExtension)(nil)
	_ plugin.OnRateUpdated       = (*MetricsExtension)(nil)
	_ plugin.OnSessionStarted    = (*MetricsExtension)(nil)
	_ plugin.OnCheckpointSettled = (*MetricsExtension)(nil)
	_ plugin.OnSessionPaused     = (*MetricsExtension)(nil)
	_ plugin.OnSessionToppedUp   = (*MetricsExtension)(nil)
	_ plugin.OnSessionEnded      = (*MetricsExtension)(nil)
	_ plugin.OnVaultWithdrawn    = (*MetricsExtension)(nil)
	_ plugin.OnPlatformWithdrawn = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide settlement metrics.
// Register it as a Paywall plugin to automatically track engine activity.
type MetricsExtension struct {
	factory MetricFactory

	// Content metrics
	ContentRegistered Counter
	RateUpdated       Counter
	VaultCreated      Counter
	ListingFeesPaid   Counter
	ListingFeeTotal   Histogram

	// Session metrics
	SessionStarted  Counter
	SessionPaused   Counter
	SessionToppedUp Counter
	SessionEnded    Counter
	DepositSize     Histogram
	RefundSize      Histogram

	// Settlement metrics
	CheckpointsSettled Counter
	SettledValue       Histogram
	StreamedMS         Histogram

	// Withdrawal metrics
	VaultWithdrawals    Counter
	PlatformWithdrawals Counter
	WithdrawnValue      Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Content metrics
		ContentRegistered: factory.Counter("paywall.content.registered"),
		RateUpdated:       factory.Counter("paywall.content.rate.updated"),
		VaultCreated:      factory.Counter("paywall.vault.created"),
		ListingFeesPaid:   factory.Counter("paywall.listing_fee.paid"),
		ListingFeeTotal:   factory.Histogram("paywall.listing_fee.amount"),

		// Session metrics
		SessionStarted:  factory.Counter("paywall.session.started"),
		SessionPaused:   factory.Counter("paywall.session.paused"),
		SessionToppedUp: factory.Counter("paywall.session.topped_up"),
		SessionEnded:    factory.Counter("paywall.session.ended"),
		DepositSize:     factory.Histogram("paywall.session.deposit"),
		RefundSize:      factory.Histogram("paywall.session.refund"),

		// Settlement metrics
		CheckpointsSettled: factory.Counter("paywall.checkpoint.settled"),
		SettledValue:       factory.Histogram("paywall.checkpoint.paid"),
		StreamedMS:         factory.Histogram("paywall.checkpoint.elapsed_ms"),

		// Withdrawal metrics
		VaultWithdrawals:    factory.Counter("paywall.withdraw.vault"),
		PlatformWithdrawals: factory.Counter("paywall.withdraw.platform"),
		WithdrawnValue:      factory.Histogram("paywall.withdraw.amount"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Content registry hooks
// ──────────────────────────────────────────────────

// OnContentRegistered implements plugin.OnContentRegistered.
func (m *MetricsExtension) OnContentRegistered(_ context.Context, _ interface{}) error {
	m.ContentRegistered.Inc()
	return nil
}

// OnListingFeePaid implements plugin.OnListingFeePaid.
func (m *MetricsExtension) OnListingFeePaid(_ context.Context, _ string, amount uint64) error {
	m.ListingFeesPaid.Inc()
	m.ListingFeeTotal.Observe(float64(amount))
	return nil
}

// OnVaultCreated implements plugin.OnVaultCreated.
func (m *MetricsExtension) OnVaultCreated(_ context.Context, _ interface{}) error {
	m.VaultCreated.Inc()
	return nil
}

// OnRateUpdated implements plugin.OnRateUpdated.
func (m *MetricsExtension) OnRateUpdated(_ context.Context, _ interface{}, _, _ uint64) error {
	m.RateUpdated.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Session lifecycle hooks
// ──────────────────────────────────────────────────

// OnSessionStarted implements plugin.OnSessionStarted.
func (m *MetricsExtension) OnSessionStarted(_ context.Context, _ interface{}, deposit uint64) error {
	m.SessionStarted.Inc()
	m.DepositSize.Observe(float64(deposit))
	return nil
}

// OnCheckpointSettled implements plugin.OnCheckpointSettled.
func (m *MetricsExtension) OnCheckpointSettled(_ context.Context, settlement interface{}) error {
	m.CheckpointsSettled.Inc()
	if out, ok := settlement.(*session.Settlement); ok {
		m.SettledValue.Observe(float64(out.Paid))
		m.StreamedMS.Observe(float64(out.ElapsedMS))
	}
	return nil
}

// OnSessionPaused implements plugin.OnSessionPaused.
func (m *MetricsExtension) OnSessionPaused(_ context.Context, _ interface{}) error {
	m.SessionPaused.Inc()
	return nil
}

// OnSessionToppedUp implements plugin.OnSessionToppedUp.
func (m *MetricsExtension) OnSessionToppedUp(_ context.Context, _ interface{}, amount, _ uint64) error {
	m.SessionToppedUp.Inc()
	m.DepositSize.Observe(float64(amount))
	return nil
}

// OnSessionEnded implements plugin.OnSessionEnded.
func (m *MetricsExtension) OnSessionEnded(_ context.Context, closeout interface{}) error {
	m.SessionEnded.Inc()
	if out, ok := closeout.(*session.Closeout); ok {
		m.RefundSize.Observe(float64(out.Refund))
	}
	return nil
}

// ──────────────────────────────────────────────────
// Withdrawal hooks
// ──────────────────────────────────────────────────

// OnVaultWithdrawn implements plugin.OnVaultWithdrawn.
func (m *MetricsExtension) OnVaultWithdrawn(_ context.Context, _ string, amount uint64) error {
	m.VaultWithdrawals.Inc()
	m.WithdrawnValue.Observe(float64(amount))
	return nil
}

// OnPlatformWithdrawn implements plugin.OnPlatformWithdrawn.
func (m *MetricsExtension) OnPlatformWithdrawn(_ context.Context, amount uint64) error {
	m.PlatformWithdrawals.Inc()
	m.WithdrawnValue.Observe(float64(amount))
	return nil
}
