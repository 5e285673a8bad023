// Package paywall provides a time-metered settlement engine for paid content.
//
// Paywall is designed as a library, not a service. Import it directly into
// your Go application. It provides:
//
//   - Per-millisecond metering with integer-exact fee calculation
//   - Prepaid reader sessions with checkpoint-based settlement
//   - Creator vaults that accumulate settled earnings
//   - A platform accumulator for one-time content listing fees
//   - Pluggable storage backends (memory, SQLite, PostgreSQL, MongoDB)
//   - A hook-based plugin system for metrics and audit trails
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/paywall"
//	    "github.com/xraph/paywall/store/memory"
//	)
//
//	// Initialize store (memory for demo, use PostgreSQL in production)
//	store := memory.New()
//
//	// Create engine
//	engine := paywall.New(store, paywall.WithListingFee(500))
//
//	// Start (runs migrations and initializes the fee accumulator)
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop()
//
// # Core Concepts
//
// Every operation identifies its caller through the context:
//
//	ctx = paywall.WithCaller(ctx, "creator-1")
//
// Creators register content at a rate, expressed in value units per
// 10-second quantum of streamed time:
//
//	binding, vault, err := engine.RegisterContent(ctx, 1000, feePayment)
//
// Readers open sessions funded by a prepaid deposit and settle elapsed
// time with explicit checkpoints:
//
//	sess, err := engine.StartSession(ctx, binding.ID, paywall.NewValue(2500))
//	out, err := engine.Checkpoint(ctx, sess.ID)
//
// Ending a session settles any final elapsed time and refunds whatever
// remains on deposit:
//
//	refund, closeout, err := engine.EndSession(ctx, sess.ID)
//
// # Settlement Semantics
//
// Fees are computed as floor(elapsed_ms * rate / 10000) with a 128-bit
// intermediate product, so no fee is ever overstated and the product
// cannot overflow. A checkpoint whose computed fee rounds to zero is a
// defined no-op: the checkpoint clock does not advance, so fractional
// time folds into the next billable call instead of being discarded.
// A settlement that empties the deposit pauses the session; topping up
// resumes it with the billing clock reset to the top-up instant.
//
// Value never appears or disappears: every unit deposited into a session
// is at all times on deposit, settled into a vault, or refunded. All
// arithmetic is integer-exact.
//
// # Time
//
// The engine never advances time on its own. There are no background
// timers; every state change happens inside a caller-invoked operation,
// using the engine's clock. Tests inject a manual clock:
//
//	clk := clock.NewManual(0)
//	engine := paywall.New(store, paywall.WithClock(clk))
//	clk.Advance(12_000)
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	cnt_01h2xcejqtf2nbrexx3vqjhp41  // Content binding ID
//	vlt_01h2xcejqtf2nbrexx3vqjhp41  // Vault ID
//	ses_01h455vb4pex5vsknk084sn02q  // Session ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package paywall
