package paywall_test

import (
	"context"
	"log"
	"log/slog"
	"testing"

	"github.com/xraph/paywall"
	"github.com/xraph/paywall/clock"
	"github.com/xraph/paywall/store/memory"
)

// TestDocumentationExamples verifies that the examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from README
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()

		// Initialize engine with a manual clock so the example is deterministic
		clk := clock.NewManual(0)
		engine := paywall.New(store,
			paywall.WithLogger(slog.Default()),
			paywall.WithClock(clk),
			paywall.WithListingFee(500),
			paywall.WithAdmin("ops"),
		)

		// Start the engine
		ctx := context.Background()
		if err := engine.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer engine.Stop()

		// Register content as a creator, paying the listing fee
		creatorCtx := paywall.WithCaller(ctx, "creator-1")
		binding, vault, err := engine.RegisterContent(creatorCtx, 1000, paywall.NewValue(500))
		if err != nil {
			t.Fatal(err)
		}

		// Open a reader session funded by a prepaid deposit
		readerCtx := paywall.WithCaller(ctx, "reader-1")
		sess, err := engine.StartSession(readerCtx, binding.ID, paywall.NewValue(2500))
		if err != nil {
			t.Fatal(err)
		}

		// Stream for 12 seconds, then settle
		clk.Advance(12_000)
		out, err := engine.Checkpoint(readerCtx, sess.ID)
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("settled %d units, %d remaining\n", out.Paid, out.Remaining)

		// End the session; the unspent deposit comes back
		refund, closeout, err := engine.EndSession(readerCtx, sess.ID)
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("refunded %d, spent %d\n", refund.Amount(), closeout.TotalSpent)

		// The creator withdraws settled earnings
		earned, err := engine.WithdrawVault(creatorCtx, vault.ID, 0)
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("creator withdrew %d\n", earned.Amount())
	})

	// Test Value type examples
	t.Run("ValueExamples", func(t *testing.T) {
		// Constructors
		v := paywall.NewValue(2500)
		_ = paywall.Zero()

		// Splitting and joining conserve units exactly
		cut, err := v.Split(500)
		if err != nil {
			t.Fatal(err)
		}
		v.Join(cut)

		if v.Amount() != 2500 {
			t.Fatalf("amount = %d, want 2500", v.Amount())
		}
	})
}
