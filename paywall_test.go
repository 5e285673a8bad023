package paywall_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/paywall"
	"github.com/xraph/paywall/clock"
	"github.com/xraph/paywall/content"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/session"
	"github.com/xraph/paywall/store/memory"
)

func newTestEngine(t *testing.T, opts ...paywall.Option) (*paywall.Engine, *clock.Manual) {
	t.Helper()

	clk := clock.NewManual(0)
	opts = append([]paywall.Option{paywall.WithClock(clk)}, opts...)
	engine := paywall.New(memory.New(), opts...)

	require.NoError(t, engine.Start(context.Background()))
	t.Cleanup(func() { _ = engine.Stop() })

	return engine, clk
}

func asCaller(principal string) context.Context {
	return paywall.WithCaller(context.Background(), principal)
}

func TestRegisterContent(t *testing.T) {
	t.Run("free listing", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		b, v, err := engine.RegisterContent(asCaller("alice"), 1000, nil)
		require.NoError(t, err)
		assert.Equal(t, "alice", b.Creator)
		assert.Equal(t, uint64(1000), b.Rate)
		assert.Equal(t, v.ID, b.VaultID)
		assert.Equal(t, uint64(0), v.Balance.Amount())
	})

	t.Run("exact change listing fee", func(t *testing.T) {
		engine, _ := newTestEngine(t, paywall.WithListingFee(500))

		payment := paywall.NewValue(800)
		_, _, err := engine.RegisterContent(asCaller("alice"), 1000, payment)
		require.NoError(t, err)

		// Exactly the fee moves; the excess stays with the payer.
		assert.Equal(t, uint64(300), payment.Amount())

		balance, err := engine.PlatformBalance(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(500), balance)
	})

	t.Run("insufficient listing fee", func(t *testing.T) {
		engine, _ := newTestEngine(t, paywall.WithListingFee(500))

		payment := paywall.NewValue(499)
		_, _, err := engine.RegisterContent(asCaller("alice"), 1000, payment)
		require.ErrorIs(t, err, paywall.ErrInsufficientListingFee)

		// The rejected payment is untouched and nothing was credited.
		assert.Equal(t, uint64(499), payment.Amount())
		balance, err := engine.PlatformBalance(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(0), balance)
	})

	t.Run("vault reused across registrations", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, v1, err := engine.RegisterContent(asCaller("alice"), 1000, nil)
		require.NoError(t, err)
		_, v2, err := engine.RegisterContent(asCaller("alice"), 2000, nil)
		require.NoError(t, err)
		assert.Equal(t, v1.ID, v2.ID)

		bindings, err := engine.ListBindings(context.Background(), "alice", content.ListOpts{})
		require.NoError(t, err)
		assert.Len(t, bindings, 2)
	})

	t.Run("zero rate rejected", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, _, err := engine.RegisterContent(asCaller("alice"), 0, nil)
		require.ErrorIs(t, err, paywall.ErrInvalidRate)
	})

	t.Run("anonymous caller rejected", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, _, err := engine.RegisterContent(context.Background(), 1000, nil)
		require.ErrorIs(t, err, paywall.ErrUnauthorized)
	})
}

func TestUpdateRate(t *testing.T) {
	engine, clk := newTestEngine(t)

	b, _, err := engine.RegisterContent(asCaller("alice"), 1000, nil)
	require.NoError(t, err)

	// A session opened before the change keeps its original rate.
	sess, err := engine.StartSession(asCaller("reader"), b.ID, paywall.NewValue(10_000))
	require.NoError(t, err)

	_, err = engine.UpdateRate(asCaller("bob"), b.ID, 2000)
	require.ErrorIs(t, err, paywall.ErrUnauthorized)

	updated, err := engine.UpdateRate(asCaller("alice"), b.ID, 2000)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), updated.Rate)

	clk.Advance(10_000)
	out, err := engine.Checkpoint(asCaller("reader"), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), out.Paid, "existing session bills at its opening rate")

	// A session opened after the change picks up the new rate.
	sess2, err := engine.StartSession(asCaller("reader"), b.ID, paywall.NewValue(10_000))
	require.NoError(t, err)
	clk.Advance(10_000)
	out2, err := engine.Checkpoint(asCaller("reader"), sess2.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), out2.Paid)
}

func TestStartSession(t *testing.T) {
	engine, _ := newTestEngine(t)

	b, _, err := engine.RegisterContent(asCaller("alice"), 1000, nil)
	require.NoError(t, err)

	t.Run("deposit transfers into session", func(t *testing.T) {
		deposit := paywall.NewValue(2500)
		sess, err := engine.StartSession(asCaller("reader"), b.ID, deposit)
		require.NoError(t, err)

		assert.Equal(t, uint64(0), deposit.Amount(), "caller's handle is drained")
		assert.Equal(t, uint64(2500), sess.Deposit.Amount())
		assert.Equal(t, session.StatusActive, sess.Status)
		assert.Equal(t, b.Rate, sess.Rate)
	})

	t.Run("zero deposit rejected", func(t *testing.T) {
		_, err := engine.StartSession(asCaller("reader"), b.ID, paywall.Zero())
		require.ErrorIs(t, err, paywall.ErrInvalidAmount)
	})

	t.Run("unknown content rejected", func(t *testing.T) {
		_, err := engine.StartSession(asCaller("reader"), id.NewContentID(), paywall.NewValue(100))
		require.ErrorIs(t, err, paywall.ErrContentNotFound)
	})
}

func TestCheckpointSettlement(t *testing.T) {
	// The canonical walkthrough: rate 1000 per 10s quantum, deposit 2500.
	engine, clk := newTestEngine(t, paywall.WithListingFee(500), paywall.WithAdmin("ops"))

	payment := paywall.NewValue(800)
	b, v, err := engine.RegisterContent(asCaller("alice"), 1000, payment)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), payment.Amount())

	reader := asCaller("reader")
	sess, err := engine.StartSession(reader, b.ID, paywall.NewValue(2500))
	require.NoError(t, err)

	// t=12000: floor(12000 * 1000 / 10000) = 1200.
	clk.Set(12_000)
	out, err := engine.Checkpoint(reader, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(12_000), out.ElapsedMS)
	assert.Equal(t, uint64(1200), out.Paid)
	assert.Equal(t, uint64(1300), out.Remaining)
	assert.Equal(t, session.StatusActive, out.Status)

	// t=25000: owed 1300, deposit covers it exactly; the session pauses.
	clk.Set(25_000)
	out, err = engine.Checkpoint(reader, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1300), out.Paid)
	assert.Equal(t, uint64(0), out.Remaining)
	assert.Equal(t, session.StatusPaused, out.Status)

	// t=35000: paused sessions cannot settle.
	clk.Set(35_000)
	_, err = engine.Checkpoint(reader, sess.ID)
	require.ErrorIs(t, err, paywall.ErrInactiveSession)

	// The creator's vault holds everything settled so far.
	balance, err := engine.VaultBalance(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2500), balance)

	spent, streamed, err := engine.SessionStats(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2500), spent)
	assert.Equal(t, uint64(25_000), streamed)
}

func TestCheckpointZeroFeeNoOp(t *testing.T) {
	// Rate 1 per quantum: fractions of a quantum round down to zero.
	engine, clk := newTestEngine(t)

	b, _, err := engine.RegisterContent(asCaller("alice"), 1, nil)
	require.NoError(t, err)

	reader := asCaller("reader")
	sess, err := engine.StartSession(reader, b.ID, paywall.NewValue(100))
	require.NoError(t, err)

	// 9999ms at rate 1 per 10000ms floors to zero. Nothing changes.
	clk.Set(9_999)
	out, err := engine.Checkpoint(reader, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), out.Paid)
	assert.Equal(t, uint64(100), out.Remaining)

	got, err := engine.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got.LastCheckpointMS, "zero settlement must not advance the checkpoint clock")

	// One more millisecond completes the quantum; the fraction was kept.
	clk.Set(10_000)
	out, err = engine.Checkpoint(reader, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000), out.ElapsedMS)
	assert.Equal(t, uint64(1), out.Paid)
}

func TestCheckpointClockRegression(t *testing.T) {
	engine, clk := newTestEngine(t)

	b, _, err := engine.RegisterContent(asCaller("alice"), 1000, nil)
	require.NoError(t, err)

	reader := asCaller("reader")
	clk.Set(20_000)
	sess, err := engine.StartSession(reader, b.ID, paywall.NewValue(2500))
	require.NoError(t, err)

	clk.Set(5_000)
	_, err = engine.Checkpoint(reader, sess.ID)
	require.ErrorIs(t, err, paywall.ErrClockRegression)

	// The failed call changed nothing.
	got, err := engine.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2500), got.Deposit.Amount())
	assert.Equal(t, uint64(20_000), got.LastCheckpointMS)
}

func TestCheckpointAuthorization(t *testing.T) {
	engine, clk := newTestEngine(t)

	b, _, err := engine.RegisterContent(asCaller("alice"), 1000, nil)
	require.NoError(t, err)

	sess, err := engine.StartSession(asCaller("reader"), b.ID, paywall.NewValue(2500))
	require.NoError(t, err)
	clk.Advance(10_000)

	_, err = engine.Checkpoint(asCaller("mallory"), sess.ID)
	require.ErrorIs(t, err, paywall.ErrUnauthorized)

	_, err = engine.Checkpoint(context.Background(), sess.ID)
	require.ErrorIs(t, err, paywall.ErrUnauthorized)
}

func TestPauseAndResume(t *testing.T) {
	engine, clk := newTestEngine(t)

	b, v, err := engine.RegisterContent(asCaller("alice"), 1000, nil)
	require.NoError(t, err)

	reader := asCaller("reader")
	sess, err := engine.StartSession(reader, b.ID, paywall.NewValue(1000))
	require.NoError(t, err)

	// Exhaust the deposit; the session pauses.
	clk.Set(10_000)
	out, err := engine.Checkpoint(reader, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusPaused, out.Status)

	// A long pause, then a top-up. The paused stretch is never billed:
	// the billing clock restarts at the top-up instant.
	clk.Set(500_000)
	resumed, err := engine.TopUp(reader, sess.ID, paywall.NewValue(1000))
	require.NoError(t, err)
	assert.Equal(t, session.StatusActive, resumed.Status)
	assert.Equal(t, uint64(500_000), resumed.LastCheckpointMS)

	clk.Set(510_000)
	out, err = engine.Checkpoint(reader, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000), out.ElapsedMS)
	assert.Equal(t, uint64(1000), out.Paid)

	balance, err := engine.VaultBalance(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), balance)
}

func TestTopUpActiveSession(t *testing.T) {
	engine, _ := newTestEngine(t)

	b, _, err := engine.RegisterContent(asCaller("alice"), 1000, nil)
	require.NoError(t, err)

	reader := asCaller("reader")
	sess, err := engine.StartSession(reader, b.ID, paywall.NewValue(1000))
	require.NoError(t, err)

	// Topping up an Active session does not touch the billing clock.
	topped, err := engine.TopUp(reader, sess.ID, paywall.NewValue(500))
	require.NoError(t, err)
	assert.Equal(t, uint64(1500), topped.Deposit.Amount())
	assert.Equal(t, sess.LastCheckpointMS, topped.LastCheckpointMS)

	_, err = engine.TopUp(reader, sess.ID, paywall.Zero())
	require.ErrorIs(t, err, paywall.ErrInvalidAmount)
}

func TestEndSession(t *testing.T) {
	t.Run("implicit settlement then refund", func(t *testing.T) {
		engine, clk := newTestEngine(t)

		b, v, err := engine.RegisterContent(asCaller("alice"), 1000, nil)
		require.NoError(t, err)

		reader := asCaller("reader")
		sess, err := engine.StartSession(reader, b.ID, paywall.NewValue(2500))
		require.NoError(t, err)

		clk.Set(12_000)
		refund, closeout, err := engine.EndSession(reader, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1300), refund.Amount())
		assert.Equal(t, uint64(1200), closeout.TotalSpent)

		balance, err := engine.VaultBalance(context.Background(), v.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1200), balance)

		status, err := engine.SessionStatus(context.Background(), sess.ID)
		require.NoError(t, err)
		assert.Equal(t, session.StatusEnded, status)
	})

	t.Run("ending a paused session refunds zero", func(t *testing.T) {
		engine, clk := newTestEngine(t)

		b, _, err := engine.RegisterContent(asCaller("alice"), 1000, nil)
		require.NoError(t, err)

		reader := asCaller("reader")
		sess, err := engine.StartSession(reader, b.ID, paywall.NewValue(1000))
		require.NoError(t, err)

		clk.Set(10_000)
		_, err = engine.Checkpoint(reader, sess.ID)
		require.NoError(t, err)

		clk.Set(60_000)
		refund, closeout, err := engine.EndSession(reader, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), refund.Amount())
		assert.Equal(t, uint64(1000), closeout.TotalSpent)
	})

	t.Run("ended is absorbing", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		b, _, err := engine.RegisterContent(asCaller("alice"), 1000, nil)
		require.NoError(t, err)

		reader := asCaller("reader")
		sess, err := engine.StartSession(reader, b.ID, paywall.NewValue(1000))
		require.NoError(t, err)

		_, _, err = engine.EndSession(reader, sess.ID)
		require.NoError(t, err)

		_, err = engine.Checkpoint(reader, sess.ID)
		require.ErrorIs(t, err, paywall.ErrInactiveSession)
		_, err = engine.TopUp(reader, sess.ID, paywall.NewValue(100))
		require.ErrorIs(t, err, paywall.ErrInactiveSession)
		_, _, err = engine.EndSession(reader, sess.ID)
		require.ErrorIs(t, err, paywall.ErrInactiveSession)

		// Queries remain permitted.
		balance, err := engine.SessionBalance(context.Background(), sess.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), balance)
	})
}

func TestWithdrawVault(t *testing.T) {
	engine, clk := newTestEngine(t)

	b, v, err := engine.RegisterContent(asCaller("alice"), 1000, nil)
	require.NoError(t, err)

	reader := asCaller("reader")
	sess, err := engine.StartSession(reader, b.ID, paywall.NewValue(2500))
	require.NoError(t, err)
	clk.Set(10_000)
	_, err = engine.Checkpoint(reader, sess.ID)
	require.NoError(t, err)

	t.Run("partial", func(t *testing.T) {
		out, err := engine.WithdrawVault(asCaller("alice"), v.ID, 400)
		require.NoError(t, err)
		assert.Equal(t, uint64(400), out.Amount())

		balance, err := engine.VaultBalance(context.Background(), v.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(600), balance)
	})

	t.Run("over-withdraw fails without partial debit", func(t *testing.T) {
		_, err := engine.WithdrawVault(asCaller("alice"), v.ID, 10_000)
		require.ErrorIs(t, err, paywall.ErrInvalidAmount)

		balance, err := engine.VaultBalance(context.Background(), v.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(600), balance)
	})

	t.Run("non-creator rejected", func(t *testing.T) {
		_, err := engine.WithdrawVault(asCaller("mallory"), v.ID, 0)
		require.ErrorIs(t, err, paywall.ErrUnauthorized)
	})

	t.Run("zero means all", func(t *testing.T) {
		out, err := engine.WithdrawVault(asCaller("alice"), v.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(600), out.Amount())

		balance, err := engine.VaultBalance(context.Background(), v.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), balance)

		// Withdrawing from an empty vault yields an empty value.
		out, err = engine.WithdrawVault(asCaller("alice"), v.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), out.Amount())
	})
}

func TestWithdrawPlatform(t *testing.T) {
	engine, _ := newTestEngine(t, paywall.WithListingFee(500), paywall.WithAdmin("ops"))

	_, _, err := engine.RegisterContent(asCaller("alice"), 1000, paywall.NewValue(500))
	require.NoError(t, err)
	_, _, err = engine.RegisterContent(asCaller("bob"), 1000, paywall.NewValue(500))
	require.NoError(t, err)

	_, err = engine.WithdrawPlatform(asCaller("alice"), 0)
	require.ErrorIs(t, err, paywall.ErrUnauthorized)

	out, err := engine.WithdrawPlatform(asCaller("ops"), 600)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), out.Amount())

	_, err = engine.WithdrawPlatform(asCaller("ops"), 10_000)
	require.ErrorIs(t, err, paywall.ErrInvalidAmount)

	out, err = engine.WithdrawPlatform(asCaller("ops"), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), out.Amount())
}

func TestConservation(t *testing.T) {
	// Every unit deposited must end up spent, refunded, or still on
	// deposit; nothing is created or destroyed along the way.
	engine, clk := newTestEngine(t, paywall.WithListingFee(500), paywall.WithAdmin("ops"))

	payment := paywall.NewValue(800)
	b, v, err := engine.RegisterContent(asCaller("alice"), 777, payment)
	require.NoError(t, err)

	const deposited = 2500 + 1700

	reader := asCaller("reader")
	s1, err := engine.StartSession(reader, b.ID, paywall.NewValue(2500))
	require.NoError(t, err)
	s2, err := engine.StartSession(reader, b.ID, paywall.NewValue(1700))
	require.NoError(t, err)

	clk.Set(13_337)
	_, err = engine.Checkpoint(reader, s1.ID)
	require.NoError(t, err)
	clk.Set(29_000)
	_, err = engine.Checkpoint(reader, s2.ID)
	require.NoError(t, err)

	refund1, _, err := engine.EndSession(reader, s1.ID)
	require.NoError(t, err)
	clk.Set(42_000)
	refund2, _, err := engine.EndSession(reader, s2.ID)
	require.NoError(t, err)

	vaultBalance, err := engine.VaultBalance(context.Background(), v.ID)
	require.NoError(t, err)

	total := vaultBalance + refund1.Amount() + refund2.Amount()
	assert.Equal(t, uint64(deposited), total)

	// Listing fee accounting is independently exact.
	platformBalance, err := engine.PlatformBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(500), platformBalance)
	assert.Equal(t, uint64(300), payment.Amount())
}

func TestListSessions(t *testing.T) {
	engine, clk := newTestEngine(t)

	b, _, err := engine.RegisterContent(asCaller("alice"), 1000, nil)
	require.NoError(t, err)

	reader := asCaller("reader")
	s1, err := engine.StartSession(reader, b.ID, paywall.NewValue(1000))
	require.NoError(t, err)
	_, err = engine.StartSession(reader, b.ID, paywall.NewValue(1000))
	require.NoError(t, err)

	clk.Set(10_000)
	_, _, err = engine.EndSession(reader, s1.ID)
	require.NoError(t, err)

	all, err := engine.ListSessions(context.Background(), "reader", session.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := engine.ListSessions(context.Background(), "reader", session.ListOpts{Status: session.StatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
