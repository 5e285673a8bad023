package paywall

import (
	"context"

	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/types"
)

// WithdrawVault transfers settled earnings out of a vault to its creator.
// units == 0 means "withdraw everything available"; a request exceeding
// the available balance fails. The balance can never go negative.
func (e *Engine) WithdrawVault(ctx context.Context, vaultID id.VaultID, units uint64) (*types.Value, error) {
	caller := CallerFromContext(ctx)
	if caller == "" {
		return nil, ErrUnauthorized
	}

	release := e.locks.acquire(lockVault(vaultID.String()))
	defer release()

	v, err := e.store.GetVault(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if !v.OwnedBy(caller) {
		return nil, ErrUnauthorized
	}

	out, err := v.Debit(units)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	v.Touch()

	if err := e.store.UpdateVault(ctx, v); err != nil {
		return nil, err
	}

	e.plugins.EmitVaultWithdrawn(ctx, v.ID.String(), out.Amount())

	e.logger.Info("vault withdrawn",
		"vault_id", v.ID,
		"amount", out.Amount(),
		"balance", v.Balance.Amount(),
	)

	return out, nil
}

// WithdrawPlatform transfers accumulated listing fees to the admin.
// Admin-only, with the same zero-means-all and bounds-checked semantics
// as WithdrawVault.
func (e *Engine) WithdrawPlatform(ctx context.Context, units uint64) (*types.Value, error) {
	caller := CallerFromContext(ctx)
	if caller == "" {
		return nil, ErrUnauthorized
	}

	release := e.locks.acquire(lockPlatform)
	defer release()

	acc, err := e.store.GetPlatform(ctx)
	if err != nil {
		return nil, err
	}
	if !acc.AdministeredBy(caller) {
		return nil, ErrUnauthorized
	}

	out, err := acc.Debit(units)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	acc.Touch()

	if err := e.store.SavePlatform(ctx, acc); err != nil {
		return nil, err
	}

	e.plugins.EmitPlatformWithdrawn(ctx, out.Amount())

	e.logger.Info("platform withdrawn",
		"amount", out.Amount(),
		"balance", acc.Balance.Amount(),
	)

	return out, nil
}
