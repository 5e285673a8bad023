package paywall

import (
	"context"

	"github.com/xraph/paywall/content"
	"github.com/xraph/paywall/id"
	"github.com/xraph/paywall/types"
	"github.com/xraph/paywall/vault"
)

// RegisterContent binds new content to the calling creator's vault at the
// given rate (value units per streamed quantum).
//
// When a listing fee is configured, feePayment must cover it; exactly the
// configured fee is credited to the platform accumulator and any excess
// stays with the caller in feePayment. When the fee is zero the payment
// is left untouched. A first-time creator gets a vault created lazily;
// returning creators reuse theirs.
func (e *Engine) RegisterContent(ctx context.Context, rate uint64, feePayment *types.Value) (*content.Binding, *vault.Vault, error) {
	creator := CallerFromContext(ctx)
	if creator == "" {
		return nil, nil, ErrUnauthorized
	}
	if rate == 0 {
		return nil, nil, ErrInvalidRate
	}
	if feePayment == nil {
		feePayment = types.Zero()
	}

	release := e.locks.acquire(lockPlatform, lockCreator(creator))
	defer release()

	acc, err := e.store.GetPlatform(ctx)
	if err != nil {
		return nil, nil, err
	}
	if acc.ListingFee > 0 && feePayment.Amount() < acc.ListingFee {
		return nil, nil, ErrInsufficientListingFee
	}

	vlt, err := e.store.GetVaultByCreator(ctx, creator)
	vaultCreated := false
	if err != nil {
		if !IsNotFound(err) {
			return nil, nil, err
		}
		vlt = &vault.Vault{
			Entity:  types.NewEntity(),
			ID:      id.NewVaultID(),
			Creator: creator,
			Balance: types.Zero(),
		}
		if err := e.store.CreateVault(ctx, vlt); err != nil {
			return nil, nil, err
		}
		vaultCreated = true
	}

	b := &content.Binding{
		Entity:  types.NewEntity(),
		ID:      id.NewContentID(),
		Creator: creator,
		Rate:    rate,
		VaultID: vlt.ID,
	}
	if err := e.store.CreateBinding(ctx, b); err != nil {
		return nil, nil, err
	}

	feePaid := uint64(0)
	if acc.ListingFee > 0 {
		cut, err := feePayment.Split(acc.ListingFee)
		if err != nil {
			return nil, nil, ErrInsufficientListingFee
		}
		acc.Credit(cut)
		acc.Touch()
		if err := e.store.SavePlatform(ctx, acc); err != nil {
			return nil, nil, err
		}
		feePaid = acc.ListingFee
	}

	if vaultCreated {
		e.plugins.EmitVaultCreated(ctx, vlt)
	}
	if feePaid > 0 {
		e.plugins.EmitListingFeePaid(ctx, creator, feePaid)
	}
	e.plugins.EmitContentRegistered(ctx, b)

	e.logger.Info("content registered",
		"content_id", b.ID,
		"creator", creator,
		"rate", rate,
		"fee_paid", feePaid,
	)

	return b, vlt, nil
}

// UpdateRate changes a binding's rate. Creator-only; the new rate must be
// positive. Sessions already started keep the rate they were opened with.
func (e *Engine) UpdateRate(ctx context.Context, contentID id.ContentID, newRate uint64) (*content.Binding, error) {
	caller := CallerFromContext(ctx)
	if caller == "" {
		return nil, ErrUnauthorized
	}
	if newRate == 0 {
		return nil, ErrInvalidRate
	}

	release := e.locks.acquire(lockBinding(contentID.String()))
	defer release()

	b, err := e.store.GetBinding(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if !b.OwnedBy(caller) {
		return nil, ErrUnauthorized
	}

	oldRate := b.Rate
	b.Rate = newRate
	b.Touch()

	if err := e.store.UpdateBinding(ctx, b); err != nil {
		return nil, err
	}

	e.plugins.EmitRateUpdated(ctx, b, oldRate, newRate)

	e.logger.Info("rate updated",
		"content_id", b.ID,
		"old_rate", oldRate,
		"new_rate", newRate,
	)

	return b, nil
}

// GetBinding retrieves a content binding by ID.
func (e *Engine) GetBinding(ctx context.Context, contentID id.ContentID) (*content.Binding, error) {
	return e.store.GetBinding(ctx, contentID)
}

// ListBindings retrieves a creator's content bindings.
func (e *Engine) ListBindings(ctx context.Context, creator string, opts content.ListOpts) ([]*content.Binding, error) {
	return e.store.ListBindings(ctx, creator, opts)
}

// VaultBalance returns a vault's current settled earnings.
func (e *Engine) VaultBalance(ctx context.Context, vaultID id.VaultID) (uint64, error) {
	v, err := e.store.GetVault(ctx, vaultID)
	if err != nil {
		return 0, err
	}
	return v.Balance.Amount(), nil
}
