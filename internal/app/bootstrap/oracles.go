package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	membershipqueries "cryptodao/contexts/dao-governance/membership-registry/application/queries"
	marketplacecommands "cryptodao/contexts/dao-governance/nft-marketplace/application/commands"
	marketplacequeries "cryptodao/contexts/dao-governance/nft-marketplace/application/queries"
	marketplaceerrors "cryptodao/contexts/dao-governance/nft-marketplace/domain/errors"
	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	governanceerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"
	"cryptodao/contexts/dao-governance/proposal-voting/ports"

	"github.com/shopspring/decimal"
)

// membershipOracle answers governance membership checks from the unit
// registry.
type membershipOracle struct {
	units membershipqueries.UnitQueryUseCase
}

func (o membershipOracle) UnitsHeldBy(ctx context.Context, principal string) ([]int64, error) {
	return o.units.UnitsHeldBy(ctx, principal)
}

// marketplaceOracle lets passed proposals buy from the marketplace context
// and translates its errors into governance errors.
type marketplaceOracle struct {
	assets    marketplacequeries.AssetQueryUseCase
	purchases marketplacecommands.PurchaseUseCase
}

func (o marketplaceOracle) Available(ctx context.Context, assetID int64) (bool, error) {
	return o.assets.Available(ctx, assetID)
}

func (o marketplaceOracle) PriceOf(ctx context.Context, assetID int64) (decimal.Decimal, error) {
	return o.assets.PriceOf(ctx, assetID)
}

func (o marketplaceOracle) Purchase(ctx context.Context, assetID int64, payment decimal.Decimal, buyer string) error {
	_, err := o.purchases.Purchase(ctx, marketplacecommands.PurchaseCommand{
		AssetID: assetID,
		Payment: payment,
		Buyer:   buyer,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, marketplaceerrors.ErrNotAvailable):
		return fmt.Errorf("%w: %v", governanceerrors.ErrAssetNotForSale, err)
	default:
		return fmt.Errorf("%w: %v", governanceerrors.ErrPurchaseRejected, err)
	}
}

// loggedPayouts settles withdrawals off-platform: the payout row and the
// treasury.withdrawn event are the transfer instruction.
type loggedPayouts struct {
	logger *slog.Logger
}

func (p loggedPayouts) Transfer(_ context.Context, payout entities.Payout) error {
	p.logger.Info("treasury payout scheduled",
		"event", "bootstrap_payout_scheduled",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"payout_id", payout.PayoutID,
		"recipient", payout.Recipient,
		"amount", payout.Amount.String(),
	)
	return nil
}

var (
	_ ports.MembershipOracle  = membershipOracle{}
	_ ports.MarketplaceOracle = marketplaceOracle{}
	_ ports.PayoutGateway     = loggedPayouts{}
)
