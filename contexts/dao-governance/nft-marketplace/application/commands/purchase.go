package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "cryptodao/contexts/dao-governance/nft-marketplace/application"
	"cryptodao/contexts/dao-governance/nft-marketplace/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/nft-marketplace/domain/errors"
	"cryptodao/contexts/dao-governance/nft-marketplace/ports"

	"github.com/shopspring/decimal"
)

type PurchaseCommand struct {
	AssetID int64
	Payment decimal.Decimal
	Buyer   string
}

type PurchaseUseCase struct {
	Assets ports.AssetRepository
	Clock  ports.Clock
	Price  decimal.Decimal
	Logger *slog.Logger
}

// Purchase transfers an unowned asset to the buyer. The payment must equal
// the uniform price exactly.
func (uc PurchaseUseCase) Purchase(ctx context.Context, cmd PurchaseCommand) (entities.Asset, error) {
	logger := application.ResolveLogger(uc.Logger)
	buyer := strings.TrimSpace(cmd.Buyer)
	if cmd.AssetID < 0 {
		return entities.Asset{}, domainerrors.ErrInvalidAsset
	}
	if buyer == "" {
		return entities.Asset{}, domainerrors.ErrInvalidBuyer
	}
	if !cmd.Payment.Equal(uc.Price) {
		logger.Warn("marketplace purchase rejected",
			"event", "marketplace_purchase_wrong_payment",
			"module", "dao-governance/nft-marketplace",
			"layer", "application",
			"asset_id", cmd.AssetID,
			"buyer", buyer,
			"payment", cmd.Payment.String(),
			"price", uc.Price.String(),
		)
		return entities.Asset{}, domainerrors.ErrWrongPayment
	}

	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	sale := entities.Sale{
		AssetID:     cmd.AssetID,
		Buyer:       buyer,
		Payment:     cmd.Payment,
		PurchasedAt: now,
	}
	if err := uc.Assets.RecordSale(ctx, sale); err != nil {
		logger.Warn("marketplace purchase failed",
			"event", "marketplace_purchase_failed",
			"module", "dao-governance/nft-marketplace",
			"layer", "application",
			"asset_id", cmd.AssetID,
			"buyer", buyer,
			"error", err.Error(),
		)
		return entities.Asset{}, err
	}

	logger.Info("marketplace asset purchased",
		"event", "marketplace_asset_purchased",
		"module", "dao-governance/nft-marketplace",
		"layer", "application",
		"asset_id", cmd.AssetID,
		"buyer", buyer,
		"payment", cmd.Payment.String(),
	)
	purchasedAt := sale.PurchasedAt
	return entities.Asset{
		AssetID:     cmd.AssetID,
		Owner:       buyer,
		Price:       uc.Price,
		PurchasedAt: &purchasedAt,
	}, nil
}
