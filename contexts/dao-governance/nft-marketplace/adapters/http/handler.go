package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"cryptodao/contexts/dao-governance/nft-marketplace/application/commands"
	"cryptodao/contexts/dao-governance/nft-marketplace/application/queries"
	"cryptodao/contexts/dao-governance/nft-marketplace/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/nft-marketplace/domain/errors"
	httptransport "cryptodao/contexts/dao-governance/nft-marketplace/transport/http"

	"github.com/shopspring/decimal"
)

type Handler struct {
	Purchases commands.PurchaseUseCase
	Assets    queries.AssetQueryUseCase
	Logger    *slog.Logger
}

func (h Handler) GetAssetHandler(ctx context.Context, assetID int64) (httptransport.AssetResponse, error) {
	asset, err := h.Assets.GetAsset(ctx, assetID)
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	return mapAsset(asset), nil
}

func (h Handler) PurchaseHandler(
	ctx context.Context,
	buyer string,
	assetID int64,
	req httptransport.PurchaseRequest,
) (httptransport.AssetResponse, error) {
	payment, err := decimal.NewFromString(strings.TrimSpace(req.Payment))
	if err != nil {
		return httptransport.AssetResponse{}, domainerrors.ErrWrongPayment
	}
	asset, err := h.Purchases.Purchase(ctx, commands.PurchaseCommand{
		AssetID: assetID,
		Payment: payment,
		Buyer:   buyer,
	})
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	return mapAsset(asset), nil
}

func mapAsset(asset entities.Asset) httptransport.AssetResponse {
	resp := httptransport.AssetResponse{
		AssetID:   asset.AssetID,
		Available: asset.Available(),
		Price:     asset.Price.String(),
		Owner:     asset.Owner,
	}
	if asset.PurchasedAt != nil {
		purchasedAt := asset.PurchasedAt.UTC().Format(time.RFC3339)
		resp.PurchasedAt = &purchasedAt
	}
	return resp
}
