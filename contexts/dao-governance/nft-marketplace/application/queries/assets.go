package queries

import (
	"context"
	"sort"

	"cryptodao/contexts/dao-governance/nft-marketplace/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/nft-marketplace/domain/errors"
	"cryptodao/contexts/dao-governance/nft-marketplace/ports"

	"github.com/shopspring/decimal"
)

type AssetQueryUseCase struct {
	Assets ports.AssetRepository
	Price  decimal.Decimal
}

func (uc AssetQueryUseCase) GetAsset(ctx context.Context, assetID int64) (entities.Asset, error) {
	if assetID < 0 {
		return entities.Asset{}, domainerrors.ErrInvalidAsset
	}
	asset := entities.Asset{AssetID: assetID, Price: uc.Price}
	sale, found, err := uc.Assets.GetSale(ctx, assetID)
	if err != nil {
		return entities.Asset{}, err
	}
	if found {
		purchasedAt := sale.PurchasedAt
		asset.Owner = sale.Buyer
		asset.PurchasedAt = &purchasedAt
	}
	return asset, nil
}

func (uc AssetQueryUseCase) Available(ctx context.Context, assetID int64) (bool, error) {
	asset, err := uc.GetAsset(ctx, assetID)
	if err != nil {
		return false, err
	}
	return asset.Available(), nil
}

// PriceOf is the same for every asset.
func (uc AssetQueryUseCase) PriceOf(_ context.Context, assetID int64) (decimal.Decimal, error) {
	if assetID < 0 {
		return decimal.Zero, domainerrors.ErrInvalidAsset
	}
	return uc.Price, nil
}

// OwnerOf returns an empty principal for unsold assets.
func (uc AssetQueryUseCase) OwnerOf(ctx context.Context, assetID int64) (string, error) {
	asset, err := uc.GetAsset(ctx, assetID)
	if err != nil {
		return "", err
	}
	return asset.Owner, nil
}

func (uc AssetQueryUseCase) ListSold(ctx context.Context) ([]entities.Sale, error) {
	sales, err := uc.Assets.ListSales(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(sales, func(i, j int) bool {
		return sales[i].AssetID < sales[j].AssetID
	})
	return sales, nil
}
