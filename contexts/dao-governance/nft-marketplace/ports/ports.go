package ports

import (
	"context"
	"time"

	"cryptodao/contexts/dao-governance/nft-marketplace/domain/entities"
)

type AssetRepository interface {
	// GetSale returns the recorded sale for assetID, if any.
	GetSale(ctx context.Context, assetID int64) (entities.Sale, bool, error)
	// RecordSale claims assetID for the buyer. It fails with ErrNotAvailable
	// when the asset already has an owner.
	RecordSale(ctx context.Context, sale entities.Sale) error
	ListSales(ctx context.Context) ([]entities.Sale, error)
}

type Clock interface {
	Now() time.Time
}
