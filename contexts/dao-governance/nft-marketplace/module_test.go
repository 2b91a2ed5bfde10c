package nftmarketplace_test

import (
	"context"
	"errors"
	"testing"

	nftmarketplace "cryptodao/contexts/dao-governance/nft-marketplace"
	domainerrors "cryptodao/contexts/dao-governance/nft-marketplace/domain/errors"
	httptransport "cryptodao/contexts/dao-governance/nft-marketplace/transport/http"

	"github.com/shopspring/decimal"
)

func TestMarketplacePurchaseFlow(t *testing.T) {
	module := nftmarketplace.NewInMemoryModule(decimal.Zero, nil)
	ctx := context.Background()

	asset, err := module.Handler.GetAssetHandler(ctx, 1)
	if err != nil {
		t.Fatalf("get asset failed: %v", err)
	}
	if !asset.Available || asset.Price != "0.1" {
		t.Fatalf("expected available asset at default price, got %+v", asset)
	}

	if _, err := module.Handler.PurchaseHandler(ctx, "buyer-1", 1, httptransport.PurchaseRequest{Payment: "0.2"}); !errors.Is(err, domainerrors.ErrWrongPayment) {
		t.Fatalf("expected ErrWrongPayment, got %v", err)
	}

	bought, err := module.Handler.PurchaseHandler(ctx, "buyer-1", 1, httptransport.PurchaseRequest{Payment: "0.10"})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if bought.Available || bought.Owner != "buyer-1" {
		t.Fatalf("expected asset owned by buyer-1, got %+v", bought)
	}

	if _, err := module.Handler.PurchaseHandler(ctx, "buyer-2", 1, httptransport.PurchaseRequest{Payment: "0.1"}); !errors.Is(err, domainerrors.ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", err)
	}

	owner, err := module.Handler.Assets.OwnerOf(ctx, 1)
	if err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if owner != "buyer-1" {
		t.Fatalf("expected buyer-1 to keep the asset, got %q", owner)
	}
}

func TestMarketplaceRejectsBadInput(t *testing.T) {
	module := nftmarketplace.NewInMemoryModule(decimal.RequireFromString("2"), nil)
	ctx := context.Background()

	if _, err := module.Handler.GetAssetHandler(ctx, -1); !errors.Is(err, domainerrors.ErrInvalidAsset) {
		t.Fatalf("expected ErrInvalidAsset, got %v", err)
	}
	if _, err := module.Handler.PurchaseHandler(ctx, " ", 3, httptransport.PurchaseRequest{Payment: "2"}); !errors.Is(err, domainerrors.ErrInvalidBuyer) {
		t.Fatalf("expected ErrInvalidBuyer, got %v", err)
	}
	if _, err := module.Handler.PurchaseHandler(ctx, "buyer", 3, httptransport.PurchaseRequest{Payment: "two"}); !errors.Is(err, domainerrors.ErrWrongPayment) {
		t.Fatalf("expected ErrWrongPayment for malformed payment, got %v", err)
	}

	price, err := module.Handler.Assets.PriceOf(ctx, 3)
	if err != nil {
		t.Fatalf("price lookup failed: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected configured price 2, got %s", price)
	}
}

func TestMarketplaceListSoldSorted(t *testing.T) {
	module := nftmarketplace.NewInMemoryModule(decimal.Zero, nil)
	ctx := context.Background()
	for _, id := range []int64{9, 2, 5} {
		if _, err := module.Handler.PurchaseHandler(ctx, "buyer", id, httptransport.PurchaseRequest{Payment: "0.1"}); err != nil {
			t.Fatalf("purchase %d failed: %v", id, err)
		}
	}
	sold, err := module.Handler.Assets.ListSold(ctx)
	if err != nil {
		t.Fatalf("list sold failed: %v", err)
	}
	if len(sold) != 3 || sold[0].AssetID != 2 || sold[2].AssetID != 9 {
		t.Fatalf("expected sales sorted by asset id, got %+v", sold)
	}
}
