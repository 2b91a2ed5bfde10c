package nftmarketplace

import (
	"log/slog"

	httpadapter "cryptodao/contexts/dao-governance/nft-marketplace/adapters/http"
	"cryptodao/contexts/dao-governance/nft-marketplace/adapters/memory"
	"cryptodao/contexts/dao-governance/nft-marketplace/application/commands"
	"cryptodao/contexts/dao-governance/nft-marketplace/application/queries"
	"cryptodao/contexts/dao-governance/nft-marketplace/ports"

	"github.com/shopspring/decimal"
)

// DefaultPrice is the uniform asset price when none is configured.
var DefaultPrice = decimal.RequireFromString("0.1")

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Assets ports.AssetRepository
	Clock  ports.Clock
	Price  decimal.Decimal
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	price := deps.Price
	if !price.IsPositive() {
		price = DefaultPrice
	}
	return Module{
		Handler: httpadapter.Handler{
			Purchases: commands.PurchaseUseCase{
				Assets: deps.Assets,
				Clock:  deps.Clock,
				Price:  price,
				Logger: deps.Logger,
			},
			Assets: queries.AssetQueryUseCase{
				Assets: deps.Assets,
				Price:  price,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(price decimal.Decimal, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Assets: store,
		Clock:  store,
		Price:  price,
		Logger: logger,
	})
	module.Store = store
	return module
}
