package membershipregistry

import (
	"log/slog"

	httpadapter "cryptodao/contexts/dao-governance/membership-registry/adapters/http"
	"cryptodao/contexts/dao-governance/membership-registry/adapters/memory"
	"cryptodao/contexts/dao-governance/membership-registry/application/commands"
	"cryptodao/contexts/dao-governance/membership-registry/application/queries"
	"cryptodao/contexts/dao-governance/membership-registry/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Units  ports.UnitRepository
	Clock  ports.Clock
	Admin  string
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Units: commands.UnitUseCase{
				Units:  deps.Units,
				Clock:  deps.Clock,
				Admin:  deps.Admin,
				Logger: deps.Logger,
			},
			Query:  queries.UnitQueryUseCase{Units: deps.Units},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(admin string, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Units:  store,
		Clock:  store,
		Admin:  admin,
		Logger: logger,
	})
	module.Store = store
	return module
}
