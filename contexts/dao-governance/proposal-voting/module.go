package proposalvoting

import (
	"log/slog"
	"time"

	httpadapter "cryptodao/contexts/dao-governance/proposal-voting/adapters/http"
	"cryptodao/contexts/dao-governance/proposal-voting/adapters/memory"
	"cryptodao/contexts/dao-governance/proposal-voting/application/commands"
	"cryptodao/contexts/dao-governance/proposal-voting/application/queries"
	"cryptodao/contexts/dao-governance/proposal-voting/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
	Wallets *memory.Wallets
}

type Dependencies struct {
	Ledger         ports.Ledger
	Proposals      ports.ProposalRepository
	Membership     ports.MembershipOracle
	Marketplace    ports.MarketplaceOracle
	Payouts        ports.PayoutGateway
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Telemetry      ports.Telemetry
	VotingWindow   time.Duration
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	proposalUseCase := commands.ProposalUseCase{
		Ledger:         deps.Ledger,
		Proposals:      deps.Proposals,
		Membership:     deps.Membership,
		Marketplace:    deps.Marketplace,
		Idempotency:    deps.Idempotency,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		Telemetry:      deps.Telemetry,
		VotingWindow:   deps.VotingWindow,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	treasuryUseCase := commands.TreasuryUseCase{
		Ledger:         deps.Ledger,
		Proposals:      deps.Proposals,
		Payouts:        deps.Payouts,
		Idempotency:    deps.Idempotency,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		Telemetry:      deps.Telemetry,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Proposals:       proposalUseCase,
			Treasury:        treasuryUseCase,
			ProposalQueries: queries.ProposalQueryUseCase{Proposals: deps.Proposals},
			TreasuryQueries: queries.TreasuryQueryUseCase{Proposals: deps.Proposals},
			Logger:          deps.Logger,
		},
	}
}

type InMemoryOptions struct {
	Treasury     memory.TreasuryConfig
	Membership   ports.MembershipOracle
	Marketplace  ports.MarketplaceOracle
	Telemetry    ports.Telemetry
	VotingWindow time.Duration
}

func NewInMemoryModule(opts InMemoryOptions, logger *slog.Logger) Module {
	store := memory.NewStore(opts.Treasury)
	wallets := memory.NewWallets()
	module := NewModule(Dependencies{
		Ledger:         store,
		Proposals:      store,
		Membership:     opts.Membership,
		Marketplace:    opts.Marketplace,
		Payouts:        wallets,
		Idempotency:    store,
		Clock:          store,
		IDGen:          store,
		Telemetry:      opts.Telemetry,
		VotingWindow:   opts.VotingWindow,
		IdempotencyTTL: 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	module.Wallets = wallets
	return module
}
