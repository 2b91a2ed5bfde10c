package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	membershipregistry "cryptodao/contexts/dao-governance/membership-registry"
	membershippostgres "cryptodao/contexts/dao-governance/membership-registry/adapters/postgres"
	nftmarketplace "cryptodao/contexts/dao-governance/nft-marketplace"
	marketplacepostgres "cryptodao/contexts/dao-governance/nft-marketplace/adapters/postgres"
	proposalvoting "cryptodao/contexts/dao-governance/proposal-voting"
	"cryptodao/contexts/dao-governance/proposal-voting/adapters/memory"
	governancepostgres "cryptodao/contexts/dao-governance/proposal-voting/adapters/postgres"
	"cryptodao/contexts/dao-governance/proposal-voting/application/workers"
	"cryptodao/contexts/dao-governance/proposal-voting/ports"
	eventsv1 "cryptodao/contracts/events/v1"
	"cryptodao/internal/platform/config"
	"cryptodao/internal/platform/db"
	"cryptodao/internal/platform/httpserver"
	"cryptodao/internal/platform/messaging"
	"cryptodao/internal/platform/metrics"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const (
	topicPrefix     = "dao."
	shutdownTimeout = 10 * time.Second
)

// Options carries command-line overrides applied on top of the environment.
type Options struct {
	SeedFile string
}

type APIApp struct {
	server   *httpserver.Server
	stack    *stack
	relay    *workers.OutboxRelay
	interval time.Duration
	logger   *slog.Logger
}

type WorkerApp struct {
	stack        *stack
	outboxRelay  workers.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

type eventPublisher interface {
	ports.EventPublisher
	Close() error
}

// stack is the wired set of modules shared by both processes.
type stack struct {
	governance  proposalvoting.Module
	marketplace nftmarketplace.Module
	membership  membershipregistry.Module
	outbox      ports.OutboxRepository
	clock       ports.Clock
	postgres    *db.Postgres
	publisher   eventPublisher
	logger      *slog.Logger
}

func BuildAPI(opts Options) (*APIApp, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	governanceMetrics, apiMetrics := metrics.Prom()
	s, err := buildStack(context.Background(), cfg, governanceMetrics, logger)
	if err != nil {
		return nil, err
	}

	app := &APIApp{
		server: httpserver.New(httpserver.Modules{
			Governance:  s.governance,
			Marketplace: s.marketplace,
			Membership:  s.membership,
		}, apiMetrics, logger, normalizeAddr(cfg.HTTPPort)),
		stack:    s,
		interval: cfg.OutboxPollInterval,
		logger:   logger,
	}
	// In-memory state is private to this process, so the relay runs here.
	if s.postgres == nil {
		publisher, err := newPublisher(cfg, "api", logger)
		if err != nil {
			_ = s.close()
			return nil, err
		}
		s.publisher = publisher
		if bus, ok := publisher.(*messaging.Bus); ok {
			subscribeAuditLog(bus, logger)
		}
		relay := newOutboxRelay(s, logger)
		app.relay = &relay
	}
	return app, nil
}

func BuildWorker(opts Options) (*WorkerApp, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required: in-memory deployments relay events inside the api process")
	}

	governanceMetrics, _ := metrics.Prom()
	s, err := buildStack(context.Background(), cfg, governanceMetrics, logger)
	if err != nil {
		return nil, err
	}
	publisher, err := newPublisher(cfg, "worker", logger)
	if err != nil {
		_ = s.close()
		return nil, err
	}
	s.publisher = publisher

	return &WorkerApp{
		stack:        s,
		outboxRelay:  newOutboxRelay(s, logger),
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if path := strings.TrimSpace(opts.SeedFile); path != "" {
		seed, err := config.LoadSeed(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg.SeedFile = path
		cfg.Seed = seed
	}
	return cfg, nil
}

func buildStack(
	ctx context.Context,
	cfg config.Config,
	telemetry ports.Telemetry,
	logger *slog.Logger,
) (*stack, error) {
	var (
		s   *stack
		err error
	)
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		s = buildInMemoryStack(cfg, telemetry, logger)
	} else {
		s, err = buildPostgresStack(ctx, cfg, telemetry, logger)
		if err != nil {
			return nil, err
		}
	}

	if err := s.applySeed(ctx, cfg); err != nil {
		_ = s.close()
		return nil, err
	}
	if treasury, err := s.governance.Handler.TreasuryQueries.Balance(ctx); err == nil && telemetry != nil {
		telemetry.TreasuryBalance(treasury.Balance)
	}
	return s, nil
}

func buildInMemoryStack(cfg config.Config, telemetry ports.Telemetry, logger *slog.Logger) *stack {
	membership := membershipregistry.NewInMemoryModule(cfg.MembershipAdmin, logger)
	marketplace := nftmarketplace.NewInMemoryModule(cfg.AssetPrice, logger)
	governance := proposalvoting.NewInMemoryModule(proposalvoting.InMemoryOptions{
		Treasury: memory.TreasuryConfig{
			Identity:       cfg.DAOIdentity,
			Owner:          cfg.DAOOwner,
			InitialBalance: cfg.TreasuryInitialFunds,
		},
		Membership: membershipOracle{units: membership.Handler.Query},
		Marketplace: marketplaceOracle{
			assets:    marketplace.Handler.Assets,
			purchases: marketplace.Handler.Purchases,
		},
		Telemetry:    telemetry,
		VotingWindow: cfg.VotingWindow,
	}, logger)

	logger.Info("using in-memory storage",
		"event", "bootstrap_in_memory_storage",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return &stack{
		governance:  governance,
		marketplace: marketplace,
		membership:  membership,
		outbox:      governance.Store,
		clock:       governance.Store,
		logger:      logger,
	}
}

func buildPostgresStack(
	ctx context.Context,
	cfg config.Config,
	telemetry ports.Telemetry,
	logger *slog.Logger,
) (*stack, error) {
	pg, err := db.Connect(ctx, db.Options{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.PostgresMaxOpenConns,
		ConnMaxLifetime: cfg.PostgresConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	membershipRepo := membershippostgres.NewRepository(pg.DB, logger)
	marketplaceRepo := marketplacepostgres.NewRepository(pg.DB, logger)
	governanceRepo := governancepostgres.NewRepository(pg.DB, logger)
	for _, migrate := range []func(context.Context) error{
		membershipRepo.Migrate,
		marketplaceRepo.Migrate,
		governanceRepo.Migrate,
	} {
		if err := migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
	}
	if err := governanceRepo.EnsureTreasury(ctx, governancepostgres.TreasuryConfig{
		Identity:       cfg.DAOIdentity,
		Owner:          cfg.DAOOwner,
		InitialBalance: cfg.TreasuryInitialFunds,
	}); err != nil {
		_ = pg.Close()
		return nil, err
	}

	clock := governancepostgres.SystemClock{}
	membership := membershipregistry.NewModule(membershipregistry.Dependencies{
		Units:  membershipRepo,
		Clock:  clock,
		Admin:  cfg.MembershipAdmin,
		Logger: logger,
	})
	marketplace := nftmarketplace.NewModule(nftmarketplace.Dependencies{
		Assets: marketplaceRepo,
		Clock:  clock,
		Price:  cfg.AssetPrice,
		Logger: logger,
	})
	governance := proposalvoting.NewModule(proposalvoting.Dependencies{
		Ledger:     governanceRepo,
		Proposals:  governanceRepo,
		Membership: membershipOracle{units: membership.Handler.Query},
		Marketplace: marketplaceOracle{
			assets:    marketplace.Handler.Assets,
			purchases: marketplace.Handler.Purchases,
		},
		Payouts:        loggedPayouts{logger: logger},
		Idempotency:    governanceRepo,
		Clock:          clock,
		IDGen:          governancepostgres.UUIDGenerator{},
		Telemetry:      telemetry,
		VotingWindow:   cfg.VotingWindow,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})

	return &stack{
		governance:  governance,
		marketplace: marketplace,
		membership:  membership,
		outbox:      governanceRepo,
		clock:       clock,
		postgres:    pg,
		logger:      logger,
	}, nil
}

func newPublisher(cfg config.Config, process string, logger *slog.Logger) (eventPublisher, error) {
	if cfg.NATSURL == "" {
		return messaging.NewBus(logger), nil
	}
	return messaging.ConnectNATS(cfg.NATSURL, cfg.ServiceName+"-"+process, logger)
}

func newOutboxRelay(s *stack, logger *slog.Logger) workers.OutboxRelay {
	return workers.OutboxRelay{
		Outbox:      s.outbox,
		Publisher:   s.publisher,
		Clock:       s.clock,
		TopicPrefix: topicPrefix,
		BatchSize:   100,
		Logger:      logger,
	}
}

// subscribeAuditLog records every governance event delivered on the
// in-process bus.
func subscribeAuditLog(bus *messaging.Bus, logger *slog.Logger) {
	for _, eventType := range eventsv1.GovernanceEventTypes() {
		_ = bus.Subscribe(context.Background(), topicPrefix+eventType, func(_ context.Context, event ports.EventEnvelope) error {
			logger.Info("governance event delivered",
				"event", "bootstrap_governance_event",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"event_type", event.EventType,
				"event_id", event.EventID,
				"partition_key", event.PartitionKey,
			)
			return nil
		})
	}
}

// Run serves HTTP until ctx is cancelled, then shuts the server down.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"in_process_relay", a.relay != nil,
	)
	if a.relay != nil {
		go runRelay(ctx, *a.relay, a.interval, a.logger)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (a *APIApp) Close() error {
	return a.stack.close()
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)
	runRelay(ctx, w.outboxRelay, w.pollInterval, w.logger)
	return nil
}

func (w *WorkerApp) Close() error {
	return w.stack.close()
}

// runRelay drains the outbox until ctx is done. Publish failures are retried
// on the next tick.
func runRelay(ctx context.Context, relay workers.OutboxRelay, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := relay.RunOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("outbox relay cycle failed",
				"event", "bootstrap_outbox_relay_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *stack) close() error {
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if s.postgres != nil {
		errs = append(errs, s.postgres.Close())
	}
	return errors.Join(errs...)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
