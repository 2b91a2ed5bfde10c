package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string
	NATSURL     string

	PostgresMaxOpenConns    int
	PostgresConnMaxLifetime time.Duration

	VotingWindow         time.Duration
	AssetPrice           decimal.Decimal
	DAOOwner             string
	DAOIdentity          string
	TreasuryInitialFunds decimal.Decimal
	MembershipAdmin      string
	OutboxPollInterval   time.Duration

	SeedFile string
	Seed     Seed
}

// Seed describes initial state for a fresh deployment: members receive the
// listed number of governance units at startup.
type Seed struct {
	Members  []SeedMember  `yaml:"members"`
	Deposits []SeedDeposit `yaml:"deposits"`
}

type SeedMember struct {
	Principal string `yaml:"principal"`
	Units     int    `yaml:"units"`
}

type SeedDeposit struct {
	Depositor string `yaml:"depositor"`
	Amount    string `yaml:"amount"`
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "cryptodao"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	window, err := envDuration("VOTING_WINDOW", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}
	pollInterval, err := envDuration("OUTBOX_POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	price, err := envDecimal("ASSET_PRICE", decimal.RequireFromString("0.1"))
	if err != nil {
		return Config{}, err
	}
	if !price.IsPositive() {
		return Config{}, fmt.Errorf("ASSET_PRICE must be positive, got %s", price.String())
	}
	maxOpenConns, err := envInt("POSTGRES_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := envDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return Config{}, err
	}
	funds, err := envDecimal("TREASURY_INITIAL_FUNDS", decimal.Zero)
	if err != nil {
		return Config{}, err
	}
	if funds.IsNegative() {
		return Config{}, fmt.Errorf("TREASURY_INITIAL_FUNDS must not be negative, got %s", funds.String())
	}

	owner := envString("DAO_OWNER", "dao-owner")
	cfg := Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		NATSURL:     strings.TrimSpace(os.Getenv("NATS_URL")),

		PostgresMaxOpenConns:    maxOpenConns,
		PostgresConnMaxLifetime: connMaxLifetime,

		VotingWindow:         window,
		AssetPrice:           price,
		DAOOwner:             owner,
		DAOIdentity:          envString("DAO_IDENTITY", "dao-treasury"),
		TreasuryInitialFunds: funds,
		MembershipAdmin:      envString("MEMBERSHIP_ADMIN", owner),
		OutboxPollInterval:   pollInterval,

		SeedFile: strings.TrimSpace(os.Getenv("SEED_FILE")),
	}
	if cfg.SeedFile != "" {
		seed, err := LoadSeed(cfg.SeedFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Seed = seed
	}
	return cfg, nil
}

// LoadSeed reads a YAML seed file.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed file: %w", err)
	}
	for i, member := range seed.Members {
		member.Principal = strings.TrimSpace(member.Principal)
		if member.Principal == "" {
			return Seed{}, fmt.Errorf("seed member %d: principal is required", i)
		}
		if member.Units <= 0 {
			member.Units = 1
		}
		seed.Members[i] = member
	}
	for i, deposit := range seed.Deposits {
		amount, err := decimal.NewFromString(strings.TrimSpace(deposit.Amount))
		if err != nil || !amount.IsPositive() {
			return Seed{}, fmt.Errorf("seed deposit %d: amount must be a positive decimal", i)
		}
		if strings.TrimSpace(deposit.Depositor) == "" {
			return Seed{}, fmt.Errorf("seed deposit %d: depositor is required", i)
		}
	}
	return seed, nil
}

func envString(name string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, raw)
	}
	return value, nil
}

func envInt(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, raw)
	}
	return value, nil
}

func envDecimal(name string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}
