package bootstrap

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	membershipcommands "cryptodao/contexts/dao-governance/membership-registry/application/commands"
	"cryptodao/contexts/dao-governance/proposal-voting/application/commands"
	"cryptodao/internal/platform/config"

	"github.com/shopspring/decimal"
)

// applySeed tops members up to their seeded unit count and replays seeded
// deposits under fixed idempotency keys, so restarting against the same
// database does not mint or deposit twice.
func (s *stack) applySeed(ctx context.Context, cfg config.Config) error {
	for _, member := range cfg.Seed.Members {
		held, err := s.membership.Handler.Query.UnitsHeldBy(ctx, member.Principal)
		if err != nil {
			return fmt.Errorf("seed member %s: %w", member.Principal, err)
		}
		for i := len(held); i < member.Units; i++ {
			if _, err := s.membership.Handler.Units.Mint(ctx, membershipcommands.MintCommand{
				Actor: cfg.MembershipAdmin,
				Owner: member.Principal,
			}); err != nil {
				return fmt.Errorf("seed member %s: %w", member.Principal, err)
			}
		}
	}

	for i, deposit := range cfg.Seed.Deposits {
		amount, err := decimal.NewFromString(strings.TrimSpace(deposit.Amount))
		if err != nil {
			return fmt.Errorf("seed deposit %d: %w", i, err)
		}
		if _, err := s.governance.Handler.Treasury.Deposit(ctx, commands.DepositCommand{
			Depositor:      deposit.Depositor,
			Amount:         amount,
			IdempotencyKey: "seed-deposit-" + strconv.Itoa(i),
		}); err != nil {
			return fmt.Errorf("seed deposit %d: %w", i, err)
		}
	}

	s.logger.Info("seed applied",
		"event", "bootstrap_seed_applied",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"members", len(cfg.Seed.Members),
		"deposits", len(cfg.Seed.Deposits),
	)
	return nil
}
