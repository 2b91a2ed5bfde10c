package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	marketplacecommands "cryptodao/contexts/dao-governance/nft-marketplace/application/commands"
	"cryptodao/contexts/dao-governance/proposal-voting/application/commands"
	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	governanceerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"
	"cryptodao/contexts/dao-governance/proposal-voting/ports"
	"cryptodao/internal/platform/config"
	"cryptodao/internal/platform/messaging"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{
		ServiceName:          "cryptodao",
		VotingWindow:         5 * time.Minute,
		AssetPrice:           decimal.RequireFromString("0.1"),
		DAOOwner:             "dao-owner",
		DAOIdentity:          "dao-treasury",
		TreasuryInitialFunds: decimal.RequireFromString("0.1"),
		MembershipAdmin:      "dao-owner",
		Seed: config.Seed{
			Members: []config.SeedMember{{Principal: "alice", Units: 1}, {Principal: "bob", Units: 2}},
		},
	}
}

func TestInMemoryStackBuysAssetWithTreasury(t *testing.T) {
	ctx := context.Background()
	s, err := buildStack(ctx, testConfig(), nil, discardLogger())
	require.NoError(t, err)
	defer s.close()

	proposals := s.governance.Handler.Proposals
	created, err := proposals.CreateProposal(ctx, commands.CreateProposalCommand{Caller: "alice", AssetID: 1})
	require.NoError(t, err)
	_, err = proposals.VoteOnProposal(ctx, commands.VoteCommand{Caller: "alice", ProposalID: created.Proposal.ProposalID, Vote: entities.VoteYay})
	require.NoError(t, err)

	s.governance.Store.Advance(5*time.Minute + time.Second)
	result, err := proposals.ExecuteProposal(ctx, commands.ExecuteProposalCommand{Caller: "bob", ProposalID: created.Proposal.ProposalID})
	require.NoError(t, err)
	require.Equal(t, entities.OutcomePassed, result.Proposal.Outcome)
	require.True(t, result.Treasury.Balance.IsZero())

	owner, err := s.marketplace.Handler.Assets.OwnerOf(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "dao-treasury", owner)

	_, err = proposals.CreateProposal(ctx, commands.CreateProposalCommand{Caller: "alice", AssetID: 1})
	require.ErrorIs(t, err, governanceerrors.ErrAssetNotForSale)
}

func TestApplySeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Seed.Deposits = []config.SeedDeposit{{Depositor: "carol", Amount: "0.25"}}

	s, err := buildStack(ctx, cfg, nil, discardLogger())
	require.NoError(t, err)
	require.NoError(t, s.applySeed(ctx, cfg))

	units, err := s.membership.Handler.Query.UnitsHeldBy(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, units, 2)

	treasury, err := s.governance.Handler.TreasuryQueries.Balance(ctx)
	require.NoError(t, err)
	require.True(t, treasury.Balance.Equal(decimal.RequireFromString("0.35")), treasury.Balance.String())
}

func TestMarketplaceOracleMapsErrors(t *testing.T) {
	ctx := context.Background()
	s := buildInMemoryStack(testConfig(), nil, discardLogger())
	oracle := marketplaceOracle{
		assets:    s.marketplace.Handler.Assets,
		purchases: s.marketplace.Handler.Purchases,
	}

	err := oracle.Purchase(ctx, 4, decimal.RequireFromString("0.3"), "dao-treasury")
	require.ErrorIs(t, err, governanceerrors.ErrPurchaseRejected)

	_, err = s.marketplace.Handler.Purchases.Purchase(ctx, marketplacecommands.PurchaseCommand{
		AssetID: 4,
		Payment: decimal.RequireFromString("0.1"),
		Buyer:   "someone-else",
	})
	require.NoError(t, err)

	available, err := oracle.Available(ctx, 4)
	require.NoError(t, err)
	require.False(t, available)

	err = oracle.Purchase(ctx, 4, decimal.RequireFromString("0.1"), "dao-treasury")
	require.ErrorIs(t, err, governanceerrors.ErrAssetNotForSale)
}

func TestOutboxRelayPublishesToBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := discardLogger()
	s, err := buildStack(ctx, testConfig(), nil, logger)
	require.NoError(t, err)
	bus := messaging.NewBus(logger)
	s.publisher = bus

	delivered := make(chan ports.EventEnvelope, 1)
	require.NoError(t, bus.Subscribe(ctx, "dao.proposal.created", func(_ context.Context, event ports.EventEnvelope) error {
		delivered <- event
		return nil
	}))

	_, err = s.governance.Handler.Proposals.CreateProposal(ctx, commands.CreateProposalCommand{Caller: "alice", AssetID: 9})
	require.NoError(t, err)

	published, err := newOutboxRelay(s, logger).RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, published)

	select {
	case event := <-delivered:
		require.Equal(t, "proposal.created", event.EventType)
	case <-time.After(2 * time.Second):
		t.Fatal("proposal.created was not delivered")
	}
}

func TestNormalizeAddr(t *testing.T) {
	require.Equal(t, ":8080", normalizeAddr(""))
	require.Equal(t, ":9000", normalizeAddr("9000"))
	require.Equal(t, ":9000", normalizeAddr(" :9000 "))
}
