package proposalvoting_test

import (
	"context"
	"testing"
	"time"

	proposalvoting "cryptodao/contexts/dao-governance/proposal-voting"
	"cryptodao/contexts/dao-governance/proposal-voting/adapters/memory"
	domainerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"
	httptransport "cryptodao/contexts/dao-governance/proposal-voting/transport/http"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type staticMembership map[string][]int64

func (m staticMembership) UnitsHeldBy(_ context.Context, principal string) ([]int64, error) {
	return m[principal], nil
}

type singleOwnerMarket struct {
	owners map[int64]string
}

func (m *singleOwnerMarket) Available(_ context.Context, assetID int64) (bool, error) {
	_, sold := m.owners[assetID]
	return !sold, nil
}

func (m *singleOwnerMarket) PriceOf(context.Context, int64) (decimal.Decimal, error) {
	return decimal.RequireFromString("0.1"), nil
}

func (m *singleOwnerMarket) Purchase(_ context.Context, assetID int64, _ decimal.Decimal, buyer string) error {
	if _, sold := m.owners[assetID]; sold {
		return domainerrors.ErrAssetNotForSale
	}
	m.owners[assetID] = buyer
	return nil
}

func newModule(t *testing.T, funds string) (proposalvoting.Module, *singleOwnerMarket) {
	t.Helper()
	market := &singleOwnerMarket{owners: make(map[int64]string)}
	module := proposalvoting.NewInMemoryModule(proposalvoting.InMemoryOptions{
		Treasury: memory.TreasuryConfig{
			Identity:       "dao-treasury",
			Owner:          "dao-owner",
			InitialBalance: decimal.RequireFromString(funds),
		},
		Membership:  staticMembership{"alice": {1}, "bob": {2}},
		Marketplace: market,
	}, nil)
	module.Store.SetNow(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	return module, market
}

func TestGovernanceHandlersEndToEnd(t *testing.T) {
	module, market := newModule(t, "0.1")
	ctx := context.Background()
	assetID := int64(1)

	created, err := module.Handler.CreateProposalHandler(ctx, "alice", "", httptransport.CreateProposalRequest{AssetID: &assetID})
	require.NoError(t, err)
	require.Equal(t, int64(0), created.ProposalID)
	require.Equal(t, "pending", created.Outcome)

	voted, err := module.Handler.VoteHandler(ctx, "alice", created.ProposalID, httptransport.VoteRequest{Vote: " YAY "})
	require.NoError(t, err)
	require.Equal(t, int64(1), voted.YayVotes)

	module.Store.Advance(5*time.Minute + time.Second)
	executed, err := module.Handler.ExecuteProposalHandler(ctx, "bob", created.ProposalID)
	require.NoError(t, err)
	require.True(t, executed.Proposal.Executed)
	require.Equal(t, "passed", executed.Proposal.Outcome)
	require.Equal(t, "0", executed.TreasuryBalance)
	require.Equal(t, "dao-treasury", market.owners[1])

	detail, err := module.Handler.GetProposalHandler(ctx, created.ProposalID)
	require.NoError(t, err)
	require.Len(t, detail.Ballots, 1)
	require.Equal(t, "alice", detail.Ballots[0].Voter)
	require.NotNil(t, detail.ExecutedAt)

	treasury, err := module.Handler.TreasuryHandler(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "0", treasury.Balance)
	require.Len(t, treasury.RecentEntries, 1)
	require.Equal(t, "purchase", treasury.RecentEntries[0].Kind)
}

func TestGovernanceHandlersValidateInput(t *testing.T) {
	module, _ := newModule(t, "0")
	ctx := context.Background()

	_, err := module.Handler.CreateProposalHandler(ctx, "alice", "", httptransport.CreateProposalRequest{})
	require.ErrorIs(t, err, domainerrors.ErrInvalidProposalInput)

	_, err = module.Handler.DepositHandler(ctx, "dave", "", httptransport.DepositRequest{Amount: "lots"})
	require.ErrorIs(t, err, domainerrors.ErrInvalidAmount)

	deposit, err := module.Handler.DepositHandler(ctx, "dave", "", httptransport.DepositRequest{Amount: "0.3"})
	require.NoError(t, err)
	require.Equal(t, "0.3", deposit.Balance)

	_, err = module.Handler.WithdrawHandler(ctx, "alice")
	require.ErrorIs(t, err, domainerrors.ErrNotOwner)

	withdrawn, err := module.Handler.WithdrawHandler(ctx, "dao-owner")
	require.NoError(t, err)
	require.Equal(t, "0.3", withdrawn.Amount)
	require.Equal(t, "0", withdrawn.Balance)
	require.True(t, module.Wallets.BalanceOf("dao-owner").Equal(decimal.RequireFromString("0.3")))
}

func TestListProposalsOrderedByID(t *testing.T) {
	module, _ := newModule(t, "0")
	ctx := context.Background()
	for _, asset := range []int64{7, 3, 5} {
		assetID := asset
		_, err := module.Handler.CreateProposalHandler(ctx, "bob", "", httptransport.CreateProposalRequest{AssetID: &assetID})
		require.NoError(t, err)
	}

	list, err := module.Handler.ListProposalsHandler(ctx)
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	for i, item := range list.Items {
		require.Equal(t, int64(i), item.ProposalID)
	}
	require.Equal(t, int64(7), list.Items[0].AssetID)
}
