package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"cryptodao/contexts/dao-governance/proposal-voting/adapters/memory"
	"cryptodao/contexts/dao-governance/proposal-voting/application/commands"
	domainerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"

	"github.com/shopspring/decimal"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeMembership map[string][]int64

func (f fakeMembership) UnitsHeldBy(_ context.Context, principal string) ([]int64, error) {
	return f[principal], nil
}

type fakeMarketplace struct {
	mu          sync.Mutex
	price       decimal.Decimal
	owners      map[int64]string
	purchaseErr error
	purchases   int
}

func newFakeMarketplace() *fakeMarketplace {
	return &fakeMarketplace{
		price:  decimal.RequireFromString("0.1"),
		owners: make(map[int64]string),
	}
}

func (m *fakeMarketplace) Available(_ context.Context, assetID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, sold := m.owners[assetID]
	return !sold, nil
}

func (m *fakeMarketplace) PriceOf(_ context.Context, _ int64) (decimal.Decimal, error) {
	return m.price, nil
}

func (m *fakeMarketplace) Purchase(_ context.Context, assetID int64, payment decimal.Decimal, buyer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.purchaseErr != nil {
		return m.purchaseErr
	}
	if _, sold := m.owners[assetID]; sold {
		return domainerrors.ErrAssetNotForSale
	}
	if !payment.Equal(m.price) {
		return domainerrors.ErrPurchaseRejected
	}
	m.owners[assetID] = buyer
	m.purchases++
	return nil
}

func (m *fakeMarketplace) ownerOf(assetID int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owners[assetID]
}

type fixture struct {
	store     *memory.Store
	market    *fakeMarketplace
	wallets   *memory.Wallets
	proposals commands.ProposalUseCase
	treasury  commands.TreasuryUseCase
}

func newFixture(t *testing.T, balance string) fixture {
	t.Helper()
	store := memory.NewStore(memory.TreasuryConfig{
		Identity:       "dao-treasury",
		Owner:          "dao-owner",
		InitialBalance: decimal.RequireFromString(balance),
	})
	store.SetNow(baseTime)
	market := newFakeMarketplace()
	wallets := memory.NewWallets()
	members := fakeMembership{
		"alice": {1},
		"bob":   {2},
		"carol": {3, 4},
	}
	return fixture{
		store:   store,
		market:  market,
		wallets: wallets,
		proposals: commands.ProposalUseCase{
			Ledger:       store,
			Proposals:    store,
			Membership:   members,
			Marketplace:  market,
			Idempotency:  store,
			Clock:        store,
			IDGen:        store,
			VotingWindow: 5 * time.Minute,
		},
		treasury: commands.TreasuryUseCase{
			Ledger:      store,
			Proposals:   store,
			Payouts:     wallets,
			Idempotency: store,
			Clock:       store,
			IDGen:       store,
		},
	}
}

func (f fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	treasury, err := f.store.GetTreasury(context.Background())
	if err != nil {
		t.Fatalf("get treasury failed: %v", err)
	}
	return treasury.Balance
}

func mustDecimal(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}
