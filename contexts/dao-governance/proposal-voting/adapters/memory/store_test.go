package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"
	"cryptodao/contexts/dao-governance/proposal-voting/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(TreasuryConfig{
		Identity:       "dao-treasury",
		Owner:          "dao-owner",
		InitialBalance: decimal.RequireFromString("1"),
	})
}

func TestWithinTxDiscardsWritesOnError(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		id, err := tx.NextProposalID(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.InsertProposal(ctx, entities.Proposal{ProposalID: id, AssetID: 1}))
		treasury, err := tx.GetTreasury(ctx)
		require.NoError(t, err)
		treasury.Balance = decimal.Zero
		require.NoError(t, tx.SaveTreasury(ctx, treasury))
		require.NoError(t, tx.AppendOutbox(ctx, ports.EventEnvelope{EventID: "evt-1", EventType: "proposal.created"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	items, err := store.ListProposals(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
	treasury, err := store.GetTreasury(ctx)
	require.NoError(t, err)
	require.True(t, treasury.Balance.Equal(decimal.RequireFromString("1")))
	pending, err := store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)

	err = store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		id, err := tx.NextProposalID(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(0), id)
		return nil
	})
	require.NoError(t, err)
}

func TestWithinTxReadsOwnWrites(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		require.NoError(t, tx.InsertProposal(ctx, entities.Proposal{ProposalID: 0, AssetID: 3}))
		proposal, err := tx.GetProposal(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, int64(3), proposal.AssetID)

		require.NoError(t, tx.InsertBallot(ctx, entities.Ballot{ProposalID: 0, Voter: "alice", Choice: entities.VoteYay}))
		voted, err := tx.HasVoted(ctx, 0, "alice")
		require.NoError(t, err)
		require.True(t, voted)
		require.ErrorIs(t, tx.InsertBallot(ctx, entities.Ballot{ProposalID: 0, Voter: "alice", Choice: entities.VoteNay}), domainerrors.ErrAlreadyVoted)
		return nil
	})
	require.NoError(t, err)

	ballots, err := store.ListBallots(ctx, 0)
	require.NoError(t, err)
	require.Len(t, ballots, 1)
	_, err = store.ListBallots(ctx, 1)
	require.ErrorIs(t, err, domainerrors.ErrProposalNotFound)
}

func TestSaveTreasuryRejectsNegativeBalance(t *testing.T) {
	store := newTestStore()
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx ports.LedgerTx) error {
		treasury, err := tx.GetTreasury(ctx)
		if err != nil {
			return err
		}
		treasury.Balance = treasury.Balance.Sub(decimal.RequireFromString("1.01"))
		return tx.SaveTreasury(ctx, treasury)
	})
	require.ErrorIs(t, err, domainerrors.ErrInsufficientFunds)
}

func TestOutboxPendingInCommitOrder(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
			return tx.AppendOutbox(ctx, ports.EventEnvelope{EventID: id, EventType: "proposal.vote_cast"})
		}))
	}

	pending, err := store.ListPendingOutbox(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "c", pending[0].OutboxID)
	require.Equal(t, "a", pending[1].OutboxID)

	require.NoError(t, store.MarkOutboxPublished(ctx, "c", time.Now()))
	pending, err = store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "a", pending[0].OutboxID)

	require.ErrorIs(t, store.MarkOutboxPublished(ctx, "missing", time.Now()), domainerrors.ErrConflict)
}

func TestIdempotencyExpiry(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(ctx, ports.IdempotencyRecord{
		Key:         "k",
		RequestHash: "h",
		ResourceID:  "0",
		ExpiresAt:   now.Add(time.Hour),
	}))

	_, found, err := store.Get(ctx, "k", now)
	require.NoError(t, err)
	require.True(t, found)

	require.ErrorIs(t, store.Put(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "other", ResourceID: "0"}), domainerrors.ErrIdempotencyConflict)

	_, found, err = store.Get(ctx, "k", now.Add(2*time.Hour))
	require.NoError(t, err)
	require.False(t, found)
}

func TestStoreClock(t *testing.T) {
	store := newTestStore()
	pinned := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store.SetNow(pinned)
	require.Equal(t, pinned, store.Now())
	store.Advance(90 * time.Second)
	require.Equal(t, pinned.Add(90*time.Second), store.Now())
}

func TestWalletsTransfer(t *testing.T) {
	wallets := NewWallets()
	ctx := context.Background()
	require.NoError(t, wallets.Transfer(ctx, entities.Payout{Recipient: "owner", Amount: decimal.RequireFromString("0.4")}))
	require.NoError(t, wallets.Transfer(ctx, entities.Payout{Recipient: "owner", Amount: decimal.RequireFromString("0.6")}))
	require.True(t, wallets.BalanceOf("owner").Equal(decimal.RequireFromString("1")))

	err := wallets.Transfer(ctx, entities.Payout{Recipient: " ", Amount: decimal.RequireFromString("1")})
	require.ErrorIs(t, err, domainerrors.ErrPayoutTransferRejected)
}

func TestWithinTxSerializesConcurrentWriters(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	const writers = 32

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
				id, err := tx.NextProposalID(ctx)
				if err != nil {
					return err
				}
				if err := tx.InsertProposal(ctx, entities.Proposal{ProposalID: id, AssetID: id}); err != nil {
					return err
				}
				treasury, err := tx.GetTreasury(ctx)
				if err != nil {
					return err
				}
				treasury.Balance = treasury.Balance.Sub(decimal.RequireFromString("0.01"))
				return tx.SaveTreasury(ctx, treasury)
			})
			if err != nil {
				t.Errorf("within tx: %v", err)
			}
		}()
	}
	wg.Wait()

	proposals, err := store.ListProposals(ctx)
	require.NoError(t, err)
	require.Len(t, proposals, writers)
	ids := make([]int64, 0, writers)
	for _, proposal := range proposals {
		ids = append(ids, proposal.ProposalID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i, id := range ids {
		require.Equal(t, int64(i), id)
	}

	treasury, err := store.GetTreasury(ctx)
	require.NoError(t, err)
	require.True(t, treasury.Balance.Equal(decimal.RequireFromString("0.68")), treasury.Balance.String())
}

func TestLedgerIdempotencyCommitsWithTransaction(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetNow(now)
	record := ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", ResourceID: "0", ExpiresAt: now.Add(time.Hour)}

	err := store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		require.NoError(t, tx.PutIdempotency(ctx, record))
		got, found, err := tx.GetIdempotency(ctx, "k1", now)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "h1", got.RequestHash)
		return errors.New("rollback")
	})
	require.Error(t, err)
	_, found, err := store.Get(ctx, "k1", now)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		return tx.PutIdempotency(ctx, record)
	}))
	got, found, err := store.Get(ctx, "k1", now)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "0", got.ResourceID)

	err = store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		return tx.PutIdempotency(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h2", ResourceID: "1", ExpiresAt: now.Add(time.Hour)})
	})
	require.ErrorIs(t, err, domainerrors.ErrIdempotencyConflict)

	store.Advance(2 * time.Hour)
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx ports.LedgerTx) error {
		_, found, err := tx.GetIdempotency(ctx, "k1", store.Now())
		require.NoError(t, err)
		require.False(t, found)
		return tx.PutIdempotency(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h2", ResourceID: "1", ExpiresAt: store.Now().Add(time.Hour)})
	}))
}
