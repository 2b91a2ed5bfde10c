package workers_test

import (
	"context"
	"errors"
	"testing"

	"cryptodao/contexts/dao-governance/proposal-voting/adapters/memory"
	"cryptodao/contexts/dao-governance/proposal-voting/application/workers"
	"cryptodao/contexts/dao-governance/proposal-voting/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	topics []string
	events []ports.EventEnvelope
	failAt int
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if p.failAt > 0 && len(p.topics)+1 == p.failAt {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func seedOutbox(t *testing.T, store *memory.Store, events ...ports.EventEnvelope) {
	t.Helper()
	for _, event := range events {
		err := store.WithinTx(context.Background(), func(ctx context.Context, tx ports.LedgerTx) error {
			return tx.AppendOutbox(ctx, event)
		})
		require.NoError(t, err)
	}
}

func TestOutboxRelayPublishesInOrder(t *testing.T) {
	store := memory.NewStore(memory.TreasuryConfig{Owner: "owner", InitialBalance: decimal.Zero})
	seedOutbox(t, store,
		ports.EventEnvelope{EventID: "e1", EventType: "proposal.created", PartitionKey: "0"},
		ports.EventEnvelope{EventID: "e2", EventType: "proposal.vote_cast", PartitionKey: "0"},
	)
	publisher := &recordingPublisher{}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, Clock: store, TopicPrefix: "dao."}

	published, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, published)
	require.Equal(t, []string{"dao.proposal.created", "dao.proposal.vote_cast"}, publisher.topics)
	require.Equal(t, "e1", publisher.events[0].EventID)

	published, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	require.Zero(t, published)
}

func TestOutboxRelayStopsAtFirstFailure(t *testing.T) {
	store := memory.NewStore(memory.TreasuryConfig{Owner: "owner", InitialBalance: decimal.Zero})
	seedOutbox(t, store,
		ports.EventEnvelope{EventID: "e1", EventType: "treasury.deposited"},
		ports.EventEnvelope{EventID: "e2", EventType: "treasury.deposited"},
		ports.EventEnvelope{EventID: "e3", EventType: "treasury.withdrawn"},
	)
	publisher := &recordingPublisher{failAt: 2}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}

	published, err := relay.RunOnce(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, published)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "e2", pending[0].OutboxID)

	publisher.failAt = 0
	published, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, published)
	require.Equal(t, []string{"treasury.deposited", "treasury.deposited", "treasury.withdrawn"}, publisher.topics)
}
