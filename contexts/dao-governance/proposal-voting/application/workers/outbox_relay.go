package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "cryptodao/contexts/dao-governance/proposal-voting/application"
	"cryptodao/contexts/dao-governance/proposal-voting/ports"
)

// OutboxRelay forwards governance events written inside ledger transactions
// to the event bus.
type OutboxRelay struct {
	Outbox      ports.OutboxRepository
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	TopicPrefix string
	BatchSize   int
	Logger      *slog.Logger
}

// RunOnce publishes at most one batch in creation order. A row is marked
// published only after the broker accepted it, and the batch stops at the
// first failure so ordering per proposal is preserved on retry.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("governance outbox list failed",
			"event", "dao_outbox_list_failed",
			"module", "dao-governance/proposal-voting",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}
	if len(pending) == 0 {
		logger.Debug("governance outbox relay found no pending rows",
			"event", "dao_outbox_relay_noop",
			"module", "dao-governance/proposal-voting",
			"layer", "worker",
		)
		return 0, nil
	}

	published := 0
	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("governance outbox decode failed",
				"event", "dao_outbox_decode_failed",
				"module", "dao-governance/proposal-voting",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, err
		}
		topic := r.topicFor(event, row)
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("governance outbox publish failed",
				"event", "dao_outbox_publish_failed",
				"module", "dao-governance/proposal-voting",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_id", event.EventID,
				"topic", topic,
				"error", err.Error(),
			)
			return published, err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, r.now()); err != nil {
			logger.Error("governance outbox mark published failed",
				"event", "dao_outbox_mark_published_failed",
				"module", "dao-governance/proposal-voting",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, err
		}
		published++
	}

	logger.Info("governance outbox relay cycle completed",
		"event", "dao_outbox_relay_completed",
		"module", "dao-governance/proposal-voting",
		"layer", "worker",
		"published_count", published,
	)
	return published, nil
}

func (r OutboxRelay) topicFor(event ports.EventEnvelope, row ports.OutboxMessage) string {
	topic := strings.TrimSpace(event.EventType)
	if topic == "" {
		topic = row.EventType
	}
	return r.TopicPrefix + topic
}

func (r OutboxRelay) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}
