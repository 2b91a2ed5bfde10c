package commands

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"cryptodao/contexts/dao-governance/proposal-voting/ports"
	eventsv1 "cryptodao/contracts/events/v1"
)

const (
	eventProposalCreated   = eventsv1.ProposalCreated
	eventProposalVoteCast  = eventsv1.ProposalVoteCast
	eventProposalExecuted  = eventsv1.ProposalExecuted
	eventTreasuryDeposited = eventsv1.TreasuryDeposited
	eventTreasuryWithdrawn = eventsv1.TreasuryWithdrawn
)

func newGovernanceEnvelope(
	eventID string,
	eventType string,
	partitionKeyPath string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "proposal-voting",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             payload,
	}, nil
}

// appendProposalEvent writes a proposal-scoped event into the same ledger
// transaction as the state change it describes.
func appendProposalEvent(
	ctx context.Context,
	tx ports.LedgerTx,
	idGen ports.IDGenerator,
	eventType string,
	proposalID int64,
	occurredAt time.Time,
	data map[string]any,
) error {
	if idGen == nil {
		return nil
	}
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	data["proposal_id"] = proposalID
	data["occurred_at"] = occurredAt.UTC().Format(time.RFC3339)
	envelope, err := newGovernanceEnvelope(
		eventID,
		eventType,
		"proposal_id",
		strconv.FormatInt(proposalID, 10),
		occurredAt,
		data,
	)
	if err != nil {
		return err
	}
	return tx.AppendOutbox(ctx, envelope)
}

func appendTreasuryEvent(
	ctx context.Context,
	tx ports.LedgerTx,
	idGen ports.IDGenerator,
	eventType string,
	treasuryID string,
	occurredAt time.Time,
	data map[string]any,
) error {
	if idGen == nil {
		return nil
	}
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	data["treasury_id"] = treasuryID
	data["occurred_at"] = occurredAt.UTC().Format(time.RFC3339)
	envelope, err := newGovernanceEnvelope(eventID, eventType, "treasury_id", treasuryID, occurredAt, data)
	if err != nil {
		return err
	}
	return tx.AppendOutbox(ctx, envelope)
}
