package v1

import (
	"encoding/json"
	"time"
)

// Event types published by the governance outbox. Subscribers match on the
// subject "<prefix><event type>".
const (
	ProposalCreated   = "proposal.created"
	ProposalVoteCast  = "proposal.vote_cast"
	ProposalExecuted  = "proposal.executed"
	TreasuryDeposited = "treasury.deposited"
	TreasuryWithdrawn = "treasury.withdrawn"
)

// Envelope is the versioned wrapper around every governance event.
// Fields are append-only; consumers ignore what they do not know.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

func GovernanceEventTypes() []string {
	return []string{
		ProposalCreated,
		ProposalVoteCast,
		ProposalExecuted,
		TreasuryDeposited,
		TreasuryWithdrawn,
	}
}
