package ports

import (
	"context"
	"time"

	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	eventsv1 "cryptodao/contracts/events/v1"

	"github.com/shopspring/decimal"
)

// ProposalRepository is the read side of the ledger. Reads never take the
// write critical section.
type ProposalRepository interface {
	GetProposal(ctx context.Context, proposalID int64) (entities.Proposal, error)
	ListProposals(ctx context.Context) ([]entities.Proposal, error)
	ListBallots(ctx context.Context, proposalID int64) ([]entities.Ballot, error)
	GetTreasury(ctx context.Context) (entities.Treasury, error)
	ListTreasuryEntries(ctx context.Context, limit int) ([]entities.TreasuryEntry, error)
}

// Ledger serializes every state change to proposals, ballots and treasury.
// fn runs inside one critical section; its writes become visible only when
// it returns nil.
type Ledger interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

type LedgerTx interface {
	NextProposalID(ctx context.Context) (int64, error)
	InsertProposal(ctx context.Context, proposal entities.Proposal) error
	GetProposal(ctx context.Context, proposalID int64) (entities.Proposal, error)
	UpdateProposal(ctx context.Context, proposal entities.Proposal) error
	HasVoted(ctx context.Context, proposalID int64, voter string) (bool, error)
	InsertBallot(ctx context.Context, ballot entities.Ballot) error
	GetTreasury(ctx context.Context) (entities.Treasury, error)
	SaveTreasury(ctx context.Context, treasury entities.Treasury) error
	AppendTreasuryEntry(ctx context.Context, entry entities.TreasuryEntry) error
	RecordPayout(ctx context.Context, payout entities.Payout) error
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
	// Idempotency records written here commit or roll back with the state
	// change they guard.
	GetIdempotency(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutIdempotency(ctx context.Context, record IdempotencyRecord) error
}

// MembershipOracle answers which governance units a principal holds.
// An empty result means the principal is not a member.
type MembershipOracle interface {
	UnitsHeldBy(ctx context.Context, principal string) ([]int64, error)
}

// MarketplaceOracle is the external market a passed proposal buys from.
type MarketplaceOracle interface {
	Available(ctx context.Context, assetID int64) (bool, error)
	PriceOf(ctx context.Context, assetID int64) (decimal.Decimal, error)
	Purchase(ctx context.Context, assetID int64, payment decimal.Decimal, buyer string) error
}

// PayoutGateway moves withdrawn funds out of the DAO. It runs inside the
// ledger transaction, so an error rolls the withdrawal back.
type PayoutGateway interface {
	Transfer(ctx context.Context, payout entities.Payout) error
}

// Telemetry receives governance counters. A nil Telemetry is valid.
type Telemetry interface {
	ProposalCreated()
	VoteCast(choice entities.VoteChoice)
	ProposalExecuted(outcome entities.ProposalOutcome)
	TreasuryBalance(balance decimal.Decimal)
	OperationFailed(operation string, err error)
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	ResourceID  string
	ExpiresAt   time.Time
}

// IdempotencyStore answers replays without entering the ledger critical
// section. First-time requests are decided by LedgerTx.GetIdempotency.
type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope is the wire contract shared with event consumers.
type EventEnvelope = eventsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
