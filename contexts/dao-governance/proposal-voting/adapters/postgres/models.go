package postgresadapter

import (
	"time"

	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"

	"github.com/shopspring/decimal"
)

type proposalModel struct {
	ProposalID    int64           `gorm:"column:proposal_id;primaryKey;autoIncrement:false"`
	AssetID       int64           `gorm:"column:asset_id;index"`
	YayVotes      int64           `gorm:"column:yay_votes"`
	NayVotes      int64           `gorm:"column:nay_votes"`
	Deadline      time.Time       `gorm:"column:deadline"`
	Executed      bool            `gorm:"column:executed"`
	Outcome       string          `gorm:"column:outcome"`
	PurchasePrice decimal.Decimal `gorm:"column:purchase_price;type:numeric(38,18)"`
	CreatedBy     string          `gorm:"column:created_by"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	ExecutedBy    string          `gorm:"column:executed_by"`
	ExecutedAt    *time.Time      `gorm:"column:executed_at"`
}

func (proposalModel) TableName() string {
	return "dao_proposals"
}

func proposalModelFromEntity(proposal entities.Proposal) proposalModel {
	return proposalModel{
		ProposalID:    proposal.ProposalID,
		AssetID:       proposal.AssetID,
		YayVotes:      proposal.YayVotes,
		NayVotes:      proposal.NayVotes,
		Deadline:      proposal.Deadline.UTC(),
		Executed:      proposal.Executed,
		Outcome:       string(proposal.Outcome),
		PurchasePrice: proposal.PurchasePrice,
		CreatedBy:     proposal.CreatedBy,
		CreatedAt:     proposal.CreatedAt.UTC(),
		ExecutedBy:    proposal.ExecutedBy,
		ExecutedAt:    normalizeOptionalTime(proposal.ExecutedAt),
	}
}

func (m proposalModel) toEntity() entities.Proposal {
	return entities.Proposal{
		ProposalID:    m.ProposalID,
		AssetID:       m.AssetID,
		YayVotes:      m.YayVotes,
		NayVotes:      m.NayVotes,
		Deadline:      m.Deadline.UTC(),
		Executed:      m.Executed,
		Outcome:       entities.ProposalOutcome(m.Outcome),
		PurchasePrice: m.PurchasePrice,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt.UTC(),
		ExecutedBy:    m.ExecutedBy,
		ExecutedAt:    normalizeOptionalTime(m.ExecutedAt),
	}
}

// ballotModel enforces one vote per principal with its composite key.
type ballotModel struct {
	ProposalID int64     `gorm:"column:proposal_id;primaryKey;autoIncrement:false"`
	Voter      string    `gorm:"column:voter;primaryKey"`
	Choice     string    `gorm:"column:choice"`
	CastAt     time.Time `gorm:"column:cast_at"`
}

func (ballotModel) TableName() string {
	return "dao_ballots"
}

func (m ballotModel) toEntity() entities.Ballot {
	return entities.Ballot{
		ProposalID: m.ProposalID,
		Voter:      m.Voter,
		Choice:     entities.VoteChoice(m.Choice),
		CastAt:     m.CastAt.UTC(),
	}
}

type treasuryModel struct {
	TreasuryID string          `gorm:"column:treasury_id;primaryKey"`
	Identity   string          `gorm:"column:identity"`
	Owner      string          `gorm:"column:owner"`
	Balance    decimal.Decimal `gorm:"column:balance;type:numeric(38,18)"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (treasuryModel) TableName() string {
	return "dao_treasury"
}

func (m treasuryModel) toEntity() entities.Treasury {
	return entities.Treasury{
		Identity:  m.Identity,
		Owner:     m.Owner,
		Balance:   m.Balance,
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type treasuryEntryModel struct {
	EntryID      string          `gorm:"column:entry_id;primaryKey"`
	Kind         string          `gorm:"column:kind"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(38,18)"`
	Principal    string          `gorm:"column:principal"`
	ProposalID   *int64          `gorm:"column:proposal_id"`
	BalanceAfter decimal.Decimal `gorm:"column:balance_after;type:numeric(38,18)"`
	CreatedAt    time.Time       `gorm:"column:created_at;index"`
}

func (treasuryEntryModel) TableName() string {
	return "dao_treasury_entries"
}

func (m treasuryEntryModel) toEntity() entities.TreasuryEntry {
	return entities.TreasuryEntry{
		EntryID:      m.EntryID,
		Kind:         entities.TreasuryEntryKind(m.Kind),
		Amount:       m.Amount,
		Principal:    m.Principal,
		ProposalID:   m.ProposalID,
		BalanceAfter: m.BalanceAfter,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type payoutModel struct {
	PayoutID  string          `gorm:"column:payout_id;primaryKey"`
	Recipient string          `gorm:"column:recipient"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(38,18)"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

func (payoutModel) TableName() string {
	return "dao_payouts"
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	ResourceID  string    `gorm:"column:resource_id"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "dao_idempotency"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	Sequence     int64      `gorm:"column:sequence;autoIncrement"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "dao_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}
