package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type VoteChoice string

const (
	VoteYay VoteChoice = "yay"
	VoteNay VoteChoice = "nay"
)

func (c VoteChoice) Valid() bool {
	return c == VoteYay || c == VoteNay
}

type ProposalOutcome string

const (
	OutcomePending  ProposalOutcome = "pending"
	OutcomePassed   ProposalOutcome = "passed"
	OutcomeRejected ProposalOutcome = "rejected"
)

// Proposal is a request to buy one marketplace asset with treasury funds.
// Deadline is fixed at creation; tallies only grow; Executed flips once.
type Proposal struct {
	ProposalID    int64
	AssetID       int64
	YayVotes      int64
	NayVotes      int64
	Deadline      time.Time
	Executed      bool
	Outcome       ProposalOutcome
	PurchasePrice decimal.Decimal
	CreatedBy     string
	CreatedAt     time.Time
	ExecutedBy    string
	ExecutedAt    *time.Time
}

// VotingOpen reports whether a ballot cast at now still counts.
// The deadline instant itself is inside the window.
func (p Proposal) VotingOpen(now time.Time) bool {
	return !now.UTC().After(p.Deadline.UTC())
}

// Executable reports whether voting has closed strictly before now.
func (p Proposal) Executable(now time.Time) bool {
	return now.UTC().After(p.Deadline.UTC())
}

// Passed applies the majority rule; ties reject.
func (p Proposal) Passed() bool {
	return p.YayVotes > p.NayVotes
}

func (p Proposal) TotalVotes() int64 {
	return p.YayVotes + p.NayVotes
}

// Ballot records that a principal voted on a proposal. The pair
// (ProposalID, Voter) is unique.
type Ballot struct {
	ProposalID int64
	Voter      string
	Choice     VoteChoice
	CastAt     time.Time
}
