package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Treasury is the pooled fund controlled by the DAO. Identity is the
// principal the DAO uses when it buys from the marketplace; Owner is the
// only principal allowed to drain it.
type Treasury struct {
	Identity  string
	Owner     string
	Balance   decimal.Decimal
	UpdatedAt time.Time
}

func (t Treasury) CanSpend(amount decimal.Decimal) bool {
	return t.Balance.GreaterThanOrEqual(amount)
}

type TreasuryEntryKind string

const (
	EntryDeposit    TreasuryEntryKind = "deposit"
	EntryPurchase   TreasuryEntryKind = "purchase"
	EntryWithdrawal TreasuryEntryKind = "withdrawal"
)

// TreasuryEntry is one line of the treasury audit log. Amount is always
// positive; Kind carries the direction.
type TreasuryEntry struct {
	EntryID      string
	Kind         TreasuryEntryKind
	Amount       decimal.Decimal
	Principal    string
	ProposalID   *int64
	BalanceAfter decimal.Decimal
	CreatedAt    time.Time
}

// Payout is a confirmed transfer of treasury funds to an external principal.
type Payout struct {
	PayoutID  string
	Recipient string
	Amount    decimal.Decimal
	CreatedAt time.Time
}
