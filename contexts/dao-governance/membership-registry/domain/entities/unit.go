package entities

import "time"

// Unit is one token of the governance collection. Holding any unit makes
// the owner a member.
type Unit struct {
	UnitID    int64
	Owner     string
	MintedAt  time.Time
	UpdatedAt time.Time
}
