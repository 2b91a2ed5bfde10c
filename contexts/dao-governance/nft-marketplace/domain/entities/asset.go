package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is one marketplace token. It is for sale until somebody buys it;
// ownership never changes afterwards.
type Asset struct {
	AssetID     int64
	Owner       string
	Price       decimal.Decimal
	PurchasedAt *time.Time
}

func (a Asset) Available() bool {
	return a.Owner == ""
}

// Sale records a completed purchase.
type Sale struct {
	AssetID     int64
	Buyer       string
	Payment     decimal.Decimal
	PurchasedAt time.Time
}
