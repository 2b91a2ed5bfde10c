package errors

import "errors"

var (
	ErrInvalidAsset = errors.New("asset id must be non-negative")
	ErrInvalidBuyer = errors.New("buyer principal is required")
	ErrWrongPayment = errors.New("payment does not match asset price")
	ErrNotAvailable = errors.New("asset already owned")
)
