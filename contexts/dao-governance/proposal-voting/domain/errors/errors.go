package errors

import "errors"

var (
	ErrNotAMember             = errors.New("caller does not hold a governance unit")
	ErrAssetNotForSale        = errors.New("asset is not for sale")
	ErrProposalNotFound       = errors.New("proposal not found")
	ErrVotingClosed           = errors.New("voting deadline exceeded")
	ErrVotingStillOpen        = errors.New("voting deadline not exceeded")
	ErrAlreadyVoted           = errors.New("caller already voted on proposal")
	ErrAlreadyExecuted        = errors.New("proposal already executed")
	ErrInsufficientFunds      = errors.New("treasury has insufficient funds")
	ErrNotOwner               = errors.New("caller is not the treasury owner")
	ErrInvalidVote            = errors.New("invalid vote")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidPrincipal       = errors.New("caller principal is required")
	ErrInvalidProposalInput   = errors.New("invalid proposal input")
	ErrTreasuryNotFound       = errors.New("treasury not initialized")
	ErrIdempotencyConflict    = errors.New("idempotency key conflict")
	ErrConflict               = errors.New("ledger conflict")
	ErrPurchaseRejected       = errors.New("marketplace rejected purchase")
	ErrPayoutTransferRejected = errors.New("payout transfer rejected")
)
