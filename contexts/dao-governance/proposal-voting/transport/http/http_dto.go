package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateProposalRequest struct {
	AssetID *int64 `json:"asset_id"`
}

type VoteRequest struct {
	Vote string `json:"vote"`
}

type DepositRequest struct {
	Amount string `json:"amount"`
}

type ProposalResponse struct {
	ProposalID    int64   `json:"proposal_id"`
	AssetID       int64   `json:"asset_id"`
	Deadline      string  `json:"deadline"`
	YayVotes      int64   `json:"yay_votes"`
	NayVotes      int64   `json:"nay_votes"`
	Executed      bool    `json:"executed"`
	Outcome       string  `json:"outcome"`
	PurchasePrice string  `json:"purchase_price,omitempty"`
	CreatedBy     string  `json:"created_by"`
	CreatedAt     string  `json:"created_at"`
	ExecutedBy    string  `json:"executed_by,omitempty"`
	ExecutedAt    *string `json:"executed_at,omitempty"`
	Replayed      bool    `json:"replayed,omitempty"`
}

type BallotItem struct {
	Voter  string `json:"voter"`
	Vote   string `json:"vote"`
	CastAt string `json:"cast_at"`
}

type ProposalDetailResponse struct {
	ProposalResponse
	Ballots []BallotItem `json:"ballots"`
}

type ListProposalsResponse struct {
	Items []ProposalResponse `json:"items"`
}

type ExecuteProposalResponse struct {
	Proposal        ProposalResponse `json:"proposal"`
	TreasuryBalance string           `json:"treasury_balance"`
}

type TreasuryEntryItem struct {
	EntryID      string `json:"entry_id"`
	Kind         string `json:"kind"`
	Amount       string `json:"amount"`
	Principal    string `json:"principal"`
	ProposalID   *int64 `json:"proposal_id,omitempty"`
	BalanceAfter string `json:"balance_after"`
	CreatedAt    string `json:"created_at"`
}

type TreasuryResponse struct {
	Identity      string              `json:"identity"`
	Owner         string              `json:"owner"`
	Balance       string              `json:"balance"`
	UpdatedAt     string              `json:"updated_at"`
	RecentEntries []TreasuryEntryItem `json:"recent_entries,omitempty"`
}

type DepositResponse struct {
	EntryID  string `json:"entry_id"`
	Amount   string `json:"amount"`
	Balance  string `json:"balance"`
	Replayed bool   `json:"replayed,omitempty"`
}

type WithdrawResponse struct {
	PayoutID  string `json:"payout_id"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Balance   string `json:"balance"`
}
