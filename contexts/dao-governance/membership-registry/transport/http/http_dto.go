package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MintUnitRequest struct {
	Owner string `json:"owner"`
}

type TransferUnitRequest struct {
	To string `json:"to"`
}

type UnitResponse struct {
	UnitID    int64  `json:"unit_id"`
	Owner     string `json:"owner"`
	MintedAt  string `json:"minted_at"`
	UpdatedAt string `json:"updated_at"`
}

type UnitsHeldResponse struct {
	Principal string  `json:"principal"`
	UnitIDs   []int64 `json:"unit_ids"`
	Member    bool    `json:"member"`
}
