package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AssetResponse struct {
	AssetID     int64   `json:"asset_id"`
	Available   bool    `json:"available"`
	Price       string  `json:"price"`
	Owner       string  `json:"owner,omitempty"`
	PurchasedAt *string `json:"purchased_at,omitempty"`
}

type PurchaseRequest struct {
	Payment string `json:"payment"`
}
