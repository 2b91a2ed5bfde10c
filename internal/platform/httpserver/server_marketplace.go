package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	marketplaceerrors "cryptodao/contexts/dao-governance/nft-marketplace/domain/errors"
	marketplacehttp "cryptodao/contexts/dao-governance/nft-marketplace/transport/http"
)

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	assetID, ok := pathInt64(r, "asset_id")
	if !ok {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_asset_id", "asset_id must be an integer")
		return
	}
	resp, err := s.marketplace.Handler.GetAssetHandler(r.Context(), assetID)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePurchaseAsset(w http.ResponseWriter, r *http.Request) {
	buyer, ok := requireCaller(w, r, writeMarketplaceError)
	if !ok {
		return
	}
	assetID, ok := pathInt64(r, "asset_id")
	if !ok {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_asset_id", "asset_id must be an integer")
		return
	}
	var req marketplacehttp.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.marketplace.Handler.PurchaseHandler(r.Context(), buyer, assetID, req)
	if err != nil {
		writeMarketplaceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeMarketplaceDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, marketplaceerrors.ErrInvalidAsset),
		errors.Is(err, marketplaceerrors.ErrInvalidBuyer):
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, marketplaceerrors.ErrWrongPayment):
		writeMarketplaceError(w, http.StatusBadRequest, "wrong_payment", err.Error())
	case errors.Is(err, marketplaceerrors.ErrNotAvailable):
		writeMarketplaceError(w, http.StatusConflict, "not_available", err.Error())
	default:
		writeMarketplaceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMarketplaceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, marketplacehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
