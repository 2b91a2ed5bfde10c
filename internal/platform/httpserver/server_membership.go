package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	membershiperrors "cryptodao/contexts/dao-governance/membership-registry/domain/errors"
	membershiphttp "cryptodao/contexts/dao-governance/membership-registry/transport/http"
)

func (s *Server) handleUnitsHeld(w http.ResponseWriter, r *http.Request) {
	resp, err := s.membership.Handler.UnitsHeldHandler(r.Context(), r.PathValue("principal"))
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMintUnit(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireCaller(w, r, writeMembershipError)
	if !ok {
		return
	}
	var req membershiphttp.MintUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMembershipError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.membership.Handler.MintUnitHandler(r.Context(), actor, req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleTransferUnit(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireCaller(w, r, writeMembershipError)
	if !ok {
		return
	}
	unitID, ok := pathInt64(r, "unit_id")
	if !ok {
		writeMembershipError(w, http.StatusBadRequest, "invalid_unit_id", "unit_id must be an integer")
		return
	}
	var req membershiphttp.TransferUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMembershipError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.membership.Handler.TransferUnitHandler(r.Context(), actor, unitID, req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeMembershipDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, membershiperrors.ErrInvalidPrincipal):
		writeMembershipError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, membershiperrors.ErrNotAdmin),
		errors.Is(err, membershiperrors.ErrNotUnitOwner):
		writeMembershipError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, membershiperrors.ErrUnitNotFound):
		writeMembershipError(w, http.StatusNotFound, "unit_not_found", err.Error())
	case errors.Is(err, membershiperrors.ErrConflict):
		writeMembershipError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeMembershipError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMembershipError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, membershiphttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
