package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	governanceerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"
	governancehttp "cryptodao/contexts/dao-governance/proposal-voting/transport/http"
)

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ListProposalsHandler(r.Context())
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeGovernanceError)
	if !ok {
		return
	}
	var req governancehttp.CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.governance.Handler.CreateProposalHandler(
		r.Context(),
		caller,
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := pathInt64(r, "proposal_id")
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_proposal_id", "proposal_id must be an integer")
		return
	}
	resp, err := s.governance.Handler.GetProposalHandler(r.Context(), proposalID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeGovernanceError)
	if !ok {
		return
	}
	proposalID, ok := pathInt64(r, "proposal_id")
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_proposal_id", "proposal_id must be an integer")
		return
	}
	var req governancehttp.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.governance.Handler.VoteHandler(r.Context(), caller, proposalID, req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecuteProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeGovernanceError)
	if !ok {
		return
	}
	proposalID, ok := pathInt64(r, "proposal_id")
	if !ok {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_proposal_id", "proposal_id must be an integer")
		return
	}
	resp, err := s.governance.Handler.ExecuteProposalHandler(r.Context(), caller, proposalID)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTreasury(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			writeGovernanceError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = value
	}
	resp, err := s.governance.Handler.TreasuryHandler(r.Context(), limit)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeGovernanceError)
	if !ok {
		return
	}
	var req governancehttp.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.governance.Handler.DepositHandler(r.Context(), caller, r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, writeGovernanceError)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.WithdrawHandler(r.Context(), caller)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeGovernanceDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, governanceerrors.ErrNotAMember):
		writeGovernanceError(w, http.StatusForbidden, "not_a_member", err.Error())
	case errors.Is(err, governanceerrors.ErrNotOwner):
		writeGovernanceError(w, http.StatusForbidden, "not_owner", err.Error())
	case errors.Is(err, governanceerrors.ErrProposalNotFound):
		writeGovernanceError(w, http.StatusNotFound, "proposal_not_found", err.Error())
	case errors.Is(err, governanceerrors.ErrTreasuryNotFound):
		writeGovernanceError(w, http.StatusServiceUnavailable, "treasury_not_found", err.Error())
	case errors.Is(err, governanceerrors.ErrAssetNotForSale):
		writeGovernanceError(w, http.StatusConflict, "asset_not_for_sale", err.Error())
	case errors.Is(err, governanceerrors.ErrVotingClosed):
		writeGovernanceError(w, http.StatusConflict, "voting_closed", err.Error())
	case errors.Is(err, governanceerrors.ErrVotingStillOpen):
		writeGovernanceError(w, http.StatusConflict, "voting_still_open", err.Error())
	case errors.Is(err, governanceerrors.ErrAlreadyVoted):
		writeGovernanceError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, governanceerrors.ErrAlreadyExecuted):
		writeGovernanceError(w, http.StatusConflict, "already_executed", err.Error())
	case errors.Is(err, governanceerrors.ErrIdempotencyConflict):
		writeGovernanceError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	case errors.Is(err, governanceerrors.ErrConflict):
		writeGovernanceError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, governanceerrors.ErrInsufficientFunds):
		writeGovernanceError(w, http.StatusPaymentRequired, "insufficient_funds", err.Error())
	case errors.Is(err, governanceerrors.ErrPurchaseRejected):
		writeGovernanceError(w, http.StatusBadGateway, "purchase_rejected", err.Error())
	case errors.Is(err, governanceerrors.ErrPayoutTransferRejected):
		writeGovernanceError(w, http.StatusBadGateway, "payout_rejected", err.Error())
	case errors.Is(err, governanceerrors.ErrInvalidVote),
		errors.Is(err, governanceerrors.ErrInvalidAmount),
		errors.Is(err, governanceerrors.ErrInvalidPrincipal),
		errors.Is(err, governanceerrors.ErrInvalidProposalInput):
		writeGovernanceError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeGovernanceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGovernanceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, governancehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
