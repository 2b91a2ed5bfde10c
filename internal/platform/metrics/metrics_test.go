package metrics

import (
	"errors"
	"fmt"
	"testing"

	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFailureReason(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{domainerrors.ErrNotAMember, "not_a_member"},
		{fmt.Errorf("%w: sold", domainerrors.ErrPurchaseRejected), "purchase_rejected"},
		{domainerrors.ErrInvalidAmount, "invalid_input"},
		{domainerrors.ErrInsufficientFunds, "insufficient_funds"},
		{errors.New("db down"), "internal"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FailureReason(tc.err))
	}
}

func TestPromIsRegisteredOnce(t *testing.T) {
	governance, api := Prom()
	again, apiAgain := Prom()
	require.Same(t, governance, again)
	require.Same(t, api, apiAgain)

	require.NotPanics(t, func() {
		governance.ProposalCreated()
		governance.VoteCast(entities.VoteYay)
		governance.ProposalExecuted(entities.OutcomePassed)
		governance.TreasuryBalance(decimal.RequireFromString("0.9"))
		governance.OperationFailed("vote_on_proposal", domainerrors.ErrAlreadyVoted)
		api.RequestsTotal.With("route", "GET /healthz", "method", "GET", "status", "200").Add(1)
	})
}

func TestNopMetricsAcceptEverything(t *testing.T) {
	governance := NopGovernanceMetrics()
	require.NotPanics(t, func() {
		governance.VoteCast(entities.VoteNay)
		governance.OperationFailed("withdraw", domainerrors.ErrNotOwner)
		NopAPIMetrics().RequestDurationSeconds.With("route", "x", "method", "GET").Observe(0.1)
	})
}
