package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	membershipregistry "cryptodao/contexts/dao-governance/membership-registry"
	nftmarketplace "cryptodao/contexts/dao-governance/nft-marketplace"
	proposalvoting "cryptodao/contexts/dao-governance/proposal-voting"
	"cryptodao/contexts/dao-governance/proposal-voting/adapters/memory"
	domainerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"
	governancehttp "cryptodao/contexts/dao-governance/proposal-voting/transport/http"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubMembership map[string][]int64

func (m stubMembership) UnitsHeldBy(_ context.Context, principal string) ([]int64, error) {
	return m[principal], nil
}

type stubMarket struct {
	sold map[int64]string
}

func (m *stubMarket) Available(_ context.Context, assetID int64) (bool, error) {
	_, sold := m.sold[assetID]
	return !sold, nil
}

func (m *stubMarket) PriceOf(context.Context, int64) (decimal.Decimal, error) {
	return decimal.RequireFromString("0.1"), nil
}

func (m *stubMarket) Purchase(_ context.Context, assetID int64, _ decimal.Decimal, buyer string) error {
	if _, sold := m.sold[assetID]; sold {
		return domainerrors.ErrAssetNotForSale
	}
	m.sold[assetID] = buyer
	return nil
}

type testServer struct {
	handler    http.Handler
	governance proposalvoting.Module
	market     *stubMarket
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	market := &stubMarket{sold: map[int64]string{}}
	governance := proposalvoting.NewInMemoryModule(proposalvoting.InMemoryOptions{
		Treasury: memory.TreasuryConfig{
			Identity:       "dao-treasury",
			Owner:          "dao-owner",
			InitialBalance: decimal.RequireFromString("0.1"),
		},
		Membership:  stubMembership{"alice": {1}, "bob": {2}},
		Marketplace: market,
	}, nil)
	governance.Store.SetNow(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	server := New(Modules{
		Governance:  governance,
		Marketplace: nftmarketplace.NewInMemoryModule(decimal.RequireFromString("0.1"), nil),
		Membership:  membershipregistry.NewInMemoryModule("dao-owner", nil),
	}, nil, nil, "")
	return testServer{handler: server.Handler(), governance: governance, market: market}
}

func (s testServer) do(t *testing.T, method string, path string, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch value := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(value))
	default:
		raw, err := json.Marshal(value)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok"`)
}

func TestProposalLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/v1/dao/proposals", "alice", map[string]any{"asset_id": 7})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[governancehttp.ProposalResponse](t, rec)
	require.Equal(t, int64(0), created.ProposalID)
	require.Equal(t, int64(7), created.AssetID)

	rec = srv.do(t, http.MethodPost, "/v1/dao/proposals/0/votes", "alice", map[string]string{"vote": "yay"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(1), decode[governancehttp.ProposalResponse](t, rec).YayVotes)

	rec = srv.do(t, http.MethodPost, "/v1/dao/proposals/0/votes", "alice", map[string]string{"vote": "nay"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "already_voted", decode[governancehttp.ErrorResponse](t, rec).Code)

	rec = srv.do(t, http.MethodPost, "/v1/dao/proposals/0/execute", "bob", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "voting_still_open", decode[governancehttp.ErrorResponse](t, rec).Code)

	srv.governance.Store.Advance(5*time.Minute + time.Second)

	rec = srv.do(t, http.MethodPost, "/v1/dao/proposals/0/votes", "bob", map[string]string{"vote": "nay"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "voting_closed", decode[governancehttp.ErrorResponse](t, rec).Code)

	rec = srv.do(t, http.MethodPost, "/v1/dao/proposals/0/execute", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	executed := decode[governancehttp.ExecuteProposalResponse](t, rec)
	require.Equal(t, "passed", executed.Proposal.Outcome)
	require.Equal(t, "0", executed.TreasuryBalance)
	require.Equal(t, "dao-treasury", srv.market.sold[7])

	rec = srv.do(t, http.MethodGet, "/v1/dao/proposals/0", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[governancehttp.ProposalDetailResponse](t, rec)
	require.Len(t, detail.Ballots, 1)
	require.True(t, detail.Executed)

	rec = srv.do(t, http.MethodGet, "/v1/dao/treasury?limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "0", decode[governancehttp.TreasuryResponse](t, rec).Balance)
}

func TestGovernanceErrorMapping(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		status int
		code   string
	}{
		{"missing user", http.MethodPost, "/v1/dao/proposals", "", map[string]any{"asset_id": 1}, http.StatusUnauthorized, "missing_user"},
		{"non member", http.MethodPost, "/v1/dao/proposals", "mallory", map[string]any{"asset_id": 1}, http.StatusForbidden, "not_a_member"},
		{"bad json", http.MethodPost, "/v1/dao/proposals", "alice", "{", http.StatusBadRequest, "invalid_json"},
		{"missing asset", http.MethodPost, "/v1/dao/proposals", "alice", map[string]any{}, http.StatusBadRequest, "invalid_request"},
		{"bad proposal id", http.MethodGet, "/v1/dao/proposals/abc", "", nil, http.StatusBadRequest, "invalid_proposal_id"},
		{"unknown proposal", http.MethodGet, "/v1/dao/proposals/42", "", nil, http.StatusNotFound, "proposal_not_found"},
		{"bad limit", http.MethodGet, "/v1/dao/treasury?limit=x", "", nil, http.StatusBadRequest, "invalid_limit"},
		{"withdraw by member", http.MethodPost, "/v1/dao/treasury/withdraw", "alice", nil, http.StatusForbidden, "not_owner"},
		{"bad deposit", http.MethodPost, "/v1/dao/treasury/deposits", "alice", map[string]string{"amount": "-1"}, http.StatusBadRequest, "invalid_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := srv.do(t, tc.method, tc.path, tc.user, tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			require.Equal(t, tc.code, decode[governancehttp.ErrorResponse](t, rec).Code)
		})
	}
}

func TestDepositReplayAndWithdraw(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/dao/treasury/deposits", bytes.NewReader([]byte(`{"amount":"0.4"}`)))
	req.Header.Set("X-User-Id", "bob")
	req.Header.Set("Idempotency-Key", "dep-1")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[governancehttp.DepositResponse](t, rec)
	require.Equal(t, "0.5", first.Balance)

	req = httptest.NewRequest(http.MethodPost, "/v1/dao/treasury/deposits", bytes.NewReader([]byte(`{"amount":"0.4"}`)))
	req.Header.Set("X-User-Id", "bob")
	req.Header.Set("Idempotency-Key", "dep-1")
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	replayed := decode[governancehttp.DepositResponse](t, rec)
	require.True(t, replayed.Replayed)
	require.Equal(t, first.EntryID, replayed.EntryID)

	rec = srv.do(t, http.MethodPost, "/v1/dao/treasury/withdraw", "dao-owner", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	withdrawn := decode[governancehttp.WithdrawResponse](t, rec)
	require.Equal(t, "0.5", withdrawn.Amount)
	require.Equal(t, "0", withdrawn.Balance)
}

func TestMarketplaceAndMembershipRoutes(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/v1/marketplace/assets/3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"available":true`)

	rec = srv.do(t, http.MethodPost, "/v1/marketplace/assets/3/purchase", "carol", map[string]string{"payment": "0.2"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "wrong_payment")

	rec = srv.do(t, http.MethodPost, "/v1/marketplace/assets/3/purchase", "carol", map[string]string{"payment": "0.1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = srv.do(t, http.MethodPost, "/v1/marketplace/assets/3/purchase", "dave", map[string]string{"payment": "0.1"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "not_available")

	rec = srv.do(t, http.MethodPost, "/v1/membership/units", "carol", map[string]string{"owner": "carol"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPost, "/v1/membership/units", "dao-owner", map[string]string{"owner": "carol"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, http.MethodGet, "/v1/membership/principals/carol/units", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"member":true`)

	rec = srv.do(t, http.MethodPost, "/v1/membership/units/99/transfer", "carol", map[string]string{"to": "dave"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
