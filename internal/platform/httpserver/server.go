package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	membershipregistry "cryptodao/contexts/dao-governance/membership-registry"
	nftmarketplace "cryptodao/contexts/dao-governance/nft-marketplace"
	proposalvoting "cryptodao/contexts/dao-governance/proposal-voting"
	"cryptodao/internal/platform/metrics"

	_ "cryptodao/internal/platform/httpserver/docs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	addr        string
	httpServer  *http.Server
	apiMetrics  *metrics.APIMetrics
	governance  proposalvoting.Module
	marketplace nftmarketplace.Module
	membership  membershipregistry.Module
}

type Modules struct {
	Governance  proposalvoting.Module
	Marketplace nftmarketplace.Module
	Membership  membershipregistry.Module
}

func New(
	modules Modules,
	apiMetrics *metrics.APIMetrics,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}
	if apiMetrics == nil {
		apiMetrics = metrics.NopAPIMetrics()
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		addr:        addr,
		apiMetrics:  apiMetrics,
		governance:  modules.Governance,
		marketplace: modules.Marketplace,
		membership:  modules.Membership,
	}
	s.registerRoutes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed mux wrapped with request metrics.
func (s *Server) Handler() http.Handler {
	return s.instrument(s.mux)
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /v1/dao/proposals", s.handleListProposals)
	s.mux.HandleFunc("POST /v1/dao/proposals", s.handleCreateProposal)
	s.mux.HandleFunc("GET /v1/dao/proposals/{proposal_id}", s.handleGetProposal)
	s.mux.HandleFunc("POST /v1/dao/proposals/{proposal_id}/votes", s.handleVote)
	s.mux.HandleFunc("POST /v1/dao/proposals/{proposal_id}/execute", s.handleExecuteProposal)
	s.mux.HandleFunc("GET /v1/dao/treasury", s.handleGetTreasury)
	s.mux.HandleFunc("POST /v1/dao/treasury/deposits", s.handleDeposit)
	s.mux.HandleFunc("POST /v1/dao/treasury/withdraw", s.handleWithdraw)

	s.mux.HandleFunc("GET /v1/marketplace/assets/{asset_id}", s.handleGetAsset)
	s.mux.HandleFunc("POST /v1/marketplace/assets/{asset_id}/purchase", s.handlePurchaseAsset)

	s.mux.HandleFunc("GET /v1/membership/principals/{principal}/units", s.handleUnitsHeld)
	s.mux.HandleFunc("POST /v1/membership/units", s.handleMintUnit)
	s.mux.HandleFunc("POST /v1/membership/units/{unit_id}/transfer", s.handleTransferUnit)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(recorder.status)
		s.apiMetrics.RequestsTotal.With("route", route, "method", r.Method, "status", status).Add(1)
		if recorder.status >= http.StatusBadRequest {
			s.apiMetrics.RequestErrorsTotal.With("route", route, "method", r.Method, "status", status).Add(1)
		}
		s.apiMetrics.RequestDurationSeconds.With("route", route, "method", r.Method).Observe(time.Since(started).Seconds())
	})
}

func requireCaller(w http.ResponseWriter, r *http.Request, writeError func(http.ResponseWriter, int, string, string)) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return caller, true
}

func pathInt64(r *http.Request, name string) (int64, bool) {
	value, err := strconv.ParseInt(strings.TrimSpace(r.PathValue(name)), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
