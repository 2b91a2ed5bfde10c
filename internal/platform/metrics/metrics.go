package metrics

import (
	"errors"
	"sync"

	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	Namespace           = "cryptodao"
	GovernanceSubsystem = "governance"
	APISubsystem        = "api"
)

// GovernanceMetrics implements the proposal-voting telemetry port.
type GovernanceMetrics struct {
	ProposalsCreated  metrics.Counter
	VotesCast         metrics.Counter
	ProposalsExecuted metrics.Counter
	TreasuryBalanceG  metrics.Gauge
	CommandFailures   metrics.Counter
}

type APIMetrics struct {
	RequestsTotal          metrics.Counter
	RequestErrorsTotal     metrics.Counter
	RequestDurationSeconds metrics.Histogram
}

var (
	promOnce       sync.Once
	promGovernance *GovernanceMetrics
	promAPI        *APIMetrics
)

// Prom returns collectors registered on the default prometheus registry.
// Registration happens once per process.
func Prom() (*GovernanceMetrics, *APIMetrics) {
	promOnce.Do(func() {
		promGovernance = &GovernanceMetrics{
			ProposalsCreated: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: GovernanceSubsystem,
				Name:      "proposals_created_total",
				Help:      "Total number of proposals created.",
			}, []string{}),
			VotesCast: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: GovernanceSubsystem,
				Name:      "votes_cast_total",
				Help:      "Total number of ballots recorded.",
			}, []string{"choice"}),
			ProposalsExecuted: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: GovernanceSubsystem,
				Name:      "proposals_executed_total",
				Help:      "Total number of executed proposals.",
			}, []string{"outcome"}),
			TreasuryBalanceG: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: GovernanceSubsystem,
				Name:      "treasury_balance",
				Help:      "Treasury balance after the last committed change.",
			}, []string{}),
			CommandFailures: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: GovernanceSubsystem,
				Name:      "command_failures_total",
				Help:      "Rejected or failed governance commands.",
			}, []string{"operation", "reason"}),
		}
		promAPI = &APIMetrics{
			RequestsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: APISubsystem,
				Name:      "requests_total",
				Help:      "Total number of requests.",
			}, []string{"route", "method", "status"}),
			RequestErrorsTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: APISubsystem,
				Name:      "request_errors_total",
				Help:      "Total number of requests answered with an error status.",
			}, []string{"route", "method", "status"}),
			RequestDurationSeconds: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: APISubsystem,
				Name:      "request_duration_seconds",
				Help:      "Request latency.",
				Buckets:   stdprometheus.DefBuckets,
			}, []string{"route", "method"}),
		}
	})
	return promGovernance, promAPI
}

func NopGovernanceMetrics() *GovernanceMetrics {
	return &GovernanceMetrics{
		ProposalsCreated:  discard.NewCounter(),
		VotesCast:         discard.NewCounter(),
		ProposalsExecuted: discard.NewCounter(),
		TreasuryBalanceG:  discard.NewGauge(),
		CommandFailures:   discard.NewCounter(),
	}
}

func NopAPIMetrics() *APIMetrics {
	return &APIMetrics{
		RequestsTotal:          discard.NewCounter(),
		RequestErrorsTotal:     discard.NewCounter(),
		RequestDurationSeconds: discard.NewHistogram(),
	}
}

func (m *GovernanceMetrics) ProposalCreated() {
	m.ProposalsCreated.Add(1)
}

func (m *GovernanceMetrics) VoteCast(choice entities.VoteChoice) {
	m.VotesCast.With("choice", string(choice)).Add(1)
}

func (m *GovernanceMetrics) ProposalExecuted(outcome entities.ProposalOutcome) {
	m.ProposalsExecuted.With("outcome", string(outcome)).Add(1)
}

func (m *GovernanceMetrics) TreasuryBalance(balance decimal.Decimal) {
	value, _ := balance.Float64()
	m.TreasuryBalanceG.Set(value)
}

func (m *GovernanceMetrics) OperationFailed(operation string, err error) {
	m.CommandFailures.With("operation", operation, "reason", FailureReason(err)).Add(1)
}

// FailureReason maps a governance error onto a low-cardinality label.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domainerrors.ErrNotAMember):
		return "not_a_member"
	case errors.Is(err, domainerrors.ErrAssetNotForSale):
		return "asset_not_for_sale"
	case errors.Is(err, domainerrors.ErrProposalNotFound):
		return "proposal_not_found"
	case errors.Is(err, domainerrors.ErrVotingClosed):
		return "voting_closed"
	case errors.Is(err, domainerrors.ErrVotingStillOpen):
		return "voting_still_open"
	case errors.Is(err, domainerrors.ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, domainerrors.ErrAlreadyExecuted):
		return "already_executed"
	case errors.Is(err, domainerrors.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domainerrors.ErrNotOwner):
		return "not_owner"
	case errors.Is(err, domainerrors.ErrPurchaseRejected):
		return "purchase_rejected"
	case errors.Is(err, domainerrors.ErrPayoutTransferRejected):
		return "payout_rejected"
	case errors.Is(err, domainerrors.ErrInvalidVote),
		errors.Is(err, domainerrors.ErrInvalidAmount),
		errors.Is(err, domainerrors.ErrInvalidPrincipal),
		errors.Is(err, domainerrors.ErrInvalidProposalInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
