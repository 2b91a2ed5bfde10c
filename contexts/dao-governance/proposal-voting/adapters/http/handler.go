package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"cryptodao/contexts/dao-governance/proposal-voting/application/commands"
	"cryptodao/contexts/dao-governance/proposal-voting/application/queries"
	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/proposal-voting/domain/errors"
	httptransport "cryptodao/contexts/dao-governance/proposal-voting/transport/http"

	"github.com/shopspring/decimal"
)

type Handler struct {
	Proposals       commands.ProposalUseCase
	Treasury        commands.TreasuryUseCase
	ProposalQueries queries.ProposalQueryUseCase
	TreasuryQueries queries.TreasuryQueryUseCase
	Logger          *slog.Logger
}

func (h Handler) CreateProposalHandler(
	ctx context.Context,
	caller string,
	idempotencyKey string,
	req httptransport.CreateProposalRequest,
) (httptransport.ProposalResponse, error) {
	if req.AssetID == nil {
		return httptransport.ProposalResponse{}, domainerrors.ErrInvalidProposalInput
	}
	result, err := h.Proposals.CreateProposal(ctx, commands.CreateProposalCommand{
		Caller:         caller,
		AssetID:        *req.AssetID,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	resp := mapProposal(result.Proposal)
	resp.Replayed = result.Replayed
	return resp, nil
}

func (h Handler) VoteHandler(
	ctx context.Context,
	caller string,
	proposalID int64,
	req httptransport.VoteRequest,
) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.VoteOnProposal(ctx, commands.VoteCommand{
		Caller:     caller,
		ProposalID: proposalID,
		Vote:       entities.VoteChoice(strings.ToLower(strings.TrimSpace(req.Vote))),
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal), nil
}

func (h Handler) ExecuteProposalHandler(
	ctx context.Context,
	caller string,
	proposalID int64,
) (httptransport.ExecuteProposalResponse, error) {
	result, err := h.Proposals.ExecuteProposal(ctx, commands.ExecuteProposalCommand{
		Caller:     caller,
		ProposalID: proposalID,
	})
	if err != nil {
		return httptransport.ExecuteProposalResponse{}, err
	}
	return httptransport.ExecuteProposalResponse{
		Proposal:        mapProposal(result.Proposal),
		TreasuryBalance: result.Treasury.Balance.String(),
	}, nil
}

func (h Handler) GetProposalHandler(ctx context.Context, proposalID int64) (httptransport.ProposalDetailResponse, error) {
	detail, err := h.ProposalQueries.GetProposalDetail(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalDetailResponse{}, err
	}
	ballots := make([]httptransport.BallotItem, 0, len(detail.Ballots))
	for _, ballot := range detail.Ballots {
		ballots = append(ballots, httptransport.BallotItem{
			Voter:  ballot.Voter,
			Vote:   string(ballot.Choice),
			CastAt: ballot.CastAt.UTC().Format(time.RFC3339),
		})
	}
	return httptransport.ProposalDetailResponse{
		ProposalResponse: mapProposal(detail.Proposal),
		Ballots:          ballots,
	}, nil
}

func (h Handler) ListProposalsHandler(ctx context.Context) (httptransport.ListProposalsResponse, error) {
	items, err := h.ProposalQueries.ListProposals(ctx)
	if err != nil {
		return httptransport.ListProposalsResponse{}, err
	}
	resp := httptransport.ListProposalsResponse{Items: make([]httptransport.ProposalResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, mapProposal(item))
	}
	return resp, nil
}

func (h Handler) TreasuryHandler(ctx context.Context, limit int) (httptransport.TreasuryResponse, error) {
	view, err := h.TreasuryQueries.View(ctx, limit)
	if err != nil {
		return httptransport.TreasuryResponse{}, err
	}
	resp := httptransport.TreasuryResponse{
		Identity:      view.Treasury.Identity,
		Owner:         view.Treasury.Owner,
		Balance:       view.Treasury.Balance.String(),
		UpdatedAt:     view.Treasury.UpdatedAt.UTC().Format(time.RFC3339),
		RecentEntries: make([]httptransport.TreasuryEntryItem, 0, len(view.RecentEntries)),
	}
	for _, entry := range view.RecentEntries {
		resp.RecentEntries = append(resp.RecentEntries, httptransport.TreasuryEntryItem{
			EntryID:      entry.EntryID,
			Kind:         string(entry.Kind),
			Amount:       entry.Amount.String(),
			Principal:    entry.Principal,
			ProposalID:   entry.ProposalID,
			BalanceAfter: entry.BalanceAfter.String(),
			CreatedAt:    entry.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}

func (h Handler) DepositHandler(
	ctx context.Context,
	depositor string,
	idempotencyKey string,
	req httptransport.DepositRequest,
) (httptransport.DepositResponse, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return httptransport.DepositResponse{}, domainerrors.ErrInvalidAmount
	}
	result, err := h.Treasury.Deposit(ctx, commands.DepositCommand{
		Depositor:      depositor,
		Amount:         amount,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.DepositResponse{}, err
	}
	return httptransport.DepositResponse{
		EntryID:  result.Entry.EntryID,
		Amount:   result.Entry.Amount.String(),
		Balance:  result.Treasury.Balance.String(),
		Replayed: result.Replayed,
	}, nil
}

func (h Handler) WithdrawHandler(ctx context.Context, caller string) (httptransport.WithdrawResponse, error) {
	result, err := h.Treasury.Withdraw(ctx, commands.WithdrawCommand{Caller: caller})
	if err != nil {
		return httptransport.WithdrawResponse{}, err
	}
	return httptransport.WithdrawResponse{
		PayoutID:  result.Payout.PayoutID,
		Recipient: result.Payout.Recipient,
		Amount:    result.Payout.Amount.String(),
		Balance:   result.Treasury.Balance.String(),
	}, nil
}

func mapProposal(proposal entities.Proposal) httptransport.ProposalResponse {
	resp := httptransport.ProposalResponse{
		ProposalID: proposal.ProposalID,
		AssetID:    proposal.AssetID,
		Deadline:   proposal.Deadline.UTC().Format(time.RFC3339),
		YayVotes:   proposal.YayVotes,
		NayVotes:   proposal.NayVotes,
		Executed:   proposal.Executed,
		Outcome:    string(proposal.Outcome),
		CreatedBy:  proposal.CreatedBy,
		CreatedAt:  proposal.CreatedAt.UTC().Format(time.RFC3339),
		ExecutedBy: proposal.ExecutedBy,
	}
	if proposal.Outcome == entities.OutcomePassed {
		resp.PurchasePrice = proposal.PurchasePrice.String()
	}
	if proposal.ExecutedAt != nil {
		executedAt := proposal.ExecutedAt.UTC().Format(time.RFC3339)
		resp.ExecutedAt = &executedAt
	}
	return resp
}
