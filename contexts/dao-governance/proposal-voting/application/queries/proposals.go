package queries

import (
	"context"
	"sort"

	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	"cryptodao/contexts/dao-governance/proposal-voting/ports"
)

// ProposalDetail is a proposal together with the principals that voted on it.
type ProposalDetail struct {
	Proposal entities.Proposal
	Ballots  []entities.Ballot
}

type ProposalQueryUseCase struct {
	Proposals ports.ProposalRepository
}

func (uc ProposalQueryUseCase) GetProposal(ctx context.Context, proposalID int64) (entities.Proposal, error) {
	return uc.Proposals.GetProposal(ctx, proposalID)
}

func (uc ProposalQueryUseCase) GetProposalDetail(ctx context.Context, proposalID int64) (ProposalDetail, error) {
	proposal, err := uc.Proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return ProposalDetail{}, err
	}
	ballots, err := uc.Proposals.ListBallots(ctx, proposalID)
	if err != nil {
		return ProposalDetail{}, err
	}
	sort.Slice(ballots, func(i, j int) bool {
		if ballots[i].CastAt.Equal(ballots[j].CastAt) {
			return ballots[i].Voter < ballots[j].Voter
		}
		return ballots[i].CastAt.Before(ballots[j].CastAt)
	})
	return ProposalDetail{Proposal: proposal, Ballots: ballots}, nil
}

// ListProposals returns every proposal in creation order.
func (uc ProposalQueryUseCase) ListProposals(ctx context.Context) ([]entities.Proposal, error) {
	items, err := uc.Proposals.ListProposals(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProposalID < items[j].ProposalID
	})
	return items, nil
}
