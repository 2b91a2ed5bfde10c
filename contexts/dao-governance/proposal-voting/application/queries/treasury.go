package queries

import (
	"context"

	"cryptodao/contexts/dao-governance/proposal-voting/domain/entities"
	"cryptodao/contexts/dao-governance/proposal-voting/ports"
)

const defaultEntryLimit = 50

type TreasuryView struct {
	Treasury      entities.Treasury
	RecentEntries []entities.TreasuryEntry
}

type TreasuryQueryUseCase struct {
	Proposals ports.ProposalRepository
}

func (uc TreasuryQueryUseCase) Balance(ctx context.Context) (entities.Treasury, error) {
	return uc.Proposals.GetTreasury(ctx)
}

// View returns the treasury with its most recent audit entries, newest first.
func (uc TreasuryQueryUseCase) View(ctx context.Context, limit int) (TreasuryView, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultEntryLimit
	}
	treasury, err := uc.Proposals.GetTreasury(ctx)
	if err != nil {
		return TreasuryView{}, err
	}
	entries, err := uc.Proposals.ListTreasuryEntries(ctx, limit)
	if err != nil {
		return TreasuryView{}, err
	}
	return TreasuryView{Treasury: treasury, RecentEntries: entries}, nil
}
