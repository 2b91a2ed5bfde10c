package queries

import (
	"context"
	"sort"
	"strings"

	"cryptodao/contexts/dao-governance/membership-registry/domain/entities"
	"cryptodao/contexts/dao-governance/membership-registry/ports"
)

type UnitQueryUseCase struct {
	Units ports.UnitRepository
}

// UnitsHeldBy lists the unit ids owned by principal in ascending order. An
// empty result means the principal is not a member.
func (uc UnitQueryUseCase) UnitsHeldBy(ctx context.Context, principal string) ([]int64, error) {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return nil, nil
	}
	units, err := uc.Units.ListUnitsByOwner(ctx, principal)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(units))
	for _, unit := range units {
		ids = append(ids, unit.UnitID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (uc UnitQueryUseCase) GetUnit(ctx context.Context, unitID int64) (entities.Unit, error) {
	return uc.Units.GetUnit(ctx, unitID)
}
