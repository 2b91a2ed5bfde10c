package ports

import (
	"context"
	"time"

	"cryptodao/contexts/dao-governance/membership-registry/domain/entities"
)

type UnitRepository interface {
	// MintUnit assigns the next unit id, starting at 1.
	MintUnit(ctx context.Context, owner string, mintedAt time.Time) (entities.Unit, error)
	GetUnit(ctx context.Context, unitID int64) (entities.Unit, error)
	// TransferUnit moves unitID from -> to, failing with ErrNotUnitOwner
	// when from no longer holds it.
	TransferUnit(ctx context.Context, unitID int64, from string, to string, at time.Time) (entities.Unit, error)
	ListUnitsByOwner(ctx context.Context, owner string) ([]entities.Unit, error)
}

type Clock interface {
	Now() time.Time
}
