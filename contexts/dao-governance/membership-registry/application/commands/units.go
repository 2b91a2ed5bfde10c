package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "cryptodao/contexts/dao-governance/membership-registry/application"
	"cryptodao/contexts/dao-governance/membership-registry/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/membership-registry/domain/errors"
	"cryptodao/contexts/dao-governance/membership-registry/ports"
)

type MintCommand struct {
	Actor string
	Owner string
}

type TransferCommand struct {
	Actor  string
	UnitID int64
	To     string
}

// UnitUseCase issues and moves governance units. Only Admin may mint; an
// empty Admin disables minting over the API.
type UnitUseCase struct {
	Units  ports.UnitRepository
	Clock  ports.Clock
	Admin  string
	Logger *slog.Logger
}

func (uc UnitUseCase) Mint(ctx context.Context, cmd MintCommand) (entities.Unit, error) {
	logger := application.ResolveLogger(uc.Logger)
	actor := strings.TrimSpace(cmd.Actor)
	owner := strings.TrimSpace(cmd.Owner)
	admin := strings.TrimSpace(uc.Admin)
	if admin == "" || actor != admin {
		return entities.Unit{}, domainerrors.ErrNotAdmin
	}
	if owner == "" {
		return entities.Unit{}, domainerrors.ErrInvalidPrincipal
	}

	unit, err := uc.Units.MintUnit(ctx, owner, uc.now())
	if err != nil {
		logger.Error("membership unit mint failed",
			"event", "membership_unit_mint_failed",
			"module", "dao-governance/membership-registry",
			"layer", "application",
			"owner", owner,
			"error", err.Error(),
		)
		return entities.Unit{}, err
	}
	logger.Info("membership unit minted",
		"event", "membership_unit_minted",
		"module", "dao-governance/membership-registry",
		"layer", "application",
		"unit_id", unit.UnitID,
		"owner", owner,
	)
	return unit, nil
}

func (uc UnitUseCase) Transfer(ctx context.Context, cmd TransferCommand) (entities.Unit, error) {
	logger := application.ResolveLogger(uc.Logger)
	actor := strings.TrimSpace(cmd.Actor)
	to := strings.TrimSpace(cmd.To)
	if actor == "" || to == "" {
		return entities.Unit{}, domainerrors.ErrInvalidPrincipal
	}

	unit, err := uc.Units.TransferUnit(ctx, cmd.UnitID, actor, to, uc.now())
	if err != nil {
		logger.Warn("membership unit transfer rejected",
			"event", "membership_unit_transfer_failed",
			"module", "dao-governance/membership-registry",
			"layer", "application",
			"unit_id", cmd.UnitID,
			"from", actor,
			"to", to,
			"error", err.Error(),
		)
		return entities.Unit{}, err
	}
	logger.Info("membership unit transferred",
		"event", "membership_unit_transferred",
		"module", "dao-governance/membership-registry",
		"layer", "application",
		"unit_id", unit.UnitID,
		"from", actor,
		"to", to,
	)
	return unit, nil
}

func (uc UnitUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
