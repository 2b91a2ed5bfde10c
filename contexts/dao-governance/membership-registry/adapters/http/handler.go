package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"cryptodao/contexts/dao-governance/membership-registry/application/commands"
	"cryptodao/contexts/dao-governance/membership-registry/application/queries"
	"cryptodao/contexts/dao-governance/membership-registry/domain/entities"
	httptransport "cryptodao/contexts/dao-governance/membership-registry/transport/http"
)

type Handler struct {
	Units  commands.UnitUseCase
	Query  queries.UnitQueryUseCase
	Logger *slog.Logger
}

func (h Handler) UnitsHeldHandler(ctx context.Context, principal string) (httptransport.UnitsHeldResponse, error) {
	ids, err := h.Query.UnitsHeldBy(ctx, principal)
	if err != nil {
		return httptransport.UnitsHeldResponse{}, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return httptransport.UnitsHeldResponse{
		Principal: strings.TrimSpace(principal),
		UnitIDs:   ids,
		Member:    len(ids) > 0,
	}, nil
}

func (h Handler) MintUnitHandler(
	ctx context.Context,
	actor string,
	req httptransport.MintUnitRequest,
) (httptransport.UnitResponse, error) {
	unit, err := h.Units.Mint(ctx, commands.MintCommand{Actor: actor, Owner: req.Owner})
	if err != nil {
		return httptransport.UnitResponse{}, err
	}
	return mapUnit(unit), nil
}

func (h Handler) TransferUnitHandler(
	ctx context.Context,
	actor string,
	unitID int64,
	req httptransport.TransferUnitRequest,
) (httptransport.UnitResponse, error) {
	unit, err := h.Units.Transfer(ctx, commands.TransferCommand{Actor: actor, UnitID: unitID, To: req.To})
	if err != nil {
		return httptransport.UnitResponse{}, err
	}
	return mapUnit(unit), nil
}

func mapUnit(unit entities.Unit) httptransport.UnitResponse {
	return httptransport.UnitResponse{
		UnitID:    unit.UnitID,
		Owner:     unit.Owner,
		MintedAt:  unit.MintedAt.UTC().Format(time.RFC3339),
		UpdatedAt: unit.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
