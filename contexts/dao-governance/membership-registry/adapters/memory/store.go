package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"cryptodao/contexts/dao-governance/membership-registry/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/membership-registry/domain/errors"
)

type Store struct {
	mu     sync.RWMutex
	units  map[int64]entities.Unit
	nextID int64
}

func NewStore() *Store {
	return &Store{
		units:  make(map[int64]entities.Unit),
		nextID: 1,
	}
}

func (s *Store) MintUnit(_ context.Context, owner string, mintedAt time.Time) (entities.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit := entities.Unit{
		UnitID:    s.nextID,
		Owner:     strings.TrimSpace(owner),
		MintedAt:  mintedAt.UTC(),
		UpdatedAt: mintedAt.UTC(),
	}
	s.units[unit.UnitID] = unit
	s.nextID++
	return unit, nil
}

func (s *Store) GetUnit(_ context.Context, unitID int64) (entities.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	unit, ok := s.units[unitID]
	if !ok {
		return entities.Unit{}, domainerrors.ErrUnitNotFound
	}
	return unit, nil
}

func (s *Store) TransferUnit(_ context.Context, unitID int64, from string, to string, at time.Time) (entities.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit, ok := s.units[unitID]
	if !ok {
		return entities.Unit{}, domainerrors.ErrUnitNotFound
	}
	if unit.Owner != strings.TrimSpace(from) {
		return entities.Unit{}, domainerrors.ErrNotUnitOwner
	}
	unit.Owner = strings.TrimSpace(to)
	unit.UpdatedAt = at.UTC()
	s.units[unitID] = unit
	return unit, nil
}

func (s *Store) ListUnitsByOwner(_ context.Context, owner string) ([]entities.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner = strings.TrimSpace(owner)
	items := make([]entities.Unit, 0)
	for _, unit := range s.units {
		if unit.Owner == owner {
			items = append(items, unit)
		}
	}
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
