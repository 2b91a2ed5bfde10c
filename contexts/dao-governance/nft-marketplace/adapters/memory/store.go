package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"cryptodao/contexts/dao-governance/nft-marketplace/domain/entities"
	domainerrors "cryptodao/contexts/dao-governance/nft-marketplace/domain/errors"
)

type Store struct {
	mu    sync.RWMutex
	sales map[int64]entities.Sale
}

func NewStore() *Store {
	return &Store{sales: make(map[int64]entities.Sale)}
}

func (s *Store) GetSale(_ context.Context, assetID int64) (entities.Sale, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[assetID]
	return sale, ok, nil
}

func (s *Store) RecordSale(_ context.Context, sale entities.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, owned := s.sales[sale.AssetID]; owned {
		return domainerrors.ErrNotAvailable
	}
	sale.Buyer = strings.TrimSpace(sale.Buyer)
	s.sales[sale.AssetID] = sale
	return nil
}

func (s *Store) ListSales(_ context.Context) ([]entities.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		items = append(items, sale)
	}
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
