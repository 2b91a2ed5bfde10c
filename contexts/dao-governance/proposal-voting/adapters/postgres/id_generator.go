package postgresadapter

import (
	"context"

	"github.com/google/uuid"
)

// UUIDGenerator issues ids for treasury entries, payouts and outbox events.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
