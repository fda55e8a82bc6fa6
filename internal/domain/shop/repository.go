package shop

import (
	"context"

	"shopledger/internal/core/id"
)

// Repository persists shops.
type Repository interface {
	Create(ctx context.Context, s *Shop) error
	GetByID(ctx context.Context, shopID id.ID) (*Shop, error)
	ListByOwner(ctx context.Context, ownerID id.ID) ([]*Shop, error)
}
