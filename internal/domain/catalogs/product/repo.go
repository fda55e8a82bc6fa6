package product

import (
	"context"

	"shopledger/internal/core/id"
	"shopledger/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetForUpdate loads and row-locks the shop's products in ascending id order.
	// Missing or foreign ids yield NotFound.
	GetForUpdate(ctx context.Context, shopID id.ID, productIDs []id.ID) ([]*Product, error)

	// SaveStock persists quantity and purchase price of a locked product.
	SaveStock(ctx context.Context, p *Product) error
}

// UsageCounter counts ledger records referencing a product.
type UsageCounter interface {
	CountProductUsage(ctx context.Context, shopID, productID id.ID) (int64, error)
}
