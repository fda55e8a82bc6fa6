package counterparty

import (
	"context"

	"shopledger/internal/core/id"
	"shopledger/internal/domain"
)

// ListFilter narrows a counterparty list to one kind.
type ListFilter struct {
	domain.ListFilter
	Kind Kind
}

// Repository defines the interface for Counterparty persistence.
// The embedded catalog methods operate on both kinds; callers check Kind.
type Repository interface {
	domain.CatalogRepository[*Counterparty]

	// FindByPhone retrieves a counterparty by phone within shop and kind.
	FindByPhone(ctx context.Context, shopID id.ID, kind Kind, phone string) (*Counterparty, error)

	// GetForUpdate retrieves counterparty with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, shopID, counterpartyID id.ID) (*Counterparty, error)

	// SaveBalance persists CurrentBalance and TotalPaid of a locked counterparty.
	SaveBalance(ctx context.Context, c *Counterparty) error

	ListByKind(ctx context.Context, filter ListFilter) (domain.ListResult[*Counterparty], error)
}

// UsageCounter counts ledger records referencing a counterparty.
type UsageCounter interface {
	CountCounterpartyUsage(ctx context.Context, shopID, counterpartyID id.ID) (int64, error)
}
