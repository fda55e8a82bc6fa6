package documents

import (
	"context"
	"time"

	"shopledger/internal/core/id"
)

// ListFilter for filtering sales or purchases.
type ListFilter struct {
	ShopID         id.ID
	Kind           Kind
	Search         string
	CounterpartyID *id.ID
	Type           Type
	Status         Status
	PaymentStatus  PaymentStatus
	DateFrom       *time.Time
	DateTo         *time.Time
	Limit          int
	Offset         int
}

// Repository defines persistence of ledger documents.
type Repository interface {
	// Create inserts header and lines. A number already used by the shop for
	// the same kind yields a Duplicate error.
	Create(ctx context.Context, doc *Document) error

	GetByID(ctx context.Context, shopID id.ID, kind Kind, docID id.ID) (*Document, error)

	// GetForUpdate loads the document with lines and row-locks the header.
	GetForUpdate(ctx context.Context, shopID id.ID, kind Kind, docID id.ID) (*Document, error)

	// Update persists header fields with optimistic locking. Lines are immutable.
	Update(ctx context.Context, doc *Document) error

	// List returns headers without lines, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Document, int64, error)

	// ListOutstandingForUpdate row-locks the counterparty's COMPLETED documents
	// that are UNPAID or PARTIAL, oldest first by date then number.
	ListOutstandingForUpdate(ctx context.Context, shopID id.ID, kind Kind, counterpartyID id.ID) ([]*Document, error)

	CountCounterpartyUsage(ctx context.Context, shopID, counterpartyID id.ID) (int64, error)
	CountProductUsage(ctx context.Context, shopID, productID id.ID) (int64, error)
}

// Numerator allocates document numbers per shop.
type Numerator interface {
	Next(ctx context.Context, shopID id.ID, prefix string, date time.Time) (string, error)
}
