package cashflow

import (
	"context"
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// ListFilter filters the transaction list.
type ListFilter struct {
	ShopID         id.ID
	Type           Type
	Category       Category
	CounterpartyID *id.ID
	DocumentID     *id.ID
	From           *time.Time
	To             *time.Time
	Search         string
	Limit          int
	Offset         int
}

// Summary totals the filtered transactions by direction.
type Summary struct {
	CashIn  types.Money `db:"cash_in" json:"cashIn"`
	CashOut types.Money `db:"cash_out" json:"cashOut"`
	Net     types.Money `db:"-" json:"net"`
}

// Repository persists transactions. There is no update or delete.
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, shopID, transactionID id.ID) (*Transaction, error)
	List(ctx context.Context, filter ListFilter) ([]*Transaction, int64, error)
	Summarize(ctx context.Context, filter ListFilter) (Summary, error)

	// CountCounterpartyUsage counts transactions linked to a customer or supplier.
	CountCounterpartyUsage(ctx context.Context, shopID, counterpartyID id.ID) (int64, error)
}
