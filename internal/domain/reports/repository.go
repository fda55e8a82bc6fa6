package reports

import (
	"context"
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Totals are the dashboard aggregates of a shop.
type Totals struct {
	CustomerCount   int64       `db:"customer_count"`
	SupplierCount   int64       `db:"supplier_count"`
	ReceivableTotal types.Money `db:"receivable_total"`
	PayableTotal    types.Money `db:"payable_total"`
}

// MonthTotal is the COMPLETED grand total of one calendar month.
type MonthTotal struct {
	Year  int         `db:"year"`
	Month int         `db:"month"`
	Total types.Money `db:"total"`
}

// Repository defines report data access interface.
type Repository interface {
	GetTotals(ctx context.Context, shopID id.ID) (Totals, error)

	// MonthlyTotals groups COMPLETED documents of kind ("sale" or "purchase") by month in [from, to).
	MonthlyTotals(ctx context.Context, shopID id.ID, kind string, from, to time.Time) ([]MonthTotal, error)
}
