// Package register_repo provides PostgreSQL implementations for the append-only
// registers: stock movements and cash-flow transactions.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/registers/stock"
	"shopledger/internal/infrastructure/storage/postgres"
)

const stockMovementsTable = "stock_movements"

var movementColumns = []string{
	"id", "shop_id", "product_id", "document_id", "record_type", "quantity", "created_at",
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txm *postgres.TxManager
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{txm: txm}
}

// CreateMovements batch inserts movements; COPY is used inside a transaction.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []stock.Movement) error {
	rows := make([][]any, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, []any{
			m.ID, m.ShopID, m.ProductID, m.DocumentID, string(m.RecordType), m.Quantity, m.CreatedAt,
		})
	}
	if _, err := r.txm.CopyFrom(ctx, stockMovementsTable, movementColumns, rows); err != nil {
		return fmt.Errorf("insert stock movements: %w", err)
	}
	return nil
}

// ListByProduct returns the latest movements of a product, newest first.
func (r *StockRepo) ListByProduct(ctx context.Context, shopID, productID id.ID, limit int) ([]stock.Movement, error) {
	q := postgres.Builder().
		Select(movementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"shop_id": shopID, "product_id": productID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []stock.Movement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return movements, nil
}
