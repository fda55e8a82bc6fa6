// Package stock provides the stock register: locked quantity changes on
// products together with an append-only movement log per document.
package stock

import (
	"context"
	"time"

	"shopledger/internal/core/id"
)

// RecordType is the direction of a movement.
type RecordType string

const (
	RecordReceipt RecordType = "receipt"
	RecordExpense RecordType = "expense"
)

// Movement is one stock change caused by a document.
type Movement struct {
	ID         id.ID      `db:"id" json:"id"`
	ShopID     id.ID      `db:"shop_id" json:"shopId"`
	ProductID  id.ID      `db:"product_id" json:"productId"`
	DocumentID id.ID      `db:"document_id" json:"documentId"`
	RecordType RecordType `db:"record_type" json:"recordType"`
	Quantity   int64      `db:"quantity" json:"quantity"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

// Repository persists stock movements.
type Repository interface {
	CreateMovements(ctx context.Context, movements []Movement) error

	// ListByProduct returns a product's movements, newest first.
	ListByProduct(ctx context.Context, shopID, productID id.ID, limit int) ([]Movement, error)
}
