// Package product provides the Product catalog: shop-scoped goods with integer stock.
package product

import (
	"context"
	"strings"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// DefaultReorderLevel is the low-stock threshold used when none is given.
const DefaultReorderLevel int64 = 5

// Product is a stock item of a shop.
// Quantity never goes below zero; mutations that would do so fail.
type Product struct {
	entity.BaseEntity
	entity.ShopScoped

	Name          string      `db:"name" json:"name"`
	Description   string      `db:"description" json:"description,omitempty"`
	Category      string      `db:"category" json:"category,omitempty"`
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`
	SellingPrice  types.Money `db:"selling_price" json:"sellingPrice"`
	Quantity      int64       `db:"quantity" json:"quantity"`
	ReorderLevel  int64       `db:"reorder_level" json:"reorderLevel"`
}

// NewProduct creates a product with default reorder level.
func NewProduct(shopID id.ID, name string) *Product {
	return &Product{
		BaseEntity:   entity.NewBaseEntity(),
		ShopScoped:   entity.ShopScoped{ShopID: shopID},
		Name:         strings.TrimSpace(name),
		ReorderLevel: DefaultReorderLevel,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(_ context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("Product name is required.").WithDetail("field", "name")
	}
	if p.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").WithDetail("field", "purchasePrice")
	}
	if p.SellingPrice.IsNegative() {
		return apperror.NewValidation("selling price cannot be negative").WithDetail("field", "sellingPrice")
	}
	if p.Quantity < 0 {
		return apperror.NewValidation("quantity cannot be negative").WithDetail("field", "quantity")
	}
	if p.ReorderLevel < 0 {
		return apperror.NewValidation("reorder level cannot be negative").WithDetail("field", "reorderLevel")
	}
	return nil
}

// IsLowStock reports whether quantity has reached the reorder level.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.ReorderLevel
}

// Issue removes qty units from stock.
func (p *Product) Issue(qty int64) error {
	if p.Quantity < qty {
		return apperror.NewInsufficientStock(p.Name, qty, p.Quantity).
			WithDetail("productId", p.ID.String())
	}
	p.Quantity -= qty
	return nil
}

// Receive adds qty units and records unitCost as the latest purchase price.
func (p *Product) Receive(qty int64, unitCost types.Money) {
	p.Quantity += qty
	p.PurchasePrice = unitCost
}

// ReturnIssued puts back units removed by a cancelled sale.
func (p *Product) ReturnIssued(qty int64) {
	p.Quantity += qty
}

// ReverseReceipt removes units added by a cancelled purchase.
// It fails when part of the received stock was already sold.
func (p *Product) ReverseReceipt(qty int64) error {
	if p.Quantity < qty {
		return apperror.NewInsufficientStockToReverse(p.Name, qty, p.Quantity).
			WithDetail("productId", p.ID.String())
	}
	p.Quantity -= qty
	return nil
}
