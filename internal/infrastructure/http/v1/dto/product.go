package dto

import (
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/product"
)

// ProductRequest is the body of product create and update.
// Stock quantity is set once on create; afterwards only the ledger changes it.
type ProductRequest struct {
	Name          string      `json:"name" binding:"required,max=200"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	PurchasePrice types.Money `json:"purchasePrice" binding:"money"`
	SellingPrice  types.Money `json:"sellingPrice" binding:"money"`
	Quantity      int64       `json:"quantity" binding:"min=0"`
	ReorderLevel  *int64      `json:"reorderLevel" binding:"omitempty,min=0"`
}

// ToEntity converts DTO to domain entity.
func (r *ProductRequest) ToEntity(shopID id.ID) *product.Product {
	p := product.NewProduct(shopID, r.Name)
	p.Quantity = r.Quantity
	r.apply(p)
	return p
}

// ApplyTo copies the editable fields onto an existing product.
func (r *ProductRequest) ApplyTo(p *product.Product) {
	p.Name = r.Name
	r.apply(p)
}

func (r *ProductRequest) apply(p *product.Product) {
	p.Description = r.Description
	p.Category = r.Category
	p.PurchasePrice = types.Round(r.PurchasePrice)
	p.SellingPrice = types.Round(r.SellingPrice)
	if r.ReorderLevel != nil {
		p.ReorderLevel = *r.ReorderLevel
	}
}
