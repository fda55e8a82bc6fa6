// Package documents provides the Sale and Purchase ledger documents and the
// lifecycle that keeps them consistent with stock, counterparty balances and
// the cash-flow ledger.
package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Kind distinguishes sales from purchases. Both share one document shape.
type Kind string

const (
	KindSale     Kind = "sale"
	KindPurchase Kind = "purchase"
)

// Type tells whether the document is booked against a counterparty or paid in cash.
type Type string

const (
	TypeCustomer Type = "CUSTOMER"
	TypeSupplier Type = "SUPPLIER"
	TypeCash     Type = "CASH"
)

// Status is the lifecycle state. CANCELLED is terminal.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// PaymentStatus is derived from amountDue and amountPaid.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// Document is a sale (invoice) or a purchase (bill).
//
// SubTotal, GrandTotal, AmountDue, PaymentStatus and every line Total are
// derived; ComputeDerivedFields must run before each persist.
type Document struct {
	entity.BaseEntity
	entity.ShopScoped

	Kind           Kind   `db:"kind" json:"kind"`
	Number         string `db:"number" json:"number"`
	Type           Type   `db:"type" json:"type"`
	CounterpartyID *id.ID `db:"counterparty_id" json:"counterpartyId,omitempty"`
	// CounterpartyName is a snapshot for listings; empty for cash documents.
	CounterpartyName string    `db:"counterparty_name" json:"counterpartyName,omitempty"`
	Date             time.Time `db:"date" json:"date"`

	Lines []Line `db:"-" json:"items"`

	SubTotal      types.Money   `db:"sub_total" json:"subTotal"`
	Discount      types.Money   `db:"discount" json:"discount"`
	Tax           types.Money   `db:"tax" json:"tax"`
	GrandTotal    types.Money   `db:"grand_total" json:"grandTotal"`
	AmountPaid    types.Money   `db:"amount_paid" json:"amountPaid"`
	AmountDue     types.Money   `db:"amount_due" json:"amountDue"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`
	Status        Status        `db:"status" json:"status"`

	PaymentMethod string     `db:"payment_method" json:"paymentMethod"`
	Notes         string     `db:"notes" json:"notes,omitempty"`
	CreatedBy     id.ID      `db:"created_by" json:"createdBy"`
	CancelledAt   *time.Time `db:"cancelled_at" json:"cancelledAt,omitempty"`
}

// Line is one item of a document.
// UnitPrice is the sale price or the purchase unit cost; UnitCost is the
// product's purchase price at the moment of sale (zero for purchases).
type Line struct {
	LineNo      int         `db:"line_no" json:"lineNo"`
	ProductID   id.ID       `db:"product_id" json:"productId"`
	ProductName string      `db:"product_name" json:"productName"`
	Quantity    int64       `db:"quantity" json:"quantity"`
	UnitPrice   types.Money `db:"unit_price" json:"unitPrice"`
	UnitCost    types.Money `db:"unit_cost" json:"unitCost"`
	Total       types.Money `db:"total" json:"total"`
}

// NewDocument creates an empty COMPLETED document of the given kind.
func NewDocument(shopID id.ID, kind Kind) *Document {
	return &Document{
		BaseEntity:    entity.NewBaseEntity(),
		ShopScoped:    entity.ShopScoped{ShopID: shopID},
		Kind:          kind,
		Status:        StatusCompleted,
		PaymentStatus: PaymentUnpaid,
		Date:          time.Now().UTC(),
		SubTotal:      types.Zero(),
		Discount:      types.Zero(),
		Tax:           types.Zero(),
		GrandTotal:    types.Zero(),
		AmountPaid:    types.Zero(),
		AmountDue:     types.Zero(),
	}
}

// IsCancelled reports whether the document is cancelled.
func (d *Document) IsCancelled() bool {
	return d.Status == StatusCancelled
}

// IsCash reports whether the document is a walk-in cash document.
func (d *Document) IsCash() bool {
	return d.Type == TypeCash
}

// IsOutstanding reports whether the document still has an open amount.
func (d *Document) IsOutstanding() bool {
	return d.Status == StatusCompleted && d.PaymentStatus != PaymentPaid
}

// Validate implements entity.Validatable.
func (d *Document) Validate(_ context.Context) error {
	if d.Kind != KindSale && d.Kind != KindPurchase {
		return apperror.NewValidation("invalid document kind").WithDetail("kind", d.Kind)
	}
	if len(d.Lines) == 0 {
		return apperror.NewValidation("at least one item is required").WithDetail("field", "items")
	}
	for i, line := range d.Lines {
		field := fmt.Sprintf("items[%d]", i)
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").WithDetail("field", field+".productId")
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be at least 1").WithDetail("field", field+".quantity")
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("price cannot be negative").WithDetail("field", field+".unitPrice")
		}
	}
	if d.Discount.IsNegative() {
		return apperror.NewValidation("discount cannot be negative").WithDetail("field", "discount")
	}
	if d.Tax.IsNegative() {
		return apperror.NewValidation("tax cannot be negative").WithDetail("field", "tax")
	}
	if d.Kind == KindPurchase && !d.Tax.IsZero() {
		return apperror.NewValidation("tax applies to sales only").WithDetail("field", "tax")
	}
	if d.AmountPaid.IsNegative() {
		return apperror.NewValidation("amount paid cannot be negative").WithDetail("field", "amountPaid")
	}
	if d.AmountPaid.GreaterThan(d.GrandTotal) {
		return apperror.NewValidation("amount paid cannot exceed the grand total").WithDetail("field", "amountPaid")
	}
	if d.GrandTotal.IsNegative() {
		return apperror.NewValidation("discount cannot exceed the subtotal").WithDetail("field", "discount")
	}
	if strings.TrimSpace(d.Number) == "" {
		return apperror.NewValidation("document number is required").WithDetail("field", "number")
	}
	return nil
}

// Allocation is the part of a lump payment applied to one document.
type Allocation struct {
	DocumentID id.ID       `json:"documentId"`
	Number     string      `json:"number"`
	Applied    types.Money `json:"applied"`
	AmountDue  types.Money `json:"amountDue"`
}
