// Package cashflow provides the append-only Transaction ledger of a shop.
package cashflow

import (
	"context"
	"strings"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Type is the cash direction of a transaction.
type Type string

const (
	CashIn  Type = "CASH_IN"
	CashOut Type = "CASH_OUT"
)

// Opposite returns the reversing direction.
func (t Type) Opposite() Type {
	if t == CashIn {
		return CashOut
	}
	return CashIn
}

// IsValid reports whether t is a known direction.
func (t Type) IsValid() bool {
	return t == CashIn || t == CashOut
}

// Category classifies a transaction.
type Category string

const (
	CategorySalePayment     Category = "SALE_PAYMENT"
	CategoryPurchasePayment Category = "PURCHASE_PAYMENT"
	CategorySaleReturn      Category = "SALE_RETURN"
	CategoryPurchaseReturn  Category = "PURCHASE_RETURN"

	CategoryExpenseRent      Category = "EXPENSE_RENT"
	CategoryExpenseSalary    Category = "EXPENSE_SALARY"
	CategoryExpenseUtilities Category = "EXPENSE_UTILITIES"
	CategoryOwnerDrawing     Category = "OWNER_DRAWING"
	CategoryCapitalInjection Category = "CAPITAL_INJECTION"
	CategoryOtherIncome      Category = "OTHER_INCOME"
	CategoryOtherExpense     Category = "OTHER_EXPENSE"
)

var categories = map[Category]bool{
	CategorySalePayment:      true,
	CategoryPurchasePayment:  true,
	CategorySaleReturn:       true,
	CategoryPurchaseReturn:   true,
	CategoryExpenseRent:      false,
	CategoryExpenseSalary:    false,
	CategoryExpenseUtilities: false,
	CategoryOwnerDrawing:     false,
	CategoryCapitalInjection: false,
	CategoryOtherIncome:      false,
	CategoryOtherExpense:     false,
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	_, ok := categories[c]
	return ok
}

// IsProtected reports whether c may only be written by the sale and purchase flows.
func (c Category) IsProtected() bool {
	return categories[c]
}

// PaymentMethod is how money moved.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCard         PaymentMethod = "CARD"
	MethodCheque       PaymentMethod = "CHEQUE"
	MethodCredit       PaymentMethod = "CREDIT"
)

// IsValid reports whether m is a known method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCard, MethodCheque, MethodCredit:
		return true
	}
	return false
}

// OrDefault returns CASH for an empty method.
func (m PaymentMethod) OrDefault() PaymentMethod {
	if m == "" {
		return MethodCash
	}
	return m
}

// Transaction is an immutable cash-flow record. Corrections are made by
// writing a reversing transaction, never by editing or deleting one.
type Transaction struct {
	ID        id.ID     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	entity.ShopScoped

	Type          Type          `db:"type" json:"type"`
	Category      Category      `db:"category" json:"category"`
	Amount        types.Money   `db:"amount" json:"amount"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	Date          time.Time     `db:"date" json:"date"`
	Description   string        `db:"description" json:"description,omitempty"`

	SaleID     *id.ID `db:"sale_id" json:"saleId,omitempty"`
	PurchaseID *id.ID `db:"purchase_id" json:"purchaseId,omitempty"`
	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	CreatedBy id.ID `db:"created_by" json:"createdBy"`
}

// Validate implements entity.Validatable.
func (t *Transaction) Validate(_ context.Context) error {
	if !t.Type.IsValid() {
		return apperror.NewValidation("invalid transaction type").WithDetail("field", "type")
	}
	if !t.Category.IsValid() {
		return apperror.NewValidation("invalid transaction category").WithDetail("field", "category")
	}
	if !t.Amount.IsPositive() {
		return apperror.NewValidation("amount must be greater than zero").WithDetail("field", "amount")
	}
	if !t.PaymentMethod.IsValid() {
		return apperror.NewValidation("invalid payment method").WithDetail("field", "paymentMethod")
	}
	if t.CustomerID != nil && t.SupplierID != nil {
		return apperror.NewValidation("a transaction references either a customer or a supplier")
	}
	if t.Date.IsZero() {
		return apperror.NewValidation("date is required").WithDetail("field", "date")
	}
	return nil
}

// Entry describes a transaction to record.
type Entry struct {
	ShopID        id.ID
	Type          Type
	Category      Category
	Amount        types.Money
	PaymentMethod PaymentMethod
	Date          time.Time
	Description   string
	SaleID        *id.ID
	PurchaseID    *id.ID
	CustomerID    *id.ID
	SupplierID    *id.ID
	CreatedBy     id.ID
}

func (e Entry) build() *Transaction {
	date := e.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return &Transaction{
		ID:            id.New(),
		CreatedAt:     time.Now().UTC(),
		ShopScoped:    entity.ShopScoped{ShopID: e.ShopID},
		Type:          e.Type,
		Category:      e.Category,
		Amount:        types.Round(e.Amount),
		PaymentMethod: e.PaymentMethod.OrDefault(),
		Date:          date,
		Description:   strings.TrimSpace(e.Description),
		SaleID:        e.SaleID,
		PurchaseID:    e.PurchaseID,
		CustomerID:    e.CustomerID,
		SupplierID:    e.SupplierID,
		CreatedBy:     e.CreatedBy,
	}
}
