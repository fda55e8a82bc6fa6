// Package counterparty provides the Customer and Supplier catalogs.
// Both share one shape and differ only by Kind.
package counterparty

import (
	"context"
	"regexp"
	"strings"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Kind distinguishes customers from suppliers.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindSupplier Kind = "supplier"
)

// Title returns the display name of the kind ("Customer", "Supplier").
func (k Kind) Title() string {
	if k == KindSupplier {
		return "Supplier"
	}
	return "Customer"
}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	return k == KindCustomer || k == KindSupplier
}

// Counterparty is a customer or supplier of a shop.
//
// CurrentBalance is what a customer owes the shop, or what the shop owes a supplier.
// It equals the sum of amountDue over the party's non-cancelled documents and is
// only changed by the ledger, never by catalog edits.
// TotalPaid is the cumulative amount actually paid (totalSpent / totalSupplied).
type Counterparty struct {
	entity.BaseEntity
	entity.ShopScoped

	Kind           Kind        `db:"kind" json:"kind"`
	Name           string      `db:"name" json:"name"`
	Phone          string      `db:"phone" json:"phone"`
	Email          string      `db:"email" json:"email,omitempty"`
	Address        string      `db:"address" json:"address,omitempty"`
	CurrentBalance types.Money `db:"current_balance" json:"currentBalance"`
	TotalPaid      types.Money `db:"total_paid" json:"totalPaid"`
}

// New creates a counterparty of the given kind.
func New(shopID id.ID, kind Kind, name, phone string) *Counterparty {
	return &Counterparty{
		BaseEntity:     entity.NewBaseEntity(),
		ShopScoped:     entity.ShopScoped{ShopID: shopID},
		Kind:           kind,
		Name:           strings.TrimSpace(name),
		Phone:          NormalizePhone(phone),
		CurrentBalance: types.Zero(),
		TotalPaid:      types.Zero(),
	}
}

// NormalizePhone strips spaces so uniqueness is not defeated by formatting.
func NormalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}

// Validate implements entity.Validatable.
func (c *Counterparty) Validate(_ context.Context) error {
	if !c.Kind.IsValid() {
		return apperror.NewValidation("invalid counterparty kind").WithDetail("kind", c.Kind)
	}
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation(c.Kind.Title()+" name is required.").WithDetail("field", "name")
	}
	if c.Phone == "" {
		return apperror.NewValidation(c.Kind.Title()+" phone is required.").WithDetail("field", "phone")
	}
	if c.Email != "" && !emailRE.MatchString(c.Email) {
		return apperror.NewValidation("invalid email format").WithDetail("field", "email")
	}
	return nil
}

// ApplyDocument records a new document: the unpaid part raises the balance
// and the paid part raises the paid total.
func (c *Counterparty) ApplyDocument(amountDue, amountPaid types.Money) {
	c.CurrentBalance = c.CurrentBalance.Add(amountDue)
	c.TotalPaid = c.TotalPaid.Add(amountPaid)
}

// ApplyPayment records a payment settling earlier documents.
func (c *Counterparty) ApplyPayment(amount types.Money) {
	c.CurrentBalance = c.CurrentBalance.Sub(amount)
	c.TotalPaid = c.TotalPaid.Add(amount)
}

// ReverseDocument undoes ApplyDocument for a cancelled document.
func (c *Counterparty) ReverseDocument(amountDue, amountPaid types.Money) {
	c.CurrentBalance = c.CurrentBalance.Sub(amountDue)
	c.TotalPaid = c.TotalPaid.Sub(amountPaid)
}
