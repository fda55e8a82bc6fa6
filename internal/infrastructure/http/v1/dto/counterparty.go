package dto

import (
	"shopledger/internal/core/id"
	"shopledger/internal/domain/catalogs/counterparty"
)

// CounterpartyRequest is the body of customer and supplier create and update.
// Balances are owned by the ledger and cannot be set here.
type CounterpartyRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Phone   string `json:"phone" binding:"required,max=32"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
}

// ToEntity converts DTO to domain entity.
func (r *CounterpartyRequest) ToEntity(shopID id.ID, kind counterparty.Kind) *counterparty.Counterparty {
	c := counterparty.New(shopID, kind, r.Name, r.Phone)
	c.Email = r.Email
	c.Address = r.Address
	return c
}

// ApplyTo copies the contact fields onto an existing counterparty.
func (r *CounterpartyRequest) ApplyTo(c *counterparty.Counterparty) {
	c.Name = r.Name
	c.Phone = counterparty.NormalizePhone(r.Phone)
	c.Email = r.Email
	c.Address = r.Address
}
