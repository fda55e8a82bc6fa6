// Package shop provides the Shop aggregate, the tenant boundary of the ledger.
package shop

import (
	"context"
	"strings"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
)

// Shop is owned by exactly one user. Every product, counterparty, document
// and transaction belongs to one shop.
type Shop struct {
	entity.BaseEntity

	OwnerID       id.ID  `db:"owner_id" json:"ownerId"`
	Name          string `db:"name" json:"name"`
	Address       string `db:"address" json:"address,omitempty"`
	ContactNumber string `db:"contact_number" json:"contactNumber,omitempty"`
}

// NewShop creates a shop owned by ownerID.
func NewShop(ownerID id.ID, name string) *Shop {
	return &Shop{
		BaseEntity: entity.NewBaseEntity(),
		OwnerID:    ownerID,
		Name:       strings.TrimSpace(name),
	}
}

// Validate implements entity.Validatable.
func (s *Shop) Validate(_ context.Context) error {
	if s.Name == "" {
		return apperror.NewValidation("Shop name is required.").WithDetail("field", "name")
	}
	if id.IsNil(s.OwnerID) {
		return apperror.NewValidation("shop owner is required").WithDetail("field", "ownerId")
	}
	return nil
}

// IsOwnedBy reports whether userID owns the shop.
func (s *Shop) IsOwnedBy(userID id.ID) bool {
	return s.OwnerID == userID
}
