// Package entity holds the fields shared by every persisted ledger entity.
package entity

import (
	"context"
	"time"

	"shopledger/internal/core/id"
)

// Validatable is implemented by entities that check their own invariants
// without database access.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity contains the identity, optimistic-lock version and timestamps.
type BaseEntity struct {
	ID        id.ID     `db:"id" json:"id"`
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a BaseEntity with a fresh id and timestamps.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps the version and the update timestamp.
func (b *BaseEntity) Touch() {
	b.Version++
	b.UpdatedAt = time.Now().UTC()
}

// ShopScoped marks entities owned by a shop. Authorization of every
// operation below Shop reduces to the owner of ShopID.
type ShopScoped struct {
	ShopID id.ID `db:"shop_id" json:"shopId"`
}

// BelongsTo reports whether the entity is scoped to shopID.
func (s ShopScoped) BelongsTo(shopID id.ID) bool {
	return s.ShopID == shopID
}

// GetID returns the entity id.
func (b *BaseEntity) GetID() id.ID {
	return b.ID
}

// GetShopID returns the owning shop.
func (s ShopScoped) GetShopID() id.ID {
	return s.ShopID
}
