// Package audit defines the ledger audit trail: who did what to which document or counterparty.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"shopledger/internal/core/id"
)

// Action is the audited operation.
type Action string

const (
	ActionCreate   Action = "create"
	ActionPay      Action = "pay"
	ActionCancel   Action = "cancel"
	ActionAllocate Action = "allocate"
	ActionDelete   Action = "delete"
)

// Event is one audited change. Changes is marshaled to JSON by the recorder.
type Event struct {
	ShopID     id.ID
	EntityType string
	EntityID   id.ID
	Action     Action
	UserID     id.ID
	Changes    any
}

// Entry is a stored audit record with decoded changes.
type Entry struct {
	ID         id.ID           `db:"id" json:"id"`
	ShopID     id.ID           `db:"shop_id" json:"shopId"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   id.ID           `db:"entity_id" json:"entityId"`
	Action     Action          `db:"action" json:"action"`
	UserID     id.ID           `db:"user_id" json:"userId"`
	Changes    json.RawMessage `db:"changes" json:"changes"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// Recorder appends audit events within the caller's transaction.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Reader returns the history of an entity, oldest first.
type Reader interface {
	History(ctx context.Context, shopID id.ID, entityType string, entityID id.ID) ([]Entry, error)
}
