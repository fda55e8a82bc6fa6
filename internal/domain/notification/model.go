// Package notification provides the per-user notification inbox and the
// background jobs that fill it.
package notification

import (
	"context"
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Type classifies a notification.
type Type string

const (
	TypeLowStock          Type = "LOW_STOCK"
	TypePaymentDue        Type = "PAYMENT_DUE"
	TypeCollectionOverdue Type = "COLLECTION_OVERDUE"
)

// Notification is a message for a shop owner. Link points at the entity in the UI.
type Notification struct {
	ID        id.ID     `db:"id" json:"id"`
	ShopID    id.ID     `db:"shop_id" json:"shopId"`
	UserID    id.ID     `db:"user_id" json:"userId"`
	Type      Type      `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
	Link      string    `db:"link" json:"link"`
	IsRead    bool      `db:"is_read" json:"isRead"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// New creates an unread notification.
func New(shopID, userID id.ID, typ Type, message, link string) *Notification {
	return &Notification{
		ID:        id.New(),
		ShopID:    shopID,
		UserID:    userID,
		Type:      typ,
		Message:   message,
		Link:      link,
		CreatedAt: time.Now().UTC(),
	}
}

// Inbox is what the notification endpoint returns.
type Inbox struct {
	Items       []*Notification `json:"notifications"`
	UnreadCount int64           `json:"unreadCount"`
}

// Repository persists notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error

	// ExistsUnread reports an unread notification for the same user, link and type.
	ExistsUnread(ctx context.Context, userID id.ID, link string, typ Type) (bool, error)

	ListLatest(ctx context.Context, userID id.ID, limit int) ([]*Notification, error)
	CountUnread(ctx context.Context, userID id.ID) (int64, error)

	// MarkRead returns NotFound when the notification belongs to another user.
	MarkRead(ctx context.Context, userID, notificationID id.ID) (*Notification, error)
	MarkAllRead(ctx context.Context, userID id.ID) (int64, error)
}

// Publisher hands a stored notification on for live delivery. Notify calls
// it inside the transaction that creates the notification.
type Publisher interface {
	Publish(ctx context.Context, n *Notification) error
}

// LowStockProduct is a product at or below its reorder level.
type LowStockProduct struct {
	ProductID id.ID  `db:"product_id"`
	ShopID    id.ID  `db:"shop_id"`
	OwnerID   id.ID  `db:"owner_id"`
	Name      string `db:"name"`
	Quantity  int64  `db:"quantity"`
}

// OverdueDocument is a completed, not fully paid sale or purchase older than the grace period.
type OverdueDocument struct {
	DocumentID       id.ID       `db:"document_id"`
	ShopID           id.ID       `db:"shop_id"`
	OwnerID          id.ID       `db:"owner_id"`
	Number           string      `db:"number"`
	CounterpartyName string      `db:"counterparty_name"`
	AmountDue        types.Money `db:"amount_due"`
}

// Source finds the ledger conditions the jobs report on. It spans every shop.
type Source interface {
	LowStockProducts(ctx context.Context) ([]LowStockProduct, error)

	// OverdueDocuments returns outstanding documents of kind ("sale" or "purchase") dated before cutoff.
	OverdueDocuments(ctx context.Context, kind string, cutoff time.Time) ([]OverdueDocument, error)
}
