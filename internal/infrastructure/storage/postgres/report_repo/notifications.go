package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/domain/notification"
	"shopledger/internal/infrastructure/storage/postgres"
)

// NotificationSource implements notification.Source over every shop.
type NotificationSource struct {
	txm *postgres.TxManager
}

var _ notification.Source = (*NotificationSource)(nil)

// NewNotificationSource creates the job data source.
func NewNotificationSource(txm *postgres.TxManager) *NotificationSource {
	return &NotificationSource{txm: txm}
}

func (s *NotificationSource) LowStockProducts(ctx context.Context) ([]notification.LowStockProduct, error) {
	const query = `
		SELECT p.id AS product_id, p.shop_id, s.owner_id, p.name, p.quantity
		FROM products p
		JOIN shops s ON s.id = p.shop_id
		WHERE p.quantity <= p.reorder_level
		ORDER BY p.shop_id, p.name
	`
	var out []notification.LowStockProduct
	if err := pgxscan.Select(ctx, s.txm.GetQuerier(ctx), &out, query); err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}
	return out, nil
}

func (s *NotificationSource) OverdueDocuments(ctx context.Context, kind string, cutoff time.Time) ([]notification.OverdueDocument, error) {
	const query = `
		SELECT d.id AS document_id, d.shop_id, s.owner_id, d.number, d.counterparty_name, d.amount_due
		FROM ledger_documents d
		JOIN shops s ON s.id = d.shop_id
		WHERE d.kind = $1
		  AND d.status = 'COMPLETED'
		  AND d.payment_status IN ('UNPAID', 'PARTIAL')
		  AND d.date < $2
		ORDER BY d.date
	`
	var out []notification.OverdueDocument
	if err := pgxscan.Select(ctx, s.txm.GetQuerier(ctx), &out, query, kind, cutoff); err != nil {
		return nil, fmt.Errorf("overdue documents: %w", err)
	}
	return out, nil
}
