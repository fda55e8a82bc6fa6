package memory

import (
	"context"
	"slices"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/internal/domain/documents"
	"shopledger/internal/domain/notification"
	"shopledger/internal/domain/reports"
)

// NotificationRepo implements notification.Repository.
type NotificationRepo struct{ s *Store }

// Notifications returns the notification repository.
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s: s} }

func (r *NotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	return r.s.write(func(d *state) error {
		d.notifications = append(d.notifications, *n)
		return nil
	})
}

func (r *NotificationRepo) ExistsUnread(_ context.Context, userID id.ID, link string, typ notification.Type) (bool, error) {
	var found bool
	r.s.read(func(d *state) {
		found = slices.ContainsFunc(d.notifications, func(n notification.Notification) bool {
			return n.UserID == userID && n.Link == link && n.Type == typ && !n.IsRead
		})
	})
	return found, nil
}

func (r *NotificationRepo) ListLatest(_ context.Context, userID id.ID, limit int) ([]*notification.Notification, error) {
	out := []*notification.Notification{}
	r.s.read(func(d *state) {
		for i := len(d.notifications) - 1; i >= 0; i-- {
			if n := d.notifications[i]; n.UserID == userID {
				out = append(out, &n)
			}
		}
	})
	return page(out, limit, 0), nil
}

func (r *NotificationRepo) CountUnread(_ context.Context, userID id.ID) (int64, error) {
	var n int64
	r.s.read(func(d *state) {
		for _, item := range d.notifications {
			if item.UserID == userID && !item.IsRead {
				n++
			}
		}
	})
	return n, nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, userID, notificationID id.ID) (*notification.Notification, error) {
	var found *notification.Notification
	_ = r.s.write(func(d *state) error {
		for i := range d.notifications {
			if d.notifications[i].ID == notificationID && d.notifications[i].UserID == userID {
				d.notifications[i].IsRead = true
				n := d.notifications[i]
				found = &n
				break
			}
		}
		return nil
	})
	if found == nil {
		return nil, apperror.NewNotFound("notification", notificationID.String())
	}
	return found, nil
}

func (r *NotificationRepo) MarkAllRead(_ context.Context, userID id.ID) (int64, error) {
	var n int64
	_ = r.s.write(func(d *state) error {
		for i := range d.notifications {
			if d.notifications[i].UserID == userID && !d.notifications[i].IsRead {
				d.notifications[i].IsRead = true
				n++
			}
		}
		return nil
	})
	return n, nil
}

// NotificationSource implements notification.Source across every shop.
type NotificationSource struct{ s *Store }

// NotificationSource returns the job data source.
func (s *Store) NotificationSource() *NotificationSource { return &NotificationSource{s: s} }

func (src *NotificationSource) LowStockProducts(_ context.Context) ([]notification.LowStockProduct, error) {
	var out []notification.LowStockProduct
	src.s.read(func(d *state) {
		for _, p := range d.products {
			sh, ok := d.shops[p.ShopID]
			if !ok || !p.IsLowStock() {
				continue
			}
			out = append(out, notification.LowStockProduct{
				ProductID: p.ID,
				ShopID:    p.ShopID,
				OwnerID:   sh.OwnerID,
				Name:      p.Name,
				Quantity:  p.Quantity,
			})
		}
	})
	return out, nil
}

func (src *NotificationSource) OverdueDocuments(_ context.Context, kind string, cutoff time.Time) ([]notification.OverdueDocument, error) {
	var out []notification.OverdueDocument
	src.s.read(func(d *state) {
		for _, doc := range d.documents {
			sh, ok := d.shops[doc.ShopID]
			if !ok || string(doc.Kind) != kind || !doc.IsOutstanding() || !doc.Date.Before(cutoff) {
				continue
			}
			out = append(out, notification.OverdueDocument{
				DocumentID:       doc.ID,
				ShopID:           doc.ShopID,
				OwnerID:          sh.OwnerID,
				Number:           doc.Number,
				CounterpartyName: doc.CounterpartyName,
				AmountDue:        doc.AmountDue,
			})
		}
	})
	return out, nil
}

// ReportRepo implements reports.Repository.
type ReportRepo struct{ s *Store }

// Reports returns the dashboard repository.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{s: s} }

func (r *ReportRepo) GetTotals(_ context.Context, shopID id.ID) (reports.Totals, error) {
	t := reports.Totals{ReceivableTotal: types.Zero(), PayableTotal: types.Zero()}
	r.s.read(func(d *state) {
		for _, c := range d.counterparties {
			if c.ShopID != shopID {
				continue
			}
			switch c.Kind {
			case counterparty.KindCustomer:
				t.CustomerCount++
				t.ReceivableTotal = t.ReceivableTotal.Add(c.CurrentBalance)
			case counterparty.KindSupplier:
				t.SupplierCount++
				t.PayableTotal = t.PayableTotal.Add(c.CurrentBalance)
			}
		}
	})
	return t, nil
}

func (r *ReportRepo) MonthlyTotals(_ context.Context, shopID id.ID, kind string, from, to time.Time) ([]reports.MonthTotal, error) {
	type month struct{ year, month int }
	totals := map[month]types.Money{}
	r.s.read(func(d *state) {
		for _, doc := range d.documents {
			if doc.ShopID != shopID || string(doc.Kind) != kind || doc.Status != documents.StatusCompleted {
				continue
			}
			if doc.Date.Before(from) || !doc.Date.Before(to) {
				continue
			}
			key := month{doc.Date.Year(), int(doc.Date.Month())}
			totals[key] = totals[key].Add(doc.GrandTotal)
		}
	})

	out := make([]reports.MonthTotal, 0, len(totals))
	for k, v := range totals {
		out = append(out, reports.MonthTotal{Year: k.year, Month: k.month, Total: v})
	}
	slices.SortFunc(out, func(a, b reports.MonthTotal) int {
		return (a.Year*12 + a.Month) - (b.Year*12 + b.Month)
	})
	return out, nil
}
