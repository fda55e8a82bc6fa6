package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"shopledger/internal/core/types"
	"shopledger/pkg/logger"
)

var tracer = otel.Tracer("shopledger/notification")

// DefaultOverdueAfter is how old an unsettled document must be to be reported.
const DefaultOverdueAfter = 15 * 24 * time.Hour

// Jobs scans the ledger and raises notifications for shop owners.
type Jobs struct {
	svc          *Service
	source       Source
	overdueAfter time.Duration
	now          func() time.Time
}

// NewJobs creates the notification jobs.
func NewJobs(svc *Service, source Source, overdueAfter time.Duration) *Jobs {
	if overdueAfter <= 0 {
		overdueAfter = DefaultOverdueAfter
	}
	return &Jobs{
		svc:          svc,
		source:       source,
		overdueAfter: overdueAfter,
		now:          time.Now,
	}
}

// RunAll runs every job and joins their errors.
func (j *Jobs) RunAll(ctx context.Context) error {
	var errs []error
	if _, err := j.LowStock(ctx); err != nil {
		errs = append(errs, fmt.Errorf("low stock: %w", err))
	}
	if _, err := j.OverdueCollections(ctx); err != nil {
		errs = append(errs, fmt.Errorf("overdue collections: %w", err))
	}
	if _, err := j.PaymentsDue(ctx); err != nil {
		errs = append(errs, fmt.Errorf("payments due: %w", err))
	}
	return errors.Join(errs...)
}

// LowStock notifies owners of products at or below their reorder level.
func (j *Jobs) LowStock(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "notification.LowStock")
	defer span.End()

	products, err := j.source.LowStockProducts(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, p := range products {
		n := New(p.ShopID, p.OwnerID, TypeLowStock,
			fmt.Sprintf("%s is running low on stock (Current: %d).", p.Name, p.Quantity),
			"/products/"+p.ProductID.String())
		ok, err := j.svc.Notify(ctx, n)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	span.SetAttributes(attribute.Int("notifications.created", created))
	logger.Info(ctx, "low stock check finished", "candidates", len(products), "created", created)
	return created, nil
}

// OverdueCollections notifies owners of customer sales left unpaid past the grace period.
func (j *Jobs) OverdueCollections(ctx context.Context) (int, error) {
	return j.overdue(ctx, "sale", TypeCollectionOverdue, "/sales/", func(d OverdueDocument) string {
		return fmt.Sprintf("Payment of Rs. %s from %s is overdue.", amount(d.AmountDue), d.CounterpartyName)
	})
}

// PaymentsDue notifies owners of supplier bills left unpaid past the grace period.
func (j *Jobs) PaymentsDue(ctx context.Context) (int, error) {
	return j.overdue(ctx, "purchase", TypePaymentDue, "/purchases/", func(d OverdueDocument) string {
		return fmt.Sprintf("Payment of Rs. %s to %s is due.", amount(d.AmountDue), d.CounterpartyName)
	})
}

func (j *Jobs) overdue(
	ctx context.Context,
	kind string,
	typ Type,
	linkPrefix string,
	message func(OverdueDocument) string,
) (int, error) {
	ctx, span := tracer.Start(ctx, "notification."+string(typ))
	defer span.End()

	cutoff := j.now().Add(-j.overdueAfter)
	docs, err := j.source.OverdueDocuments(ctx, kind, cutoff)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, d := range docs {
		n := New(d.ShopID, d.OwnerID, typ, message(d), linkPrefix+d.DocumentID.String())
		ok, err := j.svc.Notify(ctx, n)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	span.SetAttributes(attribute.Int("notifications.created", created))
	logger.Info(ctx, "overdue check finished", "type", typ, "candidates", len(docs), "created", created)
	return created, nil
}

func amount(m types.Money) string {
	return m.StringFixed(types.MoneyScale)
}
