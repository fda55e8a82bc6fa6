package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain"
	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/internal/infrastructure/storage/postgres"
)

const counterpartyTable = "counterparties"

// contactColumns are the only columns a catalog edit may change.
var contactColumns = []string{"name", "phone", "email", "address"}

// CounterpartyRepo implements counterparty.Repository for customers and suppliers.
type CounterpartyRepo struct {
	*BaseCatalogRepo[*counterparty.Counterparty]
}

var _ counterparty.Repository = (*CounterpartyRepo)(nil)

// NewCounterpartyRepo creates a new counterparty repository.
func NewCounterpartyRepo(txm *postgres.TxManager) *CounterpartyRepo {
	base := NewBaseCatalogRepo(
		txm,
		counterpartyTable,
		"counterparty",
		postgres.ExtractDBColumns[counterparty.Counterparty](),
		[]string{"name", "phone"},
		func() *counterparty.Counterparty { return &counterparty.Counterparty{} },
	)
	base.uniqueErr = func(c *counterparty.Counterparty, _ string) error {
		return duplicatePhone(c)
	}
	return &CounterpartyRepo{BaseCatalogRepo: base}
}

func duplicatePhone(c *counterparty.Counterparty) error {
	return apperror.NewDuplicate(c.Kind.Title(), "phone", c.Phone)
}

// Update changes contact fields only; balances belong to the ledger.
func (r *CounterpartyRepo) Update(ctx context.Context, c *counterparty.Counterparty) error {
	return r.UpdateColumns(ctx, c, contactColumns)
}

// FindByPhone retrieves a counterparty by phone within shop and kind.
func (r *CounterpartyRepo) FindByPhone(ctx context.Context, shopID id.ID, kind counterparty.Kind, phone string) (*counterparty.Counterparty, error) {
	q := r.baseSelect(shopID).
		Where(squirrel.Eq{"kind": kind, "phone": counterparty.NormalizePhone(phone)}).
		Limit(1)
	return r.FindOne(ctx, q, phone)
}

// GetForUpdate retrieves counterparty with row lock.
func (r *CounterpartyRepo) GetForUpdate(ctx context.Context, shopID, counterpartyID id.ID) (*counterparty.Counterparty, error) {
	return r.GetForUpdateOne(ctx, shopID, counterpartyID)
}

// SaveBalance persists CurrentBalance and TotalPaid of a locked counterparty.
func (r *CounterpartyRepo) SaveBalance(ctx context.Context, c *counterparty.Counterparty) error {
	return r.SetColumns(ctx, c, "current_balance", "total_paid")
}

// ListByKind lists customers or suppliers.
func (r *CounterpartyRepo) ListByKind(ctx context.Context, filter counterparty.ListFilter) (domain.ListResult[*counterparty.Counterparty], error) {
	var extra squirrel.Sqlizer
	if filter.Kind != "" {
		extra = squirrel.Eq{"kind": filter.Kind}
	}
	return r.ListWhere(ctx, filter.ListFilter, extra)
}
