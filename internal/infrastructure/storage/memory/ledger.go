package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/cashflow"
	"shopledger/internal/domain/registers/stock"
)

// TransactionRepo implements cashflow.Repository.
type TransactionRepo struct{ s *Store }

// Transactions returns the cash-flow repository.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

func (r *TransactionRepo) Create(_ context.Context, t *cashflow.Transaction) error {
	return r.s.write(func(d *state) error {
		d.transactions = append(d.transactions, *t)
		return nil
	})
}

func (r *TransactionRepo) GetByID(_ context.Context, shopID, transactionID id.ID) (*cashflow.Transaction, error) {
	var found *cashflow.Transaction
	r.s.read(func(d *state) {
		for _, t := range d.transactions {
			if t.ID == transactionID && t.ShopID == shopID {
				found = &t
				return
			}
		}
	})
	if found == nil {
		return nil, apperror.NewNotFound("transaction", transactionID.String())
	}
	return found, nil
}

func (r *TransactionRepo) List(_ context.Context, f cashflow.ListFilter) ([]*cashflow.Transaction, int64, error) {
	items := r.filter(f)
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.After(items[j].Date)
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return page(items, f.Limit, f.Offset), int64(len(items)), nil
}

func (r *TransactionRepo) Summarize(_ context.Context, f cashflow.ListFilter) (cashflow.Summary, error) {
	sum := cashflow.Summary{CashIn: types.Zero(), CashOut: types.Zero()}
	for _, t := range r.filter(f) {
		if t.Type == cashflow.CashIn {
			sum.CashIn = sum.CashIn.Add(t.Amount)
		} else {
			sum.CashOut = sum.CashOut.Add(t.Amount)
		}
	}
	sum.Net = sum.CashIn.Sub(sum.CashOut)
	return sum, nil
}

func (r *TransactionRepo) CountCounterpartyUsage(_ context.Context, shopID, counterpartyID id.ID) (int64, error) {
	var n int64
	r.s.read(func(d *state) {
		for _, t := range d.transactions {
			if t.ShopID == shopID && (sameID(t.CustomerID, counterpartyID) || sameID(t.SupplierID, counterpartyID)) {
				n++
			}
		}
	})
	return n, nil
}

func (r *TransactionRepo) filter(f cashflow.ListFilter) []*cashflow.Transaction {
	items := []*cashflow.Transaction{}
	r.s.read(func(d *state) {
		for _, t := range d.transactions {
			switch {
			case t.ShopID != f.ShopID:
				continue
			case f.Type != "" && t.Type != f.Type:
				continue
			case f.Category != "" && t.Category != f.Category:
				continue
			case f.CounterpartyID != nil && !sameID(t.CustomerID, *f.CounterpartyID) && !sameID(t.SupplierID, *f.CounterpartyID):
				continue
			case f.DocumentID != nil && !sameID(t.SaleID, *f.DocumentID) && !sameID(t.PurchaseID, *f.DocumentID):
				continue
			case f.From != nil && t.Date.Before(*f.From):
				continue
			case f.To != nil && t.Date.After(*f.To):
				continue
			case f.Search != "" && !contains(t.Description, f.Search):
				continue
			}
			items = append(items, &t)
		}
	})
	return items
}

func sameID(ref *id.ID, want id.ID) bool {
	return ref != nil && *ref == want
}

// MovementRepo implements stock.Repository.
type MovementRepo struct{ s *Store }

// Movements returns the stock movement repository.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

func (r *MovementRepo) CreateMovements(_ context.Context, movements []stock.Movement) error {
	return r.s.write(func(d *state) error {
		d.movements = append(d.movements, movements...)
		return nil
	})
}

func (r *MovementRepo) ListByProduct(_ context.Context, shopID, productID id.ID, limit int) ([]stock.Movement, error) {
	var out []stock.Movement
	r.s.read(func(d *state) {
		for _, m := range d.movements {
			if m.ShopID == shopID && m.ProductID == productID {
				out = append(out, m)
			}
		}
	})
	slices.Reverse(out)
	return page(out, limit, 0), nil
}

// AuditLog implements audit.Recorder and audit.Reader.
type AuditLog struct{ s *Store }

// Audit returns the audit trail.
func (s *Store) Audit() *AuditLog { return &AuditLog{s: s} }

func (a *AuditLog) Record(_ context.Context, event audit.Event) error {
	changes, err := json.Marshal(event.Changes)
	if err != nil {
		return fmt.Errorf("marshal audit changes: %w", err)
	}
	return a.s.write(func(d *state) error {
		d.audit = append(d.audit, audit.Entry{
			ID:         id.New(),
			ShopID:     event.ShopID,
			EntityType: event.EntityType,
			EntityID:   event.EntityID,
			Action:     event.Action,
			UserID:     event.UserID,
			Changes:    changes,
			CreatedAt:  time.Now().UTC(),
		})
		return nil
	})
}

func (a *AuditLog) History(_ context.Context, shopID id.ID, entityType string, entityID id.ID) ([]audit.Entry, error) {
	out := []audit.Entry{}
	a.s.read(func(d *state) {
		for _, e := range d.audit {
			if e.ShopID == shopID && e.EntityType == entityType && e.EntityID == entityID {
				out = append(out, e)
			}
		}
	})
	return out, nil
}
