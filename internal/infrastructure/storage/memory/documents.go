package memory

import (
	"context"
	"sort"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/documents"
)

// DocumentRepo implements documents.Repository for sales and purchases.
type DocumentRepo struct{ s *Store }

// Documents returns the ledger document repository.
func (s *Store) Documents() *DocumentRepo { return &DocumentRepo{s: s} }

func (r *DocumentRepo) Create(_ context.Context, doc *documents.Document) error {
	return r.s.write(func(d *state) error {
		for _, existing := range d.documents {
			if existing.ShopID == doc.ShopID && existing.Kind == doc.Kind && existing.Number == doc.Number {
				return apperror.NewDuplicate(string(doc.Kind), "number", doc.Number)
			}
		}
		d.documents[doc.ID] = copyDocument(*doc)
		return nil
	})
}

func (r *DocumentRepo) GetByID(_ context.Context, shopID id.ID, kind documents.Kind, docID id.ID) (*documents.Document, error) {
	var (
		doc documents.Document
		ok  bool
	)
	r.s.read(func(d *state) {
		doc, ok = d.documents[docID]
		doc = copyDocument(doc)
	})
	if !ok || doc.ShopID != shopID || doc.Kind != kind {
		return nil, apperror.NewNotFound(string(kind), docID.String())
	}
	return &doc, nil
}

func (r *DocumentRepo) GetForUpdate(ctx context.Context, shopID id.ID, kind documents.Kind, docID id.ID) (*documents.Document, error) {
	return r.GetByID(ctx, shopID, kind, docID)
}

func (r *DocumentRepo) Update(_ context.Context, doc *documents.Document) error {
	return r.s.write(func(d *state) error {
		stored, ok := d.documents[doc.ID]
		if !ok || stored.ShopID != doc.ShopID {
			return apperror.NewNotFound(string(doc.Kind), doc.ID.String())
		}
		if stored.Version != doc.Version {
			return apperror.NewConcurrentModification(string(doc.Kind), doc.ID.String())
		}
		doc.Touch()
		updated := copyDocument(*doc)
		updated.Lines = stored.Lines
		d.documents[doc.ID] = updated
		return nil
	})
}

func (r *DocumentRepo) List(_ context.Context, f documents.ListFilter) ([]*documents.Document, int64, error) {
	items := []*documents.Document{}
	r.s.read(func(d *state) {
		for _, doc := range d.documents {
			if !matchDocument(doc, f) {
				continue
			}
			doc.Lines = nil
			items = append(items, &doc)
		}
	})
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.After(items[j].Date)
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return page(items, f.Limit, f.Offset), int64(len(items)), nil
}

func matchDocument(doc documents.Document, f documents.ListFilter) bool {
	switch {
	case doc.ShopID != f.ShopID || doc.Kind != f.Kind:
		return false
	case f.Search != "" && !contains(doc.Number, f.Search) && !contains(doc.CounterpartyName, f.Search):
		return false
	case f.CounterpartyID != nil && (doc.CounterpartyID == nil || *doc.CounterpartyID != *f.CounterpartyID):
		return false
	case f.Type != "" && doc.Type != f.Type:
		return false
	case f.Status != "" && doc.Status != f.Status:
		return false
	case f.PaymentStatus != "" && doc.PaymentStatus != f.PaymentStatus:
		return false
	case f.DateFrom != nil && doc.Date.Before(*f.DateFrom):
		return false
	case f.DateTo != nil && doc.Date.After(*f.DateTo):
		return false
	}
	return true
}

func (r *DocumentRepo) ListOutstandingForUpdate(_ context.Context, shopID id.ID, kind documents.Kind, counterpartyID id.ID) ([]*documents.Document, error) {
	items := []*documents.Document{}
	r.s.read(func(d *state) {
		for _, doc := range d.documents {
			if doc.ShopID != shopID || doc.Kind != kind || doc.CounterpartyID == nil || *doc.CounterpartyID != counterpartyID {
				continue
			}
			if !doc.IsOutstanding() {
				continue
			}
			doc = copyDocument(doc)
			items = append(items, &doc)
		}
	})
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		return items[i].Number < items[j].Number
	})
	return items, nil
}

func (r *DocumentRepo) CountCounterpartyUsage(_ context.Context, shopID, counterpartyID id.ID) (int64, error) {
	var n int64
	r.s.read(func(d *state) {
		for _, doc := range d.documents {
			if doc.ShopID == shopID && doc.CounterpartyID != nil && *doc.CounterpartyID == counterpartyID {
				n++
			}
		}
	})
	return n, nil
}

func (r *DocumentRepo) CountProductUsage(_ context.Context, shopID, productID id.ID) (int64, error) {
	var n int64
	r.s.read(func(d *state) {
		for _, doc := range d.documents {
			if doc.ShopID != shopID {
				continue
			}
			for _, l := range doc.Lines {
				if l.ProductID == productID {
					n++
				}
			}
		}
	})
	return n, nil
}
