package memory

import (
	"context"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain"
	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/internal/domain/catalogs/product"
)

// ProductRepo implements product.Repository.
type ProductRepo struct{ s *Store }

// Products returns the product repository.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) Create(_ context.Context, p *product.Product) error {
	return r.s.write(func(d *state) error {
		d.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, shopID, productID id.ID) (*product.Product, error) {
	var (
		p  product.Product
		ok bool
	)
	r.s.read(func(d *state) { p, ok = d.products[productID] })
	if !ok || p.ShopID != shopID {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return &p, nil
}

func (r *ProductRepo) Update(_ context.Context, p *product.Product) error {
	return r.s.write(func(d *state) error {
		stored, ok := d.products[p.ID]
		if !ok || stored.ShopID != p.ShopID {
			return apperror.NewNotFound("product", p.ID.String())
		}
		if stored.Version != p.Version {
			return apperror.NewConcurrentModification("product", p.ID.String())
		}
		p.Touch()
		d.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) Delete(_ context.Context, shopID, productID id.ID) error {
	return r.s.write(func(d *state) error {
		p, ok := d.products[productID]
		if !ok || p.ShopID != shopID {
			return apperror.NewNotFound("product", productID.String())
		}
		delete(d.products, productID)
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	items := []*product.Product{}
	r.s.read(func(d *state) {
		for _, p := range d.products {
			if p.ShopID != filter.ShopID {
				continue
			}
			if filter.Search != "" && !contains(p.Name, filter.Search) && !contains(p.Category, filter.Search) {
				continue
			}
			items = append(items, &p)
		}
	})
	sortNamed(items, filter.OrderBy,
		func(p *product.Product) string { return p.Name },
		func(p *product.Product) time.Time { return p.CreatedAt })

	return domain.ListResult[*product.Product]{
		Items:      page(items, filter.Limit, filter.Offset),
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func (r *ProductRepo) GetForUpdate(_ context.Context, shopID id.ID, productIDs []id.ID) ([]*product.Product, error) {
	out := make([]*product.Product, 0, len(productIDs))
	var missing *id.ID
	r.s.read(func(d *state) {
		for _, pid := range productIDs {
			p, ok := d.products[pid]
			if !ok || p.ShopID != shopID {
				missing = &pid
				return
			}
			out = append(out, &p)
		}
	})
	if missing != nil {
		return nil, apperror.NewNotFound("product", missing.String())
	}
	return out, nil
}

func (r *ProductRepo) SaveStock(_ context.Context, p *product.Product) error {
	return r.s.write(func(d *state) error {
		stored, ok := d.products[p.ID]
		if !ok {
			return apperror.NewNotFound("product", p.ID.String())
		}
		stored.Quantity = p.Quantity
		stored.PurchasePrice = p.PurchasePrice
		stored.Touch()
		p.Version, p.UpdatedAt = stored.Version, stored.UpdatedAt
		d.products[p.ID] = stored
		return nil
	})
}

// CounterpartyRepo implements counterparty.Repository.
type CounterpartyRepo struct{ s *Store }

// Counterparties returns the customer and supplier repository.
func (s *Store) Counterparties() *CounterpartyRepo { return &CounterpartyRepo{s: s} }

func (r *CounterpartyRepo) Create(_ context.Context, c *counterparty.Counterparty) error {
	return r.s.write(func(d *state) error {
		for _, existing := range d.counterparties {
			if existing.ShopID == c.ShopID && existing.Kind == c.Kind && existing.Phone == c.Phone {
				return apperror.NewDuplicate(c.Kind.Title(), "phone", c.Phone)
			}
		}
		d.counterparties[c.ID] = *c
		return nil
	})
}

func (r *CounterpartyRepo) GetByID(_ context.Context, shopID, counterpartyID id.ID) (*counterparty.Counterparty, error) {
	var (
		c  counterparty.Counterparty
		ok bool
	)
	r.s.read(func(d *state) { c, ok = d.counterparties[counterpartyID] })
	if !ok || c.ShopID != shopID {
		return nil, apperror.NewNotFound("counterparty", counterpartyID.String())
	}
	return &c, nil
}

// Update changes contact fields only; balances belong to the ledger.
func (r *CounterpartyRepo) Update(_ context.Context, c *counterparty.Counterparty) error {
	return r.s.write(func(d *state) error {
		stored, ok := d.counterparties[c.ID]
		if !ok || stored.ShopID != c.ShopID {
			return apperror.NewNotFound("counterparty", c.ID.String())
		}
		if stored.Version != c.Version {
			return apperror.NewConcurrentModification("counterparty", c.ID.String())
		}
		stored.Name, stored.Phone, stored.Email, stored.Address = c.Name, c.Phone, c.Email, c.Address
		stored.Touch()
		*c = stored
		d.counterparties[c.ID] = stored
		return nil
	})
}

func (r *CounterpartyRepo) Delete(_ context.Context, shopID, counterpartyID id.ID) error {
	return r.s.write(func(d *state) error {
		c, ok := d.counterparties[counterpartyID]
		if !ok || c.ShopID != shopID {
			return apperror.NewNotFound("counterparty", counterpartyID.String())
		}
		delete(d.counterparties, counterpartyID)
		return nil
	})
}

func (r *CounterpartyRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*counterparty.Counterparty], error) {
	return r.ListByKind(ctx, counterparty.ListFilter{ListFilter: filter})
}

func (r *CounterpartyRepo) ListByKind(_ context.Context, filter counterparty.ListFilter) (domain.ListResult[*counterparty.Counterparty], error) {
	items := []*counterparty.Counterparty{}
	r.s.read(func(d *state) {
		for _, c := range d.counterparties {
			if c.ShopID != filter.ShopID || (filter.Kind != "" && c.Kind != filter.Kind) {
				continue
			}
			if filter.Search != "" && !contains(c.Name, filter.Search) && !contains(c.Phone, filter.Search) {
				continue
			}
			items = append(items, &c)
		}
	})
	sortNamed(items, filter.OrderBy,
		func(c *counterparty.Counterparty) string { return c.Name },
		func(c *counterparty.Counterparty) time.Time { return c.CreatedAt })

	return domain.ListResult[*counterparty.Counterparty]{
		Items:      page(items, filter.Limit, filter.Offset),
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func (r *CounterpartyRepo) FindByPhone(_ context.Context, shopID id.ID, kind counterparty.Kind, phone string) (*counterparty.Counterparty, error) {
	var found *counterparty.Counterparty
	r.s.read(func(d *state) {
		for _, c := range d.counterparties {
			if c.ShopID == shopID && c.Kind == kind && c.Phone == phone {
				found = &c
				return
			}
		}
	})
	if found == nil {
		return nil, apperror.NewNotFound(string(kind), phone)
	}
	return found, nil
}

func (r *CounterpartyRepo) GetForUpdate(ctx context.Context, shopID, counterpartyID id.ID) (*counterparty.Counterparty, error) {
	return r.GetByID(ctx, shopID, counterpartyID)
}

func (r *CounterpartyRepo) SaveBalance(_ context.Context, c *counterparty.Counterparty) error {
	return r.s.write(func(d *state) error {
		stored, ok := d.counterparties[c.ID]
		if !ok {
			return apperror.NewNotFound("counterparty", c.ID.String())
		}
		stored.CurrentBalance = c.CurrentBalance
		stored.TotalPaid = c.TotalPaid
		stored.Touch()
		c.Version, c.UpdatedAt = stored.Version, stored.UpdatedAt
		d.counterparties[c.ID] = stored
		return nil
	})
}
