package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/infrastructure/storage/postgres"
)

const productTable = "products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			productTable,
			"product",
			postgres.ExtractDBColumns[product.Product](),
			[]string{"name", "category"},
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetForUpdate locks the rows in ascending id order so concurrent documents
// touching overlapping products cannot deadlock.
func (r *ProductRepo) GetForUpdate(ctx context.Context, shopID id.ID, productIDs []id.ID) ([]*product.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	q := r.baseSelect(shopID).
		Where(squirrel.Eq{"id": productIDs}).
		OrderBy("id ASC").
		Suffix("FOR UPDATE")

	items, err := r.FindMany(ctx, q)
	if err != nil {
		return nil, err
	}

	found := make(map[id.ID]*product.Product, len(items))
	for _, p := range items {
		found[p.ID] = p
	}
	out := make([]*product.Product, 0, len(productIDs))
	for _, pid := range productIDs {
		p, ok := found[pid]
		if !ok {
			return nil, apperror.NewNotFound("product", pid.String())
		}
		out = append(out, p)
	}
	return out, nil
}

// SaveStock persists quantity and purchase price of a locked product.
func (r *ProductRepo) SaveStock(ctx context.Context, p *product.Product) error {
	return r.SetColumns(ctx, p, "quantity", "purchase_price")
}
