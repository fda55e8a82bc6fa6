package catalog_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain"
	"shopledger/internal/domain/catalogs/counterparty"
)

func TestParseOrderBy(t *testing.T) {
	repo := NewProductRepo(nil)

	tests := []struct {
		in   string
		want string
	}{
		{"", "name ASC"},
		{"name", "name ASC"},
		{"-createdAt", "created_at DESC"},
		{"+selling_price", "selling_price ASC"},
		{"-quantity", "quantity DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrderBy_RejectsUnknownColumn(t *testing.T) {
	repo := NewProductRepo(nil)

	_, err := repo.parseOrderBy("name; DROP TABLE products")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = repo.parseOrderBy("-")
	assert.Error(t, err)
}

func TestListQuery_ScopesShopAndSearch(t *testing.T) {
	repo := NewCounterpartyRepo(nil)
	shopID := id.New()

	q := repo.listQuery(domain.ListFilter{ShopID: shopID, Search: " 9800 "}, squirrel.Eq{"kind": counterparty.KindCustomer})
	sql, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM counterparties WHERE shop_id = $1 AND kind = $2 AND (name ILIKE $3 OR phone ILIKE $4)")
	assert.Equal(t, []any{shopID.String(), counterparty.KindCustomer, "%9800%", "%9800%"}, args)
}

func TestProductColumns(t *testing.T) {
	repo := NewProductRepo(nil)

	assert.Equal(t, []string{
		"id", "version", "created_at", "updated_at", "shop_id",
		"name", "description", "category", "purchase_price", "selling_price", "quantity", "reorder_level",
	}, repo.selectCols)
}
