package product_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/documents"
	"shopledger/internal/domain/shop"
	"shopledger/internal/infrastructure/storage/memory"
)

func TestIssue_NeverGoesNegative(t *testing.T) {
	p := product.NewProduct(id.New(), "Rice 5kg")
	p.Quantity = 2

	err := p.Issue(3)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	assert.Equal(t, int64(2), p.Quantity)

	require.NoError(t, p.Issue(2))
	assert.Zero(t, p.Quantity)
	assert.True(t, p.IsLowStock())
}

func TestReverseReceipt(t *testing.T) {
	p := product.NewProduct(id.New(), "Oil 1L")
	p.Receive(4, types.MustMoney("210"))
	assert.Equal(t, "210", p.PurchasePrice.String())

	err := p.ReverseReceipt(5)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStockToReverse))
	require.NoError(t, p.ReverseReceipt(4))
	assert.Zero(t, p.Quantity)
}

func TestValidate(t *testing.T) {
	p := product.NewProduct(id.New(), "  ")
	assert.True(t, apperror.HasCode(p.Validate(t.Context()), apperror.CodeValidation))

	p = product.NewProduct(id.New(), "Soap")
	p.SellingPrice = types.MustMoney("-1")
	assert.True(t, apperror.HasCode(p.Validate(t.Context()), apperror.CodeValidation))

	p.SellingPrice = types.MustMoney("45")
	assert.NoError(t, p.Validate(t.Context()))
	assert.Equal(t, product.DefaultReorderLevel, p.ReorderLevel)
}

func TestDelete_GuardedByDocumentLines(t *testing.T) {
	store := memory.New()
	svc := product.NewService(store.Products(), store, store.Documents())
	ctx := t.Context()

	owner := id.New()
	sh := shop.NewShop(owner, "Corner Store")
	require.NoError(t, store.Shops().Create(ctx, sh))

	sold := product.NewProduct(sh.ID, "Tea 500g")
	sold.Quantity = 5
	sold.SellingPrice = types.MustMoney("300")
	unused := product.NewProduct(sh.ID, "Coffee 200g")
	require.NoError(t, svc.Create(ctx, sold))
	require.NoError(t, svc.Create(ctx, unused))

	sales := documents.NewService(documents.SaleFlow, store.LedgerDeps(shop.NewService(store.Shops())))
	_, err := sales.Create(ctx, documents.CreateCommand{
		ShopID:     sh.ID,
		UserID:     owner,
		Lines:      []documents.LineInput{{ProductID: sold.ID, Quantity: 1}},
		AmountPaid: types.MustMoney("300"),
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, sh.ID, sold.ID)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeReferencedEntity))

	require.NoError(t, svc.Delete(ctx, sh.ID, unused.ID))

	// Another shop cannot see the product.
	_, err = svc.GetByID(ctx, id.New(), sold.ID)
	assert.True(t, apperror.IsNotFound(err))
}
