package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/registers/stock"
	"shopledger/internal/infrastructure/storage/memory"
)

func seed(t *testing.T, store *memory.Store, shopID id.ID, name string, qty int64) *product.Product {
	t.Helper()
	p := product.NewProduct(shopID, name)
	p.Quantity = qty
	require.NoError(t, store.Products().Create(t.Context(), p))
	return p
}

func TestLock_DeduplicatesAndScopesToShop(t *testing.T) {
	store := memory.New()
	svc := stock.NewService(store.Products(), store.Movements())
	shopID := id.New()
	a := seed(t, store, shopID, "Flour", 3)
	b := seed(t, store, shopID, "Salt", 7)
	foreign := seed(t, store, id.New(), "Ghee", 1)

	locked, err := svc.Lock(t.Context(), shopID, []id.ID{b.ID, a.ID, b.ID})
	require.NoError(t, err)
	assert.Len(t, locked, 2)

	_, err = svc.Lock(t.Context(), shopID, []id.ID{a.ID, foreign.ID})
	assert.True(t, apperror.IsNotFound(err))
}

func TestApply_AllOrNothingWithinTransaction(t *testing.T) {
	store := memory.New()
	svc := stock.NewService(store.Products(), store.Movements())
	ctx := t.Context()
	shopID := id.New()
	a := seed(t, store, shopID, "Flour", 3)
	b := seed(t, store, shopID, "Salt", 1)
	docID := id.New()

	err := store.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := svc.Lock(ctx, shopID, []id.ID{a.ID, b.ID})
		if err != nil {
			return err
		}
		return svc.Apply(ctx, locked, docID, stock.OpIssue, []stock.Line{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 2},
		})
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	got, err := store.Products().GetByID(ctx, shopID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Quantity)
	history, err := svc.History(ctx, shopID, a.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestApply_ReceiveRecordsMovementsAndCost(t *testing.T) {
	store := memory.New()
	svc := stock.NewService(store.Products(), store.Movements())
	ctx := t.Context()
	shopID := id.New()
	a := seed(t, store, shopID, "Flour", 0)
	docID := id.New()

	locked, err := svc.Lock(ctx, shopID, []id.ID{a.ID})
	require.NoError(t, err)
	require.NoError(t, svc.Apply(ctx, locked, docID, stock.OpReceive, []stock.Line{
		{ProductID: a.ID, Quantity: 4, UnitCost: types.MustMoney("55.5")},
		{ProductID: a.ID, Quantity: 1, UnitCost: types.MustMoney("56")},
	}))

	got, err := store.Products().GetByID(ctx, shopID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Quantity)
	assert.Equal(t, "56.00", got.PurchasePrice.StringFixed(2))

	history, err := svc.History(ctx, shopID, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, stock.RecordReceipt, history[0].RecordType)
	assert.Equal(t, docID, history[0].DocumentID)
}
