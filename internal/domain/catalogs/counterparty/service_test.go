package counterparty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain"
	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/documents"
	"shopledger/internal/domain/shop"
	"shopledger/internal/infrastructure/storage/memory"
)

func newService(store *memory.Store) *counterparty.Service {
	return counterparty.NewService(store.Counterparties(), store, store.Documents(), store.Transactions())
}

func TestCreate_DuplicatePhonePerShopAndKind(t *testing.T) {
	store := memory.New()
	svc := newService(store)
	ctx := t.Context()
	shopID := id.New()

	require.NoError(t, svc.Create(ctx, counterparty.New(shopID, counterparty.KindCustomer, "Ram", "980 000 0001")))

	err := svc.Create(ctx, counterparty.New(shopID, counterparty.KindCustomer, "Shyam", "9800000001"))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
	assert.Contains(t, err.Error(), "Customer with this phone is already registered")

	// Same phone is fine for a supplier or for another shop.
	require.NoError(t, svc.Create(ctx, counterparty.New(shopID, counterparty.KindSupplier, "Ram Traders", "9800000001")))
	require.NoError(t, svc.Create(ctx, counterparty.New(id.New(), counterparty.KindCustomer, "Ram", "9800000001")))
}

func TestCreate_Validation(t *testing.T) {
	svc := newService(memory.New())

	c := counterparty.New(id.New(), counterparty.KindCustomer, "", "9800000001")
	err := svc.Create(t.Context(), c)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	c = counterparty.New(id.New(), counterparty.KindCustomer, "Ram", "9800000001")
	c.Email = "not-an-email"
	err = svc.Create(t.Context(), c)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestDelete_GuardedByLedgerReferences(t *testing.T) {
	store := memory.New()
	svc := newService(store)
	ctx := t.Context()

	owner := id.New()
	sh := shop.NewShop(owner, "Corner Store")
	require.NoError(t, store.Shops().Create(ctx, sh))

	p := product.NewProduct(sh.ID, "Tea 500g")
	p.Quantity = 10
	p.SellingPrice = types.MustMoney("300")
	require.NoError(t, store.Products().Create(ctx, p))

	linked := counterparty.New(sh.ID, counterparty.KindCustomer, "Ram", "9800000001")
	unlinked := counterparty.New(sh.ID, counterparty.KindCustomer, "Sita", "9800000002")
	require.NoError(t, svc.Create(ctx, linked))
	require.NoError(t, svc.Create(ctx, unlinked))

	sales := documents.NewService(documents.SaleFlow, store.LedgerDeps(shop.NewService(store.Shops())))
	_, err := sales.Create(ctx, documents.CreateCommand{
		ShopID:         sh.ID,
		UserID:         owner,
		CounterpartyID: &linked.ID,
		Lines:          []documents.LineInput{{ProductID: p.ID, Quantity: 1}},
		AmountPaid:     types.MustMoney("100"),
	})
	require.NoError(t, err)

	err = svc.DeleteOfKind(ctx, sh.ID, counterparty.KindCustomer, linked.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, int64(2), appErr.Details["references"])

	require.NoError(t, svc.DeleteOfKind(ctx, sh.ID, counterparty.KindCustomer, unlinked.ID))
	_, err = svc.GetByID(ctx, sh.ID, unlinked.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteOfKind_WrongKind(t *testing.T) {
	store := memory.New()
	svc := newService(store)
	shopID := id.New()
	supplier := counterparty.New(shopID, counterparty.KindSupplier, "Wholesale Co", "014000000")
	require.NoError(t, svc.Create(t.Context(), supplier))

	err := svc.DeleteOfKind(t.Context(), shopID, counterparty.KindCustomer, supplier.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestListByKind_SearchAndSort(t *testing.T) {
	store := memory.New()
	svc := newService(store)
	ctx := t.Context()
	shopID := id.New()

	for _, c := range []*counterparty.Counterparty{
		counterparty.New(shopID, counterparty.KindCustomer, "Shyam", "9800000003"),
		counterparty.New(shopID, counterparty.KindCustomer, "Anita", "9800000004"),
		counterparty.New(shopID, counterparty.KindSupplier, "Asha Traders", "9800000005"),
	} {
		require.NoError(t, svc.Create(ctx, c))
	}

	filter := counterparty.ListFilter{ListFilter: domain.DefaultListFilter(shopID), Kind: counterparty.KindCustomer}
	res, err := svc.ListByKind(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalCount)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Anita", res.Items[0].Name)

	filter.Search = "shy"
	res, err = svc.ListByKind(ctx, filter)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Shyam", res.Items[0].Name)
}
