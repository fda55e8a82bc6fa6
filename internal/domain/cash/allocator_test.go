package cash_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/cash"
	"shopledger/internal/domain/cashflow"
	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/documents"
	"shopledger/internal/domain/shop"
	"shopledger/internal/infrastructure/storage/memory"
)

type fixture struct {
	store     *memory.Store
	ownerID   id.ID
	shopID    id.ID
	sales     *documents.Service
	purchases *documents.Service
	allocator *cash.Allocator
	product   *product.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	shops := shop.NewService(store.Shops())
	owner := id.New()
	sh := shop.NewShop(owner, "Corner Store")
	require.NoError(t, shops.Create(t.Context(), sh))

	p := product.NewProduct(sh.ID, "Sugar 1kg")
	p.Quantity = 100
	p.PurchasePrice = types.MustMoney("40")
	p.SellingPrice = types.MustMoney("50")
	require.NoError(t, store.Products().Create(t.Context(), p))

	deps := store.LedgerDeps(shops)
	return &fixture{
		store:     store,
		ownerID:   owner,
		shopID:    sh.ID,
		sales:     documents.NewService(documents.SaleFlow, deps),
		purchases: documents.NewService(documents.PurchaseFlow, deps),
		allocator: cash.NewAllocator(deps),
		product:   p,
	}
}

func (f *fixture) sale(t *testing.T, customerID id.ID, qty int64, daysAgo int) *documents.Document {
	t.Helper()
	doc, err := f.sales.Create(t.Context(), documents.CreateCommand{
		ShopID:         f.shopID,
		UserID:         f.ownerID,
		CounterpartyID: &customerID,
		Lines:          []documents.LineInput{{ProductID: f.product.ID, Quantity: qty}},
		Date:           time.Now().AddDate(0, 0, -daysAgo),
	})
	require.NoError(t, err)
	return doc
}

func (f *fixture) purchase(t *testing.T, supplierID id.ID, qty int64, daysAgo int) *documents.Document {
	t.Helper()
	doc, err := f.purchases.Create(t.Context(), documents.CreateCommand{
		ShopID:         f.shopID,
		UserID:         f.ownerID,
		CounterpartyID: &supplierID,
		Lines:          []documents.LineInput{{ProductID: f.product.ID, Quantity: qty}},
		Date:           time.Now().AddDate(0, 0, -daysAgo),
	})
	require.NoError(t, err)
	return doc
}

// requireBalanceMatchesDue checks the counterparty balance against the sum of
// amountDue over its completed documents.
func (f *fixture) requireBalanceMatchesDue(t *testing.T, kind documents.Kind, counterpartyID id.ID) {
	t.Helper()
	ctx := t.Context()
	docs, _, err := f.store.Documents().List(ctx, documents.ListFilter{
		ShopID:         f.shopID,
		Kind:           kind,
		CounterpartyID: &counterpartyID,
		Status:         documents.StatusCompleted,
	})
	require.NoError(t, err)

	sum := types.Zero()
	for _, d := range docs {
		sum = sum.Add(d.AmountDue)
	}
	cp, err := f.store.Counterparties().GetByID(ctx, f.shopID, counterpartyID)
	require.NoError(t, err)
	assert.Equal(t, sum.StringFixed(2), cp.CurrentBalance.StringFixed(2))
}

func TestCashIn_SettlesOldestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	customer := counterparty.New(f.shopID, counterparty.KindCustomer, "Ram Bahadur", "9800000001")
	require.NoError(t, f.store.Counterparties().Create(ctx, customer))

	// dues of 150 (newer) and 200 (older)
	newer := f.sale(t, customer.ID, 3, 1)
	older := f.sale(t, customer.ID, 4, 10)

	res, err := f.allocator.CashIn(ctx, cash.Command{
		ShopID:         f.shopID,
		UserID:         f.ownerID,
		CounterpartyID: customer.ID,
		Amount:         types.MustMoney("300"),
	})
	require.NoError(t, err)

	require.Len(t, res.Allocations, 2)
	assert.Equal(t, older.ID, res.Allocations[0].DocumentID)
	assert.Equal(t, "200.00", res.Allocations[0].Applied.StringFixed(2))
	assert.Equal(t, newer.ID, res.Allocations[1].DocumentID)
	assert.Equal(t, "100.00", res.Allocations[1].Applied.StringFixed(2))

	first, err := f.store.Documents().GetByID(ctx, f.shopID, documents.KindSale, older.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.PaymentPaid, first.PaymentStatus)
	assert.Equal(t, "0.00", first.AmountDue.StringFixed(2))

	second, err := f.store.Documents().GetByID(ctx, f.shopID, documents.KindSale, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.PaymentPartial, second.PaymentStatus)
	assert.Equal(t, "100.00", second.AmountPaid.StringFixed(2))
	assert.Equal(t, "50.00", second.AmountDue.StringFixed(2))

	assert.Equal(t, "50.00", res.Counterparty.CurrentBalance.StringFixed(2))
	assert.Equal(t, "300.00", res.Counterparty.TotalPaid.StringFixed(2))

	txns, total, err := f.store.Transactions().List(ctx, cashflow.ListFilter{ShopID: f.shopID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, cashflow.CategorySalePayment, txns[0].Category)
	assert.Equal(t, cashflow.CashIn, txns[0].Type)
	assert.Equal(t, "300.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, "Bulk payment received from Ram Bahadur", txns[0].Description)
	assert.Nil(t, txns[0].SaleID)
	require.NotNil(t, txns[0].CustomerID)
	assert.Equal(t, customer.ID, *txns[0].CustomerID)
	f.requireBalanceMatchesDue(t, documents.KindSale, customer.ID)
}

func TestCashOut_SettlesOldestBillFirst(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	supplier := counterparty.New(f.shopID, counterparty.KindSupplier, "Wholesale Co", "014000000")
	require.NoError(t, f.store.Counterparties().Create(ctx, supplier))

	// bills of 120 (newer) and 80 (older) at the purchase price of 40
	newer := f.purchase(t, supplier.ID, 3, 1)
	older := f.purchase(t, supplier.ID, 2, 10)
	f.requireBalanceMatchesDue(t, documents.KindPurchase, supplier.ID)

	res, err := f.allocator.CashOut(ctx, cash.Command{
		ShopID:         f.shopID,
		UserID:         f.ownerID,
		CounterpartyID: supplier.ID,
		Amount:         types.MustMoney("100"),
	})
	require.NoError(t, err)

	require.Len(t, res.Allocations, 2)
	assert.Equal(t, older.ID, res.Allocations[0].DocumentID)
	assert.Equal(t, "80.00", res.Allocations[0].Applied.StringFixed(2))
	assert.Equal(t, newer.ID, res.Allocations[1].DocumentID)
	assert.Equal(t, "20.00", res.Allocations[1].Applied.StringFixed(2))

	first, err := f.store.Documents().GetByID(ctx, f.shopID, documents.KindPurchase, older.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.PaymentPaid, first.PaymentStatus)

	second, err := f.store.Documents().GetByID(ctx, f.shopID, documents.KindPurchase, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.PaymentPartial, second.PaymentStatus)
	assert.Equal(t, "100.00", second.AmountDue.StringFixed(2))

	assert.Equal(t, "100.00", res.Counterparty.CurrentBalance.StringFixed(2))
	assert.Equal(t, "100.00", res.Counterparty.TotalPaid.StringFixed(2))

	txns, total, err := f.store.Transactions().List(ctx, cashflow.ListFilter{ShopID: f.shopID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, cashflow.CategoryPurchasePayment, txns[0].Category)
	assert.Equal(t, cashflow.CashOut, txns[0].Type)
	assert.Equal(t, "100.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, "Bulk payment made to Wholesale Co", txns[0].Description)
	require.NotNil(t, txns[0].SupplierID)
	assert.Equal(t, supplier.ID, *txns[0].SupplierID)
	f.requireBalanceMatchesDue(t, documents.KindPurchase, supplier.ID)
}

func TestCashIn_RejectsAmountAboveBalance(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	customer := counterparty.New(f.shopID, counterparty.KindCustomer, "Sita", "9800000002")
	require.NoError(t, f.store.Counterparties().Create(ctx, customer))
	f.sale(t, customer.ID, 2, 0)

	_, err := f.allocator.CashIn(ctx, cash.Command{
		ShopID:         f.shopID,
		UserID:         f.ownerID,
		CounterpartyID: customer.ID,
		Amount:         types.MustMoney("100.01"),
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodePaymentExceedsDue))

	_, err = f.allocator.CashIn(ctx, cash.Command{
		ShopID:         f.shopID,
		UserID:         f.ownerID,
		CounterpartyID: customer.ID,
		Amount:         types.Zero(),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	txns, _, err := f.store.Transactions().List(ctx, cashflow.ListFilter{ShopID: f.shopID})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestCashOut_WrongKindIsNotFound(t *testing.T) {
	f := newFixture(t)
	customer := counterparty.New(f.shopID, counterparty.KindCustomer, "Hari", "9800000003")
	require.NoError(t, f.store.Counterparties().Create(t.Context(), customer))

	_, err := f.allocator.CashOut(t.Context(), cash.Command{
		ShopID:         f.shopID,
		UserID:         f.ownerID,
		CounterpartyID: customer.ID,
		Amount:         types.MustMoney("10"),
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestCashIn_OtherUsersShopIsForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.allocator.CashIn(t.Context(), cash.Command{
		ShopID:         f.shopID,
		UserID:         id.New(),
		CounterpartyID: id.New(),
		Amount:         types.MustMoney("10"),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}
