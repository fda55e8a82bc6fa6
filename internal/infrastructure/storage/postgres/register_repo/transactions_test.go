package register_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/cashflow"
)

func TestSummaryQuery(t *testing.T) {
	shopID := id.New()
	customerID := id.New()

	sql, args, err := summaryQuery(cashflow.ListFilter{
		ShopID:         shopID,
		CounterpartyID: &customerID,
		Search:         "bulk",
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "COALESCE(SUM(CASE WHEN type = 'CASH_IN' THEN amount END), 0) AS cash_in")
	assert.Contains(t, sql, "WHERE (shop_id = $1 AND (customer_id = $2 OR supplier_id = $3) AND description ILIKE $4)")
	assert.Equal(t, []any{shopID.String(), customerID.String(), customerID.String(), "%bulk%"}, args)
}

func TestFilterConditions_ShopOnly(t *testing.T) {
	shopID := id.New()

	sql, args, err := filterConditions(cashflow.ListFilter{ShopID: shopID}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(shop_id = ?)", sql)
	assert.Equal(t, []any{shopID.String()}, args)
}
