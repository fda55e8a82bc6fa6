package report_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/id"
)

func TestMonthlyQuery_HalfOpenRange(t *testing.T) {
	shopID := id.New()
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 6, 0)

	sql, args, err := monthlyQuery(shopID, "sale", from, to).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE kind = $1 AND shop_id = $2 AND status = $3 AND date >= $4 AND date < $5")
	assert.Contains(t, sql, "GROUP BY 1, 2 ORDER BY 1, 2")
	assert.Equal(t, []any{"sale", shopID.String(), "COMPLETED", from, to}, args)
}

func TestTotalsQuery(t *testing.T) {
	shopID := id.New()

	sql, args, err := totalsQuery(shopID).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM counterparties WHERE shop_id = $1")
	assert.Equal(t, []any{shopID.String()}, args)
}
