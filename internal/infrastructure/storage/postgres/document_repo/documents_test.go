package document_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/documents"
)

func TestApplyFilter(t *testing.T) {
	repo := NewDocumentRepo(nil)
	shopID := id.New()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	q := applyFilter(repo.baseSelect(shopID, documents.KindSale), documents.ListFilter{
		Search:        "INV",
		Status:        documents.StatusCompleted,
		PaymentStatus: documents.PaymentPartial,
		DateFrom:      &from,
	})
	sql, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM ledger_documents WHERE kind = $1 AND shop_id = $2")
	assert.Contains(t, sql, "(number ILIKE $3 OR counterparty_name ILIKE $4)")
	assert.Contains(t, sql, "status = $5 AND payment_status = $6 AND date >= $7")
	assert.Equal(t, []any{documents.KindSale, shopID.String(), "%INV%", "%INV%", documents.StatusCompleted, documents.PaymentPartial, from}, args)
}

func TestSelectColumnsExcludeLines(t *testing.T) {
	repo := NewDocumentRepo(nil)

	assert.NotContains(t, repo.selectCols, "lines")
	assert.Contains(t, repo.selectCols, "counterparty_name")
	assert.Contains(t, repo.selectCols, "amount_due")
}
