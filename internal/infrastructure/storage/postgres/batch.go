package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"shopledger/internal/core/types"
)

// CopyFrom bulk inserts rows with the COPY protocol inside the transaction
// carried by ctx. Outside a transaction it falls back to a multi-row INSERT.
func (m *TxManager) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if t := m.GetTx(ctx); t != nil {
		return t.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	}

	q := Builder().Insert(table).Columns(columns...)
	for _, row := range rows {
		q = q.Values(row...)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := m.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Numeric converts money to a binary-encodable NUMERIC for COPY.
func Numeric(m types.Money) pgtype.Numeric {
	return pgtype.Numeric{Int: m.Coefficient(), Exp: m.Exponent(), Valid: true}
}
