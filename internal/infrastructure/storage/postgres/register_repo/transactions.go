package register_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/cashflow"
	"shopledger/internal/infrastructure/storage/postgres"
)

const transactionsTable = "transactions"

// TransactionRepo implements cashflow.Repository. Rows are never updated or deleted.
type TransactionRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

var _ cashflow.Repository = (*TransactionRepo)(nil)

// NewTransactionRepo creates a new transaction repository.
func NewTransactionRepo(txm *postgres.TxManager) *TransactionRepo {
	return &TransactionRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[cashflow.Transaction](),
	}
}

func (r *TransactionRepo) Create(ctx context.Context, t *cashflow.Transaction) error {
	sql, args, err := postgres.Builder().
		Insert(transactionsTable).
		SetMap(postgres.StructToMap(t)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, shopID, transactionID id.ID) (*cashflow.Transaction, error) {
	sql, args, err := postgres.Builder().
		Select(r.selectCols...).
		From(transactionsTable).
		Where(squirrel.Eq{"id": transactionID, "shop_id": shopID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	t := &cashflow.Transaction{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transaction", transactionID.String())
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// List returns transactions newest first by date.
func (r *TransactionRepo) List(ctx context.Context, f cashflow.ListFilter) ([]*cashflow.Transaction, int64, error) {
	where := filterConditions(f)
	q := postgres.Builder().Select(r.selectCols...).From(transactionsTable).Where(where)

	countSQL, countArgs, err := postgres.Builder().
		Select("COUNT(*)").
		From(transactionsTable).
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	q = q.OrderBy("date DESC", "created_at DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	items := []*cashflow.Transaction{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return items, total, nil
}

// Summarize totals the filtered transactions in one pass.
func (r *TransactionRepo) Summarize(ctx context.Context, f cashflow.ListFilter) (cashflow.Summary, error) {
	sql, args, err := summaryQuery(f).ToSql()
	if err != nil {
		return cashflow.Summary{}, fmt.Errorf("build summary query: %w", err)
	}

	var sum cashflow.Summary
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &sum, sql, args...); err != nil {
		return cashflow.Summary{}, fmt.Errorf("summarize transactions: %w", err)
	}
	sum.Net = sum.CashIn.Sub(sum.CashOut)
	return sum, nil
}

func summaryQuery(f cashflow.ListFilter) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(
			"COALESCE(SUM(CASE WHEN type = 'CASH_IN' THEN amount END), 0) AS cash_in",
			"COALESCE(SUM(CASE WHEN type = 'CASH_OUT' THEN amount END), 0) AS cash_out",
		).
		From(transactionsTable).
		Where(filterConditions(f))
}

func (r *TransactionRepo) CountCounterpartyUsage(ctx context.Context, shopID, counterpartyID id.ID) (int64, error) {
	sql, args, err := postgres.Builder().
		Select("COUNT(*)").
		From(transactionsTable).
		Where(squirrel.Eq{"shop_id": shopID}).
		Where(squirrel.Or{
			squirrel.Eq{"customer_id": counterpartyID},
			squirrel.Eq{"supplier_id": counterpartyID},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var n int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func filterConditions(f cashflow.ListFilter) squirrel.And {
	and := squirrel.And{squirrel.Eq{"shop_id": f.ShopID}}
	if f.Type != "" {
		and = append(and, squirrel.Eq{"type": f.Type})
	}
	if f.Category != "" {
		and = append(and, squirrel.Eq{"category": f.Category})
	}
	if f.CounterpartyID != nil {
		and = append(and, squirrel.Or{
			squirrel.Eq{"customer_id": *f.CounterpartyID},
			squirrel.Eq{"supplier_id": *f.CounterpartyID},
		})
	}
	if f.DocumentID != nil {
		and = append(and, squirrel.Or{
			squirrel.Eq{"sale_id": *f.DocumentID},
			squirrel.Eq{"purchase_id": *f.DocumentID},
		})
	}
	if f.From != nil {
		and = append(and, squirrel.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		and = append(and, squirrel.LtOrEq{"date": *f.To})
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		and = append(and, squirrel.ILike{"description": "%" + search + "%"})
	}
	return and
}
