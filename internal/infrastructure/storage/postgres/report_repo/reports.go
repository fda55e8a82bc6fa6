// Package report_repo provides the PostgreSQL read side: dashboard aggregates
// and the cross-shop queries the notification jobs scan.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/reports"
	"shopledger/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm *postgres.TxManager
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txm: txm}
}

// GetTotals counts counterparties and sums their open balances per kind.
func (r *ReportRepo) GetTotals(ctx context.Context, shopID id.ID) (reports.Totals, error) {
	sql, args, err := totalsQuery(shopID).ToSql()
	if err != nil {
		return reports.Totals{}, fmt.Errorf("build totals query: %w", err)
	}

	var t reports.Totals
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &t, sql, args...); err != nil {
		return reports.Totals{}, fmt.Errorf("get totals: %w", err)
	}
	return t, nil
}

func totalsQuery(shopID id.ID) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(
			"COUNT(*) FILTER (WHERE kind = 'customer') AS customer_count",
			"COUNT(*) FILTER (WHERE kind = 'supplier') AS supplier_count",
			"COALESCE(SUM(current_balance) FILTER (WHERE kind = 'customer'), 0) AS receivable_total",
			"COALESCE(SUM(current_balance) FILTER (WHERE kind = 'supplier'), 0) AS payable_total",
		).
		From("counterparties").
		Where(squirrel.Eq{"shop_id": shopID})
}

// MonthlyTotals groups COMPLETED documents by calendar month (UTC) in [from, to).
func (r *ReportRepo) MonthlyTotals(ctx context.Context, shopID id.ID, kind string, from, to time.Time) ([]reports.MonthTotal, error) {
	sql, args, err := monthlyQuery(shopID, kind, from, to).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build monthly query: %w", err)
	}

	out := []reports.MonthTotal{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	return out, nil
}

func monthlyQuery(shopID id.ID, kind string, from, to time.Time) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(
			"EXTRACT(YEAR FROM date AT TIME ZONE 'UTC')::int AS year",
			"EXTRACT(MONTH FROM date AT TIME ZONE 'UTC')::int AS month",
			"SUM(grand_total) AS total",
		).
		From("ledger_documents").
		Where(squirrel.Eq{"shop_id": shopID, "kind": kind, "status": "COMPLETED"}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Lt{"date": to}).
		GroupBy("1", "2").
		OrderBy("1", "2")
}
