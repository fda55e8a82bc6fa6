// Package document_repo provides the PostgreSQL repository for sales and purchases.
// Both kinds share one header table and one line table, discriminated by kind.
package document_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/documents"
	"shopledger/internal/infrastructure/storage/postgres"
)

const (
	documentsTable = "ledger_documents"
	linesTable     = "ledger_document_lines"
)

var lineColumns = []string{
	"document_id", "shop_id", "line_no", "product_id", "product_name",
	"quantity", "unit_price", "unit_cost", "total",
}

// mutableColumns are the header columns payments and cancellation may change.
var mutableColumns = []string{
	"amount_paid", "amount_due", "payment_status", "status", "payment_method", "notes", "cancelled_at",
}

// DocumentRepo implements documents.Repository.
type DocumentRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

var _ documents.Repository = (*DocumentRepo)(nil)

// NewDocumentRepo creates a new document repository.
func NewDocumentRepo(txm *postgres.TxManager) *DocumentRepo {
	return &DocumentRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[documents.Document](),
	}
}

func (r *DocumentRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Create inserts the header, then the lines through COPY.
func (r *DocumentRepo) Create(ctx context.Context, doc *documents.Document) error {
	sql, args, err := postgres.Builder().
		Insert(documentsTable).
		SetMap(postgres.PickColumns(postgres.StructToMap(doc), r.selectCols)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		if _, ok := postgres.IsUniqueViolation(err); ok {
			return apperror.NewDuplicate(string(doc.Kind), "number", doc.Number)
		}
		return fmt.Errorf("insert %s: %w", documentsTable, err)
	}

	return r.saveLines(ctx, doc)
}

func (r *DocumentRepo) saveLines(ctx context.Context, doc *documents.Document) error {
	rows := make([][]any, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		rows = append(rows, []any{
			doc.ID, doc.ShopID, l.LineNo, l.ProductID, l.ProductName,
			l.Quantity, postgres.Numeric(l.UnitPrice), postgres.Numeric(l.UnitCost), postgres.Numeric(l.Total),
		})
	}
	if _, err := r.txm.CopyFrom(ctx, linesTable, lineColumns, rows); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}
	return nil
}

func (r *DocumentRepo) baseSelect(shopID id.ID, kind documents.Kind) squirrel.SelectBuilder {
	return postgres.Builder().
		Select(r.selectCols...).
		From(documentsTable).
		Where(squirrel.Eq{"shop_id": shopID, "kind": kind})
}

// GetByID loads the header and its lines.
func (r *DocumentRepo) GetByID(ctx context.Context, shopID id.ID, kind documents.Kind, docID id.ID) (*documents.Document, error) {
	return r.getOne(ctx, r.baseSelect(shopID, kind).Where(squirrel.Eq{"id": docID}), kind, docID)
}

// GetForUpdate row-locks the header; lines are immutable and need no lock.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, shopID id.ID, kind documents.Kind, docID id.ID) (*documents.Document, error) {
	q := r.baseSelect(shopID, kind).
		Where(squirrel.Eq{"id": docID}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, kind, docID)
}

func (r *DocumentRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, kind documents.Kind, docID id.ID) (*documents.Document, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	doc := &documents.Document{}
	if err := pgxscan.Get(ctx, r.querier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(string(kind), docID.String())
		}
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}

	lines, err := r.getLines(ctx, []id.ID{doc.ID})
	if err != nil {
		return nil, err
	}
	doc.Lines = lines[doc.ID]
	return doc, nil
}

type lineRow struct {
	DocumentID id.ID `db:"document_id"`
	documents.Line
}

func (r *DocumentRepo) getLines(ctx context.Context, docIDs []id.ID) (map[id.ID][]documents.Line, error) {
	sql, args, err := postgres.Builder().
		Select("document_id", "line_no", "product_id", "product_name", "quantity", "unit_price", "unit_cost", "total").
		From(linesTable).
		Where(squirrel.Eq{"document_id": docIDs}).
		OrderBy("document_id", "line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []lineRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	out := make(map[id.ID][]documents.Line, len(docIDs))
	for _, row := range rows {
		out[row.DocumentID] = append(out[row.DocumentID], row.Line)
	}
	return out, nil
}

// Update persists the mutable header columns with optimistic locking.
func (r *DocumentRepo) Update(ctx context.Context, doc *documents.Document) error {
	set := postgres.PickColumns(postgres.StructToMap(doc), mutableColumns)

	sql, args, err := postgres.Builder().
		Update(documentsTable).
		SetMap(set).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": doc.ID, "shop_id": doc.ShopID, "kind": doc.Kind, "version": doc.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", documentsTable, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(string(doc.Kind), doc.ID.String())
	}
	doc.Touch()
	return nil
}

// List returns headers without lines, newest first.
func (r *DocumentRepo) List(ctx context.Context, f documents.ListFilter) ([]*documents.Document, int64, error) {
	q := applyFilter(r.baseSelect(f.ShopID, f.Kind), f)

	countSQL, countArgs, err := postgres.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
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
	items := []*documents.Document{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", f.Kind, err)
	}
	return items, total, nil
}

func applyFilter(q squirrel.SelectBuilder, f documents.ListFilter) squirrel.SelectBuilder {
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"counterparty_name": pattern},
		})
	}
	if f.CounterpartyID != nil {
		q = q.Where(squirrel.Eq{"counterparty_id": *f.CounterpartyID})
	}
	if f.Type != "" {
		q = q.Where(squirrel.Eq{"type": f.Type})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if f.PaymentStatus != "" {
		q = q.Where(squirrel.Eq{"payment_status": f.PaymentStatus})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.DateFrom})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.DateTo})
	}
	return q
}

// ListOutstandingForUpdate row-locks open COMPLETED documents of a counterparty,
// oldest first, so bulk payments settle them in a stable order.
func (r *DocumentRepo) ListOutstandingForUpdate(ctx context.Context, shopID id.ID, kind documents.Kind, counterpartyID id.ID) ([]*documents.Document, error) {
	sql, args, err := r.baseSelect(shopID, kind).
		Where(squirrel.Eq{
			"counterparty_id": counterpartyID,
			"status":          documents.StatusCompleted,
			"payment_status":  []documents.PaymentStatus{documents.PaymentUnpaid, documents.PaymentPartial},
		}).
		OrderBy("date ASC", "number ASC").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []*documents.Document{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list outstanding %s: %w", kind, err)
	}
	return items, nil
}

// CountCounterpartyUsage counts documents booked against the counterparty.
func (r *DocumentRepo) CountCounterpartyUsage(ctx context.Context, shopID, counterpartyID id.ID) (int64, error) {
	return r.count(ctx, documentsTable, squirrel.Eq{"shop_id": shopID, "counterparty_id": counterpartyID})
}

// CountProductUsage counts document lines referencing the product.
func (r *DocumentRepo) CountProductUsage(ctx context.Context, shopID, productID id.ID) (int64, error) {
	return r.count(ctx, linesTable, squirrel.Eq{"shop_id": shopID, "product_id": productID})
}

func (r *DocumentRepo) count(ctx context.Context, table string, where squirrel.Eq) (int64, error) {
	sql, args, err := postgres.Builder().
		Select("COUNT(*)").
		From(table).
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var n int64
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
