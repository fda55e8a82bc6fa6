package cashflow

import (
	"context"
	"fmt"

	"shopledger/pkg/logger"
)

// Writer appends transactions on behalf of the ledger flows.
// It accepts every category, including the protected ones.
type Writer struct {
	repo Repository
}

// NewWriter creates a new ledger writer.
func NewWriter(repo Repository) *Writer {
	return &Writer{repo: repo}
}

// Record validates and stores one transaction. It runs in the caller's transaction.
func (w *Writer) Record(ctx context.Context, e Entry) (*Transaction, error) {
	t := e.build()
	if err := t.Validate(ctx); err != nil {
		return nil, err
	}
	if err := w.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	logger.Info(ctx, "transaction recorded",
		"transaction_id", t.ID,
		"category", t.Category,
		"type", t.Type,
		"amount", t.Amount.String(),
	)
	return t, nil
}
