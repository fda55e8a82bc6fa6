package cashflow

import (
	"context"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
)

// Service serves the generic transaction endpoints: manual entries such as
// rent or owner drawings, and the read side of the ledger.
type Service struct {
	repo   Repository
	writer *Writer
}

// NewService creates a new cash-flow service.
func NewService(repo Repository, writer *Writer) *Service {
	return &Service{repo: repo, writer: writer}
}

// CreateManual records a user-entered transaction.
// Categories owned by the sale and purchase flows are rejected with a conflict.
func (s *Service) CreateManual(ctx context.Context, e Entry) (*Transaction, error) {
	if e.Category.IsProtected() {
		return nil, apperror.NewProtectedCategory(string(e.Category))
	}
	if e.SaleID != nil || e.PurchaseID != nil {
		return nil, apperror.NewValidation("manual transactions cannot reference a sale or purchase")
	}
	return s.writer.Record(ctx, e)
}

// Get returns one transaction of the shop.
func (s *Service) Get(ctx context.Context, shopID, transactionID id.ID) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, shopID, transactionID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("transaction", transactionID.String())
		}
		return nil, err
	}
	return t, nil
}

// List returns a page of transactions, newest first, with totals for the whole filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, int64, Summary, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, Summary{}, err
	}
	sum, err := s.repo.Summarize(ctx, filter)
	if err != nil {
		return nil, 0, Summary{}, err
	}
	sum.Net = sum.CashIn.Sub(sum.CashOut)
	return items, total, sum, nil
}
