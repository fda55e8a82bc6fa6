package stock

import (
	"context"
	"fmt"
	"slices"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/pkg/logger"
)

// Operation selects how a line changes stock.
type Operation int

const (
	// OpIssue removes stock for a sale.
	OpIssue Operation = iota
	// OpReceive adds stock for a purchase and records the unit cost.
	OpReceive
	// OpReturnIssued puts back stock of a cancelled sale.
	OpReturnIssued
	// OpReverseReceipt removes stock of a cancelled purchase.
	OpReverseReceipt
)

func (op Operation) recordType() RecordType {
	if op == OpReceive || op == OpReturnIssued {
		return RecordReceipt
	}
	return RecordExpense
}

// Line is the stock part of a document line.
type Line struct {
	ProductID id.ID
	Quantity  int64
	UnitCost  types.Money
}

// Locked holds products row-locked for the current transaction.
type Locked map[id.ID]*product.Product

// Service changes product stock. It must run inside the caller's transaction.
type Service struct {
	products product.Repository
	repo     Repository
}

// NewService creates a new stock register service.
func NewService(products product.Repository, repo Repository) *Service {
	return &Service{
		products: products,
		repo:     repo,
	}
}

// Lock row-locks the distinct products in ascending id order so that two
// documents touching the same products never deadlock.
func (s *Service) Lock(ctx context.Context, shopID id.ID, productIDs []id.ID) (Locked, error) {
	ids := slices.Clone(productIDs)
	slices.SortFunc(ids, func(a, b id.ID) int { return slices.Compare(a[:], b[:]) })
	ids = slices.Compact(ids)

	products, err := s.products.GetForUpdate(ctx, shopID, ids)
	if err != nil {
		return nil, err
	}

	locked := make(Locked, len(products))
	for _, p := range products {
		locked[p.ID] = p
	}
	for _, pid := range ids {
		if _, ok := locked[pid]; !ok {
			return nil, apperror.NewNotFound("product", pid.String())
		}
	}
	return locked, nil
}

// Apply changes stock of locked products line by line, persists the touched
// products and writes one movement per line. The first failing line aborts
// and the caller's transaction rolls everything back.
func (s *Service) Apply(ctx context.Context, locked Locked, documentID id.ID, op Operation, lines []Line) error {
	if len(lines) == 0 {
		return nil
	}

	now := time.Now().UTC()
	movements := make([]Movement, 0, len(lines))
	touched := make([]*product.Product, 0, len(lines))

	for i, line := range lines {
		if line.Quantity <= 0 {
			return apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		p, ok := locked[line.ProductID]
		if !ok {
			return apperror.NewNotFound("product", line.ProductID.String())
		}

		switch op {
		case OpIssue:
			if err := p.Issue(line.Quantity); err != nil {
				return err
			}
		case OpReceive:
			p.Receive(line.Quantity, line.UnitCost)
		case OpReturnIssued:
			p.ReturnIssued(line.Quantity)
		case OpReverseReceipt:
			if err := p.ReverseReceipt(line.Quantity); err != nil {
				return err
			}
		}

		if !slices.Contains(touched, p) {
			touched = append(touched, p)
		}
		movements = append(movements, Movement{
			ID:         id.New(),
			ShopID:     p.ShopID,
			ProductID:  p.ID,
			DocumentID: documentID,
			RecordType: op.recordType(),
			Quantity:   line.Quantity,
			CreatedAt:  now,
		})
	}

	for _, p := range touched {
		if err := s.products.SaveStock(ctx, p); err != nil {
			return fmt.Errorf("save stock of %s: %w", p.ID, err)
		}
	}
	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Debug(ctx, "stock movements recorded",
		"document_id", documentID,
		"count", len(movements),
	)
	return nil
}

// History returns the latest movements of a product.
func (s *Service) History(ctx context.Context, shopID, productID id.ID, limit int) ([]Movement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByProduct(ctx, shopID, productID, limit)
}
