// Package balance provides the counterparty balance register: running
// balances and paid totals of customers and suppliers, changed only under a row lock.
package balance

import (
	"context"
	"fmt"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/counterparty"
	"shopledger/pkg/logger"
)

// Service mutates counterparty balances. It must run inside the caller's transaction.
type Service struct {
	repo counterparty.Repository
}

// NewService creates a new balance register service.
func NewService(repo counterparty.Repository) *Service {
	return &Service{repo: repo}
}

// Lock loads and row-locks a counterparty of the given kind in the shop.
func (s *Service) Lock(ctx context.Context, shopID id.ID, kind counterparty.Kind, counterpartyID id.ID) (*counterparty.Counterparty, error) {
	c, err := s.repo.GetForUpdate(ctx, shopID, counterpartyID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(string(kind), counterpartyID.String())
		}
		return nil, fmt.Errorf("lock %s: %w", kind, err)
	}
	if c.Kind != kind {
		return nil, apperror.NewNotFound(string(kind), counterpartyID.String())
	}
	return c, nil
}

// ApplyDocument adds a new document's due amount to the balance and its paid amount to the paid total.
func (s *Service) ApplyDocument(ctx context.Context, c *counterparty.Counterparty, amountDue, amountPaid types.Money) error {
	c.ApplyDocument(amountDue, amountPaid)
	return s.save(ctx, c, "document")
}

// ApplyPayment moves amount from the balance to the paid total.
func (s *Service) ApplyPayment(ctx context.Context, c *counterparty.Counterparty, amount types.Money) error {
	c.ApplyPayment(amount)
	return s.save(ctx, c, "payment")
}

// ReverseDocument undoes ApplyDocument for a cancelled document.
func (s *Service) ReverseDocument(ctx context.Context, c *counterparty.Counterparty, amountDue, amountPaid types.Money) error {
	c.ReverseDocument(amountDue, amountPaid)
	return s.save(ctx, c, "reversal")
}

func (s *Service) save(ctx context.Context, c *counterparty.Counterparty, reason string) error {
	if err := s.repo.SaveBalance(ctx, c); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	logger.Debug(ctx, "counterparty balance changed",
		"counterparty_id", c.ID,
		"reason", reason,
		"balance", c.CurrentBalance.String(),
		"total_paid", c.TotalPaid.String(),
	)
	return nil
}
