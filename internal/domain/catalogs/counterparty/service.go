package counterparty

import (
	"context"
	"fmt"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
	"shopledger/internal/domain"
)

// Service provides business logic for the Customer and Supplier catalogs.
type Service struct {
	*domain.CatalogService[*Counterparty]
	repo   Repository
	usages []UsageCounter
}

// NewService creates a new Counterparty service.
// A counterparty referenced by any counter in usages cannot be deleted.
func NewService(repo Repository, txManager tx.Manager, usages ...UsageCounter) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Counterparty]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "counterparty",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		usages:         usages,
	}

	base.Hooks().OnBeforeCreate(svc.checkPhoneUnique)
	base.Hooks().OnBeforeUpdate(svc.checkPhoneUnique)
	base.Hooks().OnBeforeDelete(svc.guardDelete)

	return svc
}

// Get returns the counterparty only when it is of the expected kind.
func (s *Service) Get(ctx context.Context, shopID id.ID, kind Kind, counterpartyID id.ID) (*Counterparty, error) {
	c, err := s.GetByID(ctx, shopID, counterpartyID)
	if err != nil {
		return nil, err
	}
	if c.Kind != kind {
		return nil, apperror.NewNotFound(string(kind), counterpartyID.String())
	}
	return c, nil
}

// DeleteOfKind deletes a counterparty after checking its kind.
func (s *Service) DeleteOfKind(ctx context.Context, shopID id.ID, kind Kind, counterpartyID id.ID) error {
	if _, err := s.Get(ctx, shopID, kind, counterpartyID); err != nil {
		return err
	}
	return s.Delete(ctx, shopID, counterpartyID)
}

// ListByKind lists customers or suppliers.
func (s *Service) ListByKind(ctx context.Context, filter ListFilter) (domain.ListResult[*Counterparty], error) {
	return s.repo.ListByKind(ctx, filter)
}

func (s *Service) checkPhoneUnique(ctx context.Context, c *Counterparty) error {
	existing, err := s.repo.FindByPhone(ctx, c.ShopID, c.Kind, c.Phone)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("find by phone: %w", err)
	}
	if existing.ID != c.ID {
		return apperror.NewDuplicate(c.Kind.Title(), "phone", c.Phone)
	}
	return nil
}

func (s *Service) guardDelete(ctx context.Context, c *Counterparty) error {
	var total int64
	for _, u := range s.usages {
		n, err := u.CountCounterpartyUsage(ctx, c.ShopID, c.ID)
		if err != nil {
			return fmt.Errorf("count counterparty usage: %w", err)
		}
		total += n
	}
	if total > 0 {
		return apperror.NewInUse(string(c.Kind), c.ID.String(), total)
	}
	return nil
}
