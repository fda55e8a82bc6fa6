package product

import (
	"context"
	"fmt"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/tx"
	"shopledger/internal/domain"
)

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo   Repository
	usages []UsageCounter
}

// NewService creates a new Product service.
// A product referenced by any counter in usages cannot be deleted.
func NewService(repo Repository, txManager tx.Manager, usages ...UsageCounter) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		usages:         usages,
	}
	base.Hooks().OnBeforeDelete(svc.guardDelete)

	return svc
}

func (s *Service) guardDelete(ctx context.Context, p *Product) error {
	var total int64
	for _, u := range s.usages {
		n, err := u.CountProductUsage(ctx, p.ShopID, p.ID)
		if err != nil {
			return fmt.Errorf("count product usage: %w", err)
		}
		total += n
	}
	if total > 0 {
		return apperror.NewInUse("product", p.ID.String(), total)
	}
	return nil
}
