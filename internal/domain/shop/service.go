package shop

import (
	"context"
	"fmt"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/pkg/logger"
)

// Service manages shops and answers the ownership question for the rest of the domain.
type Service struct {
	repo Repository
}

// NewService creates a new shop service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new shop for its owner.
func (s *Service) Create(ctx context.Context, sh *Shop) error {
	if err := sh.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, sh); err != nil {
		return fmt.Errorf("create shop: %w", err)
	}
	logger.Info(ctx, "shop created", "shop_id", sh.ID, "owner_id", sh.OwnerID)
	return nil
}

// ListByOwner returns the shops owned by userID.
func (s *Service) ListByOwner(ctx context.Context, userID id.ID) ([]*Shop, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// Verify loads the shop and checks that userID owns it.
// It is the entry precondition of every shop-scoped operation.
func (s *Service) Verify(ctx context.Context, shopID, userID id.ID) (*Shop, error) {
	sh, err := s.repo.GetByID(ctx, shopID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("shop", shopID.String())
		}
		return nil, fmt.Errorf("get shop: %w", err)
	}
	if !sh.IsOwnedBy(userID) {
		return nil, apperror.NewForbidden("You are not authorized to manage this shop.").
			WithDetail("shopId", shopID.String())
	}
	return sh, nil
}
