package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/shop"
	"shopledger/internal/infrastructure/storage/postgres"
)

const shopColumns = `id, version, created_at, updated_at, owner_id, name, address, contact_number`

// ShopRepo implements shop.Repository.
type ShopRepo struct {
	txm *postgres.TxManager
}

var _ shop.Repository = (*ShopRepo)(nil)

// NewShopRepo creates a new shop repository.
func NewShopRepo(txm *postgres.TxManager) *ShopRepo {
	return &ShopRepo{txm: txm}
}

func (r *ShopRepo) Create(ctx context.Context, s *shop.Shop) error {
	query := `
		INSERT INTO shops (` + shopColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.txm.GetQuerier(ctx).Exec(ctx, query,
		s.ID, s.Version, s.CreatedAt, s.UpdatedAt, s.OwnerID, s.Name, s.Address, s.ContactNumber,
	)
	if err != nil {
		return fmt.Errorf("insert shop: %w", err)
	}
	return nil
}

func (r *ShopRepo) GetByID(ctx context.Context, shopID id.ID) (*shop.Shop, error) {
	var s shop.Shop
	err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s,
		`SELECT `+shopColumns+` FROM shops WHERE id = $1`, shopID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("shop", shopID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	return &s, nil
}

// ListByOwner returns the owner's shops, oldest first.
func (r *ShopRepo) ListByOwner(ctx context.Context, ownerID id.ID) ([]*shop.Shop, error) {
	shops := []*shop.Shop{}
	err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &shops,
		`SELECT `+shopColumns+` FROM shops WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	return shops, nil
}
