package memory

import (
	"context"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/shop"
)

// UserRepo implements auth.UserRepository.
type UserRepo struct{ s *Store }

// Users returns the user repository.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) Create(_ context.Context, u *auth.User) error {
	return r.s.write(func(d *state) error {
		for _, existing := range d.users {
			if existing.Email == u.Email {
				return apperror.NewConflict("email already registered")
			}
		}
		d.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, userID id.ID) (*auth.User, error) {
	var (
		u  auth.User
		ok bool
	)
	r.s.read(func(d *state) { u, ok = d.users[userID] })
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	var found *auth.User
	r.s.read(func(d *state) {
		for _, u := range d.users {
			if u.Email == email {
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, apperror.NewNotFound("user", email)
	}
	return found, nil
}

func (r *UserRepo) Update(_ context.Context, u *auth.User) error {
	return r.s.write(func(d *state) error {
		if _, ok := d.users[u.ID]; !ok {
			return apperror.NewNotFound("user", u.ID.String())
		}
		u.UpdatedAt = time.Now().UTC()
		d.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// ShopRepo implements shop.Repository.
type ShopRepo struct{ s *Store }

// Shops returns the shop repository.
func (s *Store) Shops() *ShopRepo { return &ShopRepo{s: s} }

func (r *ShopRepo) Create(_ context.Context, sh *shop.Shop) error {
	return r.s.write(func(d *state) error {
		d.shops[sh.ID] = *sh
		return nil
	})
}

func (r *ShopRepo) GetByID(_ context.Context, shopID id.ID) (*shop.Shop, error) {
	var (
		sh shop.Shop
		ok bool
	)
	r.s.read(func(d *state) { sh, ok = d.shops[shopID] })
	if !ok {
		return nil, apperror.NewNotFound("shop", shopID.String())
	}
	return &sh, nil
}

func (r *ShopRepo) ListByOwner(_ context.Context, ownerID id.ID) ([]*shop.Shop, error) {
	out := []*shop.Shop{}
	r.s.read(func(d *state) {
		for _, sh := range d.shops {
			if sh.OwnerID == ownerID {
				out = append(out, &sh)
			}
		}
	})
	sortNamed(out, "-created_at", func(s *shop.Shop) string { return s.Name }, func(s *shop.Shop) time.Time { return s.CreatedAt })
	return out, nil
}
