// Package auth_repo provides PostgreSQL implementations for accounts: users and their shops.
package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/auth"
	"shopledger/internal/infrastructure/storage/postgres"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone,
	is_active, last_login_at, failed_login_attempts, locked_until,
	created_at, updated_at, version`

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txm *postgres.TxManager
}

var _ auth.UserRepository = (*UserRepo)(nil)

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	return &UserRepo{txm: txm}
}

// Create creates a new user. A taken email is reported as a conflict.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Phone,
		user.IsActive, user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
		user.CreatedAt, user.UpdatedAt, user.Version,
	)
	if err != nil {
		if _, ok := postgres.IsUniqueViolation(err); ok {
			return apperror.NewConflict("user with this email already exists").WithDetail("email", user.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := r.scanOne(ctx, query, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := r.scanOne(ctx, query, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("user", email)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepo) scanOne(ctx context.Context, query string, arg any) (*auth.User, error) {
	var u auth.User
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.IsActive, &u.LastLoginAt, &u.FailedLoginAttempts, &u.LockedUntil,
		&u.CreatedAt, &u.UpdatedAt, &u.Version,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update persists login bookkeeping and profile fields.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	query := `
		UPDATE users SET
			first_name = $2, last_name = $3, phone = $4, is_active = $5,
			last_login_at = $6, failed_login_attempts = $7, locked_until = $8,
			updated_at = NOW(), version = version + 1
		WHERE id = $1
		RETURNING updated_at, version
	`

	err := r.txm.GetQuerier(ctx).QueryRow(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Phone, user.IsActive,
		user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
	).Scan(&user.UpdatedAt, &user.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound("user", user.ID.String())
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Exists checks whether the email is registered.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.txm.GetQuerier(ctx).
		QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}
