package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts  int
	LockDuration      time.Duration
	PasswordMinLength int
	BcryptCost        int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:  5,
		LockDuration:      15 * time.Minute,
		PasswordMinLength: 6,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// Service registers users and issues access tokens.
type Service struct {
	users  UserRepository
	tokens *JWTService
	config ServiceConfig
}

// NewService creates a new auth service.
func NewService(users UserRepository, tokens *JWTService, config ServiceConfig) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		config: config,
	}
}

// Register creates a user account and returns a logged-in session.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Email, string(passwordHash))
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Phone = req.Phone
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("email already registered").WithDetail("email", user.Email)
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "email", user.Email)

	return s.issue(user)
}

// Login authenticates user and returns an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(creds.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		if uerr := s.users.Update(ctx, user); uerr != nil {
			logger.Warn(ctx, "failed to record failed login", "user_id", user.ID, "error", uerr)
		}
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	user.RecordSuccessfulLogin()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID)

	return s.issue(user)
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context, userID id.ID) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) issue(user *User) (*Session, error) {
	token, expiresAt, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}
