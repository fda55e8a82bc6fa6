package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[id.ID]*User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[id.ID]*User)}
}

func (f *fakeUsers) Create(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, userID id.ID) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (f *fakeUsers) Update(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Exists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func newTestService() *Service {
	cfg := DefaultServiceConfig()
	cfg.BcryptCost = bcrypt.MinCost
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret-test-secret-test-secret"))
	return NewService(newFakeUsers(), jwtSvc, cfg)
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	session, err := svc.Register(ctx, RegisterRequest{
		Email:     "  Owner@Example.com ",
		Password:  "secret123",
		FirstName: "Sita",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", session.User.Email)
	assert.NotEmpty(t, session.AccessToken)

	login, err := svc.Login(ctx, Credentials{Email: "OWNER@example.com", Password: "secret123"})
	require.NoError(t, err)

	uc, err := svc.tokens.ValidateToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID.String(), uc.UserID)
	assert.Equal(t, "Sita", uc.FirstName)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	req := RegisterRequest{Email: "a@b.co", Password: "secret123", FirstName: "A"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.True(t, apperror.IsConflict(err))
}

func TestRegister_ShortPassword(t *testing.T) {
	_, err := newTestService().Register(context.Background(),
		RegisterRequest{Email: "a@b.co", Password: "123", FirstName: "A"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	svc.config.MaxLoginAttempts = 2

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.co", Password: "secret123", FirstName: "A"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = svc.Login(ctx, Credentials{Email: "a@b.co", Password: "wrong"})
		assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	}

	_, err = svc.Login(ctx, Credentials{Email: "a@b.co", Password: "secret123"})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestValidateToken_RejectsOtherSecret(t *testing.T) {
	user := NewUser("a@b.co", "x")
	signer := NewJWTService(DefaultJWTConfig("first-secret"))
	token, _, err := signer.GenerateAccessToken(user)
	require.NoError(t, err)

	verifier := NewJWTService(DefaultJWTConfig("second-secret"))
	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	cfg := DefaultJWTConfig("secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken(NewUser("a@b.co", "x"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
