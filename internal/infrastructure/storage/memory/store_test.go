package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/notification"
	"shopledger/internal/domain/shop"
)

func TestRunInTransaction_RollsBackOnError(t *testing.T) {
	s := New()
	sh := shop.NewShop(id.New(), "Corner Store")

	err := s.RunInTransaction(t.Context(), func(ctx context.Context) error {
		require.NoError(t, s.Shops().Create(ctx, sh))
		return errors.New("boom")
	})
	require.Error(t, err)

	_, err = s.Shops().GetByID(t.Context(), sh.ID)
	assert.Error(t, err)
}

func TestRunInTransaction_RollsBackOnPanic(t *testing.T) {
	s := New()
	sh := shop.NewShop(id.New(), "Corner Store")

	assert.PanicsWithValue(t, "boom", func() {
		_ = s.RunInTransaction(t.Context(), func(ctx context.Context) error {
			require.NoError(t, s.Shops().Create(ctx, sh))
			panic("boom")
		})
	})

	_, err := s.Shops().GetByID(t.Context(), sh.ID)
	assert.Error(t, err)

	// the transaction lock was released
	require.NoError(t, s.RunInTransaction(t.Context(), func(ctx context.Context) error {
		return s.Shops().Create(ctx, sh)
	}))
	got, err := s.Shops().GetByID(t.Context(), sh.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corner Store", got.Name)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, *notification.Notification) error {
	return errors.New("outbox unavailable")
}

func TestNotify_RollsBackNotificationWhenPublishFails(t *testing.T) {
	s := New()
	owner := id.New()
	svc := notification.NewService(s.Notifications(), s, failingPublisher{})

	_, err := svc.Notify(t.Context(), notification.New(id.New(), owner, notification.TypeLowStock, "low", "/products/1"))
	require.Error(t, err)

	inbox, err := svc.Inbox(t.Context(), owner)
	require.NoError(t, err)
	assert.Empty(t, inbox.Items)
	assert.Zero(t, inbox.UnreadCount)
}
