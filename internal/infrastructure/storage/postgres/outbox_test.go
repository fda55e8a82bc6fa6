package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/notification"
)

type recordingPublisher struct {
	published []*notification.Notification
}

func (p *recordingPublisher) Publish(_ context.Context, n *notification.Notification) error {
	p.published = append(p.published, n)
	return nil
}

func TestOutboxPublisher_RequiresTransaction(t *testing.T) {
	pub := NewOutboxPublisher(&TxManager{})

	err := pub.Publish(context.Background(), notification.New(id.New(), id.New(), notification.TypeLowStock, "low", "/products/1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a transaction")
}

func TestNotificationHandler_DecodesPayload(t *testing.T) {
	n := notification.New(id.New(), id.New(), notification.TypePaymentDue, "Payment of Rs. 75.50 to Acme is due.", "/purchases/1")
	payload, err := json.Marshal(n)
	require.NoError(t, err)

	live := &recordingPublisher{}
	h := NewNotificationHandler(live)

	require.NoError(t, h.Handle(context.Background(), &OutboxMessage{EventType: EventNotificationCreated, Payload: payload}))
	require.Len(t, live.published, 1)
	got := live.published[0]
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, n.UserID, got.UserID)
	assert.Equal(t, notification.TypePaymentDue, got.Type)
	assert.Equal(t, n.Message, got.Message)
	assert.True(t, n.CreatedAt.Equal(got.CreatedAt))

	err = h.Handle(context.Background(), &OutboxMessage{EventType: "stock.changed", Payload: payload})
	assert.Error(t, err)
	err = h.Handle(context.Background(), &OutboxMessage{EventType: EventNotificationCreated, Payload: []byte("{")})
	assert.Error(t, err)
	assert.Len(t, live.published, 1)
}

func TestPendingOutboxQuery(t *testing.T) {
	now := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)

	sql, args, err := pendingOutboxQuery(now, 50)
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM sys_outbox WHERE status = $1")
	assert.Contains(t, sql, "(next_retry_at IS NULL OR next_retry_at <= $2)")
	assert.Contains(t, sql, "ORDER BY created_at LIMIT 50 FOR UPDATE SKIP LOCKED")
	assert.Equal(t, []any{OutboxStatusPending, now}, args)
}

func TestFailedOutboxUpdate_BacksOffThenParks(t *testing.T) {
	now := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	msgID := id.New()
	cause := errors.New("redis down")

	sql, args, err := failedOutboxUpdate(&OutboxMessage{ID: msgID}, cause, now).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE sys_outbox SET status = $1, retry_count = $2, last_error = $3, next_retry_at = $4 WHERE id = $5", sql)
	assert.Equal(t, []any{OutboxStatusPending, 1, "redis down", now.Add(time.Minute), msgID.String()}, args)

	_, args, err = failedOutboxUpdate(&OutboxMessage{ID: msgID, RetryCount: MaxOutboxRetries - 1}, cause, now).ToSql()
	require.NoError(t, err)
	assert.Equal(t, OutboxStatusFailed, args[0])
	assert.Equal(t, MaxOutboxRetries, args[1])
	assert.Equal(t, now.Add(MaxOutboxRetries*time.Minute), args[3])
}

func TestPublishedOutboxUpdate(t *testing.T) {
	now := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	msgID := id.New()

	sql, args, err := publishedOutboxUpdate(msgID, now).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE sys_outbox SET status = $1, published_at = $2 WHERE id = $3", sql)
	assert.Equal(t, []any{OutboxStatusPublished, now, msgID.String()}, args)
}
