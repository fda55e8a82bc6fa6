package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/notification"
	"shopledger/pkg/logger"
)

const outboxTable = "sys_outbox"

// EventNotificationCreated carries a stored notification for live delivery.
const EventNotificationCreated = "notification.created"

// MaxOutboxRetries is the number of failed deliveries before a message is parked.
const MaxOutboxRetries = 5

// OutboxStatus is the delivery state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxMessage is one row of sys_outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id"`
	AggregateType string       `db:"aggregate_type"`
	AggregateID   id.ID        `db:"aggregate_id"`
	EventType     string       `db:"event_type"`
	Payload       []byte       `db:"payload"`
	Status        OutboxStatus `db:"status"`
	RetryCount    int          `db:"retry_count"`
	LastError     *string      `db:"last_error"`
	NextRetryAt   *time.Time   `db:"next_retry_at"`
	CreatedAt     time.Time    `db:"created_at"`
	PublishedAt   *time.Time   `db:"published_at"`
}

// OutboxPublisher implements notification.Publisher by writing the event into
// sys_outbox in the caller's transaction. The worker relays it afterwards.
type OutboxPublisher struct {
	txm *TxManager
}

var _ notification.Publisher = (*OutboxPublisher)(nil)

// NewOutboxPublisher creates the transactional notification publisher.
func NewOutboxPublisher(txm *TxManager) *OutboxPublisher {
	return &OutboxPublisher{txm: txm}
}

// Publish records n. It must run inside a transaction so the outbox row
// commits or rolls back together with the notification.
func (p *OutboxPublisher) Publish(ctx context.Context, n *notification.Notification) error {
	if p.txm.GetTx(ctx) == nil {
		return errors.New("outbox publish requires a transaction")
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	sql, args, err := insertOutboxQuery(&OutboxMessage{
		ID:            id.New(),
		AggregateType: "notification",
		AggregateID:   n.ID,
		EventType:     EventNotificationCreated,
		Payload:       payload,
		Status:        OutboxStatusPending,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if _, err := p.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

func insertOutboxQuery(msg *OutboxMessage) (string, []any, error) {
	sql, args, err := Builder().
		Insert(outboxTable).
		Columns("id", "aggregate_type", "aggregate_id", "event_type", "payload", "status", "created_at").
		Values(msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload, msg.Status, msg.CreatedAt).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build outbox insert: %w", err)
	}
	return sql, args, nil
}

// OutboxHandler delivers one relayed message.
type OutboxHandler interface {
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// NotificationHandler decodes notification events and hands them to a live publisher.
type NotificationHandler struct {
	publisher notification.Publisher
}

// NewNotificationHandler wraps the publisher that reaches subscribers, usually Redis.
func NewNotificationHandler(publisher notification.Publisher) *NotificationHandler {
	return &NotificationHandler{publisher: publisher}
}

func (h *NotificationHandler) Handle(ctx context.Context, msg *OutboxMessage) error {
	if msg.EventType != EventNotificationCreated {
		return fmt.Errorf("unknown outbox event %q", msg.EventType)
	}
	var n notification.Notification
	if err := json.Unmarshal(msg.Payload, &n); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	return h.publisher.Publish(ctx, &n)
}

// OutboxRelay moves pending outbox rows to their handler.
type OutboxRelay struct {
	txm       *TxManager
	handler   OutboxHandler
	batchSize uint64
	now       func() time.Time
}

// NewOutboxRelay creates a relay. batchSize <= 0 means 100.
func NewOutboxRelay(txm *TxManager, handler OutboxHandler, batchSize int) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{txm: txm, handler: handler, batchSize: uint64(batchSize), now: time.Now}
}

// ProcessBatch delivers up to one batch of due messages and returns how many
// were published. Rows are locked with SKIP LOCKED so relays can run side by side.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	published := 0
	err := r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sql, args, err := pendingOutboxQuery(r.now().UTC(), r.batchSize)
		if err != nil {
			return err
		}
		var messages []*OutboxMessage
		if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &messages, sql, args...); err != nil {
			return fmt.Errorf("select outbox messages: %w", err)
		}

		for _, msg := range messages {
			ok, err := r.deliver(ctx, msg)
			if err != nil {
				return err
			}
			if ok {
				published++
			}
		}
		return nil
	})
	return published, err
}

// Drain runs batches until one comes back short.
func (r *OutboxRelay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.ProcessBatch(ctx)
		total += n
		if err != nil || uint64(n) < r.batchSize {
			return total, err
		}
	}
}

func (r *OutboxRelay) deliver(ctx context.Context, msg *OutboxMessage) (bool, error) {
	now := r.now().UTC()
	handleErr := r.handler.Handle(ctx, msg)

	update := publishedOutboxUpdate(msg.ID, now)
	if handleErr != nil {
		update = failedOutboxUpdate(msg, handleErr, now)
		logger.Warn(ctx, "outbox delivery failed",
			"message_id", msg.ID, "event_type", msg.EventType, "retry", msg.RetryCount+1, "error", handleErr)
	}

	sql, args, err := update.ToSql()
	if err != nil {
		return false, fmt.Errorf("build outbox update: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return false, fmt.Errorf("update outbox message %s: %w", msg.ID, err)
	}
	return handleErr == nil, nil
}

func pendingOutboxQuery(now time.Time, limit uint64) (string, []any, error) {
	sql, args, err := Builder().
		Select(ExtractDBColumns[OutboxMessage]()...).
		From(outboxTable).
		Where(squirrel.Eq{"status": OutboxStatusPending}).
		Where(squirrel.Or{
			squirrel.Eq{"next_retry_at": nil},
			squirrel.LtOrEq{"next_retry_at": now},
		}).
		OrderBy("created_at").
		Limit(limit).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build outbox query: %w", err)
	}
	return sql, args, nil
}

func publishedOutboxUpdate(messageID id.ID, now time.Time) squirrel.UpdateBuilder {
	return Builder().Update(outboxTable).
		Set("status", OutboxStatusPublished).
		Set("published_at", now).
		Where(squirrel.Eq{"id": messageID})
}

// failedOutboxUpdate backs off one more minute per attempt and parks the
// message as failed once MaxOutboxRetries is reached.
func failedOutboxUpdate(msg *OutboxMessage, cause error, now time.Time) squirrel.UpdateBuilder {
	retry := msg.RetryCount + 1
	status := OutboxStatusPending
	if retry >= MaxOutboxRetries {
		status = OutboxStatusFailed
	}
	return Builder().Update(outboxTable).
		Set("status", status).
		Set("retry_count", retry).
		Set("last_error", cause.Error()).
		Set("next_retry_at", now.Add(time.Duration(retry)*time.Minute)).
		Where(squirrel.Eq{"id": msg.ID})
}
