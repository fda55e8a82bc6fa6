package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/notification"
)

const notificationsTable = "notifications"

// NotificationRepo implements notification.Repository.
type NotificationRepo struct {
	txm        *TxManager
	selectCols []string
}

var _ notification.Repository = (*NotificationRepo)(nil)

// NewNotificationRepo creates the inbox repository.
func NewNotificationRepo(txm *TxManager) *NotificationRepo {
	return &NotificationRepo{
		txm:        txm,
		selectCols: ExtractDBColumns[notification.Notification](),
	}
}

func (r *NotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	sql, args, err := Builder().
		Insert(notificationsTable).
		SetMap(StructToMap(n)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepo) ExistsUnread(ctx context.Context, userID id.ID, link string, typ notification.Type) (bool, error) {
	sql, args, err := Builder().
		Select("1").
		Prefix("SELECT EXISTS (").
		From(notificationsTable).
		Where(squirrel.Eq{"user_id": userID, "link": link, "type": typ, "is_read": false}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check unread notification: %w", err)
	}
	return exists, nil
}

// ListLatest returns the newest notifications of a user.
func (r *NotificationRepo) ListLatest(ctx context.Context, userID id.ID, limit int) ([]*notification.Notification, error) {
	q := Builder().
		Select(r.selectCols...).
		From(notificationsTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	items := []*notification.Notification{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

func (r *NotificationRepo) CountUnread(ctx context.Context, userID id.ID) (int64, error) {
	var n int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead marks one notification read. Another user's notification is NotFound.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID id.ID) (*notification.Notification, error) {
	sql, args, err := Builder().
		Update(notificationsTable).
		Set("is_read", true).
		Where(squirrel.Eq{"id": notificationID, "user_id": userID}).
		Suffix("RETURNING " + joinColumns(r.selectCols)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	n := &notification.Notification{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), n, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("notification", notificationID.String())
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID id.ID) (int64, error) {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}
