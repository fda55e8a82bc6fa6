package notification

import (
	"context"
	"fmt"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
)

// InboxSize is the number of latest notifications returned.
const InboxSize = 20

// Service manages the notification inbox.
type Service struct {
	repo      Repository
	txm       tx.Manager
	publisher Publisher
}

// NewService creates a notification service. publisher may be nil.
func NewService(repo Repository, txm tx.Manager, publisher Publisher) *Service {
	return &Service{repo: repo, txm: txm, publisher: publisher}
}

// Notify stores n unless the user already has an unread notification of the
// same type for the same link. It reports whether n was stored.
// The notification and its delivery record commit together.
func (s *Service) Notify(ctx context.Context, n *Notification) (bool, error) {
	created := false
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsUnread(ctx, n.UserID, n.Link, n.Type)
		if err != nil {
			return fmt.Errorf("check duplicate notification: %w", err)
		}
		if exists {
			return nil
		}
		if err := s.repo.Create(ctx, n); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, n); err != nil {
				return fmt.Errorf("publish notification: %w", err)
			}
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Inbox returns the latest notifications and the unread count.
func (s *Service) Inbox(ctx context.Context, userID id.ID) (*Inbox, error) {
	items, err := s.repo.ListLatest(ctx, userID, InboxSize)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	return &Inbox{Items: items, UnreadCount: unread}, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID id.ID) (*Notification, error) {
	n, err := s.repo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("notification", notificationID.String())
		}
		return nil, err
	}
	return n, nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID id.ID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
