package services

import (
	"context"
	"fmt"

	"counseling-app-server/internal/models"
	"counseling-app-server/internal/store"
)

// NotificationService serves a user's inbox.
type NotificationService struct {
	store store.Store
}

func NewNotificationService(st store.Store) *NotificationService {
	return &NotificationService{store: st}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor Actor, unreadOnly bool) ([]models.Notification, error) {
	notifications, err := s.store.ListNotifications(ctx, actor.ID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: listing notifications: %v", ErrTransactionFailure, err)
	}
	return notifications, nil
}

// MarkRead flags one of the caller's notifications as read. Marking twice is allowed.
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id string) error {
	if err := s.store.MarkNotificationRead(ctx, id, actor.ID); err != nil {
		return lookupError(err, "notification")
	}
	return nil
}
