package notification

import (
	"context"
	"fmt"
	"time"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"
)

func (d *Dispatcher) ListUnread(ctx context.Context, recipientID string) ([]*entities.Notification, error) {
	if recipientID == "" {
		return nil, domain.NewValidationError("recipient_id", "recipient is required")
	}
	notifications, err := d.store.ListUnreadNotifications(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("Dispatcher.ListUnread - %w", err)
	}
	return notifications, nil
}

// MarkRead libera o par para uma nova notificação de match.
func (d *Dispatcher) MarkRead(ctx context.Context, notificationID string) (*entities.Notification, error) {
	n, err := d.store.MarkNotificationRead(ctx, notificationID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("Dispatcher.MarkRead - %w", err)
	}
	return n, nil
}
