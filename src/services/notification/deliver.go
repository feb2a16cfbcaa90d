package notification

import (
	"context"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"

	"github.com/google/uuid"
)

// deliver envia pelos dois canais de forma independente. Falhas são logadas e engolidas.
func (d *Dispatcher) deliver(ctx context.Context, n *entities.Notification, person *entities.Person) {
	live := domain.LiveMessage{
		NotificationID: n.ID,
		RecipientID:    n.RecipientID,
		Event:          string(n.Event),
		Message:        n.Message,
		OfferID:        n.OfferID,
		RequestID:      n.RequestID,
		CreatedAt:      n.CreatedAt,
	}
	if n.AgreementID != nil {
		live.AgreementID = *n.AgreementID
	}

	if err := d.live.Deliver(ctx, live); err != nil {
		d.metrics.NotificationsDispatched.WithLabelValues("live", "error").Inc()
		d.logger.WarnContext(ctx, "live notification failed", "error", err, "notification_id", n.ID, "recipient_id", n.RecipientID)
	} else {
		d.metrics.NotificationsDispatched.WithLabelValues("live", "ok").Inc()
	}

	if person == nil || !person.NotifyByEmail || person.Email == "" {
		d.metrics.NotificationsDispatched.WithLabelValues("durable", "opted_out").Inc()
		return
	}

	task := domain.NotificationTask{
		TaskID:         uuid.NewString(),
		NotificationID: n.ID,
		RecipientID:    n.RecipientID,
		Email:          person.Email,
		Locale:         person.Locale,
		Event:          string(n.Event),
		Subject:        renderSubject(person.Locale, n.Event),
		Body:           n.Message,
		EnqueuedAt:     n.CreatedAt,
	}

	if err := d.durable.Enqueue(ctx, task); err != nil {
		d.metrics.NotificationsDispatched.WithLabelValues("durable", "error").Inc()
		d.logger.ErrorContext(ctx, "failed to enqueue email notification", "error", err, "notification_id", n.ID, "recipient_id", n.RecipientID)
		return
	}
	d.metrics.NotificationsDispatched.WithLabelValues("durable", "ok").Inc()
}
