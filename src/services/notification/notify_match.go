package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mutualexchange/src/domain/entities"

	"github.com/google/uuid"
)

// NotifyMatch avisa cada destinatário sobre o par (offer, request), no máximo
// uma notificação não lida por par. A consulta prévia evita o insert; o índice
// parcial uniq_notifications_unread_match fecha a corrida entre dois gatilhos.
func (d *Dispatcher) NotifyMatch(ctx context.Context, offerID, requestID string, recipients []string) error {
	recipients = distinct(recipients...)
	if len(recipients) == 0 {
		return nil
	}

	offer, request := d.loadPair(ctx, offerID, requestID)

	people, err := d.people.GetPeople(ctx, recipients)
	if err != nil {
		// Sem diretório ainda gravamos e entregamos pelo canal live
		d.logger.WarnContext(ctx, "failed to load recipients, email delivery skipped", "error", err, "offer_id", offerID, "request_id", requestID)
		people = nil
	}

	var errs []error
	for _, recipientID := range recipients {
		exists, err := d.store.HasUnreadForPair(ctx, recipientID, offerID, requestID)
		if err != nil {
			errs = append(errs, fmt.Errorf("recipient %s: %w", recipientID, err))
			continue
		}
		if exists {
			d.metrics.NotificationsDeduplicated.Inc()
			d.logger.DebugContext(ctx, "unread match notification already exists", "recipient_id", recipientID, "offer_id", offerID, "request_id", requestID)
			continue
		}

		person, known := people[recipientID]
		n := &entities.Notification{
			ID:          uuid.NewString(),
			RecipientID: recipientID,
			Event:       entities.EventMatchFound,
			OfferID:     offerID,
			RequestID:   requestID,
			Message:     renderMessage(localeOf(person, known), entities.EventMatchFound, offer, request, ""),
			CreatedAt:   time.Now().UTC(),
		}

		inserted, err := d.store.InsertNotification(ctx, n)
		if err != nil {
			d.metrics.NotificationsDispatched.WithLabelValues("record", "error").Inc()
			errs = append(errs, fmt.Errorf("recipient %s: %w", recipientID, err))
			continue
		}
		if !inserted {
			d.metrics.NotificationsDeduplicated.Inc()
			continue
		}
		d.metrics.NotificationsDispatched.WithLabelValues("record", "ok").Inc()

		d.deliver(ctx, n, personOrNil(person, known))
	}

	if len(errs) > 0 {
		return fmt.Errorf("Dispatcher.NotifyMatch - %w", errors.Join(errs...))
	}
	return nil
}

// loadPair relê offer e request só para montar o texto; falha não impede a notificação.
func (d *Dispatcher) loadPair(ctx context.Context, offerID, requestID string) (offer, request *entities.Exchange) {
	var err error
	if offer, err = d.exchanges.GetExchange(ctx, offerID); err != nil {
		d.logger.WarnContext(ctx, "failed to load offer for notification text", "error", err, "offer_id", offerID)
		offer = nil
	}
	if request, err = d.exchanges.GetExchange(ctx, requestID); err != nil {
		d.logger.WarnContext(ctx, "failed to load request for notification text", "error", err, "request_id", requestID)
		request = nil
	}
	return offer, request
}

func personOrNil(p entities.Person, known bool) *entities.Person {
	if !known {
		return nil
	}
	return &p
}

func localeOf(p entities.Person, known bool) string {
	if !known {
		return ""
	}
	return p.Locale
}
