package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mutualexchange/src/domain/entities"

	"github.com/google/uuid"
)

// NotifyAgreementCreated avisa os dois criadores, mesmo quando um deles é quem criou a agreement.
func (d *Dispatcher) NotifyAgreementCreated(ctx context.Context, agreementID string) error {
	agreement, err := d.agreements.GetAgreement(ctx, agreementID)
	if err != nil {
		return fmt.Errorf("Dispatcher.NotifyAgreementCreated - failed to load agreement %s: %w", agreementID, err)
	}

	if err := d.fanOutAgreement(ctx, agreement, entities.EventAgreementCreated); err != nil {
		return fmt.Errorf("Dispatcher.NotifyAgreementCreated - %w", err)
	}
	return nil
}

// NotifyAgreementStatusChanged só notifica quando o status atual difere de previous.
func (d *Dispatcher) NotifyAgreementStatusChanged(ctx context.Context, agreementID string, previous entities.AgreementStatus) error {
	agreement, err := d.agreements.GetAgreement(ctx, agreementID)
	if err != nil {
		return fmt.Errorf("Dispatcher.NotifyAgreementStatusChanged - failed to load agreement %s: %w", agreementID, err)
	}

	if agreement.Status == previous {
		d.logger.DebugContext(ctx, "agreement status unchanged, nothing to notify", "agreement_id", agreementID, "status", agreement.Status)
		return nil
	}

	if err := d.fanOutAgreement(ctx, agreement, entities.EventAgreementStatusChanged); err != nil {
		return fmt.Errorf("Dispatcher.NotifyAgreementStatusChanged - %w", err)
	}
	return nil
}

func (d *Dispatcher) fanOutAgreement(ctx context.Context, agreement *entities.Agreement, event entities.NotificationEvent) error {
	offer, err := d.exchanges.GetExchange(ctx, agreement.OfferID)
	if err != nil {
		return fmt.Errorf("failed to load offer %s: %w", agreement.OfferID, err)
	}
	request, err := d.exchanges.GetExchange(ctx, agreement.RequestID)
	if err != nil {
		return fmt.Errorf("failed to load request %s: %w", agreement.RequestID, err)
	}

	recipients := distinct(offer.CreatorID, request.CreatorID)

	people, err := d.people.GetPeople(ctx, recipients)
	if err != nil {
		d.logger.WarnContext(ctx, "failed to load recipients, email delivery skipped", "error", err, "agreement_id", agreement.ID)
		people = nil
	}

	agreementID := agreement.ID
	var errs []error
	for _, recipientID := range recipients {
		person, known := people[recipientID]
		n := &entities.Notification{
			ID:          uuid.NewString(),
			RecipientID: recipientID,
			Event:       event,
			OfferID:     offer.ID,
			RequestID:   request.ID,
			AgreementID: &agreementID,
			Message:     renderMessage(localeOf(person, known), event, offer, request, agreement.Status),
			CreatedAt:   time.Now().UTC(),
		}

		if _, err := d.store.InsertNotification(ctx, n); err != nil {
			d.metrics.NotificationsDispatched.WithLabelValues("record", "error").Inc()
			errs = append(errs, fmt.Errorf("recipient %s: %w", recipientID, err))
			continue
		}
		d.metrics.NotificationsDispatched.WithLabelValues("record", "ok").Inc()

		d.deliver(ctx, n, personOrNil(person, known))
	}

	return errors.Join(errs...)
}
