package entities

import (
	"fmt"
	"time"

	"mutualexchange/src/domain"
)

type NotificationEvent string

const (
	EventMatchFound             NotificationEvent = "match_found"
	EventAgreementCreated       NotificationEvent = "agreement_created"
	EventAgreementStatusChanged NotificationEvent = "agreement_status_changed"
)

func ParseNotificationEvent(value string) (NotificationEvent, error) {
	switch NotificationEvent(value) {
	case EventMatchFound, EventAgreementCreated, EventAgreementStatusChanged:
		return NotificationEvent(value), nil
	}
	return "", domain.NewValidationError("event", fmt.Sprintf("unknown notification event %q", value))
}

type Notification struct {
	ID          string            `json:"id"`
	RecipientID string            `json:"recipient_id"`
	Event       NotificationEvent `json:"event"`
	OfferID     string            `json:"offer_id"`
	RequestID   string            `json:"request_id"`
	AgreementID *string           `json:"agreement_id,omitempty"`
	Message     string            `json:"message"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (n *Notification) Unread() bool {
	return n.ReadAt == nil
}

// ReferencesPair is true when the notification is about this exact offer/request pair.
func (n *Notification) ReferencesPair(offerID, requestID string) bool {
	return n.OfferID == offerID && n.RequestID == requestID
}
