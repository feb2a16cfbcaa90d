package domain

import (
	"errors"
	"time"
)

var (
	ErrEntityNotFound = errors.New("entity not found")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

// ############################################################
// ########### TAREFAS DE NOTIFICAÇÃO (CANAL DURÁVEL) ##########
// ############################################################

// NotificationTask is the payload enqueued on the durable channel. The worker
// that consumes it only needs what is in here to send the email.
type NotificationTask struct {
	TaskID         string    `json:"task_id"`
	NotificationID string    `json:"notification_id"`
	RecipientID    string    `json:"recipient_id"`
	Email          string    `json:"email"`
	Locale         string    `json:"locale"`
	Event          string    `json:"event"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
}

// LiveMessage is what the live channel pushes to a connected recipient.
type LiveMessage struct {
	NotificationID string    `json:"notification_id"`
	RecipientID    string    `json:"recipient_id"`
	Event          string    `json:"event"`
	Message        string    `json:"message"`
	OfferID        string    `json:"offer_id,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	AgreementID    string    `json:"agreement_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
