package notification

import (
	"context"
	"log/slog"
	"time"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"
	"mutualexchange/src/infra/metrics"
)

type NotificationStore interface {
	HasUnreadForPair(ctx context.Context, recipientID, offerID, requestID string) (bool, error)
	InsertNotification(ctx context.Context, n *entities.Notification) (bool, error)
	ListUnreadNotifications(ctx context.Context, recipientID string) ([]*entities.Notification, error)
	MarkNotificationRead(ctx context.Context, id string, at time.Time) (*entities.Notification, error)
}

type ExchangeReader interface {
	GetExchange(ctx context.Context, id string) (*entities.Exchange, error)
}

type AgreementReader interface {
	GetAgreement(ctx context.Context, id string) (*entities.Agreement, error)
}

type PersonDirectory interface {
	GetPeople(ctx context.Context, ids []string) (map[string]entities.Person, error)
}

// LiveChannel entrega na hora, sem retry.
type LiveChannel interface {
	Deliver(ctx context.Context, msg domain.LiveMessage) error
}

// DurableChannel enfileira uma tarefa de email; a fila cuida do retry.
type DurableChannel interface {
	Enqueue(ctx context.Context, task domain.NotificationTask) error
}

type Dispatcher struct {
	logger     *slog.Logger
	store      NotificationStore
	exchanges  ExchangeReader
	agreements AgreementReader
	people     PersonDirectory
	live       LiveChannel
	durable    DurableChannel
	metrics    *metrics.Metrics
}

func NewDispatcher(
	logger *slog.Logger,
	store NotificationStore,
	exchanges ExchangeReader,
	agreements AgreementReader,
	people PersonDirectory,
	live LiveChannel,
	durable DurableChannel,
	m *metrics.Metrics,
) *Dispatcher {
	return &Dispatcher{
		logger:     logger,
		store:      store,
		exchanges:  exchanges,
		agreements: agreements,
		people:     people,
		live:       live,
		durable:    durable,
		metrics:    m,
	}
}

func distinct(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
