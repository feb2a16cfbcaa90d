package agreement

import (
	"context"
	"log/slog"
	"time"

	"mutualexchange/src/domain/entities"
	"mutualexchange/src/infra/metrics"
)

type ExchangeStore interface {
	GetExchange(ctx context.Context, id string) (*entities.Exchange, error)
	MarkMatchedIfOpen(ctx context.Context, id string) (bool, error)
}

type AgreementStore interface {
	CreateAgreement(ctx context.Context, a *entities.Agreement) error
	GetAgreement(ctx context.Context, id string) (*entities.Agreement, error)
	ListAgreementsForExchange(ctx context.Context, exchangeID string) ([]*entities.Agreement, error)
	TransitionAgreement(ctx context.Context, id string, next entities.AgreementStatus) (*entities.AgreementTransition, error)
}

type Notifier interface {
	NotifyAgreementCreated(ctx context.Context, agreementID string) error
	NotifyAgreementStatusChanged(ctx context.Context, agreementID string, previous entities.AgreementStatus) error
}

// AgreementService orquestra explicitamente: validação, persistência, cascade e notificação.
type AgreementService struct {
	logger     *slog.Logger
	exchanges  ExchangeStore
	agreements AgreementStore
	notifier   Notifier
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewAgreementService(
	logger *slog.Logger,
	exchanges ExchangeStore,
	agreements AgreementStore,
	notifier Notifier,
	m *metrics.Metrics,
) *AgreementService {
	return &AgreementService{
		logger:     logger,
		exchanges:  exchanges,
		agreements: agreements,
		notifier:   notifier,
		metrics:    m,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type CreateAgreementInput struct {
	OfferID   string `json:"offer_id"`
	RequestID string `json:"request_id"`
	Terms     string `json:"terms"`
	Value     string `json:"value"`
}
