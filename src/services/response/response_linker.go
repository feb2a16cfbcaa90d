package response

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"
	"mutualexchange/src/infra/metrics"

	"github.com/google/uuid"
)

type ExchangeReader interface {
	GetExchange(ctx context.Context, id string) (*entities.Exchange, error)
}

// ExchangeRegistrar grava uma exchange nova seguindo o mesmo ciclo de criação
// (validação, persistência, matching e notificação).
type ExchangeRegistrar interface {
	Register(ctx context.Context, ex *entities.Exchange) error
}

type LinkStore interface {
	CreateResponseLink(ctx context.Context, link *entities.ResponseLink) error
	ListResponseLinks(ctx context.Context, sourceID string) ([]*entities.ResponseLink, error)
}

type ResponseLinker struct {
	logger    *slog.Logger
	exchanges ExchangeReader
	registrar ExchangeRegistrar
	links     LinkStore
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewResponseLinker(
	logger *slog.Logger,
	exchanges ExchangeReader,
	registrar ExchangeRegistrar,
	links LinkStore,
	m *metrics.Metrics,
) *ResponseLinker {
	return &ResponseLinker{
		logger:    logger,
		exchanges: exchanges,
		registrar: registrar,
		links:     links,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateResponse cria uma exchange do tipo oposto copiando a origem e depois
// registra o link. Se o link falhar a nova exchange continua valendo.
func (l *ResponseLinker) CreateResponse(ctx context.Context, sourceID string, creatorID string) (*entities.Exchange, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return nil, domain.NewValidationError("creator_id", "creator is required")
	}

	source, err := l.exchanges.GetExchange(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("ResponseLinker.CreateResponse - failed to load source %s: %w", sourceID, err)
	}

	if !source.Status.Respondable() {
		return nil, domain.NewPreconditionError(source.ID, string(source.Status))
	}

	response := responseFrom(source, uuid.NewString(), creatorID, l.now())
	if err := l.registrar.Register(ctx, response); err != nil {
		return nil, err
	}

	l.recordLink(ctx, source, response, creatorID)

	return response, nil
}

func responseFrom(source *entities.Exchange, id, creatorID string, now time.Time) *entities.Exchange {
	var target *entities.Target
	if source.Target != nil {
		t := *source.Target
		target = &t
	}
	var address *string
	if source.AddressID != nil {
		a := *source.AddressID
		address = &a
	}

	return &entities.Exchange{
		ID:              id,
		Kind:            source.Kind.Opposite(),
		Name:            source.Name,
		Description:     source.Description,
		Status:          entities.StatusOpen,
		Urgency:         source.Urgency,
		CreatorID:       creatorID,
		Target:          target,
		CategoryIDs:     append([]string(nil), source.CategoryIDs...),
		AddressID:       address,
		CreatedAt:       now,
		UpdatedAt:       now,
		MalformedTarget: source.MalformedTarget,
	}
}

func (l *ResponseLinker) recordLink(ctx context.Context, source, response *entities.Exchange, creatorID string) {
	link, err := entities.NewResponseLink(uuid.NewString(), source.Ref(), response.Ref(), creatorID, l.now())
	if err == nil {
		err = l.links.CreateResponseLink(ctx, link)
	}
	if err != nil {
		l.metrics.ResponseLinks.WithLabelValues("error").Inc()
		l.logger.WarnContext(ctx, "response link not recorded, response kept",
			"error", err,
			"source_id", source.ID,
			"response_id", response.ID)
		return
	}
	l.metrics.ResponseLinks.WithLabelValues("ok").Inc()
}

func (l *ResponseLinker) ListResponses(ctx context.Context, sourceID string) ([]*entities.ResponseLink, error) {
	if _, err := l.exchanges.GetExchange(ctx, sourceID); err != nil {
		return nil, fmt.Errorf("ResponseLinker.ListResponses - %w", err)
	}
	links, err := l.links.ListResponseLinks(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("ResponseLinker.ListResponses - %w", err)
	}
	return links, nil
}
