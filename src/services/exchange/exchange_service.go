package exchange

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"mutualexchange/src/domain/entities"
)

type ExchangeStore interface {
	CreateExchange(ctx context.Context, ex *entities.Exchange) error
	GetExchange(ctx context.Context, id string) (*entities.Exchange, error)
	ListExchanges(ctx context.Context, filter entities.ExchangeFilter) ([]*entities.Exchange, error)
	TagCategories(ctx context.Context, exchangeID string, categoryIDs []string) ([]string, error)
	UntagCategory(ctx context.Context, exchangeID string, categoryID string) ([]string, error)
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c *entities.Category) error
	ListCategories(ctx context.Context) ([]entities.Category, error)
}

type Matcher interface {
	MatchExchange(ctx context.Context, ex *entities.Exchange) iter.Seq2[entities.ExchangeSummary, error]
}

type MatchNotifier interface {
	NotifyMatch(ctx context.Context, offerID, requestID string, recipients []string) error
}

type ExchangeService struct {
	logger     *slog.Logger
	store      ExchangeStore
	categories CategoryStore
	matcher    Matcher
	notifier   MatchNotifier
	now        func() time.Time
}

func NewExchangeService(
	logger *slog.Logger,
	store ExchangeStore,
	categories CategoryStore,
	matcher Matcher,
	notifier MatchNotifier,
) *ExchangeService {
	return &ExchangeService{
		logger:     logger,
		store:      store,
		categories: categories,
		matcher:    matcher,
		notifier:   notifier,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type CreateExchangeInput struct {
	Kind        string   `json:"kind"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Urgency     string   `json:"urgency"`
	CreatorID   string   `json:"creator_id"`
	TargetKind  string   `json:"target_kind"`
	TargetID    string   `json:"target_id"`
	CategoryIDs []string `json:"category_ids"`
	AddressID   *string  `json:"address_id"`
}

type ListFilter struct {
	Kind      string
	Status    string
	CreatorID string
	Limit     int
}
