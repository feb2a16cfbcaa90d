package matchmaker

import (
	"context"
	"iter"
	"log/slog"

	"mutualexchange/src/domain/entities"
	"mutualexchange/src/infra/metrics"
)

type ExchangeReader interface {
	GetExchange(ctx context.Context, id string) (*entities.Exchange, error)
	FindCounterparts(ctx context.Context, ex *entities.Exchange) iter.Seq2[entities.ExchangeSummary, error]
}

// Matchmaker é só leitura: pode ser chamado concorrentemente sem coordenação.
type Matchmaker struct {
	logger  *slog.Logger
	store   ExchangeReader
	metrics *metrics.Metrics
}

func NewMatchmaker(logger *slog.Logger, store ExchangeReader, m *metrics.Metrics) *Matchmaker {
	return &Matchmaker{
		logger:  logger,
		store:   store,
		metrics: m,
	}
}

// Match lê a exchange e devolve suas contrapartes. Erros de leitura chegam
// como o único elemento da sequência.
func (m *Matchmaker) Match(ctx context.Context, exchangeID string) iter.Seq2[entities.ExchangeSummary, error] {
	return func(yield func(entities.ExchangeSummary, error) bool) {
		ex, err := m.store.GetExchange(ctx, exchangeID)
		if err != nil {
			yield(entities.ExchangeSummary{}, err)
			return
		}
		for summary, err := range m.MatchExchange(ctx, ex) {
			if !yield(summary, err) {
				return
			}
		}
	}
}

// MatchExchange runs the counterpart query for an exchange already in hand.
func (m *Matchmaker) MatchExchange(ctx context.Context, ex *entities.Exchange) iter.Seq2[entities.ExchangeSummary, error] {
	return func(yield func(entities.ExchangeSummary, error) bool) {
		// Alvo malformado não é erro: a exchange simplesmente não casa com nada
		if ex.MalformedTarget {
			m.logger.WarnContext(ctx, "exchange has a malformed target, skipping matching",
				"integrity_warning", true,
				"exchange_id", ex.ID,
				"kind", ex.Kind)
			return
		}
		if len(ex.CategoryIDs) == 0 {
			return
		}

		seen := make(map[string]struct{})
		for summary, err := range m.store.FindCounterparts(ctx, ex) {
			if err != nil {
				yield(entities.ExchangeSummary{}, err)
				return
			}
			if _, dup := seen[summary.ID]; dup {
				continue
			}
			seen[summary.ID] = struct{}{}
			m.metrics.MatchesFound.WithLabelValues(string(ex.Kind)).Inc()
			if !yield(summary, nil) {
				return
			}
		}
	}
}

// Collect materialises a match sequence, stopping at the first error.
func Collect(seq iter.Seq2[entities.ExchangeSummary, error]) ([]entities.ExchangeSummary, error) {
	result := make([]entities.ExchangeSummary, 0)
	for summary, err := range seq {
		if err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, nil
}
