package agreement

import (
	"context"
	"errors"
	"fmt"

	"mutualexchange/src/domain/entities"
)

// CascadeStep is the outcome of driving one side open -> matched.
type CascadeStep struct {
	ExchangeID string
	// Marked is false when the side was not open (a no-op, not a failure).
	Marked bool
	Err    error
}

// CascadeResult é devolvido ao chamador para ser logado; nunca vira erro da criação.
type CascadeResult struct {
	Offer   CascadeStep
	Request CascadeStep
}

func (r CascadeResult) Failed() bool {
	return r.Offer.Err != nil || r.Request.Err != nil
}

func (r CascadeResult) Err() error {
	return errors.Join(r.Offer.Err, r.Request.Err)
}

// attemptNonCriticalCascade move cada ponta para matched se ela ainda estiver
// exatamente open. Uma falha em uma ponta não impede a outra.
func (s *AgreementService) attemptNonCriticalCascade(ctx context.Context, agreement *entities.Agreement) CascadeResult {
	return CascadeResult{
		Offer:   s.markMatched(ctx, "offer", agreement.OfferID),
		Request: s.markMatched(ctx, "request", agreement.RequestID),
	}
}

func (s *AgreementService) markMatched(ctx context.Context, side, exchangeID string) CascadeStep {
	marked, err := s.exchanges.MarkMatchedIfOpen(ctx, exchangeID)
	if err != nil {
		s.metrics.CascadeFailures.WithLabelValues("mark_" + side + "_matched").Inc()
		return CascadeStep{ExchangeID: exchangeID, Err: fmt.Errorf("%s %s: %w", side, exchangeID, err)}
	}
	return CascadeStep{ExchangeID: exchangeID, Marked: marked}
}
