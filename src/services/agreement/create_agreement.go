package agreement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"

	"github.com/google/uuid"
)

// Create grava uma agreement pending entre offer e request. Depois do commit
// notifica os dois criadores e tenta mover as pontas para matched; nenhuma
// dessas etapas desfaz a criação.
func (s *AgreementService) Create(ctx context.Context, input CreateAgreementInput) (*entities.Agreement, error) {
	offer, err := s.loadSide(ctx, "offer_id", input.OfferID)
	if err != nil {
		return nil, err
	}
	request, err := s.loadSide(ctx, "request_id", input.RequestID)
	if err != nil {
		return nil, err
	}

	agreement, err := entities.NewAgreement(uuid.NewString(), offer, request, input.Terms, input.Value, s.now())
	if err != nil {
		s.metrics.AgreementTransitions.WithLabelValues(string(entities.AgreementPending), outcome(err)).Inc()
		return nil, err
	}

	if err := s.agreements.CreateAgreement(ctx, agreement); err != nil {
		s.metrics.AgreementTransitions.WithLabelValues(string(entities.AgreementPending), outcome(err)).Inc()
		if domain.IsState(err) {
			return nil, err
		}
		return nil, fmt.Errorf("AgreementService.Create - failed to persist agreement: %w", err)
	}
	s.metrics.AgreementTransitions.WithLabelValues(string(entities.AgreementPending), "ok").Inc()

	if err := s.notifier.NotifyAgreementCreated(ctx, agreement.ID); err != nil {
		s.logger.WarnContext(ctx, "agreement created notification failed", "error", err, "agreement_id", agreement.ID)
	}

	result := s.attemptNonCriticalCascade(ctx, agreement)
	if result.Failed() {
		s.logger.WarnContext(ctx, "agreement cascade incomplete",
			"error", result.Err(),
			"agreement_id", agreement.ID,
			"offer_id", agreement.OfferID,
			"request_id", agreement.RequestID)
	} else {
		s.logger.InfoContext(ctx, "agreement created",
			"agreement_id", agreement.ID,
			"offer_marked", result.Offer.Marked,
			"request_marked", result.Request.Marked)
	}

	return agreement, nil
}

func (s *AgreementService) loadSide(ctx context.Context, field, id string) (*entities.Exchange, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError(field, "is required")
	}
	ex, err := s.exchanges.GetExchange(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEntityNotFound) {
			return nil, domain.NewValidationError(field, id+" does not exist")
		}
		return nil, fmt.Errorf("AgreementService.Create - failed to load %s: %w", field, err)
	}
	return ex, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsState(err):
		return "state_error"
	case domain.IsValidation(err):
		return "validation_error"
	}
	return "error"
}
