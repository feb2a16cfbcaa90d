package exchange

import (
	"context"
	"fmt"
	"strings"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"

	"github.com/google/uuid"
)

func (s *ExchangeService) Create(ctx context.Context, input CreateExchangeInput) (*entities.Exchange, error) {
	ex, err := s.build(input)
	if err != nil {
		return nil, err
	}

	if err := s.Register(ctx, ex); err != nil {
		return nil, err
	}

	return ex, nil
}

func (s *ExchangeService) build(input CreateExchangeInput) (*entities.Exchange, error) {
	kind, err := entities.ParseExchangeKind(strings.TrimSpace(input.Kind))
	if err != nil {
		return nil, err
	}

	urgency := entities.UrgencyNormal
	if strings.TrimSpace(input.Urgency) != "" {
		if urgency, err = entities.ParseUrgency(strings.TrimSpace(input.Urgency)); err != nil {
			return nil, err
		}
	}

	var target *entities.Target
	if input.TargetKind != "" || input.TargetID != "" {
		if target, err = entities.NewTarget(strings.TrimSpace(input.TargetKind), input.TargetID); err != nil {
			return nil, err
		}
	}

	var address *string
	if input.AddressID != nil && strings.TrimSpace(*input.AddressID) != "" {
		a := strings.TrimSpace(*input.AddressID)
		address = &a
	}

	now := s.now()
	return &entities.Exchange{
		ID:          uuid.NewString(),
		Kind:        kind,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Status:      entities.StatusOpen,
		Urgency:     urgency,
		CreatorID:   strings.TrimSpace(input.CreatorID),
		Target:      target,
		CategoryIDs: entities.NormalizeCategoryIDs(input.CategoryIDs),
		AddressID:   address,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Register valida e grava uma exchange já montada e, após o commit, procura
// contrapartes e notifica os dois criadores de cada par. Matching e
// notificação são best-effort: falhas são logadas.
func (s *ExchangeService) Register(ctx context.Context, ex *entities.Exchange) error {
	ex.CategoryIDs = entities.NormalizeCategoryIDs(ex.CategoryIDs)
	if err := ex.Validate(); err != nil {
		return err
	}

	if err := s.store.CreateExchange(ctx, ex); err != nil {
		if domain.IsValidation(err) {
			return err
		}
		return fmt.Errorf("ExchangeService.Register - failed to persist exchange: %w", err)
	}

	s.logger.InfoContext(ctx, "exchange created", "exchange_id", ex.ID, "kind", ex.Kind, "creator_id", ex.CreatorID)

	s.notifyMatches(ctx, ex)
	return nil
}

func (s *ExchangeService) notifyMatches(ctx context.Context, ex *entities.Exchange) {
	matches := 0
	for counterpart, err := range s.matcher.MatchExchange(ctx, ex) {
		if err != nil {
			s.logger.ErrorContext(ctx, "matching after create failed", "error", err, "exchange_id", ex.ID)
			return
		}
		matches++

		offerID, requestID := ex.ID, counterpart.ID
		if ex.Kind == entities.KindRequest {
			offerID, requestID = counterpart.ID, ex.ID
		}

		if err := s.notifier.NotifyMatch(ctx, offerID, requestID, []string{ex.CreatorID, counterpart.CreatorID}); err != nil {
			s.logger.WarnContext(ctx, "match notification failed", "error", err, "offer_id", offerID, "request_id", requestID)
		}
	}

	if matches > 0 {
		s.logger.InfoContext(ctx, "matches found for new exchange", "exchange_id", ex.ID, "matches", matches)
	}
}
