package agreement

import (
	"context"
	"fmt"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"
)

// Accept fecha offer e request na mesma transação que aceita a agreement.
func (s *AgreementService) Accept(ctx context.Context, agreementID string) (*entities.Agreement, error) {
	return s.transition(ctx, agreementID, entities.AgreementAccepted)
}

// Reject muda só a agreement; offer e request ficam como estão.
func (s *AgreementService) Reject(ctx context.Context, agreementID string) (*entities.Agreement, error) {
	return s.transition(ctx, agreementID, entities.AgreementRejected)
}

// UpdateStatus is the administrative path. It goes through the same guard as
// Accept and Reject, and the store refuses illegal transitions on its own too.
func (s *AgreementService) UpdateStatus(ctx context.Context, agreementID string, status string) (*entities.Agreement, error) {
	next, err := entities.ParseAgreementStatus(status)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, agreementID, next)
}

func (s *AgreementService) transition(ctx context.Context, agreementID string, next entities.AgreementStatus) (*entities.Agreement, error) {
	t, err := s.agreements.TransitionAgreement(ctx, agreementID, next)
	s.metrics.AgreementTransitions.WithLabelValues(string(next), outcome(err)).Inc()
	if err != nil {
		if domain.IsState(err) || domain.IsValidation(err) {
			s.logger.InfoContext(ctx, "agreement transition refused", "agreement_id", agreementID, "to", next, "reason", domain.StateCodeOf(err))
			return nil, err
		}
		return nil, fmt.Errorf("AgreementService.transition - %s -> %s: %w", agreementID, next, err)
	}

	s.logger.InfoContext(ctx, "agreement transitioned",
		"agreement_id", agreementID,
		"from", t.Previous,
		"to", t.Agreement.Status,
		"offer_status", t.OfferStatus,
		"request_status", t.RequestStatus)

	if t.Changed() {
		if err := s.notifier.NotifyAgreementStatusChanged(ctx, agreementID, t.Previous); err != nil {
			s.logger.WarnContext(ctx, "agreement status notification failed", "error", err, "agreement_id", agreementID)
		}
	}

	return t.Agreement, nil
}
