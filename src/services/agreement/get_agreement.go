package agreement

import (
	"context"
	"fmt"

	"mutualexchange/src/domain/entities"
)

func (s *AgreementService) Get(ctx context.Context, agreementID string) (*entities.Agreement, error) {
	a, err := s.agreements.GetAgreement(ctx, agreementID)
	if err != nil {
		return nil, fmt.Errorf("AgreementService.Get - %w", err)
	}
	return a, nil
}

func (s *AgreementService) ListForExchange(ctx context.Context, exchangeID string) ([]*entities.Agreement, error) {
	if _, err := s.exchanges.GetExchange(ctx, exchangeID); err != nil {
		return nil, fmt.Errorf("AgreementService.ListForExchange - %w", err)
	}
	list, err := s.agreements.ListAgreementsForExchange(ctx, exchangeID)
	if err != nil {
		return nil, fmt.Errorf("AgreementService.ListForExchange - %w", err)
	}
	return list, nil
}
