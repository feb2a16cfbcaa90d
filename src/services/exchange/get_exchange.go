package exchange

import (
	"context"
	"fmt"

	"mutualexchange/src/domain/entities"
)

func (s *ExchangeService) Get(ctx context.Context, id string) (*entities.Exchange, error) {
	ex, err := s.store.GetExchange(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ExchangeService.Get - %w", err)
	}
	return ex, nil
}

func (s *ExchangeService) List(ctx context.Context, filter ListFilter) ([]*entities.Exchange, error) {
	var (
		f   entities.ExchangeFilter
		err error
	)
	if filter.Kind != "" {
		if f.Kind, err = entities.ParseExchangeKind(filter.Kind); err != nil {
			return nil, err
		}
	}
	if filter.Status != "" {
		if f.Status, err = entities.ParseExchangeStatus(filter.Status); err != nil {
			return nil, err
		}
	}
	f.CreatorID = filter.CreatorID
	f.Limit = filter.Limit

	list, err := s.store.ListExchanges(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("ExchangeService.List - %w", err)
	}
	return list, nil
}
