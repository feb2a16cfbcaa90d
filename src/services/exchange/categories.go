package exchange

import (
	"context"
	"fmt"
	"strings"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"

	"github.com/google/uuid"
)

// TagCategories é idempotente: categorias já presentes são ignoradas.
func (s *ExchangeService) TagCategories(ctx context.Context, exchangeID string, categoryIDs []string) ([]string, error) {
	ids := entities.NormalizeCategoryIDs(categoryIDs)
	if len(ids) == 0 {
		return nil, domain.NewValidationError("category_ids", "at least one category is required")
	}

	current, err := s.store.TagCategories(ctx, exchangeID, ids)
	if err != nil {
		if domain.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("ExchangeService.TagCategories - %w", err)
	}
	return current, nil
}

func (s *ExchangeService) UntagCategory(ctx context.Context, exchangeID string, categoryID string) ([]string, error) {
	current, err := s.store.UntagCategory(ctx, exchangeID, categoryID)
	if err != nil {
		if domain.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("ExchangeService.UntagCategory - %w", err)
	}
	return current, nil
}

func (s *ExchangeService) CreateCategory(ctx context.Context, name string) (*entities.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}

	c := &entities.Category{ID: uuid.NewString(), Name: name}
	if err := s.categories.CreateCategory(ctx, c); err != nil {
		if domain.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("ExchangeService.CreateCategory - %w", err)
	}
	return c, nil
}

func (s *ExchangeService) ListCategories(ctx context.Context) ([]entities.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExchangeService.ListCategories - %w", err)
	}
	return categories, nil
}
