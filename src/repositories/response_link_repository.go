package repositories

import (
	"context"
	"fmt"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"
	"mutualexchange/src/infra/postgres"
)

type ResponseLinkRepository struct {
	client *postgres.ReadWriteClient
}

func NewResponseLinkRepository(client *postgres.ReadWriteClient) *ResponseLinkRepository {
	return &ResponseLinkRepository{client: client}
}

func (r *ResponseLinkRepository) CreateResponseLink(ctx context.Context, link *entities.ResponseLink) error {
	query := `
		INSERT INTO response_links
			(id, source_kind, source_id, response_kind, response_id, creator_id, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.client.GetWritePool().Exec(ctx, query,
		link.ID,
		string(link.Source.Kind),
		link.Source.ID,
		string(link.Response.Kind),
		link.Response.ID,
		link.CreatorID,
		link.CreatedAt,
	)
	if err != nil {
		if postgres.IsCheckViolation(err, postgres.ConstraintAlternatingKind) {
			return domain.NewValidationError("response_link", "source and response must have opposite kinds")
		}
		if postgres.IsForeignKeyViolation(err) {
			return domain.ErrEntityNotFound
		}
		return fmt.Errorf("ResponseLinkRepository.CreateResponseLink - failed to insert link: %w", err)
	}

	return nil
}

func (r *ResponseLinkRepository) ListResponseLinks(ctx context.Context, sourceID string) ([]*entities.ResponseLink, error) {
	query := `
		SELECT
			id, source_kind, source_id, response_kind, response_id, creator_id, created_at
		FROM
			response_links
		WHERE
			source_id = $1
		ORDER BY
			created_at, id
	`
	rows, err := r.client.GetReadPool().Query(ctx, query, sourceID)
	if err != nil {
		return nil, fmt.Errorf("ResponseLinkRepository.ListResponseLinks - failed to query links: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.ResponseLink, 0)
	for rows.Next() {
		var (
			link                     entities.ResponseLink
			sourceKind, responseKind string
		)
		if err := rows.Scan(&link.ID, &sourceKind, &link.Source.ID, &responseKind, &link.Response.ID, &link.CreatorID, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("ResponseLinkRepository.ListResponseLinks - failed to scan link: %w", err)
		}
		if link.Source.Kind, err = entities.ParseExchangeKind(sourceKind); err != nil {
			return nil, fmt.Errorf("ResponseLinkRepository.ListResponseLinks - link %s: %w", link.ID, err)
		}
		if link.Response.Kind, err = entities.ParseExchangeKind(responseKind); err != nil {
			return nil, fmt.Errorf("ResponseLinkRepository.ListResponseLinks - link %s: %w", link.ID, err)
		}
		link.CreatedAt = link.CreatedAt.UTC()
		result = append(result, &link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ResponseLinkRepository.ListResponseLinks - rows error: %w", err)
	}

	return result, nil
}
