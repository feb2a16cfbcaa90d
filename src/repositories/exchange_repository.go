package repositories

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"
	"mutualexchange/src/infra/postgres"

	"github.com/jackc/pgx/v5"
)

type ExchangeRepository struct {
	client *postgres.ReadWriteClient
}

func NewExchangeRepository(client *postgres.ReadWriteClient) *ExchangeRepository {
	return &ExchangeRepository{client: client}
}

// CreateExchange grava a exchange e suas categorias na mesma transação.
func (r *ExchangeRepository) CreateExchange(ctx context.Context, ex *entities.Exchange) error {
	tx, err := r.client.GetWritePool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("ExchangeRepository.CreateExchange - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	targetType, targetID := ex.Target.Columns()

	query := `
		INSERT INTO exchanges
			(id, kind, name, description, status, urgency, creator_id, target_type, target_id, address_id, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.Exec(ctx, query,
		ex.ID,
		string(ex.Kind),
		ex.Name,
		ex.Description,
		string(ex.Status),
		string(ex.Urgency),
		ex.CreatorID,
		postgres.NewNullString(targetType),
		postgres.NewNullString(targetID),
		postgres.NewNullString(ex.AddressID),
		ex.CreatedAt,
		ex.UpdatedAt,
	)
	if err != nil {
		if postgres.IsForeignKeyViolation(err, postgres.ConstraintExchangeCreator) {
			return domain.NewValidationError("creator_id", "unknown person "+ex.CreatorID)
		}
		if postgres.IsCheckViolation(err) {
			return domain.NewValidationError("", err.Error())
		}
		return fmt.Errorf("ExchangeRepository.CreateExchange - failed to insert exchange: %w", err)
	}

	if err := insertCategories(ctx, tx, ex.ID, ex.CategoryIDs); err != nil {
		return fmt.Errorf("ExchangeRepository.CreateExchange - %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ExchangeRepository.CreateExchange - failed to commit: %w", err)
	}

	return nil
}

func insertCategories(ctx context.Context, tx pgx.Tx, exchangeID string, categoryIDs []string) error {
	query := `
		INSERT INTO exchange_categories
			(exchange_id, category_id)
		SELECT
			$1, c
		FROM
			unnest($2::text[]) AS c
		ON CONFLICT DO NOTHING
	`
	if _, err := tx.Exec(ctx, query, exchangeID, categoryIDs); err != nil {
		if postgres.IsForeignKeyViolation(err, postgres.ConstraintExchangeCategoryFK) {
			return domain.NewValidationError("category_ids", "unknown category in "+strings.Join(categoryIDs, ","))
		}
		if postgres.IsForeignKeyViolation(err) {
			return domain.ErrEntityNotFound
		}
		return fmt.Errorf("failed to insert categories: %w", err)
	}
	return nil
}

// GetExchange lê sempre do primário: é chamado antes de mutações.
func (r *ExchangeRepository) GetExchange(ctx context.Context, id string) (*entities.Exchange, error) {
	query := `SELECT ` + exchangeColumns + ` FROM exchanges e WHERE e.id = $1`

	ex, err := scanExchange(r.client.GetWritePool().QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrEntityNotFound
		}
		return nil, fmt.Errorf("ExchangeRepository.GetExchange - failed to get exchange %s: %w", id, err)
	}

	return ex, nil
}

func (r *ExchangeRepository) ListExchanges(ctx context.Context, filter entities.ExchangeFilter) ([]*entities.Exchange, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		conditions = append(conditions, fmt.Sprintf("e.kind = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)))
	}
	if filter.CreatorID != "" {
		args = append(args, filter.CreatorID)
		conditions = append(conditions, fmt.Sprintf("e.creator_id = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM
			exchanges e
		%s
		ORDER BY
			e.created_at, e.id
		LIMIT $%d
	`, exchangeColumns, where, len(args))

	rows, err := r.client.GetReadPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ExchangeRepository.ListExchanges - failed to query exchanges: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Exchange, 0)
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("ExchangeRepository.ListExchanges - failed to scan exchange: %w", err)
		}
		result = append(result, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExchangeRepository.ListExchanges - rows error: %w", err)
	}

	return result, nil
}

// MarkMatchedIfOpen só move open -> matched; qualquer outro status fica intacto.
func (r *ExchangeRepository) MarkMatchedIfOpen(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE
			exchanges
		SET
			status = 'matched',
			updated_at = now()
		WHERE
			id = $1
			AND status = 'open'
	`
	tag, err := r.client.GetWritePool().Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("ExchangeRepository.MarkMatchedIfOpen - failed to update exchange %s: %w", id, err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *ExchangeRepository) TagCategories(ctx context.Context, exchangeID string, categoryIDs []string) ([]string, error) {
	tx, err := r.client.GetWritePool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExchangeRepository.TagCategories - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lockExchange(ctx, tx, exchangeID); err != nil {
		return nil, fmt.Errorf("ExchangeRepository.TagCategories - %w", err)
	}

	if err := insertCategories(ctx, tx, exchangeID, categoryIDs); err != nil {
		return nil, fmt.Errorf("ExchangeRepository.TagCategories - %w", err)
	}

	current, err := exchangeCategories(ctx, tx, exchangeID)
	if err != nil {
		return nil, fmt.Errorf("ExchangeRepository.TagCategories - %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ExchangeRepository.TagCategories - failed to commit: %w", err)
	}

	return current, nil
}

// UntagCategory recusa remover a última categoria: toda exchange persistida tem pelo menos uma.
func (r *ExchangeRepository) UntagCategory(ctx context.Context, exchangeID string, categoryID string) ([]string, error) {
	tx, err := r.client.GetWritePool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExchangeRepository.UntagCategory - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lockExchange(ctx, tx, exchangeID); err != nil {
		return nil, fmt.Errorf("ExchangeRepository.UntagCategory - %w", err)
	}

	current, err := exchangeCategories(ctx, tx, exchangeID)
	if err != nil {
		return nil, fmt.Errorf("ExchangeRepository.UntagCategory - %w", err)
	}

	tagged := false
	for _, id := range current {
		if id == categoryID {
			tagged = true
			break
		}
	}
	if !tagged {
		return current, nil
	}
	if len(current) == 1 {
		return nil, domain.NewValidationError("category_ids", "an exchange must keep at least one category")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM exchange_categories WHERE exchange_id = $1 AND category_id = $2`, exchangeID, categoryID); err != nil {
		return nil, fmt.Errorf("ExchangeRepository.UntagCategory - failed to delete category: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ExchangeRepository.UntagCategory - failed to commit: %w", err)
	}

	remaining := make([]string, 0, len(current)-1)
	for _, id := range current {
		if id != categoryID {
			remaining = append(remaining, id)
		}
	}
	return remaining, nil
}

func lockExchange(ctx context.Context, tx pgx.Tx, id string) (entities.ExchangeStatus, error) {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM exchanges WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if postgres.IsNoRows(err) {
			return "", domain.ErrEntityNotFound
		}
		return "", fmt.Errorf("failed to lock exchange %s: %w", id, err)
	}
	return entities.ParseExchangeStatus(status)
}

func exchangeCategories(ctx context.Context, tx pgx.Tx, exchangeID string) ([]string, error) {
	rows, err := tx.Query(ctx, `SELECT category_id FROM exchange_categories WHERE exchange_id = $1 ORDER BY category_id`, exchangeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return ids, nil
}

// FindCounterparts devolve, de forma preguiçosa, as exchanges abertas do tipo
// oposto com o mesmo alvo, pelo menos uma categoria em comum e outro criador.
// EXISTS garante uma linha por candidata mesmo com várias categorias em comum.
// Alvo gravado como string vazia conta como ausente, igual a TargetFromColumns.
func (r *ExchangeRepository) FindCounterparts(ctx context.Context, ex *entities.Exchange) iter.Seq2[entities.ExchangeSummary, error] {
	return func(yield func(entities.ExchangeSummary, error) bool) {
		targetType, targetID := ex.Target.Columns()

		query := `
			SELECT ` + summaryColumns + `
			FROM
				exchanges e
			WHERE
				e.kind = $1
				AND e.status = 'open'
				AND NULLIF(e.target_type, '') IS NOT DISTINCT FROM $2::text
				AND NULLIF(e.target_id, '') IS NOT DISTINCT FROM $3::text
				AND e.creator_id <> $4
				AND EXISTS (
					SELECT 1
					FROM exchange_categories ec
					WHERE ec.exchange_id = e.id
					AND ec.category_id = ANY($5::text[])
				)
			ORDER BY
				e.created_at, e.id
		`

		rows, err := r.client.GetReadPool().Query(ctx, query,
			string(ex.Kind.Opposite()),
			postgres.NewNullString(targetType),
			postgres.NewNullString(targetID),
			ex.CreatorID,
			ex.CategoryIDs,
		)
		if err != nil {
			yield(entities.ExchangeSummary{}, fmt.Errorf("ExchangeRepository.FindCounterparts - failed to query counterparts: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			summary, err := scanSummary(rows)
			if err != nil {
				yield(entities.ExchangeSummary{}, fmt.Errorf("ExchangeRepository.FindCounterparts - failed to scan counterpart: %w", err))
				return
			}
			if !yield(summary, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(entities.ExchangeSummary{}, fmt.Errorf("ExchangeRepository.FindCounterparts - rows error: %w", err))
		}
	}
}
