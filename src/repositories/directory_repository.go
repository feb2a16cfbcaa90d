package repositories

import (
	"context"
	"fmt"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"
	"mutualexchange/src/infra/postgres"

	"github.com/jackc/pgx/v5"
)

// DirectoryRepository serve pessoas e categorias, as duas tabelas de referência.
type DirectoryRepository struct {
	client *postgres.ReadWriteClient
}

func NewDirectoryRepository(client *postgres.ReadWriteClient) *DirectoryRepository {
	return &DirectoryRepository{client: client}
}

func (r *DirectoryRepository) GetPeople(ctx context.Context, ids []string) (map[string]entities.Person, error) {
	query := `
		SELECT
			id, name, email, locale, notify_by_email
		FROM
			people
		WHERE
			id = ANY($1::text[])
	`
	rows, err := r.client.GetReadPool().Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("DirectoryRepository.GetPeople - failed to query people: %w", err)
	}

	people, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entities.Person, error) {
		var p entities.Person
		err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Locale, &p.NotifyByEmail)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("DirectoryRepository.GetPeople - failed to scan people: %w", err)
	}

	result := make(map[string]entities.Person, len(people))
	for _, p := range people {
		result[p.ID] = p
	}
	return result, nil
}

func (r *DirectoryRepository) CreatePerson(ctx context.Context, p *entities.Person) error {
	query := `
		INSERT INTO people
			(id, name, email, locale, notify_by_email)
		VALUES
			($1, $2, $3, $4, $5)
	`
	_, err := r.client.GetWritePool().Exec(ctx, query, p.ID, p.Name, p.Email, p.Locale, p.NotifyByEmail)
	if err != nil {
		if postgres.IsUniqueViolation(err, postgres.ConstraintPersonEmail) {
			return domain.NewValidationError("email", "email already registered")
		}
		return fmt.Errorf("DirectoryRepository.CreatePerson - failed to insert person: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) CreateCategory(ctx context.Context, c *entities.Category) error {
	_, err := r.client.GetWritePool().Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, c.ID, c.Name)
	if err != nil {
		if postgres.IsUniqueViolation(err, postgres.ConstraintCategoryName) {
			return domain.NewValidationError("name", "category "+c.Name+" already exists")
		}
		return fmt.Errorf("DirectoryRepository.CreateCategory - failed to insert category: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) ListCategories(ctx context.Context) ([]entities.Category, error) {
	rows, err := r.client.GetReadPool().Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("DirectoryRepository.ListCategories - failed to query categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowToStructByPos[entities.Category])
	if err != nil {
		return nil, fmt.Errorf("DirectoryRepository.ListCategories - failed to scan categories: %w", err)
	}
	return categories, nil
}
