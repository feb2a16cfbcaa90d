package test_seeder

import (
	"context"
	"fmt"

	"mutualexchange/src/domain/entities"
)

func (ts TestSeeder) InsertPerson(ctx context.Context, p *entities.Person) {
	query := `
		INSERT INTO people (id, name, email, locale, notify_by_email)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := ts.pool.Exec(ctx, query, p.ID, p.Name, p.Email, p.Locale, p.NotifyByEmail); err != nil {
		panic(fmt.Sprintf("Seeder.InsertPerson failed: %v", err))
	}
}

func (ts TestSeeder) InsertCategories(ctx context.Context, ids ...string) {
	for _, id := range ids {
		if _, err := ts.pool.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, $1) ON CONFLICT DO NOTHING`, id); err != nil {
			panic(fmt.Sprintf("Seeder.InsertCategories failed: %v", err))
		}
	}
}

// InsertMalformedTarget grava só target_type, um estado que a API recusa mas
// que pode existir em dados antigos.
func (ts TestSeeder) InsertMalformedTarget(ctx context.Context, exchangeID string) {
	if _, err := ts.pool.Exec(ctx, `UPDATE exchanges SET target_type = 'event', target_id = NULL WHERE id = $1`, exchangeID); err != nil {
		panic(fmt.Sprintf("Seeder.InsertMalformedTarget failed: %v", err))
	}
}

// InsertAgreement grava a agreement como está, sem passar pelas checagens do
// repositório. Serve para montar estados que só uma corrida produziria.
func (ts TestSeeder) InsertAgreement(ctx context.Context, a *entities.Agreement) {
	query := `
		INSERT INTO agreements (id, offer_id, request_id, status, terms, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := ts.pool.Exec(ctx, query, a.ID, a.OfferID, a.RequestID, string(a.Status), a.Terms, a.Value, a.CreatedAt, a.UpdatedAt); err != nil {
		panic(fmt.Sprintf("Seeder.InsertAgreement failed: %v", err))
	}
}

// InsertEmptyTarget grava o alvo como strings vazias, formato de linhas antigas.
func (ts TestSeeder) InsertEmptyTarget(ctx context.Context, exchangeID string) {
	if _, err := ts.pool.Exec(ctx, `UPDATE exchanges SET target_type = '', target_id = '' WHERE id = $1`, exchangeID); err != nil {
		panic(fmt.Sprintf("Seeder.InsertEmptyTarget failed: %v", err))
	}
}
