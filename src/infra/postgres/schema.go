package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schemaSQL
}

// Migrate aplica o schema de forma idempotente. Sem argumentos o pgx usa o
// protocolo simples, então o arquivo pode conter vários statements.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres.Migrate - failed to apply schema: %w", err)
	}
	log.Println("postgres schema applied")
	return nil
}
