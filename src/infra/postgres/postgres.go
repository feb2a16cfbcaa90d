package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"

	// Nomes das constraints/índices criados em schema.sql
	ConstraintAcceptedOffer      = "uniq_agreements_accepted_offer"
	ConstraintAcceptedRequest    = "uniq_agreements_accepted_request"
	ConstraintUnreadMatch        = "uniq_notifications_unread_match"
	ConstraintStatusTransition   = "agreements_status_transition"
	ConstraintImmutableSides     = "agreements_immutable_sides"
	ConstraintAlternatingKind    = "response_links_alternating_kind"
	ConstraintCategoryName       = "categories_name_key"
	ConstraintPersonEmail        = "people_email_key"
	ConstraintExchangeCreator    = "exchanges_creator_id_fkey"
	ConstraintExchangeCategoryFK = "exchange_categories_category_id_fkey"
)

func NewPostgresClient(host string, port string, dbname string, username string, password string, maxConnections int) (*pgxpool.Pool, error) {
	dbConfig := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", username, password, host, port, dbname)

	config, err := pgxpool.ParseConfig(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	config.MaxConns = int32(maxConnections) //nolint:all
	config.MinConns = 1

	// Idle timeout - economiza recursos
	config.MaxConnIdleTime = 5 * time.Minute

	// Lifetime das conexões - evita problemas de timeout do PostgreSQL
	config.MaxConnLifetime = 30 * time.Minute

	config.HealthCheckPeriod = 1 * time.Minute

	config.ConnConfig.RuntimeParams = map[string]string{
		"timezone":          "UTC",
		"statement_timeout": "30s",
		// O accept trava a agreement e as duas pontas; não queremos esperar indefinidamente
		"lock_timeout":                        "10s",
		"idle_in_transaction_session_timeout": "60s",
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return pool, nil
}

func NewNullString(s *string) pgtype.Text {
	if s == nil || len(*s) == 0 {
		return pgtype.Text{Status: pgtype.Null}
	}
	return pgtype.Text{
		String: *s,
		Status: pgtype.Present,
	}
}

func NewNullTime(t *time.Time) pgtype.Timestamptz {
	if t == nil || t.IsZero() {
		return pgtype.Timestamptz{Status: pgtype.Null}
	}
	return pgtype.Timestamptz{
		Time:   *t,
		Status: pgtype.Present,
	}
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsUniqueViolation checks for 23505. When constraints are given, the
// violated constraint must be one of them.
func IsUniqueViolation(err error, constraints ...string) bool {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != codeUniqueViolation {
		return false
	}
	return matchesConstraint(pgErr, constraints)
}

func IsForeignKeyViolation(err error, constraints ...string) bool {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != codeForeignKeyViolation {
		return false
	}
	return matchesConstraint(pgErr, constraints)
}

func IsCheckViolation(err error, constraints ...string) bool {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != codeCheckViolation {
		return false
	}
	return matchesConstraint(pgErr, constraints)
}

// IsTransitionGuard reports whether the agreements trigger refused the update.
func IsTransitionGuard(err error) bool {
	return IsCheckViolation(err, ConstraintStatusTransition, ConstraintImmutableSides)
}

func matchesConstraint(pgErr *pgconn.PgError, constraints []string) bool {
	if len(constraints) == 0 {
		return true
	}
	for _, c := range constraints {
		if pgErr.ConstraintName == c {
			return true
		}
	}
	return false
}

// IsNoRows também reconhece erros embrulhados com %w pelas camadas de scan.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
