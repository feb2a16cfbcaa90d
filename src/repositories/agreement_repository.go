package repositories

import (
	"context"
	"fmt"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"
	"mutualexchange/src/infra/postgres"

	"github.com/jackc/pgx/v5"
)

type AgreementRepository struct {
	client *postgres.ReadWriteClient
}

func NewAgreementRepository(client *postgres.ReadWriteClient) *AgreementRepository {
	return &AgreementRepository{client: client}
}

// CreateAgreement insere a agreement como pending. Uma agreement aceita já
// existente para qualquer uma das pontas impede a criação.
func (r *AgreementRepository) CreateAgreement(ctx context.Context, a *entities.Agreement) error {
	tx, err := r.client.GetWritePool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("AgreementRepository.CreateAgreement - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var bound bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM
				agreements
			WHERE
				status = 'accepted'
				AND (offer_id = $1 OR request_id = $2)
		)
	`
	if err := tx.QueryRow(ctx, query, a.OfferID, a.RequestID).Scan(&bound); err != nil {
		return fmt.Errorf("AgreementRepository.CreateAgreement - failed to check accepted agreements: %w", err)
	}
	if bound {
		return domain.NewStateError(domain.StateSideAlreadyBound, "").
			WithDetail(fmt.Sprintf("offer %s or request %s", a.OfferID, a.RequestID))
	}

	insert := `
		INSERT INTO agreements
			(id, offer_id, request_id, status, terms, value, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.Exec(ctx, insert, a.ID, a.OfferID, a.RequestID, string(a.Status), a.Terms, a.Value, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return domain.ErrEntityNotFound
		}
		return fmt.Errorf("AgreementRepository.CreateAgreement - failed to insert agreement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("AgreementRepository.CreateAgreement - failed to commit: %w", err)
	}

	return nil
}

func (r *AgreementRepository) GetAgreement(ctx context.Context, id string) (*entities.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements a WHERE a.id = $1`

	a, err := scanAgreement(r.client.GetWritePool().QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrEntityNotFound
		}
		return nil, fmt.Errorf("AgreementRepository.GetAgreement - failed to get agreement %s: %w", id, err)
	}

	return a, nil
}

func (r *AgreementRepository) ListAgreementsForExchange(ctx context.Context, exchangeID string) ([]*entities.Agreement, error) {
	query := `
		SELECT ` + agreementColumns + `
		FROM
			agreements a
		WHERE
			a.offer_id = $1
			OR a.request_id = $1
		ORDER BY
			a.created_at, a.id
	`
	rows, err := r.client.GetReadPool().Query(ctx, query, exchangeID)
	if err != nil {
		return nil, fmt.Errorf("AgreementRepository.ListAgreementsForExchange - failed to query agreements: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Agreement, 0)
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, fmt.Errorf("AgreementRepository.ListAgreementsForExchange - failed to scan agreement: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("AgreementRepository.ListAgreementsForExchange - rows error: %w", err)
	}

	return result, nil
}

// TransitionAgreement move a agreement para next numa única transação:
//  1. trava a agreement e valida a transição
//  2. trava as duas pontas (ordenadas por id) e exige que nenhuma esteja closed
//  3. grava o novo status e, se accepted, fecha as duas pontas
//
// Nada é alterado quando qualquer passo falha.
func (r *AgreementRepository) TransitionAgreement(ctx context.Context, id string, next entities.AgreementStatus) (*entities.AgreementTransition, error) {
	tx, err := r.client.GetWritePool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("AgreementRepository.TransitionAgreement - failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	agreement, err := scanAgreement(tx.QueryRow(ctx, `SELECT `+agreementColumns+` FROM agreements a WHERE a.id = $1 FOR UPDATE`, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrEntityNotFound
		}
		return nil, fmt.Errorf("AgreementRepository.TransitionAgreement - failed to lock agreement %s: %w", id, err)
	}

	if err := agreement.CheckTransition(next); err != nil {
		return nil, err
	}

	offer, request, err := lockSides(ctx, tx, agreement)
	if err != nil {
		return nil, fmt.Errorf("AgreementRepository.TransitionAgreement - %w", err)
	}

	if err := entities.CheckSidesOpen(agreement.ID, offer, request); err != nil {
		return nil, err
	}

	update := `
		UPDATE
			agreements
		SET
			status = $2,
			updated_at = now()
		WHERE
			id = $1
		RETURNING
			updated_at
	`
	err = tx.QueryRow(ctx, update, id, string(next)).Scan(&agreement.UpdatedAt)
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err, postgres.ConstraintAcceptedOffer, postgres.ConstraintAcceptedRequest):
			return nil, domain.NewStateError(domain.StateSideAlreadyBound, id)
		case postgres.IsTransitionGuard(err):
			return nil, domain.NewStateError(domain.StateIllegalTransition, id).WithDetail(err.Error())
		}
		return nil, fmt.Errorf("AgreementRepository.TransitionAgreement - failed to update agreement %s: %w", id, err)
	}

	transition := &entities.AgreementTransition{
		Agreement:     agreement,
		Previous:      agreement.Status,
		OfferStatus:   offer.Status,
		RequestStatus: request.Status,
	}
	agreement.Status = next
	agreement.UpdatedAt = agreement.UpdatedAt.UTC()

	if next == entities.AgreementAccepted {
		closeSides := `
			UPDATE
				exchanges
			SET
				status = 'closed',
				updated_at = now()
			WHERE
				id = ANY($1::text[])
				AND status <> 'closed'
		`
		tag, err := tx.Exec(ctx, closeSides, []string{agreement.OfferID, agreement.RequestID})
		if err != nil {
			return nil, fmt.Errorf("AgreementRepository.TransitionAgreement - failed to close sides: %w", err)
		}
		if tag.RowsAffected() != 2 {
			return nil, domain.NewStateError(domain.StateSideClosed, id)
		}
		transition.OfferStatus = entities.StatusClosed
		transition.RequestStatus = entities.StatusClosed
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("AgreementRepository.TransitionAgreement - failed to commit: %w", err)
	}

	return transition, nil
}

func lockSides(ctx context.Context, tx pgx.Tx, a *entities.Agreement) (offer, request *entities.Exchange, err error) {
	query := `
		SELECT ` + exchangeColumns + `
		FROM
			exchanges e
		WHERE
			e.id = ANY($1::text[])
		ORDER BY
			e.id
		FOR UPDATE OF e
	`
	rows, err := tx.Query(ctx, query, []string{a.OfferID, a.RequestID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock sides: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan side: %w", err)
		}
		switch ex.ID {
		case a.OfferID:
			offer = ex
		case a.RequestID:
			request = ex
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to lock sides: %w", err)
	}
	if offer == nil || request == nil {
		return nil, nil, domain.ErrEntityNotFound
	}

	return offer, request, nil
}
