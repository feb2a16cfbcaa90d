package repositories

import (
	"context"
	"fmt"
	"time"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"
	"mutualexchange/src/infra/postgres"
)

type NotificationRepository struct {
	client *postgres.ReadWriteClient
}

func NewNotificationRepository(client *postgres.ReadWriteClient) *NotificationRepository {
	return &NotificationRepository{client: client}
}

// HasUnreadForPair consulta o primário: a checagem precede um insert.
func (r *NotificationRepository) HasUnreadForPair(ctx context.Context, recipientID, offerID, requestID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM
				notifications
			WHERE
				recipient_id = $1
				AND offer_id = $2
				AND request_id = $3
				AND read_at IS NULL
		)
	`
	var exists bool
	if err := r.client.GetWritePool().QueryRow(ctx, query, recipientID, offerID, requestID).Scan(&exists); err != nil {
		return false, fmt.Errorf("NotificationRepository.HasUnreadForPair - failed to query notifications: %w", err)
	}
	return exists, nil
}

// InsertNotification devolve inserted=false quando o índice parcial de match
// não lido já tem uma linha para o par.
func (r *NotificationRepository) InsertNotification(ctx context.Context, n *entities.Notification) (bool, error) {
	query := `
		INSERT INTO notifications
			(id, recipient_id, event, offer_id, request_id, agreement_id, message, read_at, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT DO NOTHING
	`
	tag, err := r.client.GetWritePool().Exec(ctx, query,
		n.ID,
		n.RecipientID,
		string(n.Event),
		n.OfferID,
		n.RequestID,
		postgres.NewNullString(n.AgreementID),
		n.Message,
		postgres.NewNullTime(n.ReadAt),
		n.CreatedAt,
	)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return false, domain.ErrEntityNotFound
		}
		return false, fmt.Errorf("NotificationRepository.InsertNotification - failed to insert notification: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *NotificationRepository) ListUnreadNotifications(ctx context.Context, recipientID string) ([]*entities.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM
			notifications n
		WHERE
			n.recipient_id = $1
			AND n.read_at IS NULL
		ORDER BY
			n.created_at, n.id
	`
	rows, err := r.client.GetReadPool().Query(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("NotificationRepository.ListUnreadNotifications - failed to query notifications: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("NotificationRepository.ListUnreadNotifications - failed to scan notification: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("NotificationRepository.ListUnreadNotifications - rows error: %w", err)
	}

	return result, nil
}

// MarkNotificationRead é idempotente: um segundo read mantém o read_at original.
func (r *NotificationRepository) MarkNotificationRead(ctx context.Context, id string, at time.Time) (*entities.Notification, error) {
	query := `
		UPDATE
			notifications n
		SET
			read_at = COALESCE(n.read_at, $2)
		WHERE
			n.id = $1
		RETURNING ` + notificationColumns

	n, err := scanNotification(r.client.GetWritePool().QueryRow(ctx, query, id, at))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domain.ErrEntityNotFound
		}
		return nil, fmt.Errorf("NotificationRepository.MarkNotificationRead - failed to update notification %s: %w", id, err)
	}

	return n, nil
}
