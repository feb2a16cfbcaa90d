package test_seeder

import (
	"context"
)

func (ts TestSeeder) SelectExchangeStatus(ctx context.Context, id string) (string, error) {
	var status string
	err := ts.pool.QueryRow(ctx, `SELECT status FROM exchanges WHERE id = $1`, id).Scan(&status)
	return status, err
}

func (ts TestSeeder) CountUnreadNotifications(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := ts.pool.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE recipient_id = $1 AND read_at IS NULL`, recipientID).Scan(&count)
	return count, err
}

func (ts TestSeeder) CountAcceptedAgreements(ctx context.Context, offerID string) (int, error) {
	var count int
	err := ts.pool.QueryRow(ctx, `SELECT count(*) FROM agreements WHERE offer_id = $1 AND status = 'accepted'`, offerID).Scan(&count)
	return count, err
}
