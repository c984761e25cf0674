package orders

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

// RecordNotification logs the outcome of an email dispatch for an order.
func (s *Store) RecordNotification(ctx context.Context, orderID int64, kind models.NotificationKind, status, detail string) error {
	var nullDetail sql.NullString
	if detail != "" {
		nullDetail = sql.NullString{String: detail, Valid: true}
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO notifications (order_id, kind, status, detail, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		orderID, string(kind), status, nullDetail, s.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

// Notifications returns the dispatch log of one order, newest first.
func (s *Store) Notifications(ctx context.Context, orderID int64) ([]models.Notification, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, order_id, kind, status, detail, created_at
		FROM notifications
		WHERE order_id = ?
		ORDER BY created_at DESC
		LIMIT 50`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.OrderID, &kind, &n.Status, &n.Detail, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = models.NotificationKind(kind)
		out = append(out, n)
	}
	return out, rows.Err()
}
