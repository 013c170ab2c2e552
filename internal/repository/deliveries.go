package repository

import (
	"context"
	"fmt"

	"alerthub/internal/models"
)

func (s *SQLiteDB) RecordDelivery(ctx context.Context, d *models.NotificationDelivery) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_deliveries
			(id, alert_id, user_id, delivery_channel, delivered_at, delivery_status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.AlertID, d.UserID, string(d.Channel), fmtTime(d.DeliveredAt), string(d.Status),
	)
	if err != nil {
		return fmt.Errorf("error recording delivery: %w", err)
	}
	return nil
}

func (s *SQLiteDB) ListDeliveriesForAlert(ctx context.Context, alertID string) ([]models.NotificationDelivery, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, alert_id, user_id, delivery_channel, delivered_at, delivery_status
		FROM notification_deliveries WHERE alert_id = ?
		ORDER BY delivered_at`, alertID)
	if err != nil {
		return nil, fmt.Errorf("error listing deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []models.NotificationDelivery
	for rows.Next() {
		var (
			d                          models.NotificationDelivery
			channel, delivered, status string
		)
		if err := rows.Scan(&d.ID, &d.AlertID, &d.UserID, &channel, &delivered, &status); err != nil {
			return nil, err
		}
		d.Channel = models.DeliveryType(channel)
		d.Status = models.DeliveryStatus(status)
		if d.DeliveredAt, err = parseTime(delivered); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
