package repository

import (
	"context"
	"fmt"
	"math"
)

func (s *SQLiteDB) GetSystemMetrics(ctx context.Context) (*SystemMetrics, error) {
	m := &SystemMetrics{}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM alerts`).Scan(&m.TotalAlerts); err != nil {
		return nil, fmt.Errorf("error counting alerts: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notification_deliveries`).Scan(&m.TotalDeliveries); err != nil {
		return nil, fmt.Errorf("error counting deliveries: %w", err)
	}

	var reads int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_alert_preferences WHERE state = 'read'`).Scan(&reads); err != nil {
		return nil, fmt.Errorf("error counting reads: %w", err)
	}

	if m.TotalDeliveries > 0 {
		m.ReadRate = math.Round(float64(reads)/float64(m.TotalDeliveries)*100*100) / 100
	}
	return m, nil
}

func (s *SQLiteDB) GetAlertMetrics(ctx context.Context, alertID string) (*AlertMetrics, error) {
	m := &AlertMetrics{AlertID: alertID}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notification_deliveries WHERE alert_id = ?`,
		alertID).Scan(&m.Deliveries); err != nil {
		return nil, fmt.Errorf("error counting alert deliveries: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_alert_preferences WHERE alert_id = ? AND state = 'read'`,
		alertID).Scan(&m.Reads); err != nil {
		return nil, fmt.Errorf("error counting alert reads: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_alert_preferences WHERE alert_id = ? AND state = 'snoozed'`,
		alertID).Scan(&m.Snoozes); err != nil {
		return nil, fmt.Errorf("error counting alert snoozes: %w", err)
	}
	return m, nil
}
