package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"alerthub/internal/models"
)

const alertColumns = `id, title, message, severity, delivery_type, visibility_type,
	visibility_target, start_time, expiry_time, reminder_frequency_hours,
	reminders_enabled, created_by, created_at, updated_at, status`

func (s *SQLiteDB) CreateAlert(ctx context.Context, a *models.Alert) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (`+alertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Message, string(a.Severity), string(a.DeliveryType),
		string(a.VisibilityType), a.VisibilityTarget, fmtTime(a.StartTime),
		fmtTime(a.ExpiryTime), a.ReminderFrequencyHours, a.RemindersEnabled,
		a.CreatedBy, fmtTime(a.CreatedAt), fmtTime(a.UpdatedAt), string(a.Status),
	)
	if err != nil {
		return fmt.Errorf("error inserting alert: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetAlertByID(ctx context.Context, id string) (*models.Alert, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)

	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching alert %s: %w", id, err)
	}
	return a, nil
}

func (s *SQLiteDB) UpdateAlert(ctx context.Context, a *models.Alert) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE alerts
		SET title = ?, message = ?, severity = ?, delivery_type = ?,
			visibility_type = ?, visibility_target = ?, start_time = ?,
			expiry_time = ?, reminder_frequency_hours = ?, reminders_enabled = ?,
			updated_at = ?, status = ?
		WHERE id = ?`,
		a.Title, a.Message, string(a.Severity), string(a.DeliveryType),
		string(a.VisibilityType), a.VisibilityTarget, fmtTime(a.StartTime),
		fmtTime(a.ExpiryTime), a.ReminderFrequencyHours, a.RemindersEnabled,
		fmtTime(a.UpdatedAt), string(a.Status), a.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating alert %s: %w", a.ID, err)
	}
	return nil
}

func (s *SQLiteDB) ListAlerts(ctx context.Context, f AlertFilter) ([]models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE 1=1`
	args := []any{}

	if f.Severity != nil {
		query += ` AND severity = ?`
		args = append(args, string(*f.Severity))
	}
	if f.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*f.Status))
	}
	if f.VisibilityType != nil {
		query += ` AND visibility_type = ?`
		args = append(args, string(*f.VisibilityType))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing alerts: %w", err)
	}
	defer rows.Close()

	return collectAlerts(rows)
}

func (s *SQLiteDB) ListLiveAlerts(ctx context.Context, now time.Time) ([]models.Alert, error) {
	ts := fmtTime(now)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+alertColumns+` FROM alerts
		WHERE status = 'active' AND start_time <= ? AND expiry_time >= ?`,
		ts, ts)
	if err != nil {
		return nil, fmt.Errorf("error listing live alerts: %w", err)
	}
	defer rows.Close()

	return collectAlerts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(r rowScanner) (*models.Alert, error) {
	var (
		a                                       models.Alert
		severity, delivery, visibility          string
		start, expiry, created, updated, status string
	)
	if err := r.Scan(&a.ID, &a.Title, &a.Message, &severity, &delivery,
		&visibility, &a.VisibilityTarget, &start, &expiry,
		&a.ReminderFrequencyHours, &a.RemindersEnabled, &a.CreatedBy,
		&created, &updated, &status); err != nil {
		return nil, err
	}

	a.Severity = models.Severity(severity)
	a.DeliveryType = models.DeliveryType(delivery)
	a.VisibilityType = models.VisibilityType(visibility)
	a.Status = models.AlertStatus(status)

	var err error
	if a.StartTime, err = parseTime(start); err != nil {
		return nil, err
	}
	if a.ExpiryTime, err = parseTime(expiry); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAlerts(rows *sql.Rows) ([]models.Alert, error) {
	var alerts []models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}
