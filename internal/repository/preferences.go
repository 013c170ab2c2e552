package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"alerthub/internal/models"
)

const prefColumns = `id, user_id, alert_id, state, snoozed_until, last_reminded_at,
	read_at, created_at, updated_at`

func (s *SQLiteDB) GetOrCreate(ctx context.Context, userID, alertID string) (*models.UserAlertPreference, error) {
	p, err := s.getPreference(ctx, userID, alertID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	now := time.Now()
	// A concurrent creator may win the unique (user_id, alert_id) race;
	// DO NOTHING keeps this idempotent and the re-read returns the winner.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_alert_preferences (`+prefColumns+`)
		VALUES (?, ?, ?, ?, NULL, NULL, NULL, ?, ?)
		ON CONFLICT(user_id, alert_id) DO NOTHING`,
		uuid.NewString(), userID, alertID, string(models.StateUnread),
		fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating preference: %w", err)
	}

	p, err = s.getPreference(ctx, userID, alertID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("preference for user %s alert %s missing after insert", userID, alertID)
	}
	return p, nil
}

func (s *SQLiteDB) UpdatePreference(ctx context.Context, p *models.UserAlertPreference) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE user_alert_preferences
		SET state = ?, snoozed_until = ?, last_reminded_at = ?, read_at = ?, updated_at = ?
		WHERE id = ?`,
		string(p.State), fmtNullTime(p.SnoozedUntil), fmtNullTime(p.LastRemindedAt),
		fmtNullTime(p.ReadAt), fmtTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating preference %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLiteDB) getPreference(ctx context.Context, userID, alertID string) (*models.UserAlertPreference, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+prefColumns+` FROM user_alert_preferences
		WHERE user_id = ? AND alert_id = ?`, userID, alertID)

	var (
		p                         models.UserAlertPreference
		state, created, updated   string
		snoozed, reminded, readAt sql.NullString
	)
	err := row.Scan(&p.ID, &p.UserID, &p.AlertID, &state, &snoozed, &reminded,
		&readAt, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching preference: %w", err)
	}

	p.State = models.AlertState(state)
	if p.SnoozedUntil, err = parseNullTime(snoozed); err != nil {
		return nil, err
	}
	if p.LastRemindedAt, err = parseNullTime(reminded); err != nil {
		return nil, err
	}
	if p.ReadAt, err = parseNullTime(readAt); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &p, nil
}
