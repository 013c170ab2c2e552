package repository

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			team_id TEXT NOT NULL,
			organization_id TEXT NOT NULL,
			is_admin BOOLEAN DEFAULT FALSE,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS teams (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			organization_id TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			severity TEXT NOT NULL,
			delivery_type TEXT NOT NULL,
			visibility_type TEXT NOT NULL,
			visibility_target TEXT NOT NULL,
			start_time TEXT NOT NULL,
			expiry_time TEXT NOT NULL,
			reminder_frequency_hours INTEGER DEFAULT 2,
			reminders_enabled BOOLEAN DEFAULT TRUE,
			created_by TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			status TEXT DEFAULT 'active'
		);

		CREATE TABLE IF NOT EXISTS notification_deliveries (
			id TEXT PRIMARY KEY,
			alert_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			delivery_channel TEXT NOT NULL,
			delivered_at TEXT NOT NULL,
			delivery_status TEXT DEFAULT 'sent',
			FOREIGN KEY (alert_id) REFERENCES alerts (id),
			FOREIGN KEY (user_id) REFERENCES users (id)
		);

		CREATE TABLE IF NOT EXISTS user_alert_preferences (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			alert_id TEXT NOT NULL,
			state TEXT NOT NULL,
			snoozed_until TEXT,
			last_reminded_at TEXT,
			read_at TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users (id),
			FOREIGN KEY (alert_id) REFERENCES alerts (id),
			UNIQUE(user_id, alert_id)
		);

		CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status);
		CREATE INDEX IF NOT EXISTS idx_deliveries_alert_id ON notification_deliveries(alert_id);
		CREATE INDEX IF NOT EXISTS idx_prefs_user_alert ON user_alert_preferences(user_id, alert_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Timestamps are stored as fixed-width RFC3339 UTC strings so the live-alert
// window comparison can run as plain string comparison in SQL.
func fmtTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func fmtNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
