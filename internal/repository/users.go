package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"alerthub/internal/models"
)

func (s *SQLiteDB) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, team_id, organization_id, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.TeamID, u.OrganizationID, u.IsAdmin, fmtTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("error inserting user: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, team_id, organization_id, is_admin, created_at
		FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching user %s: %w", id, err)
	}
	return u, nil
}

func (s *SQLiteDB) ListUsersByTeam(ctx context.Context, teamID string) ([]models.User, error) {
	return s.listUsers(ctx, `team_id = ?`, teamID)
}

func (s *SQLiteDB) ListUsersByOrganization(ctx context.Context, orgID string) ([]models.User, error) {
	return s.listUsers(ctx, `organization_id = ?`, orgID)
}

func (s *SQLiteDB) listUsers(ctx context.Context, where string, arg any) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, team_id, organization_id, is_admin, created_at
		FROM users WHERE `+where, arg)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *SQLiteDB) CreateTeam(ctx context.Context, t *models.Team) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, organization_id, created_at)
		VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, t.OrganizationID, fmtTime(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("error inserting team: %w", err)
	}
	return nil
}

func scanUser(r rowScanner) (*models.User, error) {
	var (
		u       models.User
		created string
	)
	if err := r.Scan(&u.ID, &u.Name, &u.Email, &u.TeamID, &u.OrganizationID,
		&u.IsAdmin, &created); err != nil {
		return nil, err
	}
	var err error
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &u, nil
}
