package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"alerthub/internal/models"
)

// SeedDemoData creates a demo organization, team and admin user so a fresh
// instance can be exercised immediately. No-op when users already exist.
func (s *SQLiteDB) SeedDemoData(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("error checking seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	team := &models.Team{
		ID:             uuid.NewString(),
		Name:           "Engineering",
		OrganizationID: "org_001",
		CreatedAt:      now,
	}
	if err := s.CreateTeam(ctx, team); err != nil {
		return err
	}

	admin := &models.User{
		ID:             uuid.NewString(),
		Name:           "Admin",
		Email:          "admin@org.com",
		TeamID:         team.ID,
		OrganizationID: "org_001",
		IsAdmin:        true,
		CreatedAt:      now,
	}
	return s.CreateUser(ctx, admin)
}
