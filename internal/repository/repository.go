package repository

import (
	"context"
	"time"

	"alerthub/internal/models"
)

// AlertFilter narrows admin alert listings. Nil fields are ignored.
type AlertFilter struct {
	Severity       *models.Severity
	Status         *models.AlertStatus
	VisibilityType *models.VisibilityType
}

type AlertRepository interface {
	CreateAlert(ctx context.Context, a *models.Alert) error
	GetAlertByID(ctx context.Context, id string) (*models.Alert, error)
	UpdateAlert(ctx context.Context, a *models.Alert) error
	ListAlerts(ctx context.Context, f AlertFilter) ([]models.Alert, error)
	// ListLiveAlerts returns active alerts whose validity window contains now.
	ListLiveAlerts(ctx context.Context, now time.Time) ([]models.Alert, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsersByTeam(ctx context.Context, teamID string) ([]models.User, error)
	ListUsersByOrganization(ctx context.Context, orgID string) ([]models.User, error)
	CreateTeam(ctx context.Context, t *models.Team) error
}

// DeliveryLedger is the append-only record of delivery attempts. Rows are
// never updated; analytics reads them back in aggregate.
type DeliveryLedger interface {
	RecordDelivery(ctx context.Context, d *models.NotificationDelivery) error
	ListDeliveriesForAlert(ctx context.Context, alertID string) ([]models.NotificationDelivery, error)
}

type PreferenceRepository interface {
	// GetOrCreate returns the (user, alert) preference row, inserting an
	// unread one if none exists. Idempotent.
	GetOrCreate(ctx context.Context, userID, alertID string) (*models.UserAlertPreference, error)
	UpdatePreference(ctx context.Context, p *models.UserAlertPreference) error
}

type SystemMetrics struct {
	TotalAlerts     int     `json:"total_alerts"`
	TotalDeliveries int     `json:"total_deliveries"`
	ReadRate        float64 `json:"read_rate"`
}

type AlertMetrics struct {
	AlertID    string `json:"alert_id"`
	Deliveries int    `json:"deliveries"`
	Reads      int    `json:"reads"`
	Snoozes    int    `json:"snoozes"`
}

type AnalyticsRepository interface {
	GetSystemMetrics(ctx context.Context) (*SystemMetrics, error)
	GetAlertMetrics(ctx context.Context, alertID string) (*AlertMetrics, error)
}
