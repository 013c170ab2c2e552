// Package service implements the operations behind the HTTP surface:
// alert creation with initial dispatch, visibility resolution, per-user
// read/snooze state, and listing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"alerthub/internal/dispatch"
	"alerthub/internal/models"
	"alerthub/internal/repository"
)

// ValidationError reports the missing required fields of a create request.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

type CreateAlertInput struct {
	Title                  string     `json:"title"`
	Message                string     `json:"message"`
	Severity               string     `json:"severity"`
	DeliveryType           string     `json:"delivery_type"`
	VisibilityType         string     `json:"visibility_type"`
	VisibilityTarget       string     `json:"visibility_target"`
	StartTime              *time.Time `json:"start_time"`
	ExpiryTime             *time.Time `json:"expiry_time"`
	ReminderFrequencyHours *int       `json:"reminder_frequency_hours"`
	RemindersEnabled       *bool      `json:"reminders_enabled"`
	CreatedBy              string     `json:"created_by"`
}

type UpdateAlertInput struct {
	Title            *string    `json:"title"`
	Message          *string    `json:"message"`
	Severity         *string    `json:"severity"`
	Status           *string    `json:"status"`
	ExpiryTime       *time.Time `json:"expiry_time"`
	RemindersEnabled *bool      `json:"reminders_enabled"`
}

// AlertWithState joins a live alert with the requesting user's preference
// state.
type AlertWithState struct {
	Alert models.Alert      `json:"alert"`
	State models.AlertState `json:"state"`
}

type AlertService struct {
	alerts     repository.AlertRepository
	users      repository.UserRepository
	prefs      repository.PreferenceRepository
	dispatcher *dispatch.Dispatcher
}

func NewAlertService(alerts repository.AlertRepository, users repository.UserRepository,
	prefs repository.PreferenceRepository, dispatcher *dispatch.Dispatcher) *AlertService {
	return &AlertService{
		alerts:     alerts,
		users:      users,
		prefs:      prefs,
		dispatcher: dispatcher,
	}
}

// CreateAlert validates, applies defaults, persists and dispatches once.
// An empty audience or an unregistered delivery type still creates the
// alert; the latter yields a zero-success batch result.
func (s *AlertService) CreateAlert(ctx context.Context, in CreateAlertInput) (*models.Alert, *dispatch.BatchResult, error) {
	if err := validateCreate(in); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	alert := &models.Alert{
		ID:                     uuid.NewString(),
		Title:                  in.Title,
		Message:                in.Message,
		Severity:               models.Severity(in.Severity),
		DeliveryType:           models.DeliveryInApp,
		VisibilityType:         models.VisibilityType(in.VisibilityType),
		VisibilityTarget:       in.VisibilityTarget,
		StartTime:              *in.StartTime,
		ExpiryTime:             *in.ExpiryTime,
		ReminderFrequencyHours: 2,
		RemindersEnabled:       true,
		CreatedBy:              in.CreatedBy,
		CreatedAt:              now,
		UpdatedAt:              now,
		Status:                 models.StatusActive,
	}
	if in.DeliveryType != "" {
		alert.DeliveryType = models.DeliveryType(in.DeliveryType)
	}
	if in.ReminderFrequencyHours != nil {
		alert.ReminderFrequencyHours = *in.ReminderFrequencyHours
	}
	if in.RemindersEnabled != nil {
		alert.RemindersEnabled = *in.RemindersEnabled
	}

	if err := s.alerts.CreateAlert(ctx, alert); err != nil {
		return nil, nil, fmt.Errorf("error persisting alert: %w", err)
	}
	slog.Info("alert created", "alert_id", alert.ID, "title", alert.Title, "severity", alert.Severity)

	users, err := s.ResolveTargetUsers(ctx, alert)
	if err != nil {
		return nil, nil, fmt.Errorf("error resolving target users: %w", err)
	}
	if len(users) == 0 {
		return alert, nil, nil
	}

	result, err := s.dispatcher.SendAlertToUsers(ctx, alert, users)
	if errors.Is(err, dispatch.ErrChannelUnavailable) {
		// Alert creation still succeeds; the zero-success result reports
		// the undelivered batch.
		return alert, &result, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return alert, &result, nil
}

func validateCreate(in CreateAlertInput) error {
	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.Message == "" {
		missing = append(missing, "message")
	}
	if in.Severity == "" {
		missing = append(missing, "severity")
	}
	if in.VisibilityType == "" {
		missing = append(missing, "visibility_type")
	}
	if in.VisibilityTarget == "" {
		missing = append(missing, "visibility_target")
	}
	if in.StartTime == nil {
		missing = append(missing, "start_time")
	}
	if in.ExpiryTime == nil {
		missing = append(missing, "expiry_time")
	}
	if in.CreatedBy == "" {
		missing = append(missing, "created_by")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	if in.ExpiryTime.Before(*in.StartTime) {
		return &ValidationError{Missing: []string{"expiry_time must not precede start_time"}}
	}
	switch models.Severity(in.Severity) {
	case models.SeverityInfo, models.SeverityWarning, models.SeverityCritical:
	default:
		return &ValidationError{Missing: []string{"severity must be one of info, warning, critical"}}
	}
	switch models.VisibilityType(in.VisibilityType) {
	case models.VisibilityOrganization, models.VisibilityTeam, models.VisibilityUser:
	default:
		return &ValidationError{Missing: []string{"visibility_type must be one of organization, team, user"}}
	}
	return nil
}

// ResolveTargetUsers returns every user an alert's visibility scope exposes.
func (s *AlertService) ResolveTargetUsers(ctx context.Context, alert *models.Alert) ([]models.User, error) {
	switch alert.VisibilityType {
	case models.VisibilityOrganization:
		return s.users.ListUsersByOrganization(ctx, alert.VisibilityTarget)
	case models.VisibilityTeam:
		return s.users.ListUsersByTeam(ctx, alert.VisibilityTarget)
	case models.VisibilityUser:
		u, err := s.users.GetUserByID(ctx, alert.VisibilityTarget)
		if err != nil || u == nil {
			return nil, err
		}
		return []models.User{*u}, nil
	default:
		return nil, fmt.Errorf("unknown visibility type %q", alert.VisibilityType)
	}
}

func (s *AlertService) UpdateAlert(ctx context.Context, alertID string, in UpdateAlertInput) (*models.Alert, error) {
	alert, err := s.alerts.GetAlertByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, nil
	}

	if in.Title != nil {
		alert.Title = *in.Title
	}
	if in.Message != nil {
		alert.Message = *in.Message
	}
	if in.Severity != nil {
		alert.Severity = models.Severity(*in.Severity)
	}
	if in.Status != nil {
		alert.Status = models.AlertStatus(*in.Status)
	}
	if in.ExpiryTime != nil {
		alert.ExpiryTime = *in.ExpiryTime
	}
	if in.RemindersEnabled != nil {
		alert.RemindersEnabled = *in.RemindersEnabled
	}
	alert.UpdatedAt = time.Now()

	if err := s.alerts.UpdateAlert(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (s *AlertService) ListAlerts(ctx context.Context, f repository.AlertFilter) ([]models.Alert, error) {
	return s.alerts.ListAlerts(ctx, f)
}

// ListUserAlerts returns every live alert exposing the user, joined with the
// user's preference state. Preference rows are created lazily here on first
// contact.
func (s *AlertService) ListUserAlerts(ctx context.Context, userID string) ([]AlertWithState, error) {
	live, err := s.alerts.ListLiveAlerts(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	result := []AlertWithState{}
	for i := range live {
		users, err := s.ResolveTargetUsers(ctx, &live[i])
		if err != nil {
			return nil, err
		}
		exposed := false
		for _, u := range users {
			if u.ID == userID {
				exposed = true
				break
			}
		}
		if !exposed {
			continue
		}

		pref, err := s.prefs.GetOrCreate(ctx, userID, live[i].ID)
		if err != nil {
			return nil, err
		}
		result = append(result, AlertWithState{Alert: live[i], State: pref.State})
	}
	return result, nil
}

// MarkRead moves the user's preference for the alert to read. Idempotent;
// a repeat call restamps read_at.
func (s *AlertService) MarkRead(ctx context.Context, userID, alertID string) error {
	pref, err := s.prefs.GetOrCreate(ctx, userID, alertID)
	if err != nil {
		return err
	}
	pref.MarkAsRead(time.Now())
	return s.prefs.UpdatePreference(ctx, pref)
}

// Snooze suppresses reminders for the user until the next midnight.
func (s *AlertService) Snooze(ctx context.Context, userID, alertID string) error {
	pref, err := s.prefs.GetOrCreate(ctx, userID, alertID)
	if err != nil {
		return err
	}
	pref.SnoozeForDay(time.Now())
	return s.prefs.UpdatePreference(ctx, pref)
}
