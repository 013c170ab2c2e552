// Package reminder runs the background loop that re-delivers alerts to
// users who have neither read nor snoozed them. Every cycle re-derives its
// working set from the store, so restarting the loop is the whole recovery
// story.
package reminder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"alerthub/internal/dispatch"
	"alerthub/internal/models"
	"alerthub/internal/repository"
)

const DefaultInterval = 5 * time.Minute

// AudienceResolver resolves an alert's visibility scope to users.
type AudienceResolver interface {
	ResolveTargetUsers(ctx context.Context, alert *models.Alert) ([]models.User, error)
}

// Dispatcher fans a reminder batch out to users.
type Dispatcher interface {
	SendAlertToUsers(ctx context.Context, alert *models.Alert, users []models.User) (dispatch.BatchResult, error)
}

type Scheduler struct {
	interval   time.Duration
	alerts     repository.AlertRepository
	prefs      repository.PreferenceRepository
	resolver   AudienceResolver
	dispatcher Dispatcher
	wg         sync.WaitGroup
}

func NewScheduler(interval time.Duration, alerts repository.AlertRepository,
	prefs repository.PreferenceRepository, resolver AudienceResolver, dispatcher Dispatcher) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		interval:   interval,
		alerts:     alerts,
		prefs:      prefs,
		resolver:   resolver,
		dispatcher: dispatcher,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	slog.Info("starting reminder scheduler", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.safeCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("reminder scheduler shutting down")
			return
		case <-ticker.C:
			s.safeCycle(ctx)
		}
	}
}

// safeCycle confines any failure to the current cycle; the loop always
// reaches its next sleep.
func (s *Scheduler) safeCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("reminder cycle panicked", "panic", r)
		}
	}()
	if err := s.cycle(ctx); err != nil {
		slog.Error("reminder cycle failed", "error", err)
	}
}

func (s *Scheduler) cycle(ctx context.Context) error {
	now := time.Now()

	live, err := s.alerts.ListLiveAlerts(ctx, now)
	if err != nil {
		return err
	}

	for i := range live {
		alert := &live[i]
		if !alert.RemindersEnabled {
			continue
		}
		if err := s.remind(ctx, alert, now); err != nil {
			slog.Error("reminder dispatch failed", "alert_id", alert.ID, "error", err)
		}
	}
	return nil
}

func (s *Scheduler) remind(ctx context.Context, alert *models.Alert, now time.Time) error {
	users, err := s.resolver.ResolveTargetUsers(ctx, alert)
	if err != nil {
		return err
	}

	var eligible []models.User
	for _, u := range users {
		pref, err := s.prefs.GetOrCreate(ctx, u.ID, alert.ID)
		if err != nil {
			return err
		}
		if pref.State == models.StateRead {
			continue
		}
		if pref.ShouldRemind(now, alert.ReminderFrequencyHours) {
			eligible = append(eligible, u)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	result, err := s.dispatcher.SendAlertToUsers(ctx, alert, eligible)
	if errors.Is(err, dispatch.ErrChannelUnavailable) {
		slog.Error("reminder batch undeliverable", "alert_id", alert.ID, "delivery_type", alert.DeliveryType)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("reminders dispatched", "alert_id", alert.ID,
		"successful", result.Successful, "failed", result.Failed)

	for _, det := range result.Details {
		if !det.Success {
			continue
		}
		pref, err := s.prefs.GetOrCreate(ctx, det.UserID, alert.ID)
		if err != nil {
			return err
		}
		reminded := now
		pref.LastRemindedAt = &reminded
		pref.UpdatedAt = now
		if err := s.prefs.UpdatePreference(ctx, pref); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) Stop() {
	s.wg.Wait()
	slog.Info("reminder scheduler stopped")
}
