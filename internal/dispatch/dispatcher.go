// Package dispatch fans one alert out to its target users over the channel
// resolved from the registry, bounded in parallelism, isolating per-user
// failures and recording successful attempts in the delivery ledger.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"alerthub/internal/channel"
	"alerthub/internal/models"
	"alerthub/internal/repository"
	"alerthub/internal/worker"
)

// ErrChannelUnavailable is returned when no channel is registered for the
// alert's delivery type. The batch performs no deliveries in that case.
var ErrChannelUnavailable = errors.New("no channel registered for delivery type")

const (
	DefaultWorkers     = 10
	DefaultTaskTimeout = 30 * time.Second
)

type DeliveryDetail struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Success  bool   `json:"success"`
}

type BatchResult struct {
	Successful int              `json:"successful_deliveries"`
	Failed     int              `json:"failed_deliveries"`
	Details    []DeliveryDetail `json:"delivery_details"`
}

type Dispatcher struct {
	registry    *channel.Registry
	ledger      repository.DeliveryLedger
	workers     int
	taskTimeout time.Duration
}

func NewDispatcher(registry *channel.Registry, ledger repository.DeliveryLedger, workers int, taskTimeout time.Duration) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if taskTimeout <= 0 {
		taskTimeout = DefaultTaskTimeout
	}
	return &Dispatcher{
		registry:    registry,
		ledger:      ledger,
		workers:     workers,
		taskTimeout: taskTimeout,
	}
}

type deliveryTask struct {
	user *models.User
	ok   bool
	done chan struct{}
}

// SendAlertToUsers delivers the alert to every user concurrently and
// aggregates the outcomes. Except for the missing-channel case, the counts
// always satisfy Successful+Failed == len(users): a task that outlives the
// per-task wait is counted failed, but its transport call is not cancelled.
func (d *Dispatcher) SendAlertToUsers(ctx context.Context, alert *models.Alert, users []models.User) (BatchResult, error) {
	result := BatchResult{Details: []DeliveryDetail{}}

	ch := d.registry.Get(alert.DeliveryType)
	if ch == nil {
		slog.Error("no channel available", "delivery_type", alert.DeliveryType, "alert_id", alert.ID)
		return result, ErrChannelUnavailable
	}
	if len(users) == 0 {
		return result, nil
	}

	workers := d.workers
	if len(users) < workers {
		workers = len(users)
	}

	pool := worker.NewPool(workers, len(users), func(ctx context.Context, t *deliveryTask) {
		defer close(t.done)
		t.ok = d.deliver(ctx, ch, alert, t.user)
	})
	pool.Start(ctx)

	tasks := make([]*deliveryTask, len(users))
	for i := range users {
		tasks[i] = &deliveryTask{user: &users[i], done: make(chan struct{})}
		pool.Submit(tasks[i])
	}
	pool.Drain()

	timedOut := false
	for _, t := range tasks {
		select {
		case <-t.done:
			if t.ok {
				result.Successful++
			} else {
				result.Failed++
			}
			result.Details = append(result.Details, DeliveryDetail{
				UserID:   t.user.ID,
				UserName: t.user.Name,
				Success:  t.ok,
			})
		case <-time.After(d.taskTimeout):
			// Stop waiting only; the slow transport call runs on.
			timedOut = true
			result.Failed++
			result.Details = append(result.Details, DeliveryDetail{
				UserID:   t.user.ID,
				UserName: t.user.Name,
			})
			slog.Error("delivery timed out", "user_id", t.user.ID, "alert_id", alert.ID)
		}
	}

	if !timedOut {
		pool.Wait()
	}
	return result, nil
}

// deliver runs one attempt. A panic in a channel implementation is confined
// to this task and counted as a failed attempt.
func (d *Dispatcher) deliver(ctx context.Context, ch channel.Channel, alert *models.Alert, user *models.User) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("delivery panicked", "user_id", user.ID, "alert_id", alert.ID, "panic", r)
			ok = false
		}
	}()

	if !ch.Send(user, alert, nil) {
		return false
	}

	delivery := &models.NotificationDelivery{
		ID:          uuid.NewString(),
		AlertID:     alert.ID,
		UserID:      user.ID,
		Channel:     ch.Type(),
		DeliveredAt: time.Now(),
		Status:      models.DeliverySent,
	}
	if err := d.ledger.RecordDelivery(ctx, delivery); err != nil {
		slog.Error("failed to record delivery", "user_id", user.ID, "alert_id", alert.ID, "error", err)
		return false
	}
	return true
}
