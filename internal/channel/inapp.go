package channel

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"alerthub/internal/models"
)

// Notification is one entry in a user's in-app inbox.
type Notification struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	AlertID     string          `json:"alert_id"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	Severity    models.Severity `json:"severity"`
	DeliveredAt time.Time       `json:"delivered_at"`
	Read        bool            `json:"read"`
}

// InAppChannel delivers into a process-lifetime, per-user inbox. The inbox
// read state here is channel-local display state, distinct from the
// cross-channel preference rows.
type InAppChannel struct {
	mu     sync.RWMutex
	byUser map[string][]*Notification
}

func NewInAppChannel() *InAppChannel {
	return &InAppChannel{
		byUser: make(map[string][]*Notification),
	}
}

func (c *InAppChannel) Send(user *models.User, alert *models.Alert, metadata map[string]string) bool {
	msg := FormatMessage(alert)

	n := &Notification{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		AlertID:     alert.ID,
		Title:       msg.Title,
		Body:        msg.Body,
		Severity:    msg.Severity,
		DeliveredAt: time.Now(),
	}

	c.mu.Lock()
	c.byUser[user.ID] = append(c.byUser[user.ID], n)
	c.mu.Unlock()

	slog.Info("in-app notification sent", "user_id", user.ID, "alert_id", alert.ID)
	return true
}

func (c *InAppChannel) Type() models.DeliveryType {
	return models.DeliveryInApp
}

// Notifications returns a snapshot of one user's inbox.
func (c *InAppChannel) Notifications(userID string) []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Notification, 0, len(c.byUser[userID]))
	for _, n := range c.byUser[userID] {
		out = append(out, *n)
	}
	return out
}

// MarkNotificationRead flips one inbox entry's read flag, reporting whether
// the entry exists.
func (c *InAppChannel) MarkNotificationRead(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, inbox := range c.byUser {
		for _, n := range inbox {
			if n.ID == id {
				n.Read = true
				return true
			}
		}
	}
	return false
}
