package models

import "time"

type AlertState string

const (
	StateUnread  AlertState = "unread"
	StateRead    AlertState = "read"
	StateSnoozed AlertState = "snoozed"
)

// UserAlertPreference tracks one user's read/snooze/reminder state for one
// alert. Exactly one row exists per (user, alert) pair, created lazily on
// first contact.
type UserAlertPreference struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	AlertID        string     `json:"alert_id"`
	State          AlertState `json:"state"`
	SnoozedUntil   *time.Time `json:"snoozed_until"`
	LastRemindedAt *time.Time `json:"last_reminded_at"`
	ReadAt         *time.Time `json:"read_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// MarkAsRead moves the row to read and restamps ReadAt. Calling it again
// leaves the state read with the newer ReadAt.
func (p *UserAlertPreference) MarkAsRead(now time.Time) {
	p.State = StateRead
	readAt := now
	p.ReadAt = &readAt
	p.UpdatedAt = now
}

// SnoozeForDay snoozes until the start of the next calendar day, regardless
// of the current hour.
func (p *UserAlertPreference) SnoozeForDay(now time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	p.State = StateSnoozed
	p.SnoozedUntil = &midnight
	p.UpdatedAt = now
}

// IsSnoozed reports whether a snooze is still in effect. An elapsed
// SnoozedUntil does not rewrite the stored state; expiry is evaluated here
// on every read.
func (p *UserAlertPreference) IsSnoozed(now time.Time) bool {
	if p.SnoozedUntil == nil {
		return false
	}
	return now.Before(*p.SnoozedUntil)
}

// ShouldRemind reports whether the user is due another reminder: never while
// snoozed, always if never reminded, otherwise once frequencyHours have
// elapsed since the last reminder (an exactly-equal elapse is due).
func (p *UserAlertPreference) ShouldRemind(now time.Time, frequencyHours int) bool {
	if p.IsSnoozed(now) {
		return false
	}
	if p.LastRemindedAt == nil {
		return true
	}
	return now.Sub(*p.LastRemindedAt) >= time.Duration(frequencyHours)*time.Hour
}
