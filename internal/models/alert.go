package models

import "time"

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type DeliveryType string

const (
	DeliveryInApp DeliveryType = "in_app"
	DeliveryEmail DeliveryType = "email"
	DeliverySMS   DeliveryType = "sms"
)

type VisibilityType string

const (
	VisibilityOrganization VisibilityType = "organization"
	VisibilityTeam         VisibilityType = "team"
	VisibilityUser         VisibilityType = "user"
)

type AlertStatus string

const (
	StatusActive   AlertStatus = "active"
	StatusExpired  AlertStatus = "expired"
	StatusArchived AlertStatus = "archived"
)

type Alert struct {
	ID                     string         `json:"id"`
	Title                  string         `json:"title"`
	Message                string         `json:"message"`
	Severity               Severity       `json:"severity"`
	DeliveryType           DeliveryType   `json:"delivery_type"`
	VisibilityType         VisibilityType `json:"visibility_type"`
	VisibilityTarget       string         `json:"visibility_target"` // org, team, or user ID
	StartTime              time.Time      `json:"start_time"`
	ExpiryTime             time.Time      `json:"expiry_time"`
	ReminderFrequencyHours int            `json:"reminder_frequency_hours"`
	RemindersEnabled       bool           `json:"reminders_enabled"`
	CreatedBy              string         `json:"created_by"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	Status                 AlertStatus    `json:"status"`
}

// IsLive reports whether the alert should currently be shown and delivered:
// status is active and now falls within [StartTime, ExpiryTime].
func (a *Alert) IsLive(now time.Time) bool {
	if a.Status != StatusActive {
		return false
	}
	return !now.Before(a.StartTime) && !now.After(a.ExpiryTime)
}
