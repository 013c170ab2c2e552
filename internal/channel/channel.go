// Package channel defines the delivery-channel contract and its transports.
// A channel delivers one formatted alert to one user; ordinary transport
// failures are a false result, never an error that aborts a batch.
package channel

import "alerthub/internal/models"

type Channel interface {
	// Send attempts one delivery and reports whether it succeeded.
	Send(user *models.User, alert *models.Alert, metadata map[string]string) bool
	// Type returns the delivery-type tag this channel serves.
	Type() models.DeliveryType
}

// Message is the channel-agnostic payload rendered before transport.
type Message struct {
	Title    string
	Body     string
	Severity models.Severity
	AlertID  string
}

var severityIcons = map[models.Severity]string{
	models.SeverityInfo:     "ℹ️",
	models.SeverityWarning:  "⚠️",
	models.SeverityCritical: "🚨",
}

// FormatMessage renders the shared severity-icon title plus body for any
// transport.
func FormatMessage(alert *models.Alert) Message {
	title := alert.Title
	if icon, ok := severityIcons[alert.Severity]; ok {
		title = icon + " " + alert.Title
	}
	return Message{
		Title:    title,
		Body:     alert.Message,
		Severity: alert.Severity,
		AlertID:  alert.ID,
	}
}
