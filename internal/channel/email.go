package channel

import (
	"log/slog"

	"alerthub/internal/models"
)

// EmailChannel logs the outgoing mail and reports success. Wiring a real
// SMTP client behind this type does not change the contract.
type EmailChannel struct{}

func NewEmailChannel() *EmailChannel {
	return &EmailChannel{}
}

func (c *EmailChannel) Send(user *models.User, alert *models.Alert, metadata map[string]string) bool {
	msg := FormatMessage(alert)
	slog.Info("email notification sent", "to", user.Email, "title", msg.Title, "alert_id", alert.ID)
	return true
}

func (c *EmailChannel) Type() models.DeliveryType {
	return models.DeliveryEmail
}
