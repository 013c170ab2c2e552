package channel

import (
	"log/slog"

	"alerthub/internal/models"
)

type SMSChannel struct{}

func NewSMSChannel() *SMSChannel {
	return &SMSChannel{}
}

func (c *SMSChannel) Send(user *models.User, alert *models.Alert, metadata map[string]string) bool {
	msg := FormatMessage(alert)
	slog.Info("sms notification sent", "user_id", user.ID, "title", msg.Title, "alert_id", alert.ID)
	return true
}

func (c *SMSChannel) Type() models.DeliveryType {
	return models.DeliverySMS
}
