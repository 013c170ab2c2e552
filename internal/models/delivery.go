package models

import "time"

type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// NotificationDelivery is one row in the append-only delivery ledger.
// Rows are never updated or deleted; repeat reminders append new rows.
type NotificationDelivery struct {
	ID          string         `json:"id"`
	AlertID     string         `json:"alert_id"`
	UserID      string         `json:"user_id"`
	Channel     DeliveryType   `json:"delivery_channel"`
	DeliveredAt time.Time      `json:"delivered_at"`
	Status      DeliveryStatus `json:"delivery_status"`
}
