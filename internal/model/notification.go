package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending  NotificationStatus = "pending"
	NotificationStatusSent     NotificationStatus = "sent"
	NotificationStatusFailed   NotificationStatus = "failed"
	NotificationStatusRetrying NotificationStatus = "retrying"
)

const (
	NotificationChannelEmail = "email"
	NotificationChannelInApp = "in_app"
)

type Notification struct {
	ID          uuid.UUID          `db:"id" json:"id"`
	RecipientID uuid.UUID          `db:"recipient_id" json:"recipient_id"`
	ClinicID    uuid.UUID          `db:"clinic_id" json:"clinic_id"`
	Channel     string             `db:"channel" json:"channel"`
	Subject     string             `db:"subject" json:"subject"`
	Content     string             `db:"content" json:"content"`
	Recipient   string             `db:"recipient" json:"recipient"`
	Status      NotificationStatus `db:"status" json:"status"`
	RetryCount  int                `db:"retry_count" json:"retry_count"`
	LastError   string             `db:"last_error" json:"last_error,omitempty"`
	NextRetryAt *time.Time         `db:"next_retry_at" json:"next_retry_at,omitempty"`
	SentAt      *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}

// NotificationEvent is published for in-app delivery.
type NotificationEvent struct {
	ID             uuid.UUID `json:"id"`
	NotificationID uuid.UUID `json:"notification_id"`
	RecipientID    uuid.UUID `json:"recipient_id"`
	Type           string    `json:"type"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
