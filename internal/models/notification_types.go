package models

import (
	"database/sql"
	"time"
)

// NotificationKind discriminates which email template a notification used.
type NotificationKind string

const (
	NotificationConfirmation NotificationKind = "confirmation"
	NotificationStatusUpdate NotificationKind = "status-update"
	NotificationReport       NotificationKind = "report"
)

// Notification is the model for the 'notifications' table: one row per
// email dispatch attempt tied to an order, kept for back-office inspection.
type Notification struct {
	ID        int64            `json:"id" db:"id"`
	OrderID   int64            `json:"orderId,string" db:"order_id"`
	Kind      NotificationKind `json:"kind" db:"kind"`
	Status    string           `json:"status" db:"status"` // success | limited | failed
	Detail    sql.NullString   `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}
