package domain

import "time"

type NotificationType string

const (
	NotifBookingCreated   NotificationType = "booking_created"
	NotifBookingNewWork   NotificationType = "booking_new_work"
	NotifBookingStage     NotificationType = "booking_stage_approved"
	NotifBookingApproved  NotificationType = "booking_approved"
	NotifBookingRejected  NotificationType = "booking_rejected"
	NotifBookingCancelled NotificationType = "booking_cancelled"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is addressed to exactly one of UserID or TargetRole.
type Notification struct {
	ID         int64            `json:"id"`
	UserID     *string          `json:"user_id,omitempty"`
	TargetRole *Role            `json:"target_role,omitempty"`
	Type       NotificationType `json:"type"`
	Severity   Severity         `json:"severity"`
	Title      string           `json:"title"`
	Message    string           `json:"message,omitempty"`
	BookingID  *string          `json:"booking_id,omitempty"`
	IsRead     bool             `json:"is_read"`
	ReadAt     *time.Time       `json:"read_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
