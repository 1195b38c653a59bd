package booking

import (
	"context"
	"time"

	"bookxe/internal/domain"
)

// BookingStore is the persistence surface the orchestrator depends on.
type BookingStore interface {
	Create(ctx context.Context, b *domain.BookingRequest) error
	GetByID(ctx context.Context, id string) (*domain.BookingRequest, error)
	// UpdateWhere writes next only while the stored status equals expected.
	UpdateWhere(ctx context.Context, id string, expected domain.BookingStatus, next *domain.BookingRequest) error
	ListByStatus(ctx context.Context, statuses []domain.BookingStatus) ([]domain.BookingRequest, error)
	ListExpired(ctx context.Context, statuses []domain.BookingStatus, cutoff time.Time) ([]domain.BookingRequest, error)
	// List returns one page of bookings matching the filter, newest first,
	// and the total number of matches.
	List(ctx context.Context, f domain.BookingFilter) ([]domain.BookingRequest, int64, error)
	ListSchedule(ctx context.Context, from, to time.Time) ([]domain.ScheduleEntry, error)
}

type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, b *domain.BookingRequest) error
	NotifyNewWork(ctx context.Context, role domain.Role, b *domain.BookingRequest) error
	NotifyStageApproved(ctx context.Context, b *domain.BookingRequest, stage domain.Stage) error
	NotifyBookingApproved(ctx context.Context, b *domain.BookingRequest) error
	NotifyBookingRejected(ctx context.Context, b *domain.BookingRequest) error
	NotifyBookingExpired(ctx context.Context, b *domain.BookingRequest) error
}
