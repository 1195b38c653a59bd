package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bookxe/internal/domain"
	"bookxe/internal/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

type Service struct {
	store     Store
	publisher EventPublisher
	now       func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithPublisher enables bus fan-out after each persisted notification.
func (s *Service) WithPublisher(p EventPublisher) *Service {
	s.publisher = p
	return s
}

type Message struct {
	Type      domain.NotificationType
	Title     string
	Body      string
	Severity  domain.Severity
	BookingID string
}

// Event is the bus payload for one persisted notification.
type Event struct {
	ID         int64                   `json:"id"`
	UserID     string                  `json:"user_id,omitempty"`
	TargetRole domain.Role             `json:"target_role,omitempty"`
	Type       domain.NotificationType `json:"type"`
	Severity   domain.Severity         `json:"severity"`
	Title      string                  `json:"title"`
	Message    string                  `json:"message,omitempty"`
	BookingID  string                  `json:"booking_id,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// Emit persists one notification for target. The row is the record of
// delivery; a bus publish failure is only logged.
func (s *Service) Emit(ctx context.Context, target Target, msg Message) (*domain.Notification, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if msg.Severity == "" {
		msg.Severity = domain.SeverityInfo
	}

	n := &domain.Notification{
		Type:      msg.Type,
		Severity:  msg.Severity,
		Title:     msg.Title,
		Message:   msg.Body,
		CreatedAt: s.now(),
	}
	if target.UserID != "" {
		id := target.UserID
		n.UserID = &id
	} else {
		role := target.Role
		n.TargetRole = &role
	}
	if msg.BookingID != "" {
		bid := msg.BookingID
		n.BookingID = &bid
	}

	if err := s.store.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}

	if s.publisher != nil {
		ev := Event{
			ID:         n.ID,
			UserID:     target.UserID,
			TargetRole: target.Role,
			Type:       n.Type,
			Severity:   n.Severity,
			Title:      n.Title,
			Message:    n.Message,
			BookingID:  msg.BookingID,
			CreatedAt:  n.CreatedAt,
		}
		if err := s.publisher.PublishJSON(ctx, target.routingKey(), ev); err != nil {
			log.Printf("notification_publish_failed id=%d key=%s err=%v", n.ID, target.routingKey(), err)
		}
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, actor domain.Actor, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.store.ListVisible(ctx, actor.ID, actor.Role, limit)
}

func (s *Service) UnreadCount(ctx context.Context, actor domain.Actor) (int64, error) {
	return s.store.CountUnread(ctx, actor.ID, actor.Role)
}

func (s *Service) MarkAsRead(ctx context.Context, id int64, actor domain.Actor) error {
	err := s.store.MarkAsRead(ctx, id, actor.ID, actor.Role)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) MarkAllAsRead(ctx context.Context, actor domain.Actor) (int64, error) {
	return s.store.MarkAllAsRead(ctx, actor.ID, actor.Role)
}
