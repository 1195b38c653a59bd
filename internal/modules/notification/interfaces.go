package notification

import (
	"context"

	"bookxe/internal/domain"
)

type Store interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListVisible(ctx context.Context, userID string, role domain.Role, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string, role domain.Role) (int64, error)
	MarkAsRead(ctx context.Context, id int64, userID string, role domain.Role) error
	MarkAllAsRead(ctx context.Context, userID string, role domain.Role) (int64, error)
}

// EventPublisher fans persisted notifications out to a message bus.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}
