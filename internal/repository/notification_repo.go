package repository

import (
	"context"
	"time"

	"bookxe/internal/domain"

	"gorm.io/gorm"
)

type notificationModel struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     *string    `gorm:"column:user_id;index:idx_notifications_user"`
	TargetRole *string    `gorm:"column:target_role;index:idx_notifications_role"`
	Type       string     `gorm:"column:type"`
	Severity   string     `gorm:"column:severity"`
	Title      string     `gorm:"column:title"`
	Message    *string    `gorm:"column:message;type:text"`
	BookingID  *string    `gorm:"column:booking_id"`
	IsRead     bool       `gorm:"column:is_read"`
	ReadAt     *time.Time `gorm:"column:read_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
}

func (notificationModel) TableName() string { return "notifications" }

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func toDomainNotification(m notificationModel) domain.Notification {
	n := domain.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      domain.NotificationType(m.Type),
		Severity:  domain.Severity(m.Severity),
		Title:     m.Title,
		Message:   deref(m.Message),
		BookingID: m.BookingID,
		IsRead:    m.IsRead,
		ReadAt:    utcPtr(m.ReadAt),
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.TargetRole != nil {
		role := domain.Role(*m.TargetRole)
		n.TargetRole = &role
	}
	return n
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	var role *string
	if n.TargetRole != nil {
		v := string(*n.TargetRole)
		role = &v
	}
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	m := notificationModel{
		UserID:     n.UserID,
		TargetRole: role,
		Type:       string(n.Type),
		Severity:   string(n.Severity),
		Title:      n.Title,
		Message:    ptrOrNil(n.Message),
		BookingID:  n.BookingID,
		IsRead:     n.IsRead,
		CreatedAt:  createdAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return annotate("create notification", err)
	}
	*n = toDomainNotification(m)
	return nil
}

// visibleTo scopes a query to rows addressed to userID or to role.
func visibleTo(q *gorm.DB, userID string, role domain.Role) *gorm.DB {
	return q.Where("(user_id = ? OR target_role = ?)", userID, string(role))
}

// ListVisible returns notifications addressed to userID or to role, newest first.
func (r *NotificationRepository) ListVisible(ctx context.Context, userID string, role domain.Role, limit int) ([]domain.Notification, error) {
	var rows []notificationModel
	q := visibleTo(r.db.WithContext(ctx).Model(&notificationModel{}), userID, role).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, annotate("list notifications", err)
	}

	out := make([]domain.Notification, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainNotification(m))
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string, role domain.Role) (int64, error) {
	var count int64
	err := visibleTo(r.db.WithContext(ctx).Model(&notificationModel{}), userID, role).
		Where("is_read = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, annotate("count unread notifications", err)
	}
	return count, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id int64, userID string, role domain.Role) error {
	res := visibleTo(r.db.WithContext(ctx).Model(&notificationModel{}), userID, role).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_read": true,
			"read_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return annotate("mark notification read", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID string, role domain.Role) (int64, error) {
	res := visibleTo(r.db.WithContext(ctx).Model(&notificationModel{}), userID, role).
		Where("is_read = ?", false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, annotate("mark all notifications read", res.Error)
	}
	return res.RowsAffected, nil
}

// AutoMigrate creates the tables this service reads and writes. Used for
// SQLite; Postgres is migrated from the embedded SQL files.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&bookingModel{}, &notificationModel{}, &vehicleModel{})
}
