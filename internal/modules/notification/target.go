package notification

import (
	"strings"

	"bookxe/internal/domain"
)

// Target addresses a notification to one user or to everyone holding a role.
type Target struct {
	UserID string
	Role   domain.Role
}

func ToUser(id string) Target { return Target{UserID: id} }

func ToRole(role domain.Role) Target { return Target{Role: role} }

func (t Target) Validate() error {
	hasUser := strings.TrimSpace(t.UserID) != ""
	hasRole := t.Role != ""
	if hasUser == hasRole {
		return ErrInvalidTarget
	}
	return nil
}

// routingKey is the bus routing key for events sent to t.
func (t Target) routingKey() string {
	if t.Role != "" {
		return "notification.role." + string(t.Role)
	}
	return "notification.user"
}
