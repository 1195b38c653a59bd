package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleStaff        Role = "staff"
	RoleManagerViet  Role = "manager_viet"
	RoleManagerKorea Role = "manager_korea"
	RoleAdmin        Role = "admin"

	// RoleSystem is held only by the expiry sweeper. It is never issued in a token.
	RoleSystem Role = "system"
)

const SystemActorID = "system"

// ParseRole resolves a role claim. The system role is rejected.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleStaff, RoleManagerViet, RoleManagerKorea, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Actor is the resolved identity performing an operation.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func SystemActor() Actor {
	return Actor{ID: SystemActorID, Role: RoleSystem}
}

func (a Actor) IsSystem() bool {
	return a.Role == RoleSystem
}
