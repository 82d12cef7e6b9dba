package entity

import "time"

// Role names seeded at install time. Registration links a user to a role by id.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Role is a named role a user is linked to through user_roles.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
