package users

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

type User struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	FullName  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
