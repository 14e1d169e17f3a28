package domain

import (
	"context"
	"time"
)

// Operator roles. Admins manage operator accounts; operators run
// diagnostics against the hosted services.
const (
	UserRoleAdmin    = "admin"
	UserRoleOperator = "operator"
)

// User is a console operator account. LastLoginAt is nil until the
// operator's first successful login.
type User struct {
	BaseModel
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	Role         string     `gorm:"size:16;not null;default:operator" json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// ValidUserRole reports whether s is a known operator role.
func ValidUserRole(s string) bool {
	switch s {
	case UserRoleAdmin, UserRoleOperator:
		return true
	}
	return false
}

// UserRepository defines the data access interface for operator accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}
