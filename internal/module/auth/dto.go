package auth

import (
	"time"

	"github.com/zhfeng1/OVH/internal/domain"
)

// LoginRequest carries operator credentials.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8"`
}

// RegisterRequest carries the fields needed to open an operator account.
type RegisterRequest struct {
	Name     string `json:"name" form:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
}

// TokenResponse is the token bundle returned after a successful login.
// PreviousLogin is the login recorded before this one; it is absent on an
// operator's first login.
type TokenResponse struct {
	Token         string     `json:"token"`
	ExpiresAt     int64      `json:"expires_at"`
	Role          string     `json:"role"`
	PreviousLogin *time.Time `json:"previous_login,omitempty"`
}

// OperatorResponse is the public view of an operator account, shared by
// registration and the profile endpoint.
type OperatorResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// operatorView maps an operator account onto its public response shape.
func operatorView(u *domain.User) OperatorResponse {
	return OperatorResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
