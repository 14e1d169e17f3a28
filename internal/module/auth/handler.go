package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/zhfeng1/OVH/internal/domain"
	"github.com/zhfeng1/OVH/internal/middleware"
	"github.com/zhfeng1/OVH/internal/pkg"
)

// AuthHandler serves the operator login, registration, and profile endpoints.
type AuthHandler struct {
	svc Service
}

// NewHandler creates an AuthHandler backed by svc.
func NewHandler(svc Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	tokenResp, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, tokenResp)
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, operatorView(user))
}

// Me handles GET /api/auth/me. The operator is identified by the token
// subject the auth middleware placed in the context.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}

	user, err := h.svc.Profile(c.Request.Context(), userID)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, operatorView(user))
}
