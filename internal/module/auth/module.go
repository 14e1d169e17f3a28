package auth

import "github.com/gin-gonic/gin"

// AuthModule implements the app.Module interface for operator authentication.
type AuthModule struct {
	handler *AuthHandler
}

// NewModule creates a new AuthModule with the given handler.
// Panics if h is nil.
func NewModule(h *AuthHandler) *AuthModule {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &AuthModule{handler: h}
}

// RegisterRoutes registers the auth routes under /auth. Login and register
// must stay in the server's public path list or no operator could ever
// obtain a token; /me is deliberately not public so the issued token
// round-trips through the auth middleware.
func (m *AuthModule) RegisterRoutes(api *gin.RouterGroup) {
	grp := api.Group("/auth")
	grp.POST("/login", m.handler.Login)
	grp.POST("/register", m.handler.Register)
	grp.GET("/me", m.handler.Me)
}
