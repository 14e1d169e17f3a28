package account

import "github.com/gin-gonic/gin"

// AccountModule implements the app.Module interface for the account domain.
type AccountModule struct {
	handler *AccountHandler
}

// NewModule creates a new AccountModule with the given handler.
// Panics if h is nil.
func NewModule(h *AccountHandler) *AccountModule {
	if h == nil {
		panic("account.NewModule: handler must not be nil")
	}
	return &AccountModule{handler: h}
}

// RegisterRoutes registers account API routes under /ovh/account.
// The collection routes use an explicit trailing slash, so their full
// paths read /api/ovh/account/.
func (m *AccountModule) RegisterRoutes(api *gin.RouterGroup) {
	grp := api.Group("/ovh/account")
	grp.GET("/", m.handler.List)
	grp.POST("/", m.handler.Create)
	grp.GET("/:id", m.handler.Get)
	grp.PUT("/:id", m.handler.Update)
	grp.DELETE("/:id", m.handler.Delete)
	grp.GET("/:id/email-history", m.handler.EmailHistory)
	grp.POST("/:id/email-history", m.handler.RecordEmail)
	grp.GET("/:id/usage", m.handler.Usage)
	grp.POST("/:id/usage", m.handler.RecordUsage)
}
