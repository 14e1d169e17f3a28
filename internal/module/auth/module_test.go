package auth

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestAuthModuleRegisterRoutes verifies that AuthModule satisfies the
// app.Module contract and mounts exactly the auth routes: the two public
// credential routes plus the token-guarded profile route.
func TestAuthModuleRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	NewModule(&AuthHandler{}).RegisterRoutes(r.Group("/api"))

	registered := make(map[string]bool)
	for _, ri := range r.Routes() {
		registered[ri.Method+" "+ri.Path] = true
	}

	want := []string{
		http.MethodPost + " /api/auth/login",
		http.MethodPost + " /api/auth/register",
		http.MethodGet + " /api/auth/me",
	}
	for _, key := range want {
		if !registered[key] {
			t.Errorf("route %s not registered", key)
		}
	}
	if len(registered) != len(want) {
		t.Errorf("registered %d routes, want %d: %v", len(registered), len(want), registered)
	}
}

func TestNewModule_PanicsOnNilHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewModule() expected panic for nil handler, got none")
		}
	}()

	_ = NewModule(nil)
}
