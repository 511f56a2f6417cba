package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profile-backend/internal/profiles"
	"profile-backend/internal/shared/auth"
	"profile-backend/internal/shared/config"
	"profile-backend/internal/shared/metrics"
	"profile-backend/internal/shared/server/middleware"
	"profile-backend/internal/shared/server/respond"
	"profile-backend/internal/users"
)

// RouterDeps carries the handlers and shared services the router wires up.
type RouterDeps struct {
	Config          config.Config
	Auth            *auth.Manager
	IdentitySync    gin.HandlerFunc
	ProfilesHandler *profiles.Handler
	UsersHandler    *users.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Auth),
	)
	if deps.IdentitySync != nil {
		r.Use(deps.IdentitySync)
	}
	r.Use(middleware.RateLimit(uploadRateLimit()))

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())
	deps.UsersHandler.RegisterRoutes(api)
	deps.ProfilesHandler.RegisterRoutes(api)

	return r
}

// uploadRateLimit throttles file uploads harder than the rest of the API.
func uploadRateLimit() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"UPLOAD": {Rate: 1, Burst: 5},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && strings.HasSuffix(c.FullPath(), "/profile/files") {
				return "UPLOAD"
			}
			return ""
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
