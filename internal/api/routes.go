package api

import (
	"net/http"

	"gamesense/app/internal/service"

	"github.com/gin-gonic/gin"
)

// RouteDeps bundles what SetupRoutes wires into handlers.
type RouteDeps struct {
	JWTSecret        string
	AuthService      service.AuthService
	SessionService   service.SessionService
	AccountService   service.AccountService
	DashboardService service.DashboardService
	MaxUploadBytes   int64
	// MediaDir is served under MediaPrefix when set (local blob backend).
	MediaDir    string
	MediaPrefix string
}

// SetupRoutes registers every endpoint on router. Routes under /api/v1 other
// than auth, memberships and catalog require a bearer token.
func SetupRoutes(router *gin.Engine, deps RouteDeps) {
	authHandler := NewAuthHandler(deps.AuthService)
	sessionHandler := NewSessionHandler(deps.SessionService, deps.MaxUploadBytes)
	accountHandler := NewAccountHandler(deps.AccountService, deps.DashboardService)

	authMiddleware := AuthMiddleware(deps.JWTSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if deps.MediaDir != "" {
		prefix := deps.MediaPrefix
		if prefix == "" {
			prefix = "/media"
		}
		router.Static(prefix, deps.MediaDir)
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
		apiV1.GET("/memberships", accountHandler.ListTiers)
		apiV1.GET("/catalog", sessionHandler.GetCatalog)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", accountHandler.GetMe)
		protected.DELETE("/me", accountHandler.DeleteMe)
		protected.PUT("/me/membership", accountHandler.SetMembership)
		protected.GET("/dashboard", accountHandler.GetDashboard)

		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("", sessionHandler.CreateSession)
			sessionGroup.GET("", sessionHandler.ListSessions)
			sessionGroup.GET("/:id", sessionHandler.GetSession)
			sessionGroup.DELETE("/:id", sessionHandler.DeleteSession)
			sessionGroup.GET("/:id/pdf", sessionHandler.DownloadPDF)
			sessionGroup.GET("/:id/video", sessionHandler.GetVideo)
		}
	}
}
