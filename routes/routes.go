// File: /routes/routes.go
package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trailcraft-api/config"
	"trailcraft-api/controllers"
	"trailcraft-api/metrics"
	"trailcraft-api/middleware"
	"trailcraft-api/repositories"
	"trailcraft-api/services"
)

// Dependencies are the wired services the HTTP layer is built on.
type Dependencies struct {
	Config    *config.Config
	Trails    repositories.TrailRepository
	Sessions  *services.SessionService
	Tokens    *services.TokenStore
	Routing   *services.RoutingService
	Submitter services.TrailSubmitter
	Notifier  services.Notifier
	Events    services.EventPublisher
	Metrics   *metrics.Collector
}

// SetupRoutes registers /metrics, /ping and the /api route table.
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	var observer controllers.Observer
	if deps.Metrics != nil {
		observer = deps.Metrics
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	trailController := controllers.NewTrailController(controllers.TrailControllerOptions{
		Repo:      deps.Trails,
		Submitter: deps.Submitter,
		Notifier:  deps.Notifier,
		Events:    deps.Events,
		Observer:  observer,
	})
	routingController := controllers.NewRoutingController(deps.Routing, deps.Config.RoutingProfile, observer)
	sessionController := controllers.NewSessionController(deps.Sessions)
	tokenController := controllers.NewTokenController(deps.Tokens)
	healthController := controllers.NewHealthController(deps.Config.StorageDriver, deps.Sessions)

	r.GET("/ping", healthController.Ping)

	api := r.Group("/api")
	api.Use(middleware.ValidateJSON())
	{
		api.GET("/health", healthController.Health)

		trails := api.Group("/trails")
		{
			trails.GET("", middleware.PaginationDefaults(), trailController.GetTrails)
			trails.POST("", trailController.CreateTrail)
			trails.POST("/metrics", trailController.ComputeMetrics)
			trails.GET("/:id", trailController.GetTrail)
			trails.PUT("/:id", trailController.UpdateTrail)
			trails.DELETE("/:id", trailController.DeleteTrail)
			trails.GET("/:id/mutation", trailController.GetMutation)
			trails.GET("/:id/export.kml", trailController.ExportKML)
			trails.POST("/:id/submit", middleware.RequireBearerToken(), trailController.SubmitTrail)
		}

		api.POST("/routing/directions", routingController.GetDirections)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", sessionController.CreateSession)
			sessions.GET("/:id", sessionController.GetSession)
			sessions.DELETE("/:id", sessionController.DeleteSession)
			sessions.PUT("/:id/drawing-mode", sessionController.SetDrawingMode)
			sessions.POST("/:id/points", sessionController.PlacePoint)
			sessions.DELETE("/:id/points", sessionController.ClearPoints)
			sessions.DELETE("/:id/points/:index", sessionController.RemovePoint)
			sessions.POST("/:id/undo", sessionController.Undo)
			sessions.PUT("/:id/metadata", sessionController.UpdateMetadata)
			sessions.GET("/:id/validation", sessionController.Validate)
			sessions.POST("/:id/submit", middleware.BearerToken(), sessionController.Submit)
		}

		token := api.Group("/token")
		{
			token.GET("", tokenController.GetToken)
			token.PUT("", tokenController.SetToken)
			token.DELETE("", tokenController.ClearToken)
		}
	}
}

// SetupCORS allows the configured browser origins; "*" allows any.
func SetupCORS(origins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			if allowAll {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
