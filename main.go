// File: /main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"trailcraft-api/config"
	"trailcraft-api/database"
	"trailcraft-api/jobs"
	"trailcraft-api/metrics"
	"trailcraft-api/middleware"
	"trailcraft-api/repositories"
	"trailcraft-api/routes"
	"trailcraft-api/services"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	collector := metrics.NewCollector()

	appCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	trails, settings := setupStorage(cfg)
	tokens := services.NewTokenStore(settings)

	var events services.EventPublisher = services.NopEventPublisher{}
	if cfg.NATSURL != "" {
		pub, err := services.NewNATSEventPublisher(cfg.NATSURL, collector)
		if err != nil {
			log.Printf("Warning: NATS unavailable, events disabled: %v", err)
		} else {
			events = pub
			log.Printf("Publishing trail events to %s", cfg.NATSURL)
		}
	}
	defer events.Close()

	var notifier services.Notifier = services.NopNotifier{}
	if cfg.NotificationsEnabled() {
		notifier = services.NewNotificationService(cfg)
		log.Printf("Submission emails go to %s", cfg.NotifyEmail)
	}

	submitter := services.NewGraphQLClient(cfg.GraphQLEndpoint, cfg.GraphQLTimeout)
	routing := services.NewRoutingService(cfg.ORSAPIKey, cfg.ORSBaseURL, cfg.RoutingRequestsPerMinute, nil)
	if cfg.ORSAPIKey == "" {
		log.Printf("ORS_API_KEY not set; directions fall back to straight lines")
	}

	sessions := services.NewSessionService(services.SessionServiceOptions{
		Altitude:  services.FixedAltitude{Meters: cfg.DefaultAltitude},
		Submitter: submitter,
		Tokens:    tokens,
		Notifier:  notifier,
		Events:    events,
		Metrics:   collector,
	})

	cleanupJob := jobs.NewSessionCleanupJob(sessions, cfg.SessionCleanupInterval, cfg.SessionIdleTimeout)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	router := gin.New()
	router.Use(routes.SetupCORS(cfg.CORSOrigins))
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(collector))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimit(appCtx, cfg.RateLimit, cfg.RateLimit/4+1))
	router.Use(middleware.ErrorHandler())

	routes.SetupRoutes(router, routes.Dependencies{
		Config:    cfg,
		Trails:    trails,
		Sessions:  sessions,
		Tokens:    tokens,
		Routing:   routing,
		Submitter: submitter,
		Notifier:  notifier,
		Events:    events,
		Metrics:   collector,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Printf("Starting Trailcraft API server on port %s (storage: %s)", cfg.Port, cfg.StorageDriver)
		log.Printf("Health check available at: http://localhost:%s/api/health", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}

func setupStorage(cfg *config.Config) (repositories.TrailRepository, repositories.SettingRepository) {
	if cfg.StorageDriver != "mysql" {
		return repositories.NewMemoryTrailRepository(), repositories.NewMemorySettingRepository()
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	return repositories.NewGormTrailRepository(db), repositories.NewGormSettingRepository(db)
}
