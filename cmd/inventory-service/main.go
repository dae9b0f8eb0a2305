package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	cataloghandler "github.com/fuelstock/fuelstock-backend/internal/catalog/handler"
	catalogrepo "github.com/fuelstock/fuelstock-backend/internal/catalog/repository"
	"github.com/fuelstock/fuelstock-backend/internal/directory/consumers"
	directoryhandler "github.com/fuelstock/fuelstock-backend/internal/directory/handler"
	directoryrepo "github.com/fuelstock/fuelstock-backend/internal/directory/repository"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/events"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/handler"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/repository"
	"github.com/fuelstock/fuelstock-backend/internal/inventory/service"
	"github.com/fuelstock/fuelstock-backend/internal/notifier"
	notifierevents "github.com/fuelstock/fuelstock-backend/internal/notifier/events"
	stationhandler "github.com/fuelstock/fuelstock-backend/internal/station/handler"
	stationrepo "github.com/fuelstock/fuelstock-backend/internal/station/repository"
	"github.com/fuelstock/fuelstock-backend/pkg/config"
	"github.com/fuelstock/fuelstock-backend/pkg/database"
	"github.com/fuelstock/fuelstock-backend/pkg/httputil"
	"github.com/fuelstock/fuelstock-backend/pkg/logger"
	"github.com/fuelstock/fuelstock-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("inventory-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("inventory-service", cfg.Server.Environment)
	log.Info().Msg("starting Inventory Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publishers
	publisher, err := events.NewInventoryEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}
	notifierPublisher, err := notifierevents.NewNotifierEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create notifier event publisher")
	}

	// Initialize repositories
	lotRepo := repository.NewLotRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	categoryRepo := catalogrepo.NewCategoryRepository(db)
	productRepo := catalogrepo.NewProductRepository(db)
	stationRepo := stationrepo.NewStationRepository(db)
	userRepo := directoryrepo.NewUserRepository(db)

	// Initialize services
	engine := service.NewEngine(db, lotRepo, activityRepo, publisher, cfg.Database.LockTimeout, log)
	inventoryService := service.NewInventoryService(lotRepo, activityRepo, notificationRepo, publisher, log)

	// Initialize the expiration scanner and its scheduler
	mailer := notifier.NewSMTPMailer(&cfg.SMTP)
	scanner := notifier.NewScanner(lotRepo, notificationRepo, userRepo, mailer, notifierPublisher, cfg.Notifier.AdminEmail, log)
	scheduler := notifier.NewScheduler(scanner, cfg.Notifier.ScanInterval, log)

	// Initialize handlers
	lotHandler := handler.NewLotHandler(inventoryService, log)
	activityHandler := handler.NewActivityHandler(engine, activityRepo, log)
	dashboardHandler := handler.NewDashboardHandler(inventoryService, log)
	categoryHandler := cataloghandler.NewCategoryHandler(categoryRepo, log)
	productHandler := cataloghandler.NewProductHandler(productRepo, log)
	stationHandler := stationhandler.NewStationHandler(stationRepo, log)
	userHandler := directoryhandler.NewUserHandler(userRepo, log)
	notifierHandler := notifier.NewHandler(scanner, cfg.Notifier.CronToken, log)

	// Start user event consumer
	userConsumer, err := consumers.NewUserEventConsumer(rmq, userRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create user event consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := userConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start user event consumer")
	}

	scheduler.Start(ctx)
	defer scheduler.Stop()

	verifier := httputil.NewVerifier(&cfg.JWT)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "inventory-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// Manual scan trigger for external cron schedulers, guarded by its own token
	r.Post("/api/v1/notifications/check-expirations", notifierHandler.CheckExpirations)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httputil.Auth(verifier))

		// Lot routes
		r.Route("/lots", func(r chi.Router) {
			r.Get("/", lotHandler.List)
			r.Post("/", lotHandler.Receive)
			r.Get("/{id}", lotHandler.Get)
			r.Post("/{id}/activities", activityHandler.Apply)
			r.Get("/{id}/activities", activityHandler.ListByLot)

			r.With(httputil.RequireRole("admin", "manager")).
				Post("/bulk-delete", lotHandler.BulkDelete)
		})

		// Catalog routes
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.List)
			r.With(httputil.RequireRole("admin")).Post("/", categoryHandler.Create)
			r.With(httputil.RequireRole("admin")).Put("/{id}", categoryHandler.Update)
			r.With(httputil.RequireRole("admin")).Delete("/{id}", categoryHandler.Delete)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{id}", productHandler.Get)
			r.Get("/barcode/{barcode}", productHandler.LookupByBarcode)
			r.With(httputil.RequireRole("admin")).Post("/", productHandler.Create)
			r.With(httputil.RequireRole("admin")).Put("/{id}", productHandler.Update)
			r.With(httputil.RequireRole("admin")).Delete("/{id}", productHandler.Delete)
		})

		// Station routes
		r.Route("/stations", func(r chi.Router) {
			r.Get("/", stationHandler.List)
			r.Get("/{id}", stationHandler.Get)
			r.With(httputil.RequireRole("admin")).Post("/", stationHandler.Create)
			r.With(httputil.RequireRole("admin")).Put("/{id}", stationHandler.Update)
			r.With(httputil.RequireRole("admin")).Delete("/{id}", stationHandler.Delete)
		})

		// Directory routes (read-only mirror of the identity provider)
		r.Route("/users", func(r chi.Router) {
			r.Use(httputil.RequireRole("admin"))
			r.Get("/", userHandler.List)
			r.Get("/{id}", userHandler.Get)
		})

		// Dashboard
		r.Get("/dashboard/stats", dashboardHandler.GetStats)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop the consumer and scheduler
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
