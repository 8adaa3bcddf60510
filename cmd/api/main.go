package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"floristeria-calendar-sync/internal/application"
	"floristeria-calendar-sync/internal/application/source_strategies"
	apiinfra "floristeria-calendar-sync/internal/infrastructure/api"
	"floristeria-calendar-sync/internal/infrastructure/fetch"
	"floristeria-calendar-sync/internal/infrastructure/metrics"
	"floristeria-calendar-sync/internal/infrastructure/repository"
	"floristeria-calendar-sync/internal/infrastructure/scheduler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	// Get configuration from environment
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	systemActorID := os.Getenv("SYSTEM_ACTOR_ID")
	if systemActorID == "" {
		logger.Fatal().Msg("SYSTEM_ACTOR_ID environment variable is required")
	}

	fetchTimeout := fetch.DefaultFetchTimeout
	if raw := os.Getenv("FETCH_TIMEOUT_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			fetchTimeout = time.Duration(seconds) * time.Second
		}
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(os.Getenv("MONGODB_DATABASE"))

	// Initialize repositories
	integrationRepo := repository.NewMongoIntegrationRepository(db)
	noteRepo := repository.NewMongoNoteRepository(db)

	// Initialize infrastructure
	fetcher := fetch.NewHTTPFetcher(fetchTimeout, logger)
	syncMetrics := metrics.New()
	registry := source_strategies.NewRegistry(logger)

	// Initialize application services
	integrationService := application.NewIntegrationService(integrationRepo, fetcher, logger)
	syncService := application.NewSyncService(
		integrationRepo,
		noteRepo,
		fetcher,
		registry,
		syncMetrics,
		systemActorID,
		logger,
	)

	// Start the poll scheduler
	pollScheduler := scheduler.New(syncService, os.Getenv("POLL_SCHEDULE"), scheduler.DefaultCycleBudget, logger)
	if err := pollScheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start poll scheduler")
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", metrics.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Sync subsystem routes
	handlers := apiinfra.NewHandlers(syncService, integrationService, logger)
	handlers.Register(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		logger.Info().Str("port", port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for shutdown signal, then drain the scheduler and server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("Shutting down")
	<-pollScheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
}
