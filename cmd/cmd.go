package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dogwalk-backend/internal/config"
	"dogwalk-backend/internal/database"
	"dogwalk-backend/internal/handlers"
	"dogwalk-backend/internal/middleware"
	"dogwalk-backend/internal/repository"
	"dogwalk-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Apply schema migrations
	if err := database.Migrate(cfg.Database.MigrateURL()); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	dogRepo := repository.NewDogRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	chatRepo := repository.NewChatRepository(db)

	// Initialize services
	authService := services.NewAuthService(accountRepo, profileRepo, cfg.JWT.Secret, cfg.Auth.RequireEmailConfirm)
	dogService := services.NewDogService(profileRepo, dogRepo)
	walkService := services.NewWalkService(profileRepo, dogRepo, requestRepo, applicationRepo)
	chatHub := services.NewChatHub()
	chatService := services.NewChatService(profileRepo, requestRepo, applicationRepo, chatRepo, chatHub)
	uploadService, err := services.NewUploadService(
		profileRepo,
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
		cfg.AWS.PublicURL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create upload service")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(authService)
	dogHandler := handlers.NewDogHandler(dogService)
	requestHandler := handlers.NewRequestHandler(walkService, authService)
	applicationHandler := handlers.NewApplicationHandler(walkService)
	chatHandler := handlers.NewChatHandler(chatService)
	uploadHandler := handlers.NewUploadHandler(uploadService)
	wsHandler := handlers.NewWebSocketHandler(chatHub, authService, chatService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/confirm", authHandler.Confirm)
		r.Get("/requests", requestHandler.ListRequests)
		r.Get("/requests/{request_id}", requestHandler.GetRequest)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(authService))
			r.Get("/me", profileHandler.GetMe)
			r.Put("/me", profileHandler.UpdateMe)
			r.Post("/dogs", dogHandler.CreateDog)
			r.Get("/dogs", dogHandler.ListDogs)
			r.Post("/uploads/dog-photo", uploadHandler.PresignDogPhoto)
			r.Post("/requests", requestHandler.CreateRequest)
			r.Post("/requests/{request_id}/applications", applicationHandler.Apply)
			r.Get("/requests/{request_id}/applications", applicationHandler.ListApplications)
			r.Post("/applications/{application_id}/accept", applicationHandler.Accept)
			r.Post("/requests/{request_id}/complete", requestHandler.CompleteRequest)
			r.Get("/requests/{request_id}/messages", chatHandler.ListMessages)
			r.Post("/requests/{request_id}/messages", chatHandler.SendMessage)
			r.Get("/history", requestHandler.History)
		})
	})

	// WebSocket route
	r.Get("/ws/chat", wsHandler.HandleChat)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
