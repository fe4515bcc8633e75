package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradetide-backend/internal/config"
	"tradetide-backend/internal/database"
	"tradetide-backend/internal/handlers"
	"tradetide-backend/internal/metrics"
	"tradetide-backend/internal/middleware"
	"tradetide-backend/internal/repository"
	"tradetide-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// portAttempts bounds the fallback search when the configured port is taken.
const portAttempts = 10

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := database.Connect(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Apply migrations
	if err := database.RunMigrations(cfg.Database.DSN()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	barterRepo := repository.NewBarterRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	hub := services.NewHub()
	notificationService := services.NewNotificationService(notifRepo)
	auditService := services.NewAuditService(auditRepo)
	userService := services.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.ExpiryDays, cfg.JWT.DemoToken, cfg.JWT.DemoUserID)
	chatService := services.NewChatService(chatRepo, messageRepo, userRepo, notificationService, hub)
	barterService := services.NewBarterService(barterRepo, userRepo, notificationService, auditService)
	sessionService := services.NewSessionService(sessionRepo, userRepo, notificationService)
	reviewService := services.NewReviewService(reviewRepo, userRepo, notificationService, auditService)

	// Uploads are optional; without a bucket the endpoint reports 501.
	var uploadService *services.UploadService
	if cfg.AWS.S3Bucket != "" {
		uploadService, err = services.NewUploadService(
			cfg.AWS.Region,
			cfg.AWS.S3Bucket,
			cfg.AWS.AccessKey,
			cfg.AWS.SecretKey,
			cfg.AWS.Endpoint,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create upload service")
		}
	}

	collector := metrics.NewCollector()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	profileHandler := handlers.NewProfileHandler(userService, uploadService)
	marketplaceHandler := handlers.NewMarketplaceHandler(userService, reviewService)
	chatHandler := handlers.NewChatHandler(chatService, collector)
	barterHandler := handlers.NewBarterHandler(barterService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	auditHandler := handlers.NewAuditLogHandler(auditService)
	wsHandler := handlers.NewWebSocketHandler(userService, chatService, hub, collector)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	defer rateLimiter.Stop()

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.ClientOrigin))
	r.Use(collector.Middleware)

	// Routes
	r.Handle("/metrics", collector.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"status":"ok"}`)
		})
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(userService))
			if cfg.RateLimit.RequestsPerMinute > 0 {
				r.Use(rateLimiter.Middleware())
			}

			r.Get("/profile", profileHandler.Get)
			r.Put("/profile", profileHandler.Update)
			r.Post("/profile/uploads", profileHandler.PresignUpload)

			r.Get("/marketplace/users", marketplaceHandler.Browse)
			r.Get("/users", marketplaceHandler.List)
			r.Get("/users/{id}", marketplaceHandler.GetUser)

			r.Route("/chat", func(r chi.Router) {
				r.Get("/chats", chatHandler.ListChats)
				r.Post("/chats", chatHandler.CreateChat)
				r.Get("/chats/{chatId}", chatHandler.GetChat)
				r.Post("/messages", chatHandler.SendMessage)
				r.Get("/messages/unread", chatHandler.UnreadCount)
			})

			r.Route("/barter-requests", func(r chi.Router) {
				r.Get("/", barterHandler.List)
				r.Post("/", barterHandler.Create)
				r.Put("/{id}/accept", barterHandler.Accept)
				r.Put("/{id}/decline", barterHandler.Decline)
				r.Put("/{id}/complete", barterHandler.Complete)
				r.Delete("/{id}", barterHandler.Delete)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionHandler.List)
				r.Post("/", sessionHandler.Create)
				r.Put("/{id}/status", sessionHandler.UpdateStatus)
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", reviewHandler.List)
				r.Post("/", reviewHandler.Create)
				r.Get("/user/{userId}", reviewHandler.ListForUser)
				r.Put("/{id}", reviewHandler.Update)
				r.Delete("/{id}", reviewHandler.Delete)
			})

			r.Get("/notifications", notificationHandler.List)
			r.Put("/notifications/{id}/read", notificationHandler.MarkRead)

			r.Get("/audit-logs", auditHandler.List)
		})
	})

	// WebSocket route; the token travels as a query parameter.
	r.Get("/ws", wsHandler.Handle)

	// Create HTTP server
	srv := &http.Server{
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, port, err := listen(cfg.Server.Host, cfg.Server.Port)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bind server port")
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", port).
			Msg("Starting server")
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Close relay connections after the HTTP server stops accepting.
	hub.Close()

	log.Info().Msg("Server exited")
}

// listen binds the first free port starting at the configured one, walking
// forward so a lingering previous instance does not block startup.
func listen(host string, startPort int) (net.Listener, int, error) {
	var lastErr error
	for port := startPort; port < startPort+portAttempts; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
		if err == nil {
			if port != startPort {
				log.Warn().
					Int("configured_port", startPort).
					Int("port", port).
					Msg("Configured port in use, bound next free port")
			}
			return listener, port, nil
		}
		lastErr = err
	}
	return nil, 0, fmt.Errorf("no free port in range %d-%d: %w", startPort, startPort+portAttempts-1, lastErr)
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
