package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creatorflow/internal/config"
	"creatorflow/internal/database"
	"creatorflow/internal/events"
	"creatorflow/internal/handlers"
	"creatorflow/internal/repository"
	"creatorflow/internal/security"
	"creatorflow/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Change notification bus; repositories publish, services subscribe
	bus := events.NewBus()

	// Initialize repositories
	operatorRepo := repository.NewOperatorRepository(db)
	creatorRepo := repository.NewCreatorRepository(db, bus)
	accessRepo := repository.NewAccessRepository(db, bus)
	meetingRepo := repository.NewMeetingRepository(db, bus)
	deliveryRepo := repository.NewDeliveryRepository(db, bus)
	auditRepo := repository.NewAuditRepository(db, bus)
	settingsRepo := repository.NewSettingsRepository(db)

	// Initialize mail delivery
	mailer, err := service.NewSESMailer(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, false)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}
	if !mailer.IsEnabled() {
		log.Println("Warning: SES_FROM_EMAIL not set, email delivery disabled")
	}

	dispatcher := service.NewDispatcher(mailer, deliveryRepo, cfg.MailMaxRetries, cfg.MailBackoffBase)
	notifier := service.NewAsyncNotifier(dispatcher, settingsRepo, cfg.AppBaseURL)

	// Initialize services
	authService := service.NewAuthService(operatorRepo, cfg.SessionDuration, cfg.TokenSecret)
	accessService := service.NewAccessService(creatorRepo, accessRepo, auditRepo, notifier)
	funnelService := service.NewFunnelService(meetingRepo, deliveryRepo, bus)
	inviteService := service.NewInviteService(creatorRepo, meetingRepo, dispatcher, settingsRepo, cfg.AppBaseURL)
	meetingService := service.NewMeetingService(meetingRepo, accessService)
	backupService := service.NewBackupService(db)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	// Initialize handlers
	limiter := security.NewSlidingWindowLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	csrf := security.NewCSRFGenerator(cfg.SessionSecret)
	middleware := handlers.NewMiddleware(authService, limiter, csrf)
	authHandler := handlers.NewAuthHandler(authService, middleware, oauthProviders, cfg.OAuthRedirectBaseURL)
	pipelineHandler := handlers.NewPipelineHandler(creatorRepo, deliveryRepo, auditRepo, accessRepo, accessService, funnelService, inviteService)
	meetingHandler := handlers.NewMeetingHandler(meetingService, meetingRepo)
	adminHandler := handlers.NewAdminHandler(settingsRepo, backupService)

	// Setup routes
	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireOperator(authHandler.Me))
	mux.HandleFunc("POST /api/auth/token", middleware.RequireOperator(middleware.CSRFProtect(authHandler.IssueToken)))
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Creator routes
	mux.HandleFunc("POST /api/creators", middleware.RequireOperator(middleware.CSRFProtect(pipelineHandler.CreateCreator)))
	mux.HandleFunc("GET /api/creators", middleware.RequireOperator(pipelineHandler.ListCreators))
	mux.HandleFunc("GET /api/creators/{id}", middleware.RequireOperator(pipelineHandler.GetCreator))
	mux.HandleFunc("POST /api/creators/{id}/manager", middleware.RequireAdmin(middleware.CSRFProtect(pipelineHandler.AssignManager)))

	// Funnel routes
	mux.HandleFunc("GET /api/creators/{id}/stage", middleware.RequireOperator(pipelineHandler.GetStage))
	mux.HandleFunc("GET /api/funnel/ranking", middleware.RequireOperator(pipelineHandler.GetRanking))

	// Access transition routes
	mux.HandleFunc("POST /api/creators/{id}/access/grant", middleware.RequireOperator(middleware.CSRFProtect(middleware.RateLimit(pipelineHandler.GrantAccess))))
	mux.HandleFunc("POST /api/creators/{id}/access/revoke", middleware.RequireOperator(middleware.CSRFProtect(middleware.RateLimit(pipelineHandler.RevokeAccess))))

	// Invitation and delivery routes
	mux.HandleFunc("POST /api/creators/{id}/invite", middleware.RequireOperator(middleware.CSRFProtect(middleware.RateLimit(pipelineHandler.SendInvitation))))
	mux.HandleFunc("GET /api/creators/{id}/deliveries", middleware.RequireOperator(pipelineHandler.ListDeliveries))
	mux.HandleFunc("GET /api/deliveries/failed", middleware.RequireOperator(pipelineHandler.ListFailedDeliveries))
	mux.HandleFunc("GET /api/creators/{id}/audit", middleware.RequireOperator(pipelineHandler.ListAuditLog))

	// Meeting routes
	mux.HandleFunc("GET /api/meetings/{id}", middleware.RequireOperator(meetingHandler.GetMeeting))
	mux.HandleFunc("GET /api/creators/{id}/meeting", middleware.RequireOperator(meetingHandler.GetCreatorMeeting))
	mux.HandleFunc("POST /api/creators/{id}/meeting/book", middleware.RequireOperator(middleware.CSRFProtect(meetingHandler.Book)))
	mux.HandleFunc("POST /api/meetings/{id}/confirm", middleware.RequireOperator(middleware.CSRFProtect(meetingHandler.Confirm)))
	mux.HandleFunc("POST /api/meetings/{id}/reschedule", middleware.RequireOperator(middleware.CSRFProtect(meetingHandler.RequestReschedule)))
	mux.HandleFunc("POST /api/meetings/{id}/reschedule/approve", middleware.RequireOperator(middleware.CSRFProtect(meetingHandler.ApproveReschedule)))
	mux.HandleFunc("POST /api/meetings/{id}/reschedule/decline", middleware.RequireOperator(middleware.CSRFProtect(meetingHandler.DeclineReschedule)))
	mux.HandleFunc("POST /api/meetings/{id}/cancel", middleware.RequireOperator(middleware.CSRFProtect(meetingHandler.Cancel)))
	mux.HandleFunc("POST /api/meetings/{id}/complete", middleware.RequireOperator(middleware.CSRFProtect(meetingHandler.Complete)))

	// Admin routes
	mux.HandleFunc("GET /api/admin/notifications-paused", middleware.RequireAdmin(adminHandler.GetNotificationsPaused))
	mux.HandleFunc("POST /api/admin/notifications-paused", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.SetNotificationsPaused)))
	mux.HandleFunc("GET /api/admin/backup", middleware.RequireAdmin(adminHandler.ExportBackup))
	mux.HandleFunc("POST /api/admin/backup", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.ImportBackup)))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}
	}
}
