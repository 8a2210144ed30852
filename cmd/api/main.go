package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "github.com/johnquangdev/minutes360/docs"
	pkgvalidator "github.com/johnquangdev/minutes360/pkg/validator"

	"github.com/johnquangdev/minutes360/internal/adapter/handler"
	"github.com/johnquangdev/minutes360/internal/adapter/repository"
	"github.com/johnquangdev/minutes360/internal/infrastructure/cache"
	"github.com/johnquangdev/minutes360/internal/infrastructure/external/firebase"
	"github.com/johnquangdev/minutes360/internal/infrastructure/external/trello"
	httpmw "github.com/johnquangdev/minutes360/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/minutes360/internal/usecase/auth"
	"github.com/johnquangdev/minutes360/internal/usecase/credential"
	"github.com/johnquangdev/minutes360/internal/usecase/pipeline"
	"github.com/johnquangdev/minutes360/internal/usecase/session"
	pkgai "github.com/johnquangdev/minutes360/pkg/ai"
	"github.com/johnquangdev/minutes360/pkg/config"
	"github.com/johnquangdev/minutes360/pkg/jwt"
)

// @title           Minutes360 API
// @version         1.0
// @description     Meeting pipeline API: upload a recording, transcribe, summarize, extract tasks and publish a Trello card

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	maxUpload, err := cfg.Server.MaxUploadBytes()
	if err != nil {
		logger.Fatal("Invalid upload limit", zap.Error(err))
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.RequestID())

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${id} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Set-Cookie", "Cookie"},
		AllowCredentials: true,
	}))

	if cfg.Server.MaxUploadSize != "" {
		e.Use(middleware.BodyLimit(cfg.Server.MaxUploadSize))
	}

	// Initialize dependencies
	logger.Info("🔧 Initializing dependencies...")

	// Revoked-token store
	store, err := newStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize token store", zap.Error(err))
	}
	defer store.Close()

	// Initialize auth
	logger.Info("🔑 Initializing auth service...")
	tokenRepo := repository.NewTokenRepository(store)
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)
	identity := firebase.NewClient(&cfg.Firebase, logger)
	authService := auth.NewAuthService(identity, tokenRepo, jwtManager, logger)

	// Initialize AI clients
	logger.Info("🤖 Initializing AI components...",
		zap.String("transcription_provider", cfg.Transcription.Provider),
		zap.String("summarization_provider", cfg.Summarization.Provider),
	)
	transcriber := newTranscriber(cfg, logger)
	summarizer := newSummarizer(cfg, logger)

	// Per-user pipeline sessions
	sessions := session.NewManager(func(userID string) *pipeline.Orchestrator {
		creds := credential.NewStore(cfg.Trello.APIKey, cfg.Trello.Token)
		return pipeline.NewOrchestrator(userID, pipeline.Dependencies{
			Transcriber: transcriber,
			Summarizer:  summarizer,
			Boards:      trello.NewClient(cfg.Trello.BaseURL, creds, cfg.Trello.Timeout, logger),
			Credentials: creds,
			History:     repository.NewHistoryRepository(),
			Timeouts: pipeline.Timeouts{
				Summarize:    cfg.Summarization.Timeout,
				ExtractTasks: cfg.Summarization.Timeout,
				Publish:      cfg.Trello.Timeout,
			},
			Logger: logger,
		})
	}, cfg.Session.IdleTimeout, logger)
	unsubscribe := authService.Subscribe(sessions.HandleAuthEvent)
	defer unsubscribe()
	sessions.Start(cfg.Session.SweepInterval)
	defer sessions.Close()

	// Setup router with handlers
	logger.Info("🛣️  Setting up routes...")
	authHandler := handler.NewAuth(authService, cfg.IsProduction(), logger)
	pipelineHandler := handler.NewPipeline(sessions, maxUpload, logger)
	router := handler.NewRouter(cfg, authHandler, pipelineHandler, httpmw.EchoAuth(authService))
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.Server.ListenAddr()
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("✅ Server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Server.Environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newStore(cfg *config.Config, logger *zap.Logger) (cache.Store, error) {
	if !cfg.Redis.Enabled {
		logger.Info("📦 Using in-memory token store")
		return cache.NewMemoryStore(time.Minute), nil
	}

	logger.Info("📦 Connecting to Redis...", zap.String("addr", cfg.Redis.Addr()))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return cache.NewRedisStore(ctx, &cfg.Redis)
}

func newTranscriber(cfg *config.Config, logger *zap.Logger) pipeline.Transcriber {
	if cfg.Transcription.Provider == config.ProviderAssemblyAI {
		return pkgai.NewAssemblyAIClient(&cfg.Assembly, logger)
	}
	return pkgai.NewTranscriberClient(&cfg.Transcription, logger)
}

func newSummarizer(cfg *config.Config, logger *zap.Logger) pipeline.Summarizer {
	if cfg.Summarization.Provider == config.ProviderGroq {
		return pkgai.NewGroqClient(&cfg.Groq, cfg.Summarization.Timeout, logger)
	}
	return pkgai.NewSummarizerClient(&cfg.Summarization, logger)
}
