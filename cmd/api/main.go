package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/adapter/handler"
	"github.com/johnquangdev/meeting-insights/internal/adapter/repository"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/meeting-insights/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-insights/internal/usecase/actionplan"
	"github.com/johnquangdev/meeting-insights/internal/usecase/insight"
	"github.com/johnquangdev/meeting-insights/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-insights/internal/usecase/transcription"
	pkgai "github.com/johnquangdev/meeting-insights/pkg/ai"
	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/jwt"
	pkglogger "github.com/johnquangdev/meeting-insights/pkg/logger"
	pkgvalidator "github.com/johnquangdev/meeting-insights/pkg/validator"
)

// @title           Meeting Insights API
// @version         1.0
// @description     Turns recorded mentoring meetings into transcripts, insights and a tracked action plan.

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

	logger, err := pkglogger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, httpmw.UserIDHeader, "Set-Cookie", "Cookie"},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize Database
	log.Printf("📦 Connecting to database (%s)...", cfg.Database.Driver)
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate || cfg.Database.Driver == "sqlite" {
		if cfg.Server.Environment == "production" && cfg.Database.Driver != "sqlite" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running GORM AutoMigrate (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping GORM AutoMigrate; use cmd/migrate for schema migrations")
	}

	// Initialize progress store
	var progress repositories.ProgressStore
	var subscriber handler.ProgressSubscriber
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		store := cache.NewRedisProgressStore(redisClient, cfg.Redis.ProgressTTL, logger)
		progress, subscriber = store, store
	} else {
		log.Println("⚠️  Redis disabled, progress is kept in memory")
		store := cache.NewMemoryProgressStore(cfg.Redis.ProgressTTL)
		defer store.Close()
		progress, subscriber = store, store
	}

	// Initialize media storage
	log.Printf("🗄️  Initializing %s media storage...", cfg.Storage.Type)
	media, err := storage.New(ctx, &cfg.Storage, logger)
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)
	actionRepo := repository.NewActionRepository(db)

	// Initialize AI clients
	log.Println("🤖 Initializing AI components...")
	var backend transcription.Backend
	if cfg.Transcription.APIKey != "" {
		backend = pkgai.NewAssemblyAIClient(&cfg.Transcription)
		log.Println("✅ AssemblyAI transcription enabled")
	} else {
		log.Println("⚠️  ASSEMBLYAI_API_KEY not set, transcripts will use mock data")
	}

	llm, err := pkgai.NewCompleter(ctx, &cfg.LLM, logger)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	if llm != nil {
		log.Printf("✅ LLM provider: %s", llm.Provider())
	} else {
		log.Println("⚠️  LLM_API_KEY not set, insights and plans will use mock data")
	}

	prober := transcription.NewFFProbe(cfg.Transcription.FFProbePath, logger)
	transcriber := transcription.NewTranscriber(backend, media, prober, &cfg.Transcription, logger)
	extractor := insight.NewExtractor(llm, &cfg.LLM, logger)
	planner := actionplan.NewGenerator(llm, &cfg.LLM, logger)

	// Initialize pipeline
	log.Println("🛠️  Initializing pipeline...")
	orch := pipeline.NewOrchestrator(meetingRepo, actionRepo, progress, transcriber, extractor, planner, logger).
		WithMockFallback(cfg.Transcription.FallbackToMock)

	dispatcher := pipeline.NewDispatcher(orch, &cfg.Pipeline, logger)
	if err := dispatcher.Start(ctx); err != nil {
		log.Fatalf("Failed to start pipeline workers: %v", err)
	}

	if cfg.Pipeline.SweeperEnabled {
		sweeper := pipeline.NewSweeper(meetingRepo, progress, &cfg.Pipeline, logger)
		if n, err := sweeper.SweepOnce(ctx); err != nil {
			logger.Error("❌ Initial stale meeting sweep failed", zap.Error(err))
		} else if n > 0 {
			logger.Warn("🧹 Failed meetings left in processing by a previous run", zap.Int("count", n))
		}
		go sweeper.Run(ctx)
	}

	// Initialize auth
	var authMW echo.MiddlewareFunc
	if cfg.JWT.Enabled {
		log.Println("🔑 Initializing JWT manager...")
		authMW = httpmw.EchoAuth(jwt.NewManager(&cfg.JWT))
	} else {
		log.Println("⚠️  JWT disabled, callers are identified by the X-User-ID header")
		authMW = httpmw.EchoAuth(nil)
	}

	// Initialize handlers
	log.Println("🚪 Initializing handlers...")
	meetingHandler := handler.NewMeeting(orch, logger,
		handler.WithQueue(dispatcher),
		handler.WithMediaStore(media, cfg.Storage.MaxUploadMB),
		handler.WithProgressSubscriber(subscriber),
	)
	actionHandler := handler.NewAction(orch, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, meetingHandler, actionHandler, meetingRepo, authMW)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)
		log.Printf("📚 Swagger UI: http://%s/swagger/index.html", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	// In-flight runs finish; meetings still queued are failed
	if err := dispatcher.Stop(); err != nil {
		logger.Warn("⚠️ Pipeline workers already stopped", zap.Error(err))
	}
	stop()

	log.Println("✅ Server stopped gracefully")
}
