package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	pnlapp "github.com/tpm/backend/internal/application/pnl"
	"github.com/tpm/backend/internal/domain/pnl"
	"github.com/tpm/backend/internal/infrastructure/config"
	"github.com/tpm/backend/internal/infrastructure/lock"
	"github.com/tpm/backend/internal/infrastructure/logger"
	"github.com/tpm/backend/internal/infrastructure/persistence"
	"github.com/tpm/backend/internal/infrastructure/telemetry"
	"github.com/tpm/backend/internal/interfaces/http/handler"
	"github.com/tpm/backend/internal/interfaces/http/middleware"
	"github.com/tpm/backend/internal/interfaces/http/router"
)

//	@title			TPM Backend API
//	@version		1.0
//	@description	Trade promotion management P&L engine - aggregates trade spend facts into profit and loss reports

//	@contact.name	API Support
//	@contact.email	support@tpm.example.com

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting TPM Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracer provider (no-op when telemetry is disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register GORM tracing callbacks (spans + slow query logging)
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DefaultDBTracingConfig(), log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	reportRepo := persistence.NewGormPnLReportRepository(db.DB)
	factStores := persistence.NewGormFactStores(db.DB)

	// Financial model assumptions come from config, not from data
	assumptions, err := loadAssumptions(cfg)
	if err != nil {
		log.Fatal("Invalid P&L assumptions", zap.Error(err))
	}

	// Initialize application services
	reportService := pnlapp.NewReportService(reportRepo, factStores, assumptions, log)
	reportService.SetDefaultCurrency(cfg.PNL.DefaultCurrency)
	liveViewService := pnlapp.NewLiveViewService(factStores, assumptions)

	// Redis-backed generation lease (optional; single-instance deployments
	// can run without it)
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}

		reportService.SetLocker(lock.NewRedisLeaseLocker(redisClient, cfg.PNL.GenerationLeaseTTL))
		log.Info("Generation lease enabled",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Duration("ttl", cfg.PNL.GenerationLeaseTTL),
		)
	}

	// Initialize HTTP handlers
	reportHandler := handler.NewReportHandler(reportService)
	liveViewHandler := handler.NewLiveViewHandler(liveViewService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. Tracing - OpenTelemetry spans (if enabled)
	// 8. Tenant - Resolve tenant from X-Tenant-ID
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}

	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.Logger = log
	engine.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	if cfg.Telemetry.Enabled {
		// Re-inject identity attributes now that the tenant is resolved
		engine.Use(middleware.TracingAttributeInjector())
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(reportHandler).
		Register(liveViewHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// loadAssumptions parses the configured financial model constants. The
// defaults match pnl.DefaultAssumptions but operators may override them
// per deployment.
func loadAssumptions(cfg *config.Config) (pnl.Assumptions, error) {
	multiplier, err := decimal.NewFromString(cfg.PNL.GrossSalesMultiplier)
	if err != nil {
		return pnl.Assumptions{}, err
	}
	cogsRatio, err := decimal.NewFromString(cfg.PNL.COGSRatio)
	if err != nil {
		return pnl.Assumptions{}, err
	}
	return pnl.Assumptions{
		GrossSalesMultiplier: multiplier,
		COGSRatio:            cogsRatio,
	}, nil
}
