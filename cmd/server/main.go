package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	blendingapp "github.com/oilmill/backend/internal/application/blending"
	byproductapp "github.com/oilmill/backend/internal/application/byproduct"
	inventoryapp "github.com/oilmill/backend/internal/application/inventory"
	masterdataapp "github.com/oilmill/backend/internal/application/masterdata"
	productionapp "github.com/oilmill/backend/internal/application/production"
	purchaseapp "github.com/oilmill/backend/internal/application/purchase"
	reportapp "github.com/oilmill/backend/internal/application/report"
	writeoffapp "github.com/oilmill/backend/internal/application/writeoff"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/internal/infrastructure/auth"
	"github.com/oilmill/backend/internal/infrastructure/cache"
	"github.com/oilmill/backend/internal/infrastructure/config"
	"github.com/oilmill/backend/internal/infrastructure/event"
	"github.com/oilmill/backend/internal/infrastructure/export"
	"github.com/oilmill/backend/internal/infrastructure/lock"
	"github.com/oilmill/backend/internal/infrastructure/logger"
	"github.com/oilmill/backend/internal/infrastructure/persistence"
	strategyimpl "github.com/oilmill/backend/internal/infrastructure/strategy"
	"github.com/oilmill/backend/internal/infrastructure/telemetry"
	"github.com/oilmill/backend/internal/interfaces/http/handler"
	"github.com/oilmill/backend/internal/interfaces/http/middleware"
	"github.com/oilmill/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	issueToken := flag.String("issue-token", "", "print a bearer token for the named operator and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if *issueToken != "" {
		if err := printToken(cfg, *issueToken); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	// Initialize logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting oil mill backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("unit_code", cfg.Production.UnitCode),
	)

	// Tracing must be up before the database so otelgorm picks up the provider
	tp, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(cfg.Database, persistence.Options{
		Logger:    log,
		LogLevel:  cfg.Log.Level,
		Telemetry: cfg.Telemetry,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	reports, err := persistence.NewSqlxReportRepositoryFromGorm(db.DB)
	if err != nil {
		log.Fatal("Failed to open report read model", zap.Error(err))
	}

	// Redis is optional; without it idempotency keys stay in process and the
	// sale lock only guards this instance
	var (
		redisClient *redis.Client
		locker      shared.Locker = lock.NewLocalLocker()
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		locker = lock.NewRedisLocker(redisClient, lock.WithLogger(log))
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	storeOpts := []cache.IdempotencyStoreFactoryOption{cache.WithLogger(log)}
	if redisClient != nil {
		storeOpts = append(storeOpts, cache.WithRedisClient(redisClient))
	}
	idempotencyStore := cache.NewIdempotencyStoreFactory(storeOpts...).CreateStore()
	defer func() {
		_ = idempotencyStore.Close()
	}()

	registry, err := strategyimpl.NewRegistryWithDefaults()
	if err != nil {
		log.Fatal("Failed to register strategies", zap.Error(err))
	}
	costStrategy, err := registry.CostStrategy("")
	if err != nil {
		log.Fatal("No cost strategy", zap.Error(err))
	}
	allocationStrategy, err := registry.AllocationStrategy("")
	if err != nil {
		log.Fatal("No allocation strategy", zap.Error(err))
	}

	// Initialize application services
	scope := persistence.NewGormTransactionScope(db.DB)
	repos := persistence.NewGormRepositories(db.DB)

	masterDataService := masterdataapp.NewMasterDataService(scope, repos)
	inventoryService := inventoryapp.NewInventoryService(scope, repos, costStrategy)
	purchaseService := purchaseapp.NewPurchaseService(scope, repos, reports, costStrategy)
	productionService := productionapp.NewProductionService(scope, repos, reports, costStrategy, productionapp.Settings{
		UnitCode:          cfg.Production.UnitCode,
		DefaultCakeRate:   cfg.Production.DefaultCakeRate,
		DefaultSludgeRate: cfg.Production.DefaultSludgeRate,
	})
	blendingService := blendingapp.NewBlendingService(scope, repos, reports, costStrategy, cfg.Production.UnitCode)
	byProductService := byproductapp.NewByProductService(scope, repos, reports, allocationStrategy,
		byproductapp.WithLocker(locker, cfg.Production.SaleLockTTL),
		byproductapp.WithLogger(log),
	)
	writeoffService := writeoffapp.NewWriteoffService(scope, repos, reports, costStrategy)
	reportService := reportapp.NewReportService(repos, reports, export.NewXLSXExporter())

	// Committed changes are published after the transaction; the audit
	// handler writes them to the log
	eventBus := event.NewInMemoryEventBus(log)
	auditHandler := event.NewAuditLogHandler()
	eventBus.Subscribe(auditHandler)
	log.Info("Event handlers registered", zap.Strings("audit_events", auditHandler.EventTypes()))

	inventoryService.SetEventPublisher(eventBus)
	purchaseService.SetEventPublisher(eventBus)
	productionService.SetEventPublisher(eventBus)
	blendingService.SetEventPublisher(eventBus)
	byProductService.SetEventPublisher(eventBus)
	writeoffService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	reportHandler := handler.NewReportHandler(reportService)
	reportHandler.SetValidationDays(cfg.Production.CostValidationDays)

	healthChecks := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, cfg.Production.UnitCode, healthChecks)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	var jwtService *auth.JWTService
	if cfg.JWT.Enabled {
		jwtService = auth.NewJWTService(cfg.JWT)
	}

	// Middleware order matters:
	// recovery first so panics in later middleware still get the envelope,
	// request id before anything that logs or traces,
	// operator before span attributes so the span carries it
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		logger.GinMiddleware(log),
		middleware.CORSWithConfig(middleware.DefaultCORSConfig(cfg.HTTP.CORSAllowOrigins)),
		middleware.Secure(cfg.IsProduction()),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Operator(middleware.OperatorConfig{
			JWTService: jwtService,
			SkipPaths:  []string{"/health", "/api/v1/system/health", "/api/v1/system/info"},
			Logger:     log,
		}),
		middleware.SpanAttributes(),
		middleware.SpanErrorMarker(),
	)
	engine.NoRoute(handler.NoRoute)
	engine.GET("/health", systemHandler.Health)

	var apiMiddleware []gin.HandlerFunc
	if cfg.Idempotency.Enabled {
		apiMiddleware = append(apiMiddleware, middleware.Idempotency(idempotencyStore, shared.IdempotencyConfig{
			Enabled:     true,
			TTL:         cfg.Idempotency.TTL,
			InFlightTTL: cfg.Idempotency.InFlightTTL,
		}))
	}

	r := router.NewRouter(engine, router.WithMiddleware(apiMiddleware...))
	r.Register(
		systemHandler,
		handler.NewMasterDataHandler(masterDataService),
		handler.NewInventoryHandler(inventoryService),
		handler.NewPurchaseHandler(purchaseService),
		handler.NewProductionHandler(productionService),
		handler.NewBlendingHandler(blendingService),
		handler.NewByProductHandler(byProductService),
		handler.NewWriteoffHandler(writeoffService),
		reportHandler,
	)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// printToken writes a signed bearer token for operator to stdout
func printToken(cfg *config.Config, operator string) error {
	if !cfg.JWT.Enabled {
		return errors.New("jwt is disabled; set jwt.enabled and jwt.secret first")
	}
	token, err := auth.NewJWTService(cfg.JWT).GenerateToken(operator)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Println(token.AccessToken)
	fmt.Fprintf(os.Stderr, "expires at %s\n", token.ExpiresAt.Format(time.RFC3339))
	return nil
}
