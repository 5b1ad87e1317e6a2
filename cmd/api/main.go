package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"wisespend/internal/config"
	"wisespend/internal/database"
	_ "wisespend/internal/docs" // Import swagger docs
	"wisespend/internal/handlers"
	"wisespend/internal/keyspace"
	"wisespend/internal/kv"
	"wisespend/internal/logger"
	"wisespend/internal/middleware"
	"wisespend/internal/period"
	"wisespend/internal/services"
	"wisespend/internal/validator"
)

// @title           WiseSpend API
// @version         1.0
// @description     WiseSpend keeps a household budget partitioned by calendar month, with a lifecycle for each period.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey MaintenanceKey
// @in header
// @name X-API-Key
// @description Key configured in MAINTENANCE_API_KEY.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Period store
	db := dbManager.DB()
	policy := services.Policy{
		MaxFuturePeriods:   appConfig.MaxFuturePeriods,
		MaxUnlockedPeriods: appConfig.MaxUnlockedPeriods,
		RetentionMonths:    appConfig.RetentionMonths,
		AutosaveInterval:   appConfig.AutosaveInterval,
		RolloverInterval:   appConfig.RolloverInterval,
	}
	orchestrator := services.NewOrchestrator(
		kv.NewGormMedium(db),
		keyspace.New(appConfig.StoragePrefix, appConfig.LegacyPrefix),
		services.SystemClock{},
		policy,
	)
	auditService := services.NewAuditService(db)
	unsubscribe := orchestrator.Subscribe(auditService.Record)
	defer unsubscribe()

	orchestrator.RegisterCallback("log", func(_ context.Context, id period.ID) error {
		logger.Named("navigation").Infow("current period changed", "period", id)
		return nil
	})

	if err := orchestrator.Open(ctx); err != nil {
		return fmt.Errorf("failed to open period store: %w", err)
	}
	orchestrator.Start(ctx)
	defer orchestrator.Close()

	validator.Register()

	periodHandler := handlers.NewPeriodHandler(orchestrator)
	bucketHandler := handlers.NewBucketHandler(orchestrator)
	eventHandler := handlers.NewEventHandler(auditService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.GET("/system", periodHandler.GetSystemState)
	v1.GET("/events", eventHandler.ListEvents)

	// Period routes
	periods := v1.Group("/periods")
	periods.GET("", periodHandler.ListPeriods)
	periods.POST("", periodHandler.CreatePeriod)
	periods.POST("/:id/activate", periodHandler.ActivatePeriod)
	periods.POST("/:id/unlock", periodHandler.UnlockPeriod)
	periods.POST("/:id/lock", periodHandler.LockPeriod)
	periods.POST("/:id/switch", periodHandler.SwitchPeriod)
	periods.GET("/:id/integrity", periodHandler.GetIntegrity)
	periods.GET("/:id/buckets", bucketHandler.GetBuckets)
	periods.GET("/:id/buckets/:kind", bucketHandler.GetBucket)
	periods.PUT("/:id/buckets/:kind", bucketHandler.PutBucket)

	// Current period items
	current := v1.Group("/current")
	current.GET("", periodHandler.GetCurrent)
	current.POST("/income", bucketHandler.AddIncomeItem)
	current.POST("/expenses/:kind", bucketHandler.AddExpenseItem)
	current.PATCH("/:kind/items/:itemId", bucketHandler.SetItemAmount)
	current.POST("/:kind/items/:itemId/paid", bucketHandler.MarkItemPaid)
	current.DELETE("/:kind/items/:itemId", bucketHandler.RemoveItem)

	// Maintenance routes
	maintenance := v1.Group("/")
	maintenance.Use(middleware.MaintenanceAuth(appConfig.MaintenanceAPIKey))
	maintenance.POST("/rollover/check", periodHandler.CheckRollover)
	maintenance.GET("/purge-candidates", periodHandler.GetPurgeCandidates)
	maintenance.DELETE("/periods/:id", periodHandler.PurgePeriod)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting WiseSpend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
