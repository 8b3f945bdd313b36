package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mantispro/satinalma/internal/config"
	"github.com/mantispro/satinalma/internal/middleware"
	"github.com/mantispro/satinalma/internal/procure/entity"
	"github.com/mantispro/satinalma/internal/procure/handler"
	"github.com/mantispro/satinalma/internal/procure/repository"
	"github.com/mantispro/satinalma/internal/procure/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting satinalma service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.DocumentSequence{},
		&entity.Company{},
		&entity.Request{},
		&entity.RequestItem{},
		&entity.RFQ{},
		&entity.RFQItem{},
		&entity.Quote{},
		&entity.QuoteItem{},
		&entity.PurchaseOrder{},
		&entity.PurchaseOrderItem{},
		&entity.Shipment{},
		&entity.ShipmentItem{},
		&entity.Invoice{},
		&entity.Payment{},
		&entity.ProformaInvoice{},
		&entity.ProformaInvoiceItem{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	cache := initRedis(cfg.Redis, zapLogger)

	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, cache, zapLogger)
	handlers := handler.NewHandlers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

// initRedis connects the cache, falling back to nil (cache disabled, log
// notifier) when the server is unreachable.
func initRedis(cfg config.RedisConfig, zapLogger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis unavailable, caching and event publishing disabled", zap.Error(err))
		return nil
	}
	return client
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		requests := authorized.Group("/requests")
		{
			requests.GET("", h.Request.List)
			requests.POST("", h.Request.Create)
			requests.GET("/:id", h.Request.Get)
			requests.POST("/:id/approve", h.Request.Approve)
			requests.POST("/:id/reject", h.Request.Reject)
			requests.POST("/:id/rfq", h.Workflow.CreateRFQ)
			requests.GET("/:id/workflow", h.Workflow.Status)
		}

		rfqs := authorized.Group("/rfqs")
		{
			rfqs.GET("", h.RFQ.List)
			rfqs.GET("/:id", h.RFQ.Get)
			rfqs.POST("/:id/send", h.RFQ.Send)
			rfqs.POST("/:id/quotes", h.Quote.Create)
		}

		quotes := authorized.Group("/quotes")
		{
			quotes.GET("", h.Quote.List)
			quotes.GET("/:id", h.Quote.Get)
			quotes.POST("/:id/evaluate", h.Quote.Evaluate)
			quotes.POST("/:id/select", h.Quote.Select)
			quotes.POST("/:id/purchase-order", h.Workflow.CreatePurchaseOrder)
			quotes.POST("/:id/proforma", h.Proforma.Create)
		}

		orders := authorized.Group("/purchase-orders")
		{
			orders.GET("", h.Order.List)
			orders.GET("/:id", h.Order.Get)
			orders.POST("/:id/send", h.Order.Send)
			orders.POST("/:id/confirm", h.Order.Confirm)
			orders.POST("/:id/production", h.Order.BeginProduction)
		}

		shipments := authorized.Group("/shipments")
		{
			shipments.GET("", h.Shipment.List)
			shipments.GET("/:id", h.Shipment.Get)
			shipments.POST("/:id/ship", h.Shipment.Ship)
			shipments.POST("/:id/transit", h.Shipment.MarkInTransit)
			shipments.POST("/:id/deliver", h.Shipment.Deliver)
			shipments.POST("/:id/invoice", h.Workflow.CreateInvoice)
		}

		invoices := authorized.Group("/invoices")
		{
			invoices.POST("/:id/payments", h.Finance.Pay)
			invoices.GET("/export", h.Finance.Export)
		}

		proformas := authorized.Group("/proformas")
		{
			proformas.GET("", h.Proforma.List)
			proformas.GET("/:id", h.Proforma.Get)
			proformas.POST("/:id/send", h.Proforma.Send)
			proformas.POST("/:id/accept", h.Proforma.Accept)
			proformas.POST("/:id/reject", h.Proforma.Reject)
		}

		authorized.GET("/tracking/:id", h.Tracking.Lookup)
		authorized.GET("/tracking/:id/history", h.Tracking.History)
		authorized.GET("/dashboard/summary", h.Dashboard.Summary)

		companies := authorized.Group("/companies")
		{
			companies.GET("", h.Company.List)
			companies.POST("", h.Company.Create)
			companies.GET("/:id", h.Company.Get)
			companies.PUT("/:id", h.Company.Update)
		}
	}
}
