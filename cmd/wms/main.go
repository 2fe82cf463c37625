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
	"github.com/warebit/warebit/internal/config"
	"github.com/warebit/warebit/internal/middleware"
	"github.com/warebit/warebit/internal/shared/notify"
	"github.com/warebit/warebit/internal/shared/storage"
	"github.com/warebit/warebit/internal/wms/entity"
	"github.com/warebit/warebit/internal/wms/handler"
	"github.com/warebit/warebit/internal/wms/repository"
	"github.com/warebit/warebit/internal/wms/service"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 本地开发加载.env
	godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting warebit service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := autoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化对象存储
	store, err := storage.New(storage.Options{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		zapLogger.Warn("Object storage unavailable", zap.Error(err))
		store = nil
	}

	// 初始化webhook推送
	notifier := notify.NewClient(cfg.Webhook.URL)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, rdb, notifier)
	handlers := handler.NewHandlers(services, store)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
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

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Company{},
		&entity.Location{},
		&entity.Bin{},
		&entity.Part{},
		&entity.Supplier{},
		&entity.ContainerBlueprint{},
		&entity.BlueprintItem{},
		&entity.ContainerLoadout{},
		&entity.LoadoutLot{},
		&entity.Inventory{},
		&entity.Lot{},
		&entity.Serial{},
		&entity.TransferOrder{},
		&entity.TransferOrderItem{},
		&entity.PurchaseOrder{},
		&entity.PurchaseOrderLine{},
		&entity.Receiving{},
		&entity.ReceivingItem{},
		&entity.NumberSequence{},
	)
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1，全部走JWT认证
	v1 := r.Group("/api/v1", middleware.JWTAuth(cfg.JWT.Secret))
	{
		parts := v1.Group("/parts")
		{
			parts.GET("", h.Part.List)
			parts.POST("", h.Part.Create)
			parts.GET("/:id", h.Part.Get)
			parts.PUT("/:id", h.Part.Update)
		}

		locations := v1.Group("/locations")
		{
			locations.GET("", h.Location.List)
			locations.POST("", h.Location.Create)
			locations.GET("/:id", h.Location.Get)
			locations.PUT("/:id", h.Location.Update)
			locations.GET("/:id/bins", h.Location.ListBins)
		}

		blueprints := v1.Group("/blueprints")
		{
			blueprints.GET("", h.Blueprint.List)
			blueprints.POST("", h.Blueprint.Create)
			blueprints.GET("/:id", h.Blueprint.Get)
			blueprints.POST("/:id/items", h.Blueprint.AddItem)
			blueprints.DELETE("/:id/items/:itemId", h.Blueprint.RemoveItem)
			blueprints.GET("/:id/requirements", h.Blueprint.Requirements)
			blueprints.POST("/:id/loadouts/resolve", h.Blueprint.ResolveLoadout)
		}
		v1.GET("/loadouts/:id", h.Blueprint.GetLoadout)

		orders := v1.Group("/transfer-orders")
		{
			orders.GET("", h.TransferOrder.List)
			orders.POST("", h.TransferOrder.Create)
			orders.GET("/:id", h.TransferOrder.Get)
			orders.PATCH("/:id", h.TransferOrder.Update)
			orders.DELETE("/:id", h.TransferOrder.Delete)
			orders.GET("/:id/items", h.TransferOrder.ListItems)
			orders.POST("/:id/auto-assign", h.TransferOrder.AutoAssign)
			orders.POST("/:id/assign", h.TransferOrder.ManualAssign)
		}

		pos := v1.Group("/purchase-orders")
		{
			pos.GET("", h.PurchaseOrder.List)
			pos.POST("", h.PurchaseOrder.Create)
			pos.GET("/:id", h.PurchaseOrder.Get)
			pos.POST("/lines/:lineId/receive", h.PurchaseOrder.ReceiveLine)
		}

		receivings := v1.Group("/receivings")
		{
			receivings.GET("", h.Receiving.List)
			receivings.POST("", h.Receiving.Create)
			receivings.GET("/:id", h.Receiving.Get)
			receivings.POST("/:id/items", h.Receiving.AddItem)
			receivings.POST("/:id/complete", h.Receiving.Complete)
			receivings.POST("/:id/attachment", h.Receiving.UploadAttachment)
			receivings.GET("/:id/attachment", h.Receiving.AttachmentURL)
		}

		inventory := v1.Group("/inventory")
		{
			inventory.GET("", h.Inventory.List)
			inventory.GET("/export", h.Inventory.Export)
			inventory.GET("/:id", h.Inventory.Get)
		}

		v1.POST("/scan/decode", h.Scan.Decode)
	}
}
