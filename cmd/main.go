package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "photomap-service/docs"
	"photomap-service/internal/auth"
	"photomap-service/internal/cache"
	"photomap-service/internal/config"
	"photomap-service/internal/handlers"
	"photomap-service/internal/log"
	"photomap-service/internal/metrics"
	"photomap-service/internal/models"
	"photomap-service/internal/repository"
	"photomap-service/internal/services"
	"photomap-service/internal/storage"
)

// @title Photo Map API
// @version 1.0
// @description Upload geotagged photos, browse them on a map and discuss them.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := InitConfig()
	if err := log.Initialize(cfg.LogLevel, cfg.Debug); err != nil {
		panic(fmt.Errorf("fail to initialize logger with error: %s", err.Error()))
	}
	defer log.Sync()

	ctx := context.Background()
	db := ConnectDatabase(cfg)
	MigrateDatabase(db)
	minioClient := InitMinIOClient(ctx, cfg)
	layer, closeCache := InitCache(ctx, cfg)
	defer closeCache()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	store := storage.NewMinioObjectStore(minioClient, cfg.MinioBucket)
	photoRepo := repository.NewPhotoRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	resolver := services.NewURLResolver(store, layer, m)
	commentService := services.NewCommentService(commentRepo, layer, cfg.CommentCacheTTL)
	uploadService := services.NewUploadService(photoRepo, store, resolver, m, services.UploadOptions{
		MaxBytes: cfg.MaxUploadBytes,
		URLTTL:   cfg.OwnerURLTTL,
	})
	feedService := services.NewFeedService(photoRepo, commentRepo, resolver, m, services.FeedConfig{
		PublicURLTTL: cfg.PublicURLTTL,
		OwnerURLTTL:  cfg.OwnerURLTTL,
		PublicLimit:  cfg.FeedLimit,
		Concurrency:  cfg.FeedConcurrency,
		Fallback:     cfg.FeedFallback,
	})
	photoService := services.NewPhotoService(photoRepo, store, resolver, commentService, cfg.PublicURLTTL, cfg.OwnerURLTTL)

	app := fiber.New(fiber.Config{
		// multipart framing on top of the largest accepted image
		BodyLimit: int(cfg.MaxUploadBytes) + 1024*1024,
	})
	app.Use(m.Middleware())

	//Register Prometheus metrics endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := app.Group("/api")
	routes := &handlers.Routes{
		Photos:   handlers.NewPhotoHandler(uploadService, feedService, photoService),
		Comments: handlers.NewCommentHandler(commentService),
		Cache:    handlers.NewCacheHandler(layer),
		Auth:     auth.NewVerifier(cfg.JWTSecret),
	}
	routes.Register(api)
	api.Get("/swagger/*", swagger.HandlerDefault)

	for _, r := range app.GetRoutes(true) {
		log.Debug("registered route", zap.String("method", r.Method), zap.String("path", r.Path))
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("server listening", zap.String("port", cfg.AppPort))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func InitConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func ConnectDatabase(cfg *config.Config) *gorm.DB {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal("database connection failed", log.SourcePG, zap.Error(err))
	}
	return db
}

func MigrateDatabase(db *gorm.DB) {
	if err := db.AutoMigrate(&models.PhotoRecord{}, &models.CommentRecord{}); err != nil {
		log.Fatal("database migration failed", log.SourcePG, zap.Error(err))
	}
}

func InitMinIOClient(ctx context.Context, cfg *config.Config) *minio.Client {
	minioClient, err := storage.NewMinioClient(ctx, cfg)
	if err != nil {
		log.Fatal("MinIO client initialization failed", log.SourceMinio, zap.Error(err))
	}
	return minioClient
}

// InitCache connects to Redis when it is configured and falls back to an
// in-process cache otherwise.
func InitCache(ctx context.Context, cfg *config.Config) (cache.Layer, func()) {
	if cfg.RedisEnabled() {
		client, err := storage.NewRedisClient(ctx, cfg.RedisHost, cfg.RedisPort)
		if err == nil {
			log.Info("using redis cache", log.SourceRedis, zap.String("host", cfg.RedisHost))
			return cache.NewRedisCache(client, "photomap:"), func() { _ = client.Close() }
		}
		log.Warn("redis unavailable, using in-memory cache", log.SourceRedis, zap.Error(err))
	}
	mc := cache.NewMemoryCache(10000, time.Minute)
	return mc, mc.Close
}
