package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/storefront-availability-api/api/swagger"
	"github.com/noah-isme/storefront-availability-api/internal/handler"
	"github.com/noah-isme/storefront-availability-api/internal/middleware"
	"github.com/noah-isme/storefront-availability-api/internal/models"
	"github.com/noah-isme/storefront-availability-api/internal/repository"
	"github.com/noah-isme/storefront-availability-api/internal/service"
	"github.com/noah-isme/storefront-availability-api/pkg/cache"
	"github.com/noah-isme/storefront-availability-api/pkg/config"
	"github.com/noah-isme/storefront-availability-api/pkg/database"
	"github.com/noah-isme/storefront-availability-api/pkg/jobs"
	"github.com/noah-isme/storefront-availability-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/storefront-availability-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/storefront-availability-api/pkg/middleware/requestid"
)

// @title Storefront Availability API
// @version 1.0.0
// @description Store opening hours and product availability across timezones.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	// Redis is optional: without it every request reads the schedule from Postgres.
	var cacheRepo *repository.CacheRepository
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, snapshot cache disabled", zap.Error(err))
		cacheRepo = repository.NewCacheRepository(nil, logr)
	} else {
		cacheRepo = repository.NewCacheRepository(redis.UniversalClient(redisClient), logr)
	}
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Availability.CacheTTL, logr, cfg.Availability.CacheEnabled && redisClient != nil)

	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)

	availabilitySvc := service.NewAvailabilityService(storeRepo, productRepo, cacheSvc, metricsSvc, validator.New(), logr, service.AvailabilityConfig{
		DefaultTimezone: cfg.Availability.DefaultTimezone,
		SnapshotTTL:     cfg.Availability.CacheTTL,
	})

	warmer := jobs.NewQueue("snapshot-warmer", availabilitySvc.Warm, jobs.QueueConfig{
		Workers:    cfg.Availability.WarmerWorkers,
		BufferSize: cfg.Availability.WarmerBuffer,
		MaxRetries: cfg.Availability.WarmerRetries,
		Logger:     logr,
	})
	warmer.Start(ctx)
	defer warmer.Stop()
	availabilitySvc.SetWarmer(warmer)

	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	components := map[string]handler.Pinger{"database": storeRepo}
	if redisClient != nil {
		components["redis"] = cacheRepo
	}

	r := newRouter(cfg, logr, routerDeps{
		availability: handler.NewAvailabilityHandler(availabilitySvc, logr),
		metrics:      handler.NewMetricsHandler(metricsSvc, components),
		metricsSvc:   metricsSvc,
		tokens:       tokenSvc,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type routerDeps struct {
	availability *handler.AvailabilityHandler
	metrics      *handler.MetricsHandler
	metricsSvc   *service.MetricsService
	tokens       middleware.TokenValidator
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metricsSvc))

	r.GET("/health", deps.metrics.Health)
	r.GET("/ready", deps.metrics.Ready)
	r.GET("/metrics", deps.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta(), middleware.ViewerTimezone())
	{
		api.GET("/stores/:id/availability", deps.availability.StoreAvailability)
		api.GET("/products/:id/availability", deps.availability.ProductAvailability)
		api.POST("/availability/convert", deps.availability.ConvertHours)
		if cfg.Exports.Enabled {
			api.GET("/stores/:id/closures", deps.availability.StoreClosures)
		}
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(deps.tokens), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/metrics/summary", deps.metrics.Snapshot)
		admin.DELETE("/availability/cache/:kind/:id", middleware.Audit(logr, "cache.invalidate"), deps.availability.InvalidateCache)
	}

	return r
}
