package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sessionops/scheduler-api/api/swagger"
	"github.com/sessionops/scheduler-api/internal/handler"
	"github.com/sessionops/scheduler-api/internal/middleware"
	"github.com/sessionops/scheduler-api/internal/repository"
	"github.com/sessionops/scheduler-api/internal/service"
	"github.com/sessionops/scheduler-api/pkg/cache"
	"github.com/sessionops/scheduler-api/pkg/config"
	"github.com/sessionops/scheduler-api/pkg/logger"
	corsmiddleware "github.com/sessionops/scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sessionops/scheduler-api/pkg/middleware/requestid"
)

// @title Session Scheduler API
// @version 1.0.0
// @description Weekly client-session scheduling over availability windows
// @BasePath /
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, result cache disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	metricsSvc := service.NewMetricsService()
	scheduleSvc := newScheduleService(cfg, cacheRepo, metricsSvc, logr)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Auth(cfg.Auth))
	api.POST("/schedule", scheduleHandler.Run)
	api.GET("/schedule/runs/:id", scheduleHandler.GetRun)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "strategy", cfg.Scheduler.Strategy)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// newScheduleService keeps the nil-cache wiring in one place: an interface
// holding a typed nil pointer must not reach the service.
func newScheduleService(cfg *config.Config, cacheRepo *repository.CacheRepository, metrics *service.MetricsService, logr *zap.Logger) *service.ScheduleService {
	if cacheRepo == nil {
		return service.NewScheduleService(cfg.Scheduler, cfg.Cache, nil, metrics, logr)
	}
	return service.NewScheduleService(cfg.Scheduler, cfg.Cache, cacheRepo, metrics, logr)
}
