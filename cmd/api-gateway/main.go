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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/painel-admin-api/api/swagger"
	"github.com/noah-isme/painel-admin-api/internal/handler"
	internalmiddleware "github.com/noah-isme/painel-admin-api/internal/middleware"
	"github.com/noah-isme/painel-admin-api/internal/models"
	"github.com/noah-isme/painel-admin-api/internal/repository"
	"github.com/noah-isme/painel-admin-api/internal/service"
	"github.com/noah-isme/painel-admin-api/internal/upstream"
	"github.com/noah-isme/painel-admin-api/pkg/cache"
	"github.com/noah-isme/painel-admin-api/pkg/config"
	"github.com/noah-isme/painel-admin-api/pkg/kvstore"
	"github.com/noah-isme/painel-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/painel-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/painel-admin-api/pkg/middleware/requestid"
)

// @title Painel Admin API
// @version 1.0.0
// @description Dashboard aggregation and grades ledger for the platform admin panel
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx := context.Background()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	store, closeStore, err := repository.OpenKVStore(ctx, cfg)
	if err != nil {
		logr.Warn("grades store unavailable, ledger runs without persistence",
			zap.String("backend", cfg.Notas.Store), zap.Error(err))
		store = kvstore.Unavailable{}
	}
	defer closeStore()

	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	upstreamClient := upstream.NewClient(cfg.Upstream, metricsSvc, logr)
	overviewSvc := service.NewOverviewService(service.OverviewServiceParams{
		Upstream: upstreamClient,
		Cache:    cacheSvc,
		Logger:   logr,
		Config: service.OverviewServiceConfig{
			CacheTTL:    cfg.Dashboard.CacheTTL,
			Development: cfg.IsDevelopment(),
		},
	})
	notaSvc := service.NewNotaService(service.NotaServiceParams{
		Store:     store,
		Validator: validator.New(),
		Metrics:   metricsSvc,
		Logger:    logr,
		Config:    service.NotaServiceConfig{SeedEnabled: cfg.Notas.SeedEnabled},
	})
	exportSvc := service.NewExportService(notaSvc, nil, nil, logr)

	overviewHandler := handler.NewOverviewHandler(overviewSvc)
	notaHandler := handler.NewNotaHandler(notaSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readinessChecks(redisClient, store)...)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(corsmiddleware.Options{AllowedOrigins: cfg.CORS.AllowedOrigins, MaxAge: cfg.CORS.MaxAge}))
	if metricsSvc != nil {
		r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))
	}
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, internalmiddleware.JWT(tokenSvc))

	if cfg.Dashboard.Enabled {
		dashboard := api.Group("/dashboard/plataforma")
		dashboard.GET("", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleModerador), overviewHandler.Plataforma)
		dashboard.GET("/pedagogico", internalmiddleware.RequireRoles(models.RoleAdmin, models.RolePedagogico), overviewHandler.Pedagogico)
	}

	notas := api.Group("/notas/cursos/:cursoId/turmas/:turmaId",
		internalmiddleware.RequireRoles(models.RoleAdmin, models.RolePedagogico, models.RoleInstrutor))
	notas.GET("", notaHandler.ListTurma)
	notas.GET("/export", notaHandler.Export)
	notas.POST("/seed", notaHandler.Seed)
	notas.GET("/alunos/:alunoId", notaHandler.Get)
	notas.POST("/alunos/:alunoId", notaHandler.AddManual)
	notas.DELETE("/alunos/:alunoId/manual", notaHandler.UndoLastManual)
	notas.GET("/alunos/:alunoId/historico", notaHandler.History)
	notas.GET("/alunos/:alunoId/lancamentos", notaHandler.ManualEntries)

	api.GET("/metrics/snapshot", internalmiddleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("notas_store", cfg.Notas.Store),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func readinessChecks(redisClient *redis.Client, store kvstore.Store) []handler.ReadinessCheck {
	checks := []handler.ReadinessCheck{{
		Name: "notas_store",
		Check: func(ctx context.Context) error {
			if _, err := store.Get(ctx, service.NotasNamespace); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
				return err
			}
			return nil
		},
	}}
	if redisClient != nil {
		checks = append(checks, handler.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	return checks
}
