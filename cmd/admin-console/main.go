package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-admin-console/api/swagger"
	"github.com/noah-isme/campus-admin-console/internal/console"
	"github.com/noah-isme/campus-admin-console/internal/handler"
	"github.com/noah-isme/campus-admin-console/internal/realtime"
	"github.com/noah-isme/campus-admin-console/internal/repository"
	"github.com/noah-isme/campus-admin-console/internal/service"
	"github.com/noah-isme/campus-admin-console/pkg/cache"
	"github.com/noah-isme/campus-admin-console/pkg/config"
	"github.com/noah-isme/campus-admin-console/pkg/database"
	"github.com/noah-isme/campus-admin-console/pkg/logger"
	"github.com/noah-isme/campus-admin-console/pkg/storage"
)

// @title Campus Admin Console API
// @version 1.0.0
// @description Single-administrator management console for the campus website data.
// @BasePath /api/v1
// @schemes http
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("admin console stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.Redis.Enabled || cfg.Realtime.Driver == config.RealtimeRedis {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
	}

	hub := realtime.NewHub(realtime.HubConfig{
		Workers:    cfg.Realtime.Workers,
		JobTimeout: cfg.Realtime.RefreshTimeout,
		Observer:   metrics,
		Logger:     logr.Named("realtime"),
	})
	hub.Start(ctx)
	defer hub.Stop()

	notifier, feed, err := startFeed(ctx, cfg, hub, redisClient, logr)
	if err != nil {
		return err
	}

	tables := repository.NewTables(db, notifier)
	users := repository.NewUserRepository(db)
	dashboard := repository.NewDashboardRepository(db)

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled && redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	objects, mediaDir, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	auth := service.NewAuthService(users, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	if err := auth.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		return fmt.Errorf("ensure admin account: %w", err)
	}

	adminConsole, err := console.New(console.Options{
		Auth:       auth,
		AdminEmail: cfg.Admin.Email,
		Stores: console.Stores{
			Students:      tables.Students,
			Instructors:   tables.Instructors,
			Staff:         tables.Staff,
			Courses:       tables.Courses,
			Classes:       tables.Classes,
			Gallery:       tables.Gallery,
			Announcements: tables.Announcements,
			KidsCamp:      tables.KidsCamp,
			Settings:      tables.Settings,
			Functions:     tables.Functions,
			Participants:  tables.Participants,
			SocialService: tables.SocialService,
			ServiceMedia:  tables.ServiceMedia,
			Security:      repository.NewSecurityRepository(db, notifier),
			Stats:         dashboard,
			Prober:        dashboard,
		},
		Objects:        objects,
		UploadObserver: metrics,
		Feed:           feed,
		Cache:          cacheSvc,
		CacheTTL:       cfg.Dashboard.CacheTTL,
		Logger:         logr.Named("console"),
	})
	if err != nil {
		return err
	}
	if err := adminConsole.Start(ctx); err != nil {
		return fmt.Errorf("start console: %w", err)
	}
	defer adminConsole.Close()

	router := handler.NewRouter(handler.RouterConfig{
		Console:        adminConsole,
		Tokens:         auth,
		Events:         hub,
		Metrics:        metrics,
		DB:             db,
		Logger:         logr,
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MediaDir:       mediaDir,
		Docs:           cfg.Env != config.EnvProduction,
	})

	// WriteTimeout stays unset: change streams are long lived.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("realtime", cfg.Realtime.Driver),
			zap.String("storage", cfg.Storage.Driver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logr.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logr.Info("server stopped gracefully")
	}
	return nil
}

// startFeed wires the configured change source into the hub and returns the
// notifier the stores report writes to together with the feed the console
// subscribes to.
func startFeed(ctx context.Context, cfg *config.Config, hub *realtime.Hub, client *redis.Client, logr *zap.Logger) (repository.Notifier, console.ChangeFeed, error) {
	switch cfg.Realtime.Driver {
	case config.RealtimePostgres:
		listener, err := realtime.NewPostgresListener(
			database.DSN(cfg.Database),
			cfg.Realtime.Channel,
			cfg.Realtime.MinReconnect,
			cfg.Realtime.MaxReconnect,
			hub,
			logr.Named("pq-listener"),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("listen for table changes: %w", err)
		}
		go func() {
			defer listener.Close() //nolint:errcheck
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logr.Error("postgres change feed stopped", zap.Error(err))
			}
		}()
		// Triggers publish every write, so the stores stay silent.
		return nil, hub, nil
	case config.RealtimeRedis:
		relay := realtime.NewRedisRelay(client, cfg.Realtime.Channel, hub, logr.Named("redis-relay"))
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logr.Error("redis change feed stopped", zap.Error(err))
			}
		}()
		return relay, hub, nil
	case config.RealtimeMemory:
		return hub, hub, nil
	default:
		return nil, nil, fmt.Errorf("unknown realtime driver %q", cfg.Realtime.Driver)
	}
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStore, string, error) {
	switch cfg.Driver {
	case config.StorageS3:
		s3, err := storage.NewS3Storage(ctx, cfg.S3, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", fmt.Errorf("open s3 storage: %w", err)
		}
		return s3, "", nil
	case config.StorageLocal, "":
		local, err := storage.NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", fmt.Errorf("open local storage: %w", err)
		}
		return local, local.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
