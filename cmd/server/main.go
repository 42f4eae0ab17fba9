package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/appstate"
	"github.com/anonto42/socialshop/backend/internal/jobs"
	"github.com/anonto42/socialshop/backend/internal/push"
	"github.com/anonto42/socialshop/backend/internal/realtime"
	"github.com/anonto42/socialshop/backend/internal/router"
	"github.com/anonto42/socialshop/backend/internal/storage"
	"github.com/anonto42/socialshop/backend/pkg/config"
	"github.com/anonto42/socialshop/backend/pkg/firebase"
	"github.com/anonto42/socialshop/backend/pkg/logger"
	"github.com/anonto42/socialshop/backend/validators"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.App.Env,
		}); err != nil {
			zlog.Warn("Sentry disabled", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	// Firebase is optional: without it there is no Firebase login, FCM or GCS.
	var fb *firebase.App
	if app, err := firebase.InitFirebase(ctx, cfg.Firebase.CredentialsPath, cfg.Firebase.StorageBucket, zlog); err != nil {
		zlog.Warn("Firebase disabled", zap.Error(err))
	} else {
		fb = app
	}

	hub := realtime.NewHub(logger.Component(zlog, "hub"))
	var publisher realtime.Publisher = hub
	var store appstate.Store = appstate.NewMemoryStore()
	if db.Redis != nil {
		bridge := realtime.NewRedisBridge(db.Redis, hub, logger.Component(zlog, "redis-bridge"))
		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zlog.Error("realtime bridge stopped", zap.Error(err))
			}
		}()
		publisher = bridge
		store = appstate.NewRedisStore(db.Redis)
	}

	uploader, err := newUploader(cfg, fb, zlog)
	if err != nil {
		return err
	}

	var sender push.Sender = push.NoopSender{Log: logger.Component(zlog, "push")}
	var authClient *auth.Client
	if fb != nil {
		sender = push.NewFCMSender(fb.MessagingClient, logger.Component(zlog, "push"))
		authClient = fb.AuthClient
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = router.ErrorHandler(zlog)

	// Setup global middleware
	config.SetupMiddleware(e, zlog)
	if local, ok := uploader.(*storage.LocalUploader); ok {
		e.Static(cfg.Storage.PublicURL, local.BasePath())
	}

	// Setup routes and dependencies
	svcs, err := router.SetupRoutes(ctx, e, router.Dependencies{
		Config:       cfg,
		DB:           db,
		Hub:          hub,
		Publisher:    publisher,
		Store:        store,
		Uploader:     uploader,
		Push:         sender,
		FirebaseAuth: authClient,
		Log:          zlog,
	})
	if err != nil {
		return err
	}

	scheduler, err := jobs.NewScheduler(zlog)
	if err != nil {
		return err
	}
	if err := scheduler.ScheduleStorySweep(ctx, svcs.Stories, cfg.Stories.SweepInterval); err != nil {
		return err
	}
	scheduler.Start()

	metricsSrv := &http.Server{Addr: ":" + cfg.Metrics.Port, Handler: promhttp.Handler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("metrics server stopped", zap.Error(err))
		}
	}()

	// Start server
	go func() {
		zlog.Info("Starting server", zap.String("port", cfg.App.Port))
		if err := e.Start(":" + cfg.App.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := scheduler.Shutdown(); err != nil {
		zlog.Warn("scheduler shutdown", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("metrics shutdown", zap.Error(err))
	}
	return e.Shutdown(shutdownCtx)
}

func newUploader(cfg *config.Config, fb *firebase.App, zlog *zap.Logger) (storage.Uploader, error) {
	switch cfg.Storage.Backend {
	case "gcs":
		if fb == nil || fb.Bucket == nil {
			return nil, errors.New("STORAGE_BACKEND=gcs needs Firebase with FIREBASE_STORAGE_BUCKET")
		}
		return storage.NewGCSUploader(fb.Bucket, fb.BucketName), nil
	case "s3":
		if cfg.Storage.S3Bucket == "" {
			return nil, errors.New("STORAGE_BACKEND=s3 needs S3_BUCKET")
		}
		return storage.NewS3Uploader(cfg.Storage.S3Region, cfg.Storage.S3Bucket)
	default:
		return storage.NewLocalUploader(cfg.Storage.LocalPath, cfg.Storage.PublicURL, logger.Component(zlog, "storage"))
	}
}
