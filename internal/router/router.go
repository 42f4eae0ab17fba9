package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/appstate"
	"github.com/anonto42/socialshop/backend/internal/handlers"
	"github.com/anonto42/socialshop/backend/internal/middleware"
	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/push"
	"github.com/anonto42/socialshop/backend/internal/realtime"
	"github.com/anonto42/socialshop/backend/internal/repositories"
	"github.com/anonto42/socialshop/backend/internal/services"
	"github.com/anonto42/socialshop/backend/internal/storage"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
	"github.com/anonto42/socialshop/backend/pkg/config"
)

// Dependencies are the long-lived clients the routes are built on.
type Dependencies struct {
	Config       *config.Config
	DB           *config.DB
	Hub          *realtime.Hub
	Publisher    realtime.Publisher
	Store        appstate.Store
	Uploader     storage.Uploader
	Push         push.Sender
	FirebaseAuth *auth.Client
	Log          *zap.Logger
}

// Services exposes the services background jobs need.
type Services struct {
	Stories       *services.StoryService
	Notifications *services.NotificationService
}

// ErrorHandler renders every error as {"success":false,"msg":...}. Domain
// errors map to their status; 5xx are reported to Sentry.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "Internal server error"
		var he *echo.HTTPError
		switch {
		case errors.As(err, &he):
			status = he.Code
			msg = fmt.Sprint(he.Message)
		default:
			status = apperrors.HTTPStatus(err)
			if status < http.StatusInternalServerError {
				msg = apperrors.GetMessage(err)
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
			sentry.CaptureException(err)
		}

		body := map[string]interface{}{"success": false, "msg": msg}
		if code := apperrors.GetCode(err); code != "" {
			body["code"] = code
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("failed to write error response", zap.Error(err))
		}
	}
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(ctx context.Context, e *echo.Echo, deps Dependencies) (*Services, error) {
	log := deps.Log
	cfg := deps.Config
	pgdb := deps.DB.Postgres
	mgdb := deps.DB.Mongo
	pub := deps.Publisher

	if err := pgdb.AutoMigrate(models.Postgres()...); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.NewHealthHandler(deps.DB).HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb, pub, log)
	postRepo := repositories.NewMongoPostRepository(mgdb, pub, log)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb, pub, log)
	likeRepo := repositories.NewPostgresLikeRepository(pgdb, pub, log)
	followRepo := repositories.NewPostgresFollowRepository(pgdb, pub, log)
	savedPostRepo := repositories.NewPostgresSavedPostRepository(pgdb)
	storyRepo := repositories.NewStoryRepository(mgdb, pgdb, pub, log)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb, pub, log)
	messageRepo := repositories.NewPostgresMessageRepository(pgdb, pub, log)
	productRepo := repositories.NewPostgresProductRepository(pgdb)
	reviewRepo := repositories.NewPostgresReviewRepository(pgdb, pub, log)
	addressRepo := repositories.NewPostgresAddressRepository(pgdb, pub, log)
	orderRepo := repositories.NewPostgresOrderRepository(pgdb, pub, log)

	// --- Services ---
	notificationService := services.NewNotificationService(notificationRepo, userRepo, deps.Push, log)
	postService := services.NewPostService(postRepo, likeRepo, commentRepo, savedPostRepo, userRepo, notificationService, log)
	chatService := services.NewChatService(messageRepo, userRepo, notificationService, log)
	storyService := services.NewStoryService(storyRepo, followRepo, userRepo, cfg.Stories.TTL, log)
	reviewService := services.NewReviewService(reviewRepo, productRepo, userRepo)
	orderService := services.NewOrderService(orderRepo, addressRepo, deps.Store, log)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authGroup.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Per, cfg.RateLimit.Burst))
	authHandler := handlers.NewAuthHandler(userRepo, deps.FirebaseAuth, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Info("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	var fallback middleware.TokenVerifier
	if deps.FirebaseAuth != nil {
		fallback = middleware.NewFirebaseVerifier(deps.FirebaseAuth, userRepo)
	}
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.Auth.JWTSecret, fallback))
	api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Per, cfg.RateLimit.Burst))
	admin := middleware.RequireRole(models.RoleAdmin)
	log.Info("JWT authentication middleware applied to /api/v1 group.",
		zap.Bool("firebase_fallback", fallback != nil))

	handlers.NewUserHandler(userRepo).RegisterProfileRoutes(api)
	log.Info("User profile routes configured.")

	handlers.NewFollowHandler(followRepo, userRepo, notificationService, log).RegisterFollowRoutes(api)
	log.Info("Follow routes configured.")

	handlers.NewPostHandler(postService).RegisterPostRoutes(api)
	handlers.NewFeedHandler(postService).RegisterFeedRoutes(api)
	handlers.NewLikeHandler(postService).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(postService).RegisterCommentRoutes(api)
	handlers.NewSavedPostHandler(postService).RegisterSavedPostRoutes(api)
	log.Info("Post, feed, like, comment and saved post routes configured.")

	handlers.NewStoryHandler(storyService).RegisterStoryRoutes(api)
	log.Info("Story routes configured.")

	handlers.NewChatHandler(chatService).RegisterChatRoutes(api)
	handlers.NewNotificationHandler(notificationService).RegisterNotificationRoutes(api)
	log.Info("Chat and notification routes configured.")

	handlers.NewMediaHandler(deps.Uploader, log).RegisterMediaRoutes(api)
	log.Info("Media routes configured.")

	handlers.NewProductHandler(productRepo, reviewService).RegisterProductRoutes(api, admin)
	handlers.NewAddressHandler(addressRepo).RegisterAddressRoutes(api)
	handlers.NewStateHandler(deps.Store, productRepo, addressRepo).RegisterStateRoutes(api)
	handlers.NewOrderHandler(orderService).RegisterOrderRoutes(api, admin)
	log.Info("Shop routes configured.")

	handlers.NewRealtimeHandler(ctx, deps.Hub, log).RegisterRealtimeRoutes(api)
	log.Info("Realtime route configured.")

	log.Info("All routes configured.")
	return &Services{Stories: storyService, Notifications: notificationService}, nil
}
