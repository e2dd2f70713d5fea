// Package server contains the HTTP handlers and routing of the API.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agora/internal/auth"
	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *auth.TokenManager
	notifier       *notifications.Notifier

	userService         *service.UserService
	postService         *service.PostService
	commentService      *service.CommentService
	likeService         *service.LikeService
	followService       *service.FollowService
	feedService         *service.FeedService
	notificationService *service.NotificationService
}

// NewServer connects to the database and Redis and builds a Server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return NewServerWithDeps(cfg, db, cache.InitRedis(cfg.RedisURL))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil: token revocation, per-route rate limits and
// realtime hints are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("agora-api"),
		tokens:         auth.NewTokenManager(cfg, redisClient),
	}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}

	var publisher service.Publisher
	if s.notifier != nil {
		publisher = s.notifier
	}
	s.notificationService = service.NewNotificationService(repository.NewNotificationRepository(db), followRepo, publisher)

	s.userService = service.NewUserService(userRepo, repository.NewProfileRepository(db))
	s.postService = service.NewPostService(postRepo, s.notificationService)
	s.commentService = service.NewCommentService(repository.NewCommentRepository(db), postRepo, s.notificationService)
	s.likeService = service.NewLikeService(repository.NewLikeRepository(db), postRepo)
	s.followService = service.NewFollowService(followRepo, userRepo, s.notificationService)
	s.feedService = service.NewFeedService(postRepo)

	return s, nil
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Agora API",
		ErrorHandler: s.ErrorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// ErrorHandler renders errors that escape a handler. Fiber's own errors keep
// their status; everything else is an internal error.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = models.CodeNotFound
		case fiber.StatusMethodNotAllowed, fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
			code = models.CodeValidation
		}
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message, Code: code})
	}
	return respondError(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api", middleware.OptionalAuth(s.tokens))
	authed := middleware.AuthRequired(s.tokens)

	// Tokens
	api.Post("/token", middleware.RateLimit(s.redis, 10, 5*time.Minute, "token"), s.ObtainToken)
	api.Post("/token/refresh", s.RefreshToken)
	api.Post("/token/revoke", s.RevokeToken)

	// Users and profiles. Specific /:id/<resource> routes come before /:id.
	api.Post("/users", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	api.Get("/users", s.GetUsers)
	api.Get("/users/:id/followers", s.GetUserFollowers)
	api.Get("/users/:id/following", s.GetUserFollowing)
	api.Post("/users/:id/follow", authed, s.FollowUser)
	api.Delete("/users/:id/follow", authed, s.UnfollowUser)
	api.Get("/users/:id", s.GetUser)
	api.Put("/users/:id", authed, s.UpdateUser)
	api.Delete("/users/:id", authed, s.DeleteUser)
	api.Get("/profiles/:id", s.GetProfile)
	api.Put("/profiles/:id", authed, s.UpdateProfile)

	// Posts. /feed and /search are registered before /:id.
	api.Get("/posts", s.GetPosts)
	api.Get("/posts/feed", authed, s.GetFeed)
	api.Get("/posts/search", middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.SearchPosts)
	api.Post("/posts", authed, middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	api.Get("/posts/:id/comments", s.GetPostComments)
	api.Post("/posts/:id/comments", authed, middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	api.Post("/posts/:id/like", authed, s.LikePost)
	api.Delete("/posts/:id/like", authed, s.UnlikePost)
	api.Get("/posts/:id", s.GetPost)
	api.Put("/posts/:id", authed, s.UpdatePost)
	api.Delete("/posts/:id", authed, s.DeletePost)

	// The principal's own comments, likes and follow edges.
	api.Get("/comments", authed, s.GetMyComments)
	api.Put("/comments/:id", authed, s.UpdateComment)
	api.Delete("/comments/:id", authed, s.DeleteComment)
	api.Get("/likes", authed, s.GetMyLikes)
	api.Delete("/likes/:id", authed, s.DeleteLike)
	api.Get("/followers", authed, s.GetMyFollowers)
	api.Get("/following", authed, s.GetMyFollowing)
	api.Delete("/follows/:id", authed, s.DeleteFollow)

	// Notifications
	api.Get("/notifications", authed, s.GetNotifications)
	api.Get("/notifications/unread-count", authed, s.GetUnreadCount)
	api.Post("/notifications/read-all", authed, s.MarkAllNotificationsRead)
	api.Post("/notifications/:id/read", authed, s.MarkNotificationRead)
}

// LivenessCheck handles liveness check requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck pings the database and, when configured, Redis.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional; without it the API degrades instead of failing.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// Start builds the app and listens on the configured port. It blocks until
// the listener stops.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("sql db: %w", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("redis: %w", rerr))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	middleware.Logger.Info("server shutdown complete")
	return nil
}
