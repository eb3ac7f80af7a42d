// Package server contains HTTP and WebSocket handlers for the forum API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "stackit/docs" // swagger docs
	"stackit/internal/cache"
	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/featureflags"
	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/notifications"
	"stackit/internal/repository"
	"stackit/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "stackit-api"
	tokenAudience = "stackit-client"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	shutdownCtx     context.Context
	shutdownFn      context.CancelFunc
	userRepo        repository.UserRepository
	questionRepo    repository.QuestionRepository
	tagRepo         repository.TagRepository
	answerRepo      repository.AnswerRepository
	noticeRepo      repository.NoticeRepository
	notifier        *notifications.Notifier
	hub             *notifications.Hub
	dispatcher      *notifications.Dispatcher
	featureFlags    *featureflags.Manager
	questionService *service.QuestionService
	answerService   *service.AnswerService
	noticeService   *service.NoticeService
	userService     *service.UserService
}

// NewServer connects to the database and Redis and builds a Server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil: caching, rate limiting, tickets and token revocation
// are then disabled and realtime notices only reach this instance's streams.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("stackit-api"),
		userRepo:       repository.NewUserRepository(db),
		questionRepo:   repository.NewQuestionRepository(db),
		tagRepo:        repository.NewTagRepository(db),
		answerRepo:     repository.NewAnswerRepository(db),
		noticeRepo:     repository.NewNoticeRepository(db),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		hub:            notifications.NewHub(),
	}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}
	s.dispatcher = notifications.NewDispatcher(s.hub, s.notifier)

	s.noticeService = service.NewNoticeService(s.noticeRepo, s.dispatcher, s.featureFlags)
	s.questionService = service.NewQuestionService(s.questionRepo, s.tagRepo, s.answerRepo, s.noticeService, s.featureFlags)
	s.answerService = service.NewAnswerService(s.answerRepo, s.questionRepo, s.noticeService)
	s.userService = service.NewUserService(s.userRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Message: "Too many requests, please try again later.",
				Code:    "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "StackIt Metrics Dashboard",
	}))
	app.Get("/swagger/*", swagger.HandlerDefault)

	auth := app.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/me", s.AuthRequired(), s.GetMe)
	auth.Get("/notifications", s.AuthRequired(), s.GetNotifications)
	auth.Patch("/notifications/read", s.AuthRequired(), s.MarkAllNotificationsRead)
	auth.Patch("/notifications/:id/read", s.AuthRequired(), s.MarkNotificationRead)
	auth.Get("/users/:id", s.AuthRequired(), s.GetUserProfile)
	auth.Patch("/users/:id/rank", s.AuthRequired(), s.AdminRequired(), s.SetUserRank)
	auth.Patch("/users/:id/role", s.AuthRequired(), s.AdminRequired(), s.SetUserRole)

	ques := app.Group("/ques")
	ques.Get("/get", s.GetQuestions)
	ques.Get("/get/:id", s.GetQuestion)
	ques.Get("/tags", s.GetTags)
	ques.Post("/add", s.AuthRequired(), middleware.RateLimit(s.redis, 5, 5*time.Minute, "create_question"), s.CreateQuestion)
	ques.Patch("/like/:id", s.AuthRequired(), s.LikeQuestion)

	ans := app.Group("/ans", s.AuthRequired())
	ans.Post("/add", middleware.RateLimit(s.redis, 10, time.Minute, "create_answer"), s.CreateAnswer)
	ans.Patch("/vote/:id", s.VoteAnswer)
	ans.Patch("/approve/:id", s.ApproveAnswer)
	ans.Get("/get/:answerId", s.GetAnswer)

	app.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)
	app.Get("/ws", s.requireUpgrade, s.AuthRequired(), s.WebsocketHandler())
}

// NewApp builds a Fiber app with the middleware chain and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "StackIt API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler answers errors that escaped the handlers with the standard JSON shape.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
		}
		return c.Status(fe.Code).JSON(models.ErrorResponse{Message: fe.Message})
	}
	return respondErr(c, err)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional; only a configured but failing Redis makes us unready.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.userService.GetUserByID(c.UserContext(), currentUserID(c))
		if err != nil {
			if models.CodeOf(err) == models.CodeNotFound {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Account no longer exists"))
			}
			return respondErr(c, err)
		}
		if !user.IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(message))
}

func setIdentity(c *fiber.Ctx, userID uint, username string) {
	c.Locals("userID", userID)
	if username != "" {
		c.Locals("username", username)
	}
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
	c.SetUserContext(ctx)
}

// AuthRequired returns the authentication middleware. The notice stream accepts
// a single-use ticket; every other route takes a bearer token.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isWSPath := c.Path() == "/ws"

		// Tickets only authenticate the stream; elsewhere they are ignored, not consumed.
		if ticket := c.Query("ticket"); isWSPath && ticket != "" && s.redis != nil {
			key := wsTicketKey(ticket)
			userIDStr, err := s.redis.GetDel(c.UserContext(), key).Result()
			if err == nil {
				if userID, parseErr := strconv.ParseUint(userIDStr, 10, 32); parseErr == nil && userID > 0 {
					c.Locals("wsTicket", ticket)
					setIdentity(c, uint(userID), "")
					return c.Next()
				}
			}
			return unauthorized(c, "Invalid or expired WebSocket ticket")
		}

		tokenString := ""
		if scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " "); ok && scheme == "Bearer" {
			tokenString = strings.TrimSpace(token)
		}
		// Tokens in the query string are refused on the stream; it must use a ticket.
		if tokenString == "" && !isWSPath {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return unauthorized(c, "Authorization required")
		}

		claims, err := s.parseToken(tokenString)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			return unauthorized(c, "Invalid subject claim")
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil || userID == 0 {
			return unauthorized(c, "Invalid user ID in token")
		}

		if jti, _ := claims["jti"].(string); jti != "" {
			if s.redis != nil {
				revoked, err := s.redis.Exists(c.UserContext(), blacklistKey(jti)).Result()
				if err == nil && revoked > 0 {
					return unauthorized(c, "Token has been revoked")
				}
			}
			c.Locals("jti", jti)
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			c.Locals("tokenExp", exp.Time)
		}

		username, _ := claims["username"].(string)
		setIdentity(c, uint(userID), username)
		return c.Next()
	}
}

// parseToken validates signature, issuer, audience and lifetime.
func (s *Server) parseToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

// startWiring forwards notices published by any instance to this instance's streams.
func (s *Server) startWiring(ctx context.Context) {
	if !s.notifier.Enabled() {
		return
	}
	if err := s.hub.StartWiring(ctx, s.notifier); err != nil {
		middleware.Logger.Error("failed to start notice wiring",
			slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()
	s.startWiring(s.shutdownCtx)

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down hub", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
