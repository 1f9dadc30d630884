package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/thynetwork/timeclock/docs"
	"github.com/thynetwork/timeclock/internal/api/handler"
	"github.com/thynetwork/timeclock/internal/api/middleware"
	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
	"github.com/thynetwork/timeclock/internal/core/service"
	"github.com/thynetwork/timeclock/internal/infrastructure/cache"
	mongorepo "github.com/thynetwork/timeclock/internal/infrastructure/db/mongo"
)

// Deps carries the infrastructure the router wires services onto.
type Deps struct {
	Log       zerolog.Logger
	DB        *mongo.Database
	Redis     *redis.Client // nil when clock actions are serialized in-process
	Tx        ports.Transactor
	Locks     ports.KeyedSerializer
	JWTSecret string
	TokenTTL  time.Duration
	Location  *time.Location
	QuoteTTL  time.Duration
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("timeclock"))

	// --- Dependencies ---
	opts := []service.Option{service.WithLocation(d.Location)}

	users := mongorepo.NewUserRepository(d.DB)
	events := mongorepo.NewClockEventRepository(d.DB)
	messages := mongorepo.NewMessageRepository(d.DB)
	questions := mongorepo.NewQuestionRepository(d.DB)
	quotes := cache.NewQuoteRepository(mongorepo.NewQuoteRepository(d.DB), 0, d.QuoteTTL)

	authService := service.NewAuthService(users, d.JWTSecret, d.TokenTTL, opts...)
	attendanceService := service.NewAttendanceService(users, events, messages, questions, d.Tx, d.Locks, d.Log, opts...)
	questionService := service.NewQuestionService(messages, questions, d.Log)
	notificationService := service.NewNotificationService(users, events, messages, questions, d.Log, opts...)
	dashboardService := service.NewDashboardService(users, events, d.Log, opts...)
	userService := service.NewUserService(users, events, messages, questions, d.Tx, d.Locks, d.Log, opts...)
	quoteService := service.NewQuoteService(quotes, opts...)

	authHandler := handler.NewAuthHandler(authService)
	clockHandler := handler.NewClockHandler(attendanceService, d.Location)
	questionHandler := handler.NewQuestionHandler(questionService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	adminHandler := handler.NewAdminHandler(dashboardService, userService, quoteService, d.Location)

	authMiddleware := middleware.Auth(d.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Any authenticated user ---
	e.PUT("/profile", authHandler.ChangePIN, authMiddleware)
	e.POST("/clock", clockHandler.Clock, authMiddleware)
	e.GET("/clock/status", clockHandler.Status, authMiddleware)
	e.GET("/activity", clockHandler.Activity, authMiddleware)
	e.PATCH("/questions/:id/read", questionHandler.MarkQuestionRead, authMiddleware)
	e.PATCH("/notifications/user/:id/read", questionHandler.MarkQuestionRead, authMiddleware)
	e.POST("/notifications/user/read", questionHandler.AcknowledgeAll, authMiddleware)
	e.GET("/notifications/user", notificationHandler.EmployeeFeed, authMiddleware)

	// --- Administrators ---
	e.PATCH("/questions/answer", questionHandler.SubmitAnswers, authMiddleware, adminOnly)
	e.PATCH("/messages/:id/read", questionHandler.MarkMessageRead, authMiddleware, adminOnly)
	e.GET("/messages", notificationHandler.AdminFeed, authMiddleware, adminOnly)
	e.GET("/dashboard-stats", adminHandler.Stats, authMiddleware, adminOnly)
	e.GET("/users", adminHandler.ListUsers, authMiddleware, adminOnly)
	e.POST("/users", adminHandler.CreateUser, authMiddleware, adminOnly)
	e.DELETE("/users/:id", adminHandler.DeleteUser, authMiddleware, adminOnly)
	e.GET("/admin/quote", adminHandler.GetQuote, authMiddleware, adminOnly)
	e.POST("/admin/quote", adminHandler.SetQuote, authMiddleware, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.DB, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
