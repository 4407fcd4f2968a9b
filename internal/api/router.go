package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/taskhub/task-service/docs"
	"github.com/taskhub/task-service/internal/api/handler"
	"github.com/taskhub/task-service/internal/api/middleware"
	"github.com/taskhub/task-service/internal/core/ports"
	"github.com/taskhub/task-service/internal/core/service"
	"github.com/taskhub/task-service/internal/infrastructure/config"
	mongodb "github.com/taskhub/task-service/internal/infrastructure/db/mongo"
	redisdb "github.com/taskhub/task-service/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The email dispatcher is passed in because its workers are started and
// drained by main, not by the HTTP layer.
func NewRouter(db *mongo.Database, rdb *redis.Client, mail ports.EmailDispatcher, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("taskhub"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	avatarCache := redisdb.NewAvatarCache(rdb)
	userService := service.NewUserService(userRepo, taskRepo, tokenService, avatarCache, mail, log)
	taskService := service.NewTaskService(taskRepo, log)

	userHandler := handler.NewUserHandler(userService)
	avatarHandler := handler.NewAvatarHandler(userService)
	taskHandler := handler.NewTaskHandler(taskService)
	authGuard := middleware.Auth(tokenService, userRepo)

	// --- Public routes ---
	e.POST("/users", userHandler.Signup)
	e.POST("/users/login", userHandler.Login)
	e.GET("/users/:id/avatar", avatarHandler.Get)

	// --- Account & session routes ---
	e.POST("/users/logout", userHandler.Logout, authGuard)
	e.POST("/users/logoutAll", userHandler.LogoutAll, authGuard)
	e.GET("/users/me", userHandler.Me, authGuard)
	e.PATCH("/users/me", userHandler.UpdateMe, authGuard)
	e.DELETE("/users/me", userHandler.DeleteMe, authGuard)
	e.POST("/users/me/avatar", avatarHandler.Upload, authGuard)
	e.DELETE("/users/me/avatar", avatarHandler.Delete, authGuard)

	// --- Task routes ---
	e.POST("/tasks", taskHandler.Create, authGuard)
	e.GET("/tasks", taskHandler.List, authGuard)
	e.GET("/tasks/:id", taskHandler.Get, authGuard)
	e.PATCH("/tasks/:id", taskHandler.Update, authGuard)
	e.DELETE("/tasks/:id", taskHandler.Delete, authGuard)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
