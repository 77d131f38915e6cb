package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/deliverly/marketplace-api/internal/api/authz"
	"github.com/deliverly/marketplace-api/internal/api/handler"
	"github.com/deliverly/marketplace-api/internal/api/middleware"
	"github.com/deliverly/marketplace-api/internal/core/ports"
	"github.com/deliverly/marketplace-api/internal/core/service"
	"github.com/deliverly/marketplace-api/internal/infrastructure/config"
	mongodb "github.com/deliverly/marketplace-api/internal/infrastructure/db/mongo"
	redisdb "github.com/deliverly/marketplace-api/internal/infrastructure/db/redis"
)

// NewRouter builds the Echo instance with the full middleware chain and all
// routes registered. The authentication middleware runs on every request
// (minus its skip-list); the authorization middleware enforces the route
// policy table before any handler executes.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, audit ports.AuditSink, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)

	codec, err := service.NewTokenCodec(cfg.JWTSecret, time.Duration(cfg.JWTExpirationMS)*time.Millisecond)
	if err != nil {
		return nil, err
	}

	refreshStore := redisdb.NewRefreshTokenStore(rdb, time.Duration(cfg.JWTRefreshExpirationMS)*time.Millisecond)
	authService := service.NewAuthService(userRepo, codec, refreshStore, audit, log)
	permService := service.NewPermissionService(userRepo, log)
	engine := authz.NewEngine(authz.DefaultRules(), permService, log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("marketplace"))
	e.Use(middleware.Authenticate(middleware.AuthConfig{
		Codec:  codec,
		Users:  userRepo,
		Logger: log,
	}))
	e.Use(middleware.Authorize(engine, audit))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(authService)
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/driver-login", authHandler.DriverLogin)
	e.POST("/api/auth/refresh", authHandler.Refresh)
	e.POST("/api/auth/logout", authHandler.Logout)

	// --- User routes ---
	userHandler := handler.NewUserHandler(userRepo)
	e.GET("/api/users/me", userHandler.Me)
	e.GET("/api/users", userHandler.List)
	e.GET("/api/users/:id", userHandler.Get)
	e.PUT("/api/users/:id", userHandler.Update)
	e.DELETE("/api/users/:id", userHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e, nil
}
