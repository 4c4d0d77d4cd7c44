package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/marketbase/identity-service/docs"
	"github.com/marketbase/identity-service/internal/api/handler"
	"github.com/marketbase/identity-service/internal/api/middleware"
	"github.com/marketbase/identity-service/internal/core/domain"
	"github.com/marketbase/identity-service/internal/core/password"
	"github.com/marketbase/identity-service/internal/core/ports"
	"github.com/marketbase/identity-service/internal/core/service"
	"github.com/marketbase/identity-service/internal/core/token"
	"github.com/marketbase/identity-service/internal/infrastructure/config"
	mongodb "github.com/marketbase/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/marketbase/identity-service/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	cfg *config.Config,
	db *mongo.Database,
	rdb *redis.Client,
	recorder ports.ActivityRecorder,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("identity"))
	e.Use(middleware.ClientIP())

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	hasher := password.NewHasher(cfg.BcryptCost)
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	verifier := token.NewVerifier(cfg.JWTSecret)
	authService := service.NewAuthService(userRepo, hasher, issuer, verifier, recorder, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)

	authGate := middleware.Auth(verifier)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	verifiedOnly := middleware.RequireVerified(userRepo)
	limiter := redisdb.NewLoginLimiter(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow)
	loginThrottle := middleware.RateLimit(limiter, log)

	// --- Public auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register, loginThrottle)
	auth.POST("/login", authHandler.Login, loginThrottle)
	auth.POST("/refresh-token", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	// --- Protected account routes ---
	auth.GET("/me", userHandler.Me, authGate)
	auth.PUT("/profile", userHandler.UpdateProfile, authGate)
	auth.POST("/change-password", userHandler.ChangePassword, authGate)

	// --- Admin routes: authentication precedes authorization ---
	users := e.Group("/users", authGate, adminOnly, verifiedOnly)
	users.PUT("/:id/deactivate", userHandler.Deactivate)
	users.PUT("/:id/verify-email", userHandler.VerifyEmail)

	// --- Ops endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
