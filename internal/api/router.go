package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/aslbekqoziboyev536-star/LC-Studio/docs"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/api/handler"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/api/middleware"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/domain"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/ports"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/core/service"
	"github.com/aslbekqoziboyev536-star/LC-Studio/internal/infrastructure/config"
	mongorepo "github.com/aslbekqoziboyev536-star/LC-Studio/internal/infrastructure/db/mongo"
	redisstore "github.com/aslbekqoziboyev536-star/LC-Studio/internal/infrastructure/db/redis"
)

// Services groups the use cases the HTTP layer depends on.
type Services struct {
	Auth     ports.AuthService
	Users    ports.UserService
	Courses  ports.CourseService
	Students ports.StudentService
}

// NewServices wires the MongoDB repositories into the domain services. rdb
// may be nil, in which case login throttling is disabled.
func NewServices(db *mongo.Database, rdb *goredis.Client, cfg *config.Config, log zerolog.Logger) Services {
	users := mongorepo.NewUserRepository(db)
	courses := mongorepo.NewCourseRepository(db)
	students := mongorepo.NewStudentRepository(db)
	policy := service.TenantPolicy{AllowUntagged: cfg.LegacyUntaggedVisible}

	var throttle ports.LoginThrottle
	if rdb != nil {
		throttle = redisstore.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)
	}

	return Services{
		Auth:     service.NewAuthService(users, throttle, cfg.JWTSecret, cfg.TokenTTL, log),
		Users:    service.NewUserService(users, courses, students, policy, log),
		Courses:  service.NewCourseService(courses, users, policy, log),
		Students: service.NewStudentService(students, users, policy, log),
	}
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, log zerolog.Logger, checks ...handler.DependencyCheck) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echoprometheus.NewMiddleware("lcstudio"))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler(checks...)
	e.GET("/health", healthHandler.Liveness)       // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(svc.Auth)
	userHandler := handler.NewUserHandler(svc.Users)
	courseHandler := handler.NewCourseHandler(svc.Courses)
	studentHandler := handler.NewStudentHandler(svc.Students)

	requireAuth := middleware.Auth(svc.Auth)
	adminOnly := middleware.RBAC(domain.RoleSuperAdmin)

	api := e.Group("/api")

	// --- Auth & bootstrap ---
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", authHandler.Me, requireAuth)
	api.GET("/setup", userHandler.Setup)

	// --- Users ---
	api.POST("/users", userHandler.Create, middleware.OptionalAuth(svc.Auth))
	users := api.Group("/users", requireAuth)
	users.GET("", userHandler.List)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete, adminOnly)
	users.DELETE("/:userId/devices/:deviceId", userHandler.RemoveDevice)

	// --- Courses ---
	courses := api.Group("/courses", requireAuth)
	courses.GET("", courseHandler.List)
	courses.POST("", courseHandler.Create, adminOnly)
	courses.PUT("/:id", courseHandler.Update, adminOnly)
	courses.DELETE("/:id", courseHandler.Delete, adminOnly)
	courses.POST("/:id/lessons", courseHandler.AddLesson)

	// --- Students ---
	students := api.Group("/students", requireAuth)
	students.GET("", studentHandler.List)
	students.POST("", studentHandler.Create)
	students.PUT("/bulk", studentHandler.BulkAttendance)
	students.PUT("/:id", studentHandler.Update)
	students.DELETE("/:id", studentHandler.Delete)

	return e
}

// MongoCheck reports MongoDB reachability for the readiness probe.
func MongoCheck(client *mongo.Client) handler.DependencyCheck {
	return handler.DependencyCheck{
		Name: "mongodb",
		Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
	}
}

// RedisCheck reports Redis reachability for the readiness probe.
func RedisCheck(client *goredis.Client) handler.DependencyCheck {
	return handler.DependencyCheck{
		Name: "redis",
		Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
}
