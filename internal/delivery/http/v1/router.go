package v1

import (
	"net/http"
	"strings"

	"go-jobboard-client/config"
	"go-jobboard-client/internal/delivery/http/middleware"
	"go-jobboard-client/internal/delivery/http/response"
	"go-jobboard-client/internal/domain"
	"go-jobboard-client/internal/notify"
	"go-jobboard-client/internal/usecase"
	"go-jobboard-client/pkg/logger"
	"go-jobboard-client/pkg/metrics"
	"go-jobboard-client/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const apiPrefix = "/v1"

type RouterDeps struct {
	Session   domain.SessionUsecase
	Workspace *usecase.Workspace
	Hub       *notify.Hub
	Metrics   *metrics.Metrics
	Routes    usecase.Routes
	Health    usecase.HealthUsecase // optional
	Redis     *goredis.Client // optional, login rate limit falls back to memory
	Config    *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	r := gin.New()

	// Global Middlewares
	allowLocalhost := strings.Contains(deps.Config.FrontendURL, "localhost")
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL, allowLocalhost)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	v1 := r.Group(apiPrefix)

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		checks := map[string]string{"status": "ok"}
		if deps.Health != nil {
			checks = deps.Health.Check(c.Request.Context())
		}
		if checks["status"] != "ok" {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", checks)
			return
		}
		response.Success(c, http.StatusOK, "System operational", gin.H{
			"checks":          checks,
			"session_loading": deps.Session.Loading(),
			"subscribers":     deps.Hub.SubscriberCount(),
		})
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	loginLimiter := middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(), deps.Redis)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.RouteGuard(deps.Session, deps.Routes, apiPrefix, domain.RoleNone))
	NewSessionHandler(v1, protected, deps.Session, deps.Routes, loginLimiter)
	NewNotificationHandler(protected, deps.Hub, originChecker(deps.Config.FrontendURL, allowLocalhost))

	candidate := v1.Group("")
	candidate.Use(middleware.RouteGuard(deps.Session, deps.Routes, apiPrefix, domain.RoleCandidate))
	NewCandidateHandler(candidate, deps.Workspace, deps.Session)

	recruiter := v1.Group("")
	recruiter.Use(middleware.RouteGuard(deps.Session, deps.Routes, apiPrefix, domain.RoleRecruiter))
	NewRecruiterHandler(recruiter, deps.Session)

	logger.Log.Debug("routes registered", "count", len(r.Routes()))
	return r
}

// originChecker applies the CORS origin policy to websocket upgrades.
func originChecker(frontendURL string, allowLocalhost bool) func(*http.Request) bool {
	return func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		if origin == "" || origin == frontendURL {
			return true
		}
		return allowLocalhost && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:"))
	}
}
