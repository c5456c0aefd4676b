package v1

import (
	"net/http"
	"time"

	"go-intake-backend/config"
	"go-intake-backend/internal/delivery/http/middleware"
	"go-intake-backend/internal/delivery/http/response"
	"go-intake-backend/internal/domain"
	"go-intake-backend/internal/usecase"
	"go-intake-backend/pkg/auth"
	"go-intake-backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	IdentityUC      domain.IdentityUsecase
	CandidateUC     domain.CandidateUsecase
	PostUC          domain.PostUsecase
	QualificationUC domain.AcademicQualificationUsecase
	CertificateUC   domain.CertificateUsecase
	HealthUC        usecase.HealthUsecase
	Identities      middleware.IdentityLoader
	Tokens          *auth.TokenManager
	Config          *config.Config
	// Redis may be nil; rate limits then use the in-memory store
	Redis   *goredis.Client
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; nil hides the endpoint
	Gatherer prometheus.Gatherer
}

const uploadsPerMinute = 10

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, cfg.GinMode == gin.ReleaseMode)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(deps.Metrics.GinMiddleware())
	r.Use(middleware.ErrorHandler())

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	limiter := middleware.NewRateLimiter(deps.Redis)
	r.Use(limiter.Global(cfg.RateLimitGlobalThreshold, window))
	r.Use(middleware.Session(deps.Tokens, deps.Identities))

	// Ops
	r.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		code := http.StatusOK
		if status["database"] != "ok" {
			code = http.StatusServiceUnavailable
		}
		response.Success(c, code, "System status", status)
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	session := sessionWriter{tokens: deps.Tokens, secure: cfg.CookieSecure}
	resetGate := middleware.PasswordResetGate(passwordChangePath, "/v1/me")

	guarded := r.Group("", middleware.CSRFMiddleware(cfg.CookieSecure, middleware.LoginPath, signupPath))

	pages := guarded.Group("", middleware.RequirePageAuth(), resetGate)
	NewPageHandler(guarded, pages, deps.IdentityUC, deps.PostUC, session,
		limiter.Credentials(cfg.RateLimitLoginThreshold, window))

	api := guarded.Group("/v1", middleware.RequireAPIAuth(), resetGate)
	admin := api.Group("/admin")
	{
		NewIdentityHandler(api, deps.IdentityUC, deps.CandidateUC)
		NewCandidateHandler(api, deps.CandidateUC, deps.CertificateUC, cfg.MaxUploadBytes,
			limiter.Uploads(uploadsPerMinute, time.Minute))
		NewQualificationHandler(api, admin, deps.QualificationUC)
		NewAdminHandler(admin, deps.IdentityUC, deps.CandidateUC)
	}

	return r
}
