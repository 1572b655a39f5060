package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/clinic-scheduler/internal/middleware"
	"github.com/jwalitptl/clinic-scheduler/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	health   Handler
	handlers []Handler
	config   RouterConfig
}

type RouterConfig struct {
	Mode           string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	CORSConfig     middleware.CORSConfig

	// RateLimit is nil when limiting is disabled.
	RateLimit *middleware.RateLimiterConfig

	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	MetricsPath string
}

// NewRouter builds the engine and its middleware chain. auth may be nil, in
// which case the API is served unauthenticated.
func NewRouter(config RouterConfig, auth *middleware.AuthMiddleware, health Handler, handlers ...Handler) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		middleware.CORS(config.CORSConfig),
	)
	if config.MaxBodyBytes > 0 {
		engine.Use(middleware.SizeLimit(config.MaxBodyBytes))
	}
	if config.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(config.RequestTimeout))
	}
	if config.Metrics != nil {
		engine.Use(middleware.Metrics(config.Metrics))
	}
	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}

	return &Router{
		engine:   engine,
		auth:     auth,
		health:   health,
		handlers: handlers,
		config:   config,
	}
}

func (r *Router) Setup() {
	if r.config.Gatherer != nil && r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, gin.WrapH(promhttp.HandlerFor(r.config.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.engine.Group("/api/v1")
	if r.health != nil {
		r.health.RegisterRoutes(api)
	}

	protected := api.Group("")
	if r.auth != nil {
		protected.Use(r.auth.Authenticate())
	}
	for _, h := range r.handlers {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
