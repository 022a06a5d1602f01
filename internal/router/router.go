package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinica-api/internal/handler"
	authHandler "github.com/jwalitptl/clinica-api/internal/handler/auth"
	dashboardHandler "github.com/jwalitptl/clinica-api/internal/handler/dashboard"
	doctorHandler "github.com/jwalitptl/clinica-api/internal/handler/doctor"
	patientHandler "github.com/jwalitptl/clinica-api/internal/handler/patient"
	studyHandler "github.com/jwalitptl/clinica-api/internal/handler/study"
	studytypeHandler "github.com/jwalitptl/clinica-api/internal/handler/studytype"
	"github.com/jwalitptl/clinica-api/internal/middleware"
)

type Config struct {
	RateLimit     rate.Limit
	RateBurst     int
	CORSConfig    middleware.CORSConfig
	Timeout       time.Duration
	MetricsPrefix string
}

type Router struct {
	engine     *gin.Engine
	auth       *middleware.AuthMiddleware
	authH      *authHandler.Handler
	doctorH    *doctorHandler.Handler
	patientH   *patientHandler.Handler
	studyH     *studyHandler.Handler
	studyTypeH *studytypeHandler.Handler
	dashboardH *dashboardHandler.Handler
	h          *handler.Handler
	registry   *prometheus.Registry
	metrics    *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authHandler.Handler,
	doctorH *doctorHandler.Handler,
	patientH *patientHandler.Handler,
	studyH *studyHandler.Handler,
	studyTypeH *studytypeHandler.Handler,
	dashboardH *dashboardHandler.Handler,
	h *handler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidations()

	engine := gin.New()
	registry := prometheus.NewRegistry()
	metrics := initRouterMetrics(config.MetricsPrefix)
	registry.MustRegister(metrics.requestDuration, metrics.requestTotal, metrics.errorTotal)

	r := &Router{
		engine:     engine,
		auth:       auth,
		authH:      authH,
		doctorH:    doctorH,
		patientH:   patientH,
		studyH:     studyH,
		studyTypeH: studyTypeH,
		dashboardH: dashboardH,
		h:          h,
		registry:   registry,
		metrics:    metrics,
	}

	if config.Timeout <= 0 {
		config.Timeout = middleware.DefaultTimeoutConfig().Duration
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)

	// Public routes
	r.authH.RegisterRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.authH.RegisterProtectedRoutes(protected)
	r.doctorH.RegisterRoutes(protected, r.auth)
	r.patientH.RegisterRoutes(protected, r.auth)
	r.studyH.RegisterRoutes(protected, r.auth)
	r.studyTypeH.RegisterRoutes(protected, r.auth)
	r.dashboardH.RegisterRoutes(protected, r.auth)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	if prefix == "" {
		prefix = "http"
	}
	return &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
