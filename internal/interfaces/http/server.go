// internal/interfaces/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/berkelium/storefront/internal/config"
	"github.com/berkelium/storefront/internal/interfaces/http/middleware"
	"github.com/berkelium/storefront/internal/interfaces/http/routes"
	"github.com/berkelium/storefront/internal/pkg/auth"
	"github.com/berkelium/storefront/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Options holds everything the server needs
type Options struct {
	Config      *config.Config
	Logger      *logrus.Logger
	Handlers    *routes.Handlers
	JWTManager  *auth.JWTManager
	RedisClient *redis.Client
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Checks      map[string]HealthChecker
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	logger     *logrus.Logger
	gin        *gin.Engine
	httpServer *http.Server
	checks     map[string]HealthChecker
	startedAt  time.Time
}

// NewServer creates a new HTTP server with middleware and routes installed
func NewServer(opts Options) *Server {
	if opts.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    opts.Config,
		logger:    opts.Logger,
		gin:       gin.New(),
		checks:    opts.Checks,
		startedAt: time.Now(),
	}

	if len(opts.Config.Security.TrustedProxies) > 0 {
		if err := s.gin.SetTrustedProxies(opts.Config.Security.TrustedProxies); err != nil {
			s.logger.WithError(err).Warn("invalid trusted proxies")
		}
	}

	s.setupMiddleware(opts)
	s.setupRoutes(opts)

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.WithField("port", s.config.Server.Port).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

func (s *Server) setupMiddleware(opts Options) {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.Metrics(opts.Metrics))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())
	if opts.RedisClient != nil {
		s.gin.Use(middleware.RateLimit(s.config, opts.RedisClient, s.logger))
	}
	s.gin.Use(middleware.RequestSizeLimit(1 << 20))
	// covers the empty-cart grace window and slow upstream calls
	s.gin.Use(middleware.Timeout(s.config.Server.WriteTimeout))
}

func (s *Server) setupRoutes(opts Options) {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)
	if opts.Gatherer != nil {
		s.gin.GET("/metrics", gin.WrapH(metrics.Handler(opts.Gatherer)))
	}

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, opts.Handlers, opts.JWTManager)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     s.config.App.Name,
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"auth":        "/api/v1/auth",
					"products":    "/api/v1/products",
					"cart":        "/api/v1/cart",
					"checkout":    "/api/v1/checkout",
					"orders":      "/api/v1/orders",
					"fulfillment": "/api/v1/fulfillment",
				},
			})
		})
	}
}

// healthCheck reports each dependency; any failure makes the service unhealthy
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for name, check := range s.checks {
		if err := check.Health(ctx); err != nil {
			s.logger.WithError(err).WithField("dependency", name).Warn("health check failed")
			deps[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "healthy"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":       state,
		"dependencies": deps,
		"timestamp":    time.Now().UTC(),
		"version":      s.config.App.Version,
		"environment":  s.config.App.Environment,
	})
}

// readinessCheck reports that the process accepts traffic
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
