package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpHandlers "github.com/simgebenzerr/planner-core/internal/adapters/http"
	"github.com/simgebenzerr/planner-core/internal/adapters/identity"
	"github.com/simgebenzerr/planner-core/internal/adapters/notify"
	"github.com/simgebenzerr/planner-core/internal/adapters/repository"
	"github.com/simgebenzerr/planner-core/internal/application/services"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/config"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/database"
	"github.com/simgebenzerr/planner-core/internal/infrastructure/logger"
)

// Server owns the HTTP surface and the process-wide service lifetimes.
// Everything the old singleton managers did is constructed here explicitly
// and torn down in Shutdown.
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	logger   *logger.Logger
	local    *database.LocalDB
	remote   *database.RemoteDB
	sessions *services.SessionService
	center   *notify.Center
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance and wires every service
func New(cfg *config.Config, local *database.LocalDB, remote *database.RemoteDB, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Repositories
	taskRepo := repository.NewTaskRepository(local.DB)
	settingsRepo := repository.NewSettingsRepository(local.DB)
	documentStore := repository.NewDocumentStore(remote.DB)
	accountRepo := repository.NewAccountRepository(remote.DB)

	// Collaborator adapters
	provider := identity.NewProvider(accountRepo, cfg.Identity, appLogger)
	center := notify.NewCenter(appLogger, notify.GrantAll)

	// Services
	taskService := services.NewTaskService(taskRepo, appLogger)
	sessionService := services.NewSessionService(provider, appLogger)
	profileService := services.NewProfileService(documentStore, appLogger)
	analyticsService := services.NewAnalyticsService(taskService)
	notificationService := services.NewNotificationService(center, cfg.Notifications, appLogger)

	themeService, err := services.NewThemeService(context.Background(), settingsRepo, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize theme service: %w", err)
	}

	// One-time startup authorization request; the result is unused.
	notificationService.Start(context.Background())

	// Handlers
	authHandler := httpHandlers.NewAuthHandler(provider, sessionService, profileService, appLogger)
	taskHandler := httpHandlers.NewTaskHandler(taskService, notificationService, appLogger)
	analyticsHandler := httpHandlers.NewAnalyticsHandler(analyticsService, appLogger)
	profileHandler := httpHandlers.NewProfileHandler(profileService, appLogger)
	themeHandler := httpHandlers.NewThemeHandler(themeService, appLogger)

	server := &Server{
		echo:     e,
		config:   cfg,
		logger:   appLogger,
		local:    local,
		remote:   remote,
		sessions: sessionService,
		center:   center,
	}

	server.setupMiddleware()
	server.setupRoutes(authHandler, taskHandler, analyticsHandler, profileHandler, themeHandler, provider)

	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(s.config.Security.RateLimitRequests),
				Burst:     s.config.Security.RateLimitRequests,
				ExpiresIn: s.config.Security.RateLimitWindow,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(authHandler *httpHandlers.AuthHandler, taskHandler *httpHandlers.TaskHandler, analyticsHandler *httpHandlers.AnalyticsHandler, profileHandler *httpHandlers.ProfileHandler, themeHandler *httpHandlers.ThemeHandler, provider *identity.Provider) {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)

	v1 := s.echo.Group("/api/v1")

	// Auth routes (public)
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/verify", authHandler.Verify)
	authGroup.POST("/logout", authHandler.Logout, s.authMiddleware(provider))

	// Session routes (public: routing state is what the auth flow binds to)
	sessionGroup := v1.Group("/session")
	sessionGroup.GET("", authHandler.GetSession)
	sessionGroup.POST("/refresh", authHandler.RefreshSession)

	// Task routes (authenticated)
	taskGroup := v1.Group("/tasks", s.authMiddleware(provider))
	taskGroup.GET("", taskHandler.ListTasks)
	taskGroup.POST("", taskHandler.CreateTask)
	taskGroup.GET("/:id", taskHandler.GetTask)
	taskGroup.PUT("/:id", taskHandler.UpdateTask)
	taskGroup.POST("/:id/toggle", taskHandler.ToggleTask)
	taskGroup.DELETE("/:id", taskHandler.DeleteTask)

	// Analytics routes (authenticated)
	v1.GET("/analytics", analyticsHandler.GetStats, s.authMiddleware(provider))

	// Profile routes (authenticated)
	profileGroup := v1.Group("/profile", s.authMiddleware(provider))
	profileGroup.GET("", profileHandler.GetProfile)
	profileGroup.PUT("", profileHandler.UpdateProfile)

	// Theme routes (public; the preference is device-wide, not per-user)
	themeGroup := v1.Group("/theme")
	themeGroup.GET("", themeHandler.GetTheme)
	themeGroup.PUT("", themeHandler.SetTheme)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(requestsTotal, requestDuration)

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// authMiddleware validates session tokens
func (s *Server) authMiddleware(provider *identity.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := provider.ValidateToken(parts[1])
			if err != nil {
				s.logger.Warnw("Invalid token", "error", err, "ip", c.RealIP())
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set("user", claims.UserID)
			c.Set("user_email", claims.Email)

			return next(c)
		}
	}
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if err := s.local.DB.Ping(); err != nil {
		status = "error"
		checks["local_store"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["local_store"] = map[string]interface{}{"status": "ok"}
	}

	if err := s.remote.HealthCheck(); err != nil {
		status = "error"
		checks["document_store"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["document_store"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.remote.GetConnectionInfo(),
		}
	}

	response := map[string]interface{}{
		"status":  status,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"checks":  checks,
		"version": s.config.App.Version,
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server and the services it owns
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	s.sessions.Close()
	s.center.Close()

	return s.echo.Shutdown(ctx)
}

// customErrorHandler maps failures to a single human-readable alert message
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = map[string]interface{}{"message": he.Message}
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if ve, ok := err.(validator.ValidationErrors); ok {
			code = http.StatusBadRequest
			msg = map[string]string{"message": "validation failed", "details": ve.Error()}
		} else {
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
