package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/existflow/projtrack/internal/auth"
	"github.com/existflow/projtrack/internal/config"
	"github.com/existflow/projtrack/internal/logger"
	"github.com/existflow/projtrack/internal/projects"
	"github.com/existflow/projtrack/internal/store"
)

// Server exposes the project view-model and access gate over HTTP
type Server struct {
	store      store.Store
	vm         *projects.ViewModel
	gate       *auth.Gate
	sessions   SessionStore
	sessionTTL time.Duration
	echo       *echo.Echo
}

// Options configures a server built with NewWithStore
type Options struct {
	Sessions   SessionStore  // defaults to in-process sessions
	SessionTTL time.Duration // defaults to 30 days
	BcryptCost int
}

// New creates a server from configuration, opening the store and, when a
// Redis URL is set, the Redis session store
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	s, err := store.Open(cfg.Storage)
	if err != nil {
		return nil, err
	}

	opts := Options{SessionTTL: cfg.Server.SessionTTL, BcryptCost: cfg.BcryptCost}
	if cfg.Server.RedisURL != "" {
		sessions, err := OpenRedisSessions(ctx, cfg.Server.RedisURL)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		opts.Sessions = sessions
		logger.Info("Using redis sessions")
	}

	srv, err := NewWithStore(ctx, s, opts)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return srv, nil
}

// NewWithStore creates a server on an open store and loads its projects
func NewWithStore(ctx context.Context, s store.Store, opts Options) (*Server, error) {
	if opts.Sessions == nil {
		opts.Sessions = NewMemorySessions()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}

	srv := &Server{
		store:      s,
		vm:         projects.New(s),
		gate:       auth.NewGate(s, opts.BcryptCost),
		sessions:   opts.Sessions,
		sessionTTL: opts.SessionTTL,
	}
	if _, err := srv.vm.Fetch(ctx); err != nil {
		return nil, err
	}

	srv.setupEcho()
	return srv, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Custom logging middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			logger.Debug("HTTP Request",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("remote", req.RemoteAddr))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			logger.Info("HTTP Response",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("size", res.Size),
				logger.F("duration", time.Since(start).String()))

			return nil
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")

	// Auth endpoints (public)
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/me", s.handleMe)
	protected.POST("/logout", s.handleLogout)
	protected.GET("/projects", s.handleListProjects)
	protected.POST("/projects", s.handleCreateProject)
	protected.POST("/projects/refresh", s.handleRefreshProjects)
	protected.GET("/projects/:id", s.handleGetProject)
	protected.PUT("/projects/:id", s.handleUpdateProject)
	protected.DELETE("/projects/:id", s.handleDeleteProject)

	s.echo = e
}

// Close closes the store and the session store if it holds a connection
func (s *Server) Close() error {
	if c, ok := s.sessions.(io.Closer); ok {
		_ = c.Close()
	}
	return s.store.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
