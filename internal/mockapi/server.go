// Package mockapi is a local stand-in for the City Budget Planner backend.
// It serves POST /api/budget/generate with the same contract as production
// and produces deterministic allocations, which makes it usable for demos
// and for exercising the client end to end.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Config controls the mock server.
type Config struct {
	Secret             string
	TokenTTL           time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
	Latency            time.Duration
}

// DefaultConfig returns settings suitable for local use.
func DefaultConfig() Config {
	return Config{
		Secret:             "cbudget-dev-secret",
		TokenTTL:           24 * time.Hour,
		RateLimitPerMinute: 60,
		RateLimitBurst:     10,
	}
}

// Server bundles the echo instance with its token manager.
type Server struct {
	Echo   *echo.Echo
	Tokens *TokenManager
}

// New assembles the echo server with middleware and routes.
func New(cfg Config, log zerolog.Logger) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultConfig().TokenTTL
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = DefaultConfig().RateLimitPerMinute
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = DefaultConfig().RateLimitBurst
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{v: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))

	tokens := NewTokenManager(cfg.Secret, cfg.TokenTTL)
	h := &handler{latency: cfg.Latency, log: log}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	budget := e.Group("/api/budget", jwtAuth(tokens), rateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst))
	budget.POST("/generate", h.generate)

	return &Server{Echo: e, Tokens: tokens}
}

// NewHTTPServer wraps handler in an http.Server with conservative timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
// ready, if non-nil, receives the bound address once the listener is up.
func (s *Server) Run(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mockapi listen: %w", err)
	}
	server := NewHTTPServer(addr, s.Echo)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if ready != nil {
		ready(ln.Addr())
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("mockapi http server: %w", err)
	}
}
