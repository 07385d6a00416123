// Package api provides the HTTP REST API and WebSocket server for the hub.
//
// It exposes the device registry, command submission, energy and security
// history, natural-language commands, and a WebSocket stream of live state
// events to user interfaces.
//
// The server follows the same lifecycle pattern as the other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wrenhall/homehub/internal/assist"
	"github.com/wrenhall/homehub/internal/device"
	"github.com/wrenhall/homehub/internal/history"
	"github.com/wrenhall/homehub/internal/infrastructure/config"
	"github.com/wrenhall/homehub/internal/infrastructure/logging"
	"github.com/wrenhall/homehub/internal/notify"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Dispatcher publishes validated commands to the message bus.
// Satisfied by *bus.Gateway.
type Dispatcher interface {
	PublishCommand(cmd *device.Command) error
}

// Resolver turns a natural-language utterance into dispatched commands.
// Satisfied by *assist.Resolver. Nil when assist is disabled.
type Resolver interface {
	Resolve(ctx context.Context, text string) (*assist.Result, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Logger     *logging.Logger
	Registry   *device.Registry
	Validator  *device.Validator
	Dispatcher Dispatcher
	Energy     history.EnergyRepository
	Security   history.SecurityRepository
	Notify     *notify.Hub
	Resolver   Resolver
	Version    string
}

// Server is the HTTP API server for the hub.
//
// It manages the HTTP listener, routes, middleware, and the WebSocket
// bridge onto the notification hub. The server is created with New() and
// started with Start().
type Server struct {
	cfg        config.APIConfig
	wsCfg      config.WebSocketConfig
	logger     *logging.Logger
	registry   *device.Registry
	validator  *device.Validator
	dispatcher Dispatcher
	energy     history.EnergyRepository
	security   history.SecurityRepository
	notify     *notify.Hub
	resolver   Resolver
	version    string
	server     *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("device registry is required")
	}
	if deps.Validator == nil {
		return nil, fmt.Errorf("command validator is required")
	}
	if deps.Notify == nil {
		return nil, fmt.Errorf("notification hub is required")
	}
	// Dispatcher is optional — commands fail with 503 while the bus is down,
	// but reads and the WebSocket stream still function.

	return &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		logger:     deps.Logger,
		registry:   deps.Registry,
		validator:  deps.Validator,
		dispatcher: deps.Dispatcher,
		energy:     deps.Energy,
		security:   deps.Security,
		notify:     deps.Notify,
		resolver:   deps.Resolver,
		version:    deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
