package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dinodia/dinodia-core/internal/access"
	"github.com/dinodia/dinodia-core/internal/audit"
	"github.com/dinodia/dinodia-core/internal/auth"
	"github.com/dinodia/dinodia-core/internal/bridge"
	"github.com/dinodia/dinodia-core/internal/device"
	"github.com/dinodia/dinodia-core/internal/hub"
	"github.com/dinodia/dinodia-core/internal/infrastructure/config"
	"github.com/dinodia/dinodia-core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HubPinger is the slice of the hub client the API needs for the
// connectivity probe.
type HubPinger interface {
	Ping(ctx context.Context, householdID int64) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       config.APIConfig
	Security     config.SecurityConfig
	Logger       *logging.Logger
	Users        auth.UserRepository
	Households   access.HouseholdRepository
	Memberships  access.MembershipRepository
	HubInstances hub.InstanceRepository
	HubPinger    HubPinger
	Aggregator   *device.Aggregator
	Resolver     *access.Resolver
	Bridge       *bridge.Service
	Alexa        *bridge.AlexaAdapter
	Google       *bridge.GoogleAdapter
	Audit        audit.Repository
	Version      string
}

// Server is the HTTP API server for Dinodia Core.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg          config.APIConfig
	secCfg       config.SecurityConfig
	logger       *logging.Logger
	users        auth.UserRepository
	households   access.HouseholdRepository
	memberships  access.MembershipRepository
	hubInstances hub.InstanceRepository
	hubPinger    HubPinger
	aggregator   *device.Aggregator
	resolver     *access.Resolver
	bridge       *bridge.Service
	alexa        *bridge.AlexaAdapter
	google       *bridge.GoogleAdapter
	audit        audit.Repository
	version      string
	server       *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if deps.Households == nil || deps.Memberships == nil {
		return nil, fmt.Errorf("household and membership repositories are required")
	}
	if deps.Resolver == nil {
		return nil, fmt.Errorf("access resolver is required")
	}
	if deps.Bridge == nil {
		return nil, fmt.Errorf("command bridge is required")
	}
	if deps.HubInstances == nil || deps.HubPinger == nil || deps.Aggregator == nil {
		return nil, fmt.Errorf("hub repository, hub client and aggregator are required")
	}
	if deps.Audit == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	// Voice adapters are optional; their routes return 404 when absent.

	return &Server{
		cfg:          deps.Config,
		secCfg:       deps.Security,
		logger:       deps.Logger.With("component", "api"),
		users:        deps.Users,
		households:   deps.Households,
		memberships:  deps.Memberships,
		hubInstances: deps.HubInstances,
		hubPinger:    deps.HubPinger,
		aggregator:   deps.Aggregator,
		resolver:     deps.Resolver,
		bridge:       deps.Bridge,
		alexa:        deps.Alexa,
		google:       deps.Google,
		audit:        deps.Audit,
		version:      deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
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
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// HealthCheck verifies the API server is running.
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
