// Package ipc serves the JSON wire protocol over HTTP. Requests under /session are
// translated to command codes and dispatched to the session manager; the wire status of
// the response decides the HTTP status.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/odvcencio/webdriverd/pkg/session"
	"github.com/odvcencio/webdriverd/pkg/telemetry"
	"github.com/odvcencio/webdriverd/pkg/wire"
)

const (
	defaultBindAddress     = "127.0.0.1:4444"
	defaultShutdownTimeout = 10 * time.Second
)

// Config controls the front end.
type Config struct {
	BindAddress string
	// AllowRemote permits binding to a non-loopback address.
	AllowRemote bool
	// RateLimit is the sustained command rate in requests per second; zero disables.
	RateLimit       float64
	RateBurst       int
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	Version         string
}

// Sessions is the session manager as seen by the front end.
type Sessions interface {
	Create(ctx context.Context, opts session.Options) (string, error)
	Dispatch(ctx context.Context, id string, cmd wire.Command) wire.Response
	List() []session.Info
	Count() int
	MaxSessions() int
}

// Server hosts the wire protocol front end.
type Server struct {
	cfg        Config
	sessions   Sessions
	telemetry  *telemetry.Hub
	logger     *zap.Logger
	limiter    *rate.Limiter
	streams    *semaphore.Weighted
	router     chi.Router
	httpServer *http.Server
	started    time.Time
}

// NewServer constructs a server over sessions. hub may be nil, which disables the event
// stream.
func NewServer(cfg Config, sessions Sessions, hub *telemetry.Hub, logger *zap.Logger) *Server {
	if cfg.BindAddress == "" {
		cfg.BindAddress = defaultBindAddress
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = maxBodyBytesCommand
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:       cfg,
		sessions:  sessions,
		telemetry: hub,
		logger:    logger.Named("ipc"),
		streams:   semaphore.NewWeighted(maxEventStreamClients),
		started:   time.Now(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.validateStartupConfig(); err != nil {
		return err
	}
	ln, err := net.Listen("tcp", s.cfg.BindAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.BindAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// HTTP/2 cleartext for clients that speak prior-knowledge h2.
	h2cHandler := h2c.NewHandler(s.router, &http2.Server{})

	s.httpServer = &http.Server{
		Handler:           h2cHandler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("serving wire protocol", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

func (s *Server) validateStartupConfig() error {
	if !s.cfg.AllowRemote && !isLoopbackBindAddress(s.cfg.BindAddress) {
		return fmt.Errorf("refusing to bind to %q without allow_remote", s.cfg.BindAddress)
	}
	return nil
}

func isLoopbackBindAddress(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
