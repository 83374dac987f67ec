// Package server exposes the cache controller over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.trai.ch/aqtcache/internal/core/domain"
	"go.trai.ch/aqtcache/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// ControlPrefix is the path prefix of the control endpoints.
	ControlPrefix = "/_aqt"

	// ClientHeader carries the id of the page issuing a request.
	ClientHeader = "X-AQT-Client"
	// ClientCookie carries the page id when the header is absent.
	ClientCookie = "aqt_client"

	// SourceHeader reports where a response came from.
	SourceHeader = "X-AQT-Source"
	// StrategyHeader reports the strategy that produced a response.
	StrategyHeader = "X-AQT-Strategy"

	defaultShutdownTimeout = 5 * time.Second
	defaultControlRate     = 20
	defaultControlBurst    = 40
	maxControlBody         = 64 << 10
)

// Registration is the controller host the server delivers events to.
type Registration interface {
	Dispatch(ctx context.Context, event domain.Event) (domain.Result, error)
	Status() domain.RegistrationStatus
}

// Config holds the collaborators and settings of the HTTP front end.
type Config struct {
	Addr         string
	Origin       *url.URL
	Registration Registration
	// Fetcher serves requests no controller handled.
	Fetcher  ports.Fetcher
	Clients  ports.Clients
	Notifier ports.Notifier
	Logger   ports.Logger
	// Metrics serves GET /_aqt/metrics when set.
	Metrics http.Handler

	ShutdownTimeout time.Duration
	// ControlRate limits control requests per second per remote address.
	ControlRate  float64
	ControlBurst int
}

func (c *Config) applyDefaults() {
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.ControlRate == 0 {
		c.ControlRate = defaultControlRate
	}
	if c.ControlBurst == 0 {
		c.ControlBurst = defaultControlBurst
	}
}

// Server is the HTTP front end of the cache controller.
type Server struct {
	cfg          Config
	server       *http.Server
	shutdownOnce sync.Once
}

// New creates a server in the stopped state.
func New(cfg Config) *Server {
	cfg.applyDefaults()
	return &Server{
		cfg: cfg,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrServeFailed.Error()), "addr", s.cfg.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		s.logInfo(fmt.Sprintf("proxy listening on %s for %s", ln.Addr(), s.cfg.Origin))
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return zerr.Wrap(err, domain.ErrServeFailed.Error())
	}
}

// Stop shuts the server down. It is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logInfo("proxy shutting down")
		err = s.server.Shutdown(ctx)
	})
	if err != nil {
		return zerr.Wrap(err, "server shutdown failed")
	}
	return nil
}

func (s *Server) logInfo(msg string) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Info(msg)
	}
}
