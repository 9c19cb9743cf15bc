package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/christianacho/espresso/internal/profile"
	"github.com/christianacho/espresso/plugin/ai/braindump"
	"github.com/christianacho/espresso/plugin/ai/timeout"
	"github.com/christianacho/espresso/server/internal/observability"
	apiv1 "github.com/christianacho/espresso/server/router/api/v1"
	"github.com/christianacho/espresso/store"
)

// Server is the espresso HTTP server.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiV1      *apiv1.APIV1Service
	jobs       *cron.Cron
}

// limiterSweepSchedule is how often idle rate limiter buckets are dropped.
const limiterSweepSchedule = "@every 1m"

// NewServer builds the echo server and registers every API route.
func NewServer(_ context.Context, profile *profile.Profile, store *store.Store, extractor *braindump.Extractor, logger *slog.Logger) (*Server, error) {
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Server.ReadHeaderTimeout = 10 * time.Second
	echoServer.Server.WriteTimeout = timeout.RequestTimeout + 5*time.Second

	apiV1 := apiv1.NewAPIV1Service(profile, store, extractor)
	if logger != nil {
		apiV1.Logger = logger
	}
	apiV1.Register(echoServer)

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: echoServer,
		apiV1:      apiV1,
		jobs:       cron.New(),
	}
	if _, err := s.jobs.AddFunc(limiterSweepSchedule, s.sweepLimiter); err != nil {
		return nil, errors.Wrap(err, "failed to schedule rate limiter sweep")
	}
	return s, nil
}

// NewLogger builds the process logger from the profile's log settings.
func NewLogger(w io.Writer, profile *profile.Profile) *slog.Logger {
	return observability.NewLogger(w, profile.LogLevel, profile.LogFormat)
}

// Address is the host:port the server listens on.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
}

// Start serves until Shutdown is called. Background jobs run alongside.
func (s *Server) Start(_ context.Context) error {
	s.jobs.Start()

	slog.Info("server listening", slog.String("address", s.Address()), slog.String("mode", s.Profile.Mode))
	if err := s.echoServer.Start(s.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start server")
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, timeout.ShutdownTimeout)
	defer cancel()

	slog.Info("server shutting down")
	<-s.jobs.Stop().Done()
	if err := s.echoServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "failed to shutdown server")
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			return errors.Wrap(err, "failed to close store")
		}
	}
	slog.Info("server stopped properly")
	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

func (s *Server) sweepLimiter() {
	if n := s.apiV1.Limiter.Sweep(time.Now()); n > 0 {
		slog.Debug("rate limiter swept", slog.Int("dropped", n))
	}
}
