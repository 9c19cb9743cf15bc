package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/christianacho/espresso/internal/profile"
	"github.com/christianacho/espresso/plugin/ai/braindump"
	"github.com/christianacho/espresso/server/auth"
	apierrors "github.com/christianacho/espresso/server/internal/errors"
	"github.com/christianacho/espresso/server/internal/observability"
	"github.com/christianacho/espresso/server/middleware"
	"github.com/christianacho/espresso/store"
)

// APIV1Service serves the brain-dump HTTP API.
type APIV1Service struct {
	Profile   *profile.Profile
	Store     *store.Store
	Extractor *braindump.Extractor
	Metrics   *observability.Metrics
	Limiter   *middleware.RateLimiter
	Logger    *slog.Logger

	// Now is the clock used as the extraction reference instant.
	Now func() time.Time
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, extractor *braindump.Extractor) *APIV1Service {
	return &APIV1Service{
		Profile:   profile,
		Store:     store,
		Extractor: extractor,
		Metrics:   observability.NewMetrics(),
		Limiter:   middleware.NewRateLimiter(profile.RateLimitPerSecond, profile.RateLimitBurst),
		Logger:    slog.Default(),
		Now:       time.Now,
	}
}

// Register installs middleware and routes on echoServer.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	echoServer.HTTPErrorHandler = s.handleError

	echoServer.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll:   true,
		DisablePrintStack: !s.Profile.IsDev(),
	}))
	echoServer.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     s.Profile.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	echoServer.Use(auth.Middleware())
	echoServer.Use(s.observe)

	limited := s.Limiter.Echo(s.rateLimitKey, func(c echo.Context) error {
		return apierrors.RateLimitExceeded("rate limit exceeded")
	})

	echoServer.GET("/", s.Health)
	echoServer.POST("/api/process-brain-dump", s.ProcessBrainDump, limited)
	echoServer.POST("/process-events", s.ProcessEvents, limited)
	echoServer.POST("/api/debug-parse", s.DebugParse, limited)
	echoServer.GET("/api/events", s.ListEvents)
	echoServer.GET("/api/events.ics", s.ExportEvents)
	echoServer.DELETE("/events/:id", s.DeleteEvent)
	echoServer.GET("/api/stats", s.Stats)
}

// Health reports that the server is up.
func (s *APIV1Service) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Espresso backend is running!"})
}

// Stats returns in-process request and fallback counters.
func (s *APIV1Service) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Metrics.Snapshot())
}

// observe attaches a RequestContext and records per-route metrics.
func (s *APIV1Service) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqCtx := observability.NewRequestContext(s.Logger, c.Path(), auth.Subject(c))
		c.Response().Header().Set(echo.HeaderXRequestID, reqCtx.RequestID)
		req := c.Request()
		c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), reqCtx)))

		err := next(c)

		failed := false
		if err != nil {
			status, _ := resolveError(err)
			failed = status >= http.StatusInternalServerError
		}
		s.Metrics.RecordRequest(c.Path(), reqCtx.Duration(), failed)
		reqCtx.Debug("request completed",
			slog.String("method", req.Method),
			slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
		)
		return err
	}
}

func (s *APIV1Service) rateLimitKey(c echo.Context) string {
	if sub := auth.Subject(c); sub != auth.Anonymous {
		return "user:" + sub
	}
	return "ip:" + c.RealIP()
}

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Code    apierrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

func (s *APIV1Service) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, apiErr := resolveError(err)
	if status >= http.StatusInternalServerError {
		if reqCtx, ok := observability.FromContext(c.Request().Context()); ok {
			reqCtx.Error("request failed", err)
		} else {
			s.Logger.Error("request failed", slog.String("error", err.Error()))
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, errorResponse{Code: apiErr.Code, Message: apiErr.Message})
}

// resolveError maps any handler error to a status code and APIError.
func resolveError(err error) (int, *apierrors.APIError) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus(), apiErr
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		}
		return httpErr.Code, apierrors.Wrap(err, codeForStatus(httpErr.Code), msg)
	}
	return http.StatusInternalServerError, apierrors.Internal("internal error", err)
}

func codeForStatus(status int) apierrors.ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType:
		return apierrors.ErrCodeInvalidArgument
	case http.StatusUnauthorized:
		return apierrors.ErrCodeUnauthorized
	case http.StatusTooManyRequests:
		return apierrors.ErrCodeRateLimitExceeded
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apierrors.ErrCodeNotFound
	default:
		return apierrors.ErrCodeInternal
	}
}
