package v1

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/christianacho/espresso/plugin/ai/braindump"
	"github.com/christianacho/espresso/plugin/ai/timeout"
	"github.com/christianacho/espresso/server/auth"
	apierrors "github.com/christianacho/espresso/server/internal/errors"
	"github.com/christianacho/espresso/server/internal/observability"
	"github.com/christianacho/espresso/store"
)

// BrainDumpRequest is the body of POST /api/process-brain-dump and
// POST /api/debug-parse.
type BrainDumpRequest struct {
	BrainDump string `json:"brain_dump"`
	UserID    string `json:"user_id"`
}

// ProcessEventsRequest is the body of the legacy POST /process-events.
type ProcessEventsRequest struct {
	Text   string `json:"text"`
	UserID string `json:"user_id"`
}

// ProcessEventsResponse is the legacy envelope around extracted events.
type ProcessEventsResponse struct {
	Success bool                        `json:"success"`
	Events  []braindump.NormalizedEvent `json:"events"`
	Message string                      `json:"message"`
}

// DebugParseResponse shows the reference date, the resolved date table and
// the extracted events without persisting anything.
type DebugParseResponse struct {
	InputText       string                      `json:"input_text"`
	CurrentDate     string                      `json:"current_date"`
	CurrentDay      string                      `json:"current_day"`
	ResolvedDates   map[string]string           `json:"resolved_dates"`
	ProcessedEvents []braindump.NormalizedEvent `json:"processed_events"`
	EventCount      int                         `json:"event_count"`
	FallbackReason  string                      `json:"fallback_reason,omitempty"`
}

// ProcessBrainDump extracts and stores events, returning them as a bare array.
func (s *APIV1Service) ProcessBrainDump(c echo.Context) error {
	var req BrainDumpRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("invalid request body")
	}

	events, err := s.extractAndSave(c, req.BrainDump, s.resolveUser(c, req.UserID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// ProcessEvents is the legacy form of ProcessBrainDump.
func (s *APIV1Service) ProcessEvents(c echo.Context) error {
	var req ProcessEventsRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("invalid request body")
	}

	events, err := s.extractAndSave(c, req.Text, s.resolveUser(c, req.UserID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ProcessEventsResponse{
		Success: true,
		Events:  events,
		Message: fmt.Sprintf("Successfully processed %d events", len(events)),
	})
}

// DebugParse runs the pipeline and reports its intermediate state.
func (s *APIV1Service) DebugParse(c echo.Context) error {
	var req BrainDumpRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.InvalidArgument("invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout.RequestTimeout)
	defer cancel()

	now := s.Now()
	res, err := s.Extractor.Extract(ctx, req.BrainDump, now)
	if err != nil {
		return toExtractionError(err)
	}
	s.recordFallback(res)

	return c.JSON(http.StatusOK, DebugParseResponse{
		InputText:       req.BrainDump,
		CurrentDate:     now.Format(braindump.DateLayout),
		CurrentDay:      now.Weekday().String(),
		ResolvedDates:   res.Dates.Map(),
		ProcessedEvents: res.Events,
		EventCount:      len(res.Events),
		FallbackReason:  string(res.Reason),
	})
}

func (s *APIV1Service) extractAndSave(c echo.Context, text, userID string) ([]braindump.NormalizedEvent, error) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout.RequestTimeout)
	defer cancel()

	res, err := s.Extractor.Extract(ctx, text, s.Now())
	if err != nil {
		return nil, toExtractionError(err)
	}
	s.recordFallback(res)

	if s.Store != nil {
		// Persistence is best effort: the caller still gets its events.
		if _, err := s.Store.CreateEvents(ctx, eventsToStore(res.Events, userID)); err != nil {
			logger(ctx, s.Logger).Warn("failed to save events",
				slog.String(observability.LogFieldUserID, userID),
				slog.String("error", err.Error()),
			)
		}
	}

	logger(ctx, s.Logger).Info("brain dump processed",
		slog.Int(observability.LogFieldInputLen, len(text)),
		slog.Int(observability.LogFieldEventCount, len(res.Events)),
		slog.String(observability.LogFieldReason, string(res.Reason)),
	)
	return res.Events, nil
}

func (s *APIV1Service) recordFallback(res *braindump.Result) {
	if res.Reason == braindump.ReasonNone {
		return
	}
	s.Metrics.RecordFallback(string(res.Reason))
}

// resolveUser returns the token subject for authenticated callers. Only
// anonymous callers may name a user id in the body or query.
func (s *APIV1Service) resolveUser(c echo.Context, explicit string) string {
	if sub := auth.Subject(c); sub != auth.Anonymous {
		return sub
	}
	if id := strings.TrimSpace(explicit); id != "" {
		return id
	}
	return auth.Anonymous
}

func toExtractionError(err error) error {
	if errors.Is(err, braindump.ErrEmptyInput) {
		return apierrors.InvalidArgument("brain dump text is required")
	}
	return apierrors.Internal("failed to process brain dump", err)
}

// logger returns the request-scoped logger when one is attached.
func logger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if reqCtx, ok := observability.FromContext(ctx); ok {
		return reqCtx.WithFields()
	}
	return fallback
}

func eventsToStore(events []braindump.NormalizedEvent, creatorID string) []*store.Event {
	list := make([]*store.Event, 0, len(events))
	for _, ev := range events {
		list = append(list, &store.Event{
			UID:         ev.ID,
			CreatorID:   creatorID,
			Title:       ev.Title,
			Description: ev.Description,
			Date:        ev.Date,
			Time:        ev.Time,
			Priority:    string(ev.Priority),
		})
	}
	return list
}

func eventFromStore(e *store.Event) braindump.NormalizedEvent {
	return braindump.NormalizedEvent{
		ID:          e.UID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Priority:    braindump.Priority(e.Priority),
	}
}
