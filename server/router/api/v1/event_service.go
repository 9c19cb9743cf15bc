package v1

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/christianacho/espresso/plugin/ai/braindump"
	"github.com/christianacho/espresso/server/auth"
	apierrors "github.com/christianacho/espresso/server/internal/errors"
	"github.com/christianacho/espresso/store"
)

// ListEventsResponse wraps stored events.
type ListEventsResponse struct {
	Success bool                        `json:"success"`
	Events  []braindump.NormalizedEvent `json:"events"`
}

// DeleteEventResponse reports a successful delete.
type DeleteEventResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListEvents returns stored events for user_id, optionally within one month.
func (s *APIV1Service) ListEvents(c echo.Context) error {
	events, err := s.findEvents(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ListEventsResponse{Success: true, Events: events})
}

// ExportEvents returns stored events for user_id as an iCalendar file.
func (s *APIV1Service) ExportEvents(c echo.Context) error {
	events, err := s.findEvents(c)
	if err != nil {
		return err
	}

	now := s.Now()
	body := braindump.ExportICS(events, now.Location(), now)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="espresso.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// DeleteEvent removes one event. Authenticated callers can only delete
// their own events.
func (s *APIV1Service) DeleteEvent(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return apierrors.InvalidArgument("event id is required")
	}
	if s.Store == nil {
		return apierrors.NotFound("event not found")
	}

	del := &store.DeleteEvent{UID: id}
	if sub := auth.Subject(c); sub != auth.Anonymous {
		del.CreatorID = &sub
	}

	if err := s.Store.DeleteEvent(c.Request().Context(), del); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.NotFound("event not found").WithContext("id", id)
		}
		return apierrors.Internal("failed to delete event", err)
	}
	return c.JSON(http.StatusOK, DeleteEventResponse{Success: true, Message: "Event deleted successfully"})
}

func (s *APIV1Service) findEvents(c echo.Context) ([]braindump.NormalizedEvent, error) {
	find := &store.FindEvent{}
	userID := s.resolveUser(c, c.QueryParam("user_id"))
	find.CreatorID = &userID

	if month := strings.TrimSpace(c.QueryParam("month")); month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			return nil, apierrors.InvalidArgument("month must be YYYY-MM").WithContext("month", month)
		}
		find.Month = &month
	}

	events := make([]braindump.NormalizedEvent, 0)
	if s.Store == nil {
		return events, nil
	}

	list, err := s.Store.ListEvents(c.Request().Context(), find)
	if err != nil {
		return nil, apierrors.Internal("failed to list events", err)
	}
	for _, e := range list {
		events = append(events, eventFromStore(e))
	}
	return events, nil
}
