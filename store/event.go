package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a delete or lookup matches no rows.
var ErrNotFound = errors.New("not found")

// Event is a persisted calendar event produced from a brain dump.
type Event struct {
	ID        int32
	UID       string
	CreatorID string
	CreatedTs int64

	Title       string
	Description string
	// Date is YYYY-MM-DD.
	Date string
	// Time is the display time, nil when unspecified.
	Time     *string
	Priority string
}

type FindEvent struct {
	UID       *string
	CreatorID *string
	// Month limits results to one YYYY-MM month.
	Month *string
	Limit *int
}

type DeleteEvent struct {
	UID string
	// CreatorID scopes the delete when set.
	CreatorID *string
}

// MonthRange returns the inclusive start and exclusive end dates for a
// YYYY-MM month, in the layout events store their dates in.
func MonthRange(month string) (string, string, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", errors.Wrapf(err, "invalid month %q", month)
	}
	return start.Format(time.DateOnly), start.AddDate(0, 1, 0).Format(time.DateOnly), nil
}

// CreateEvents stores a batch of events in one transaction.
func (s *Store) CreateEvents(ctx context.Context, create []*Event) ([]*Event, error) {
	if len(create) == 0 {
		return create, nil
	}
	return s.driver.CreateEvents(ctx, create)
}

func (s *Store) ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error) {
	if find.Month != nil {
		if _, _, err := MonthRange(*find.Month); err != nil {
			return nil, err
		}
	}
	return s.driver.ListEvents(ctx, find)
}

func (s *Store) GetEvent(ctx context.Context, find *FindEvent) (*Event, error) {
	limit := 1
	find.Limit = &limit
	list, err := s.ListEvents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// DeleteEvent removes events by uid. It returns ErrNotFound when nothing
// matched.
func (s *Store) DeleteEvent(ctx context.Context, delete *DeleteEvent) error {
	affected, err := s.driver.DeleteEvent(ctx, delete)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Wrapf(ErrNotFound, "event %s", delete.UID)
	}
	return nil
}
