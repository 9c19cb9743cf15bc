package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Event model related methods.
	CreateEvents(ctx context.Context, create []*Event) ([]*Event, error)
	ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error)
	DeleteEvent(ctx context.Context, delete *DeleteEvent) (int64, error)
}
