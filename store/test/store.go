package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/christianacho/espresso/internal/profile"
	"github.com/christianacho/espresso/store"
	"github.com/christianacho/espresso/store/db"
)

// NewTestingStore opens a migrated store for driver, which is "sqlite" or
// "postgres". SQLite stores live in a per-test temp dir.
func NewTestingStore(ctx context.Context, t *testing.T, driver string) *store.Store {
	t.Helper()

	p := &profile.Profile{
		Mode:   "dev",
		Driver: driver,
		Data:   t.TempDir(),
	}
	switch driver {
	case "postgres":
		p.DSN = GetPostgresDSN(t)
	default:
		p.DSN = filepath.Join(p.Data, "espresso_test.db")
	}

	dbDriver, err := db.NewDBDriver(p)
	require.NoError(t, err)

	s := store.New(dbDriver, p)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() {
		if driver == "postgres" {
			_, _ = dbDriver.GetDB().ExecContext(context.Background(), "DELETE FROM event")
		}
		_ = s.Close()
	})
	return s
}
