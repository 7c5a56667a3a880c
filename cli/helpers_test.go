// ABOUTME: Shared fixtures for CLI command tests
// ABOUTME: Builds an App over a temp database, a badger settings store and fake platforms
package cli

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/config"
	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/platforms"
	"github.com/stretchr/testify/require"
)

func setupTestCLI(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// fakePlatform records publishes and replies instead of calling an API.
type fakePlatform struct {
	name      string
	publishes []string
	replies   []string
	err       error
}

func (f *fakePlatform) Name() string { return f.name }

func (f *fakePlatform) Limits() platforms.Limits {
	l, _ := platforms.LimitsFor(f.name)
	return l
}

func (f *fakePlatform) Publish(_ context.Context, text string, _ []string) (*platforms.Receipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.publishes = append(f.publishes, text)
	return &platforms.Receipt{ID: f.name + "-1", URL: "https://example.com/" + f.name}, nil
}

func (f *fakePlatform) Reply(_ context.Context, inReplyTo, text string) (*platforms.Receipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.replies = append(f.replies, inReplyTo+":"+text)
	return &platforms.Receipt{ID: "reply-" + inReplyTo}, nil
}

func setupTestApp(t *testing.T, fakes ...*fakePlatform) *App {
	t.Helper()
	database := setupTestCLI(t)

	settings, cleanup := charm.NewTestClient(t)
	t.Cleanup(cleanup)

	app, err := NewApp(context.Background(), database, config.Default(), settings)
	require.NoError(t, err)

	for _, f := range fakes {
		app.Registry.Register(f)
	}
	app.Publisher.Sleep = func(context.Context, time.Duration) error { return nil }
	return app
}
