// ABOUTME: Shared fixtures for MCP handler tests
// ABOUTME: Temp databases, a badger-backed settings store and recording fake platforms
package handlers

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/platforms"
	"github.com/harperreed/amplify/publisher"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func setupSettings(t *testing.T) charm.Store {
	t.Helper()
	client, cleanup := charm.NewTestClient(t)
	t.Cleanup(cleanup)
	return client
}

// fakePlatform records what it was asked to publish or reply.
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
	return &platforms.Receipt{ID: f.name + "-post", URL: "https://example.com/" + f.name}, nil
}

func (f *fakePlatform) Reply(_ context.Context, inReplyTo, text string) (*platforms.Receipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.replies = append(f.replies, inReplyTo+":"+text)
	return &platforms.Receipt{ID: "reply-" + inReplyTo}, nil
}

func newTestRegistry(database *sql.DB, fakes ...*fakePlatform) *platforms.Registry {
	registry := platforms.NewRegistry(database, nil)
	for _, f := range fakes {
		registry.Register(f)
	}
	return registry
}

func newTestPublisher(database *sql.DB, resolver platforms.Resolver) *publisher.Publisher {
	pub := publisher.New(database, resolver)
	pub.Notifier = nil
	pub.Sleep = func(context.Context, time.Duration) error { return nil }
	return pub
}
