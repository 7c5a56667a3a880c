// ABOUTME: Tests for fan-out publishing, retry and fallback behaviour
// ABOUTME: Uses scripted fake platforms, a recording sleeper and a temp database
package publisher

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/platforms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlatform struct {
	name   string
	errs   []error
	calls  int
	texts  []string
	onCall func()
}

func (f *fakePlatform) Name() string { return f.name }

func (f *fakePlatform) Limits() platforms.Limits {
	l, _ := platforms.LimitsFor(f.name)
	return l
}

func (f *fakePlatform) Publish(_ context.Context, text string, _ []string) (*platforms.Receipt, error) {
	f.calls++
	f.texts = append(f.texts, text)
	if f.onCall != nil {
		f.onCall()
	}
	if len(f.errs) >= f.calls && f.errs[f.calls-1] != nil {
		return nil, f.errs[f.calls-1]
	}
	return &platforms.Receipt{ID: f.name + "-id"}, nil
}

func (f *fakePlatform) Reply(context.Context, string, string) (*platforms.Receipt, error) {
	return nil, errors.New("not used")
}

type recordingNotifier struct {
	entries []models.FallbackEntry
	err     error
}

func (r *recordingNotifier) Notify(_ context.Context, entry *models.FallbackEntry) error {
	entry.Recipient = "ops@example.com"
	r.entries = append(r.entries, *entry)
	return r.err
}

type harness struct {
	db       *sql.DB
	registry *platforms.Registry
	notifier *recordingNotifier
	sleeps   []time.Duration
	pub      *Publisher
}

func newHarness(t *testing.T, fakes ...*fakePlatform) *harness {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	h := &harness{db: database, registry: platforms.NewRegistry(database, nil), notifier: &recordingNotifier{}}
	for _, f := range fakes {
		h.registry.Register(f)
	}

	h.pub = New(database, h.registry)
	h.pub.Notifier = h.notifier
	h.pub.Sleep = func(ctx context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return ctx.Err()
	}
	return h
}

func newPost(platformNames ...string) *models.Post {
	return &models.Post{
		Content:   models.Content{Text: "Hello from the dashboard", Hashtags: []string{"crm"}},
		Platforms: platformNames,
	}
}

func TestPublishAllSucceed(t *testing.T) {
	tw := &fakePlatform{name: models.PlatformTwitter}
	li := &fakePlatform{name: models.PlatformLinkedIn}
	h := newHarness(t, tw, li)

	post := newPost(models.PlatformTwitter, models.PlatformLinkedIn)
	summary, err := h.pub.Publish(context.Background(), post)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.DispatchID)
	assert.Equal(t, models.PostStatusPublished, summary.Status)
	assert.Len(t, summary.Successes, 2)
	assert.Empty(t, summary.Errors)
	assert.Equal(t, []time.Duration{DefaultPostDelay}, h.sleeps, "one delay between two platforms, none before the first")
	assert.Equal(t, "Hello from the dashboard\n\n#crm", tw.texts[0])

	stored, err := db.GetPost(h.db, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, stored.Status)

	results, err := db.ListPostResults(h.db, post.ID)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestTransientErrorRetriedOnce(t *testing.T) {
	tw := &fakePlatform{name: models.PlatformTwitter, errs: []error{
		&platforms.APIError{Platform: models.PlatformTwitter, StatusCode: 503, Message: "over capacity"},
	}}
	h := newHarness(t, tw)

	summary, err := h.pub.Publish(context.Background(), newPost(models.PlatformTwitter))
	require.NoError(t, err)

	assert.Equal(t, 2, tw.calls)
	assert.Equal(t, []time.Duration{DefaultRetryDelay}, h.sleeps)
	require.Len(t, summary.Successes, 1)
	assert.Equal(t, 2, summary.Successes[0].Attempts)
	assert.Empty(t, h.notifier.entries)
}

func TestTransientErrorTwiceFallsBack(t *testing.T) {
	rateLimited := errors.New("rate limit exceeded")
	tw := &fakePlatform{name: models.PlatformTwitter, errs: []error{rateLimited, rateLimited, rateLimited}}
	h := newHarness(t, tw)

	summary, err := h.pub.Publish(context.Background(), newPost(models.PlatformTwitter))
	require.NoError(t, err)

	assert.Equal(t, 2, tw.calls, "exactly one retry")
	assert.Equal(t, models.PostStatusFailed, summary.Status)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, platforms.KindTransient, summary.Errors[0].ErrorKind)
	assert.True(t, summary.Errors[0].FallbackLogged)
	require.Len(t, h.notifier.entries, 1)
	assert.Equal(t, models.PlatformTwitter, h.notifier.entries[0].Platform)

	entries, err := db.ListFallbackEntries(h.db, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Notified)
	assert.Equal(t, "ops@example.com", entries[0].Recipient)
}

func TestPermanentErrorNotRetried(t *testing.T) {
	li := &fakePlatform{name: models.PlatformLinkedIn, errs: []error{
		&platforms.APIError{Platform: models.PlatformLinkedIn, StatusCode: 401, Message: "expired token"},
	}}
	fb := &fakePlatform{name: models.PlatformFacebook}
	h := newHarness(t, li, fb)

	summary, err := h.pub.Publish(context.Background(), newPost(models.PlatformLinkedIn, models.PlatformFacebook))
	require.NoError(t, err)

	assert.Equal(t, 1, li.calls)
	assert.Equal(t, 1, fb.calls)
	assert.Equal(t, models.PostStatusPartial, summary.Status)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, platforms.KindPermanent, summary.Errors[0].ErrorKind)
	assert.Len(t, h.notifier.entries, 1)
}

func TestNotConnectedPlatformFallsBack(t *testing.T) {
	h := newHarness(t)

	summary, err := h.pub.Publish(context.Background(), newPost(models.PlatformInstagram))
	require.NoError(t, err)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0].Error, "not connected")
	assert.Equal(t, 0, summary.Errors[0].Attempts)
	assert.Len(t, h.notifier.entries, 1)
}

func TestNotifyFailureDoesNotFailDispatch(t *testing.T) {
	li := &fakePlatform{name: models.PlatformLinkedIn, errs: []error{errors.New("duplicate post")}}
	h := newHarness(t, li)
	h.notifier.err = errors.New("smtp down")

	summary, err := h.pub.Publish(context.Background(), newPost(models.PlatformLinkedIn))
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusFailed, summary.Status)

	entries, err := db.ListFallbackEntries(h.db, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Notified)
	assert.Equal(t, "smtp down", entries[0].NotifyError)
}

func TestCancellationMarksRemainingPlatforms(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tw := &fakePlatform{name: models.PlatformTwitter, onCall: cancel}
	li := &fakePlatform{name: models.PlatformLinkedIn}
	fb := &fakePlatform{name: models.PlatformFacebook}
	h := newHarness(t, tw, li, fb)

	summary, err := h.pub.Publish(ctx, newPost(models.PlatformTwitter, models.PlatformLinkedIn, models.PlatformFacebook))
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusPartial, summary.Status)
	require.Len(t, summary.Successes, 1)
	require.Len(t, summary.Errors, 2)
	for _, e := range summary.Errors {
		assert.Equal(t, "cancelled", e.Error)
		assert.False(t, e.FallbackLogged)
	}
	assert.Equal(t, 0, li.calls)
	assert.Equal(t, 0, fb.calls)
	assert.Empty(t, h.notifier.entries)
}

func TestPublishDue(t *testing.T) {
	tw := &fakePlatform{name: models.PlatformTwitter}
	h := newHarness(t, tw)

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	due := newPost(models.PlatformTwitter)
	due.ScheduledAt = &past
	later := newPost(models.PlatformTwitter)
	later.ScheduledAt = &future
	require.NoError(t, db.CreatePost(h.db, due))
	require.NoError(t, db.CreatePost(h.db, later))

	summaries, err := h.pub.PublishDue(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, due.ID, summaries[0].PostID)

	again, err := h.pub.PublishDue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, again, "published posts are no longer due")
}

func TestPublishRequiresPlatforms(t *testing.T) {
	h := newHarness(t)
	_, err := h.pub.Publish(context.Background(), &models.Post{Content: models.Content{Text: "x"}})
	assert.Error(t, err)
}
