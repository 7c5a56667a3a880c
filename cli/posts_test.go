// ABOUTME: Tests for post and credential CLI commands
// ABOUTME: Drafts, publishes and fans out to fake platforms, then checks stored results
package cli

import (
	"testing"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/platforms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onlyPost(t *testing.T, app *App) models.Post {
	t.Helper()
	posts, err := db.ListPosts(app.DB, "", 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	return posts[0]
}

func TestPostComposeDraftThenPublish(t *testing.T) {
	twitter := &fakePlatform{name: models.PlatformTwitter}
	app := setupTestApp(t, twitter)

	require.NoError(t, PostComposeCommand(app, []string{"--text", "Shipping day", "--platforms", "twitter", "--hashtags", "go,release"}))

	draft := onlyPost(t, app)
	assert.Equal(t, models.PostStatusDraft, draft.Status)
	assert.Equal(t, []string{"go", "release"}, draft.Content.Hashtags)
	assert.Empty(t, twitter.publishes)

	require.NoError(t, PostPublishCommand(app, []string{draft.ID}))
	require.Len(t, twitter.publishes, 1)
	assert.Contains(t, twitter.publishes[0], "Shipping day")

	published := onlyPost(t, app)
	assert.Equal(t, models.PostStatusPublished, published.Status)

	assert.ErrorContains(t, PostPublishCommand(app, []string{draft.ID}), "already dispatched")
	assert.NoError(t, PostListCommand(app, []string{}))
}

func TestPostComposeNowWithFailingPlatform(t *testing.T) {
	twitter := &fakePlatform{name: models.PlatformTwitter}
	linkedin := &fakePlatform{
		name: models.PlatformLinkedIn,
		err:  &platforms.APIError{Platform: models.PlatformLinkedIn, StatusCode: 401, Message: "token expired"},
	}
	app := setupTestApp(t, twitter, linkedin)

	require.NoError(t, PostComposeCommand(app, []string{"--text", "Hello", "--platforms", "twitter,linkedin", "--now"}))

	post := onlyPost(t, app)
	assert.Equal(t, models.PostStatusPartial, post.Status)

	entries, err := db.ListFallbackEntries(app.DB, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.PlatformLinkedIn, entries[0].Platform)
	assert.Equal(t, models.ErrorKindPermanent, entries[0].ErrorKind)

	assert.NoError(t, PostFallbacksCommand(app, []string{"--full"}))
}

func TestPostComposeValidation(t *testing.T) {
	app := setupTestApp(t)

	assert.Error(t, PostComposeCommand(app, []string{}))
	assert.Error(t, PostComposeCommand(app, []string{"--text", "x", "--platforms", "myspace"}))
	assert.Error(t, PostComposeCommand(app, []string{"--text", "x", "--voice", "pirate"}))
	assert.Error(t, PostComposeCommand(app, []string{"--text", "x", "--now", "--at", "2030-01-01T00:00:00Z"}))
	assert.Error(t, PostComposeCommand(app, []string{"--text", "x", "--at", "tomorrow"}))

	posts, err := db.ListPosts(app.DB, "", 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostComposeScheduleAndPreview(t *testing.T) {
	app := setupTestApp(t)

	require.NoError(t, PostComposeCommand(app, []string{"--text", "Later", "--platforms", "facebook", "--at", "2030-01-01T09:00:00Z"}))
	post := onlyPost(t, app)
	assert.Equal(t, models.PostStatusScheduled, post.Status)
	require.NotNil(t, post.ScheduledAt)

	require.NoError(t, PostComposeCommand(app, []string{"--text", "Just looking", "--preview"}))
	onlyPost(t, app)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList(" a, b,,c "))
	assert.Nil(t, splitList(""))
}

func TestCredentialsCommands(t *testing.T) {
	app := setupTestApp(t)

	require.NoError(t, CredentialsSetCommand(app.DB, []string{"--token", "abcd1234efgh", "--account", "42", "twitter"}))
	cred, err := db.GetCredential(app.DB, models.PlatformTwitter)
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "42", cred.AccountID)

	assert.NoError(t, CredentialsListCommand(app.DB, nil))
	assert.Error(t, CredentialsSetCommand(app.DB, []string{"--token", "x", "myspace"}))

	require.NoError(t, CredentialsRemoveCommand(app.DB, []string{"twitter"}))
	cred, err = db.GetCredential(app.DB, models.PlatformTwitter)
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "abcd…efgh", maskToken("abcd1234efgh"))
	assert.Equal(t, "•••", maskToken("abc"))
}
