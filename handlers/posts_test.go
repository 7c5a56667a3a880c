// ABOUTME: Tests for post MCP tool handlers
// ABOUTME: Drafts, schedules and publishes through fake platforms
package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/platforms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposePostDraftAndSchedule(t *testing.T) {
	database := setupTestDB(t)
	handler := NewPostHandlers(database, newTestPublisher(database, newTestRegistry(database)))
	ctx := context.Background()

	_, draft, err := handler.ComposePost(ctx, nil, ComposePostInput{Text: "Hello world", Platforms: []string{"LinkedIn"}})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusDraft, draft.Status)
	assert.Equal(t, []string{models.PlatformLinkedIn}, draft.Platforms)
	assert.Equal(t, models.SourceComposer, draft.Source)
	assert.Empty(t, draft.Results)

	_, scheduled, err := handler.ComposePost(ctx, nil, ComposePostInput{Text: "Later", ScheduleAt: "2030-01-01T09:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusScheduled, scheduled.Status)
	assert.Equal(t, models.AllPlatforms, scheduled.Platforms)
	require.NotNil(t, scheduled.ScheduledAt)
	assert.Equal(t, "2030-01-01T09:00:00Z", *scheduled.ScheduledAt)
}

func TestComposePostValidation(t *testing.T) {
	database := setupTestDB(t)
	handler := NewPostHandlers(database, newTestPublisher(database, newTestRegistry(database)))
	ctx := context.Background()

	cases := []ComposePostInput{
		{Text: "  "},
		{Text: "x", Platforms: []string{"myspace"}},
		{Text: "x", BrandVoice: "pirate"},
		{Text: "x", ScheduleAt: "tomorrow"},
		{Text: "x", ScheduleAt: "2030-01-01T09:00:00Z", PublishNow: true},
	}
	for _, in := range cases {
		_, _, err := handler.ComposePost(ctx, nil, in)
		assert.Error(t, err, "input %+v", in)
	}

	posts, err := db.ListPosts(database, "", 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestComposePostPublishNow(t *testing.T) {
	database := setupTestDB(t)
	twitter := &fakePlatform{name: models.PlatformTwitter}
	linkedin := &fakePlatform{name: models.PlatformLinkedIn, err: &platforms.APIError{Platform: models.PlatformLinkedIn, StatusCode: 401, Message: "expired token"}}
	handler := NewPostHandlers(database, newTestPublisher(database, newTestRegistry(database, twitter, linkedin)))

	_, out, err := handler.ComposePost(context.Background(), nil, ComposePostInput{
		Text:       "Big news",
		Platforms:  []string{models.PlatformTwitter, models.PlatformLinkedIn},
		Hashtags:   []string{"launch"},
		PublishNow: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPartial, out.Status)
	assert.NotNil(t, out.PublishedAt)
	require.Len(t, out.Results, 2)
	assert.True(t, out.Results[0].Success)
	assert.False(t, out.Results[1].Success)
	assert.Equal(t, models.ErrorKindPermanent, out.Results[1].ErrorKind)
	assert.True(t, out.Results[1].FallbackLogged)

	require.Len(t, twitter.publishes, 1)
	assert.Contains(t, twitter.publishes[0], "#launch")
}

func TestPublishPostHandler(t *testing.T) {
	database := setupTestDB(t)
	facebook := &fakePlatform{name: models.PlatformFacebook}
	handler := NewPostHandlers(database, newTestPublisher(database, newTestRegistry(database, facebook)))
	ctx := context.Background()

	_, draft, err := handler.ComposePost(ctx, nil, ComposePostInput{Text: "Draft first", Platforms: []string{models.PlatformFacebook}})
	require.NoError(t, err)

	_, out, err := handler.PublishPost(ctx, nil, PublishPostInput{PostID: draft.ID})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, out.Status)
	assert.Len(t, facebook.publishes, 1)

	_, _, err = handler.PublishPost(ctx, nil, PublishPostInput{PostID: draft.ID})
	assert.ErrorContains(t, err, "already dispatched")

	_, _, err = handler.PublishPost(ctx, nil, PublishPostInput{PostID: "missing"})
	assert.ErrorContains(t, err, "not found")

	_, _, err = handler.PublishPost(ctx, nil, PublishPostInput{})
	assert.Error(t, err)
}

func TestListPostsHandler(t *testing.T) {
	database := setupTestDB(t)
	twitter := &fakePlatform{name: models.PlatformTwitter, err: errors.New("boom")}
	handler := NewPostHandlers(database, newTestPublisher(database, newTestRegistry(database, twitter)))
	ctx := context.Background()

	_, _, err := handler.ComposePost(ctx, nil, ComposePostInput{Text: "draft", Platforms: []string{models.PlatformTwitter}})
	require.NoError(t, err)
	_, failed, err := handler.ComposePost(ctx, nil, ComposePostInput{Text: "fails", Platforms: []string{models.PlatformTwitter}, PublishNow: true})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusFailed, failed.Status)

	_, all, err := handler.ListPosts(ctx, nil, ListPostsInput{})
	require.NoError(t, err)
	assert.Len(t, all.Posts, 2)

	_, onlyFailed, err := handler.ListPosts(ctx, nil, ListPostsInput{Status: models.PostStatusFailed})
	require.NoError(t, err)
	require.Len(t, onlyFailed.Posts, 1)
	require.Len(t, onlyFailed.Posts[0].Results, 1)
	assert.Equal(t, "boom", onlyFailed.Posts[0].Results[0].Error)
}
