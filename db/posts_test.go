// ABOUTME: Tests for post, credential, fallback, automation log and responder storage
// ABOUTME: Uses in-memory SQLite databases from setupTestDB
package db

import (
	"errors"
	"testing"
	"time"

	"github.com/harperreed/amplify/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	post := &models.Post{
		Content: models.Content{
			Text:       "Launching today",
			Hashtags:   []string{"launch", "go"},
			CTA:        "Read more on the blog",
			BrandVoice: models.VoiceCasual,
		},
		Platforms: []string{models.PlatformTwitter, models.PlatformLinkedIn},
	}
	require.NoError(t, CreatePost(db, post))
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, models.PostStatusDraft, post.Status)
	assert.Equal(t, models.SourceComposer, post.Source)

	got, err := GetPost(db, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, post.Content, got.Content)
	assert.Equal(t, post.Platforms, got.Platforms)
	assert.Nil(t, got.PublishedAt)
}

func TestCreatePostValidation(t *testing.T) {
	db := setupTestDB(t)

	assert.Error(t, CreatePost(db, &models.Post{Platforms: []string{models.PlatformTwitter}}))
	assert.Error(t, CreatePost(db, &models.Post{Content: models.Content{Text: "hi"}}))
	assert.Error(t, CreatePost(db, &models.Post{Content: models.Content{Text: "hi"}, Platforms: []string{"myspace"}}))
}

func TestScheduledPostsBecomeDue(t *testing.T) {
	db := setupTestDB(t)

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	due := &models.Post{Content: models.Content{Text: "due"}, Platforms: []string{models.PlatformFacebook}, ScheduledAt: &past}
	later := &models.Post{Content: models.Content{Text: "later"}, Platforms: []string{models.PlatformFacebook}, ScheduledAt: &future}
	require.NoError(t, CreatePost(db, due))
	require.NoError(t, CreatePost(db, later))
	assert.Equal(t, models.PostStatusScheduled, due.Status)

	posts, err := ListDueScheduledPosts(db, time.Now())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, due.ID, posts[0].ID)
}

func TestUpdatePostStatusAndResults(t *testing.T) {
	db := setupTestDB(t)

	post := &models.Post{Content: models.Content{Text: "status"}, Platforms: []string{models.PlatformTwitter}}
	require.NoError(t, CreatePost(db, post))

	require.NoError(t, SavePostResult(db, &models.PostResult{PostID: post.ID, Platform: models.PlatformTwitter, Success: true, RemoteID: "123", Attempts: 1}))
	require.NoError(t, SavePostResult(db, &models.PostResult{PostID: post.ID, Platform: models.PlatformLinkedIn, Error: "401", ErrorKind: models.ErrorKindPermanent, Attempts: 1, FallbackLogged: true}))
	require.NoError(t, UpdatePostStatus(db, post.ID, models.PostStatusPartial))

	got, err := GetPost(db, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPartial, got.Status)
	assert.NotNil(t, got.PublishedAt)

	results, err := ListPostResults(db, post.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.Equal(t, "123", results[0].RemoteID)
	assert.True(t, results[1].FallbackLogged)

	stats, err := PostStats(db)
	require.NoError(t, err)
	assert.Equal(t, 1, stats[models.PostStatusPartial])

	tally, err := PlatformResultStats(db)
	require.NoError(t, err)
	assert.Equal(t, PlatformTally{Delivered: 1}, tally[models.PlatformTwitter])
	assert.Equal(t, PlatformTally{Failed: 1, Fallbacks: 1}, tally[models.PlatformLinkedIn])

	assert.Error(t, UpdatePostStatus(db, "missing", models.PostStatusFailed))
}

func TestListPostsFiltersByStatus(t *testing.T) {
	db := setupTestDB(t)

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, CreatePost(db, &models.Post{Content: models.Content{Text: text}, Platforms: []string{models.PlatformTwitter}}))
	}
	posts, err := ListPosts(db, "", 10)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "three", posts[0].Content.Text)

	require.NoError(t, UpdatePostStatus(db, posts[0].ID, models.PostStatusFailed))
	failed, err := ListPosts(db, models.PostStatusFailed, 10)
	require.NoError(t, err)
	assert.Len(t, failed, 1)
}

func TestCredentials(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, SaveCredential(db, &models.PlatformCredential{Platform: models.PlatformTwitter, AccessToken: "tok", AccountID: "42"}))
	require.NoError(t, SaveCredential(db, &models.PlatformCredential{Platform: models.PlatformTwitter, AccessToken: "tok2", AccountID: "42"}))
	assert.Error(t, SaveCredential(db, &models.PlatformCredential{Platform: "tiktok", AccessToken: "x"}))
	assert.Error(t, SaveCredential(db, &models.PlatformCredential{Platform: models.PlatformFacebook}))

	cred, err := GetCredential(db, models.PlatformTwitter)
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "tok2", cred.AccessToken)

	creds, err := ListCredentials(db)
	require.NoError(t, err)
	assert.Len(t, creds, 1)

	require.NoError(t, DeleteCredential(db, models.PlatformTwitter))
	cred, err = GetCredential(db, models.PlatformTwitter)
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestFallbackEntries(t *testing.T) {
	db := setupTestDB(t)

	entry := &models.FallbackEntry{PostID: "p1", Platform: models.PlatformInstagram, Content: "hello", Error: "media required", ErrorKind: models.ErrorKindPermanent}
	require.NoError(t, CreateFallbackEntry(db, entry))
	require.NoError(t, MarkFallbackNotified(db, entry.ID, "me@example.com", errors.New("smtp down")))

	entries, err := ListFallbackEntries(db, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Notified)
	assert.Equal(t, "smtp down", entries[0].NotifyError)
	assert.Equal(t, "me@example.com", entries[0].Recipient)
}

func TestRecordAutomationFireDedups(t *testing.T) {
	db := setupTestDB(t)

	first, err := RecordAutomationFire(db, models.RuleBirthday, "c1", "2026-03-14", "p1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := RecordAutomationFire(db, models.RuleBirthday, "c1", "2026-03-14", "p2")
	require.NoError(t, err)
	assert.False(t, again)

	nextYear, err := RecordAutomationFire(db, models.RuleBirthday, "c1", "2027-03-14", "p3")
	require.NoError(t, err)
	assert.True(t, nextYear)

	fired, err := HasAutomationFired(db, models.RuleBirthday, "c1", "2026-03-14")
	require.NoError(t, err)
	assert.True(t, fired)

	fires, err := ListAutomationFires(db, 10)
	require.NoError(t, err)
	assert.Len(t, fires, 2)

	counts, err := CountAutomationFires(db, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, counts[models.RuleBirthday])

	later, err := CountAutomationFires(db, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, later)
}

func TestResponsesLifecycle(t *testing.T) {
	db := setupTestDB(t)

	resp := &models.Response{MentionID: "m1", Platform: models.PlatformTwitter, Author: "@pat", Keyword: "pricing", Category: "sales", Text: "Thanks for asking!"}
	require.NoError(t, CreateResponse(db, resp))
	assert.Equal(t, models.ResponsePending, resp.Status)

	dup := &models.Response{MentionID: "m1", Platform: models.PlatformTwitter, Keyword: "pricing", Category: "sales", Text: "again"}
	assert.Error(t, CreateResponse(db, dup))

	pending, err := ListResponses(db, models.ResponsePending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, UpdateResponseText(db, resp.ID, "Thanks, DM us!"))

	require.NoError(t, DecideResponse(db, resp.ID, models.ResponseSent, ""))
	assert.Error(t, DecideResponse(db, resp.ID, models.ResponseRejected, ""))
	assert.Error(t, UpdateResponseText(db, resp.ID, "too late"))

	got, err := GetResponse(db, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseSent, got.Status)
	assert.Equal(t, "Thanks, DM us!", got.Text)
	assert.NotNil(t, got.DecidedAt)

	times, err := ResponseTimesSince(db, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, times, 1)
}

func TestProcessedMentions(t *testing.T) {
	db := setupTestDB(t)

	done, err := IsMentionProcessed(db, models.PlatformTwitter, "m9")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, MarkMentionProcessed(db, models.PlatformTwitter, "m9"))
	require.NoError(t, MarkMentionProcessed(db, models.PlatformTwitter, "m9"))

	done, err = IsMentionProcessed(db, models.PlatformTwitter, "m9")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestSyncTokens(t *testing.T) {
	db := setupTestDB(t)

	token, err := GetSyncToken(db, "responder:twitter")
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, UpdateSyncToken(db, "responder:twitter", "1800"))
	token, err = GetSyncToken(db, "responder:twitter")
	require.NoError(t, err)
	assert.Equal(t, "1800", token)

	msg := "quota exceeded"
	require.NoError(t, UpdateSyncStatus(db, "contacts", models.SyncStatusError, &msg))
	states, err := GetAllSyncStates(db)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "contacts", states[0].Service)
	require.NotNil(t, states[0].ErrorMessage)
	assert.Equal(t, msg, *states[0].ErrorMessage)
	assert.Nil(t, states[0].LastSyncTime)
}
