// ABOUTME: Tests for responder settings, keyword matching, limiter and reply building
// ABOUTME: Uses the in-memory KV store and a fake clock
package responder

import (
	"math/rand"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(charm.NewMemoryStore())
	require.NoError(t, err)

	assert.False(t, s.Enabled)
	assert.True(t, s.RequireApproval)
	assert.Equal(t, DefaultMaxPerHour, s.MaxPerHour)
	assert.Equal(t, models.VoiceProfessional, s.BrandVoice)
	assert.Equal(t, []string{models.PlatformTwitter}, s.Platforms)
	assert.NotEmpty(t, s.Keywords)
}

func TestAddAndRemoveKeyword(t *testing.T) {
	store := charm.NewMemoryStore()

	s, err := AddKeyword(store, "  Refund ", CategorySupport)
	require.NoError(t, err)
	assert.Contains(t, s.Keywords, Keyword{Keyword: "refund", Category: CategorySupport})

	s, err = AddKeyword(store, "refund", CategorySales)
	require.NoError(t, err)
	count := 0
	for _, k := range s.Keywords {
		if k.Keyword == "refund" {
			count++
			assert.Equal(t, CategorySales, k.Category)
		}
	}
	assert.Equal(t, 1, count)

	loaded, err := LoadSettings(store)
	require.NoError(t, err)
	assert.Equal(t, s.Keywords, loaded.Keywords)

	s, err = RemoveKeyword(store, "REFUND")
	require.NoError(t, err)
	for _, k := range s.Keywords {
		assert.NotEqual(t, "refund", k.Keyword)
	}

	_, err = RemoveKeyword(store, "refund")
	assert.Error(t, err)
}

func TestAddKeywordValidation(t *testing.T) {
	store := charm.NewMemoryStore()

	_, err := AddKeyword(store, "   ", CategorySupport)
	assert.Error(t, err)

	_, err = AddKeyword(store, "refund", "gossip")
	assert.Error(t, err)

	s, err := AddKeyword(store, "hello", "")
	require.NoError(t, err)
	assert.Contains(t, s.Keywords, Keyword{Keyword: "hello", Category: CategoryGeneral})
}

func TestSaveSettingsRejectsBadVoice(t *testing.T) {
	s := DefaultSettings()
	s.BrandVoice = "pirate"
	assert.Error(t, SaveSettings(charm.NewMemoryStore(), s))
}

func TestMatchKeyword(t *testing.T) {
	keywords := []Keyword{
		{Keyword: "help", Category: CategorySupport},
		{Keyword: "pricing", Category: CategorySales},
	}

	k, ok := MatchKeyword(keywords, "What's your PRICING? I need HELP")
	require.True(t, ok)
	assert.Equal(t, "help", k.Keyword)

	k, ok = MatchKeyword(keywords, "pricing please")
	require.True(t, ok)
	assert.Equal(t, CategorySales, k.Category)

	_, ok = MatchKeyword(keywords, "nice weather")
	assert.False(t, ok)
}

func TestLimiterSlidingWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(2, time.Hour)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow())
	now = now.Add(30 * time.Minute)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
	assert.Equal(t, 0, l.Remaining())

	now = now.Add(31 * time.Minute)
	assert.Equal(t, 1, l.Remaining())
	assert.True(t, l.Check())
	l.Record()
	assert.False(t, l.Check())
}

func TestLimiterSeedAndSetMax(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(2, time.Hour)
	l.now = func() time.Time { return now }

	l.Seed([]time.Time{now.Add(-2 * time.Hour), now.Add(-10 * time.Minute), now.Add(-5 * time.Minute)})
	assert.False(t, l.Check())

	l.SetMax(3)
	assert.True(t, l.Check())
}

func TestBuildReply(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	text := BuildReply(rng, models.PlatformTwitter, models.VoiceProfessional, CategorySupport, "@ada", false)
	assert.True(t, strings.HasPrefix(text, "@ada "))
	assert.NotContains(t, text, "(")

	text = BuildReply(rng, models.PlatformTwitter, models.VoiceBibleScholar, CategoryPraise, "", true)
	assert.True(t, strings.HasSuffix(text, ")"))

	text = BuildReply(rng, models.PlatformTwitter, "unknown", "unknown", "", false)
	assert.Equal(t, "Thanks for reaching out. We appreciate you!", text)

	long := "@" + strings.Repeat("x", 400)
	text = BuildReply(rng, models.PlatformTwitter, models.VoiceCasual, CategoryGeneral, long, false)
	assert.LessOrEqual(t, utf8.RuneCountInString(text), 280)
}
