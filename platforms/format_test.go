// ABOUTME: Tests for per-platform formatting and truncation
// ABOUTME: Checks rune limits, hashtag caps and brand-voice extras
package platforms

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/harperreed/amplify/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTruncatesToTwitterLimit(t *testing.T) {
	l, err := LimitsFor(models.PlatformTwitter)
	require.NoError(t, err)

	out := Format(models.Content{Text: strings.Repeat("a", 400)}, l)
	assert.Equal(t, 280, utf8.RuneCountInString(out))
	assert.True(t, strings.HasSuffix(out, "…"))
}

func TestFormatCountsRunesNotBytes(t *testing.T) {
	l, err := LimitsFor(models.PlatformTwitter)
	require.NoError(t, err)

	short := strings.Repeat("é", 280)
	assert.Equal(t, short, Format(models.Content{Text: short}, l), "exactly at the limit is untouched")

	long := strings.Repeat("🎉", 300)
	out := Format(models.Content{Text: long}, l)
	assert.Equal(t, 280, utf8.RuneCountInString(out))
}

func TestFormatNeverExceedsLimit(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	words := []string{"launch", "growth", "ünïcödé", "🙂", "network", "client", " ", "\n"}

	for _, platform := range models.AllPlatforms {
		l, err := LimitsFor(platform)
		require.NoError(t, err)

		for i := 0; i < 200; i++ {
			var b strings.Builder
			n := rng.Intn(l.MaxChars/4 + 50)
			for j := 0; j < n; j++ {
				b.WriteString(words[rng.Intn(len(words))])
			}
			c := models.Content{
				Text:       b.String(),
				Hashtags:   []string{"one", "two", "three", "four", "five", "six"},
				CTA:        "Book a call today",
				Scripture:  "Proverbs 16:3",
				BrandVoice: models.VoiceBibleScholar,
			}
			out := Format(c, l)
			assert.LessOrEqual(t, utf8.RuneCountInString(out), l.MaxChars, "platform %s", platform)
		}
	}
}

func TestFormatHashtags(t *testing.T) {
	l := Limits{MaxChars: 500, MaxHashtags: 3}
	c := models.Content{
		Text:     "Hello",
		Hashtags: []string{"go", "#Go", " ", "social media", "#crm", "extra"},
	}
	assert.Equal(t, "Hello\n\n#go #socialmedia #crm", Format(c, l))
}

func TestFormatBrandVoiceExtras(t *testing.T) {
	l := Limits{MaxChars: 500, MaxHashtags: 5}

	plain := models.Content{Text: "Hi", CTA: "Visit us", Scripture: "John 3:16"}
	assert.Equal(t, "Hi", Format(plain, l), "no voice means no CTA")

	casual := plain
	casual.BrandVoice = models.VoiceCasual
	assert.Equal(t, "Hi\n\nVisit us", Format(casual, l))

	scholar := plain
	scholar.BrandVoice = models.VoiceBibleScholar
	assert.Equal(t, "Hi\n\nVisit us\n\nJohn 3:16", Format(scholar, l))
}

func TestNormalizeHashtagsZeroCap(t *testing.T) {
	assert.Nil(t, NormalizeHashtags([]string{"a"}, 0))
}

func TestTruncateEdgeCases(t *testing.T) {
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "…", Truncate("abc", 1))
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab…", Truncate("abcd", 3))
	assert.Equal(t, "a…", Truncate("a bcd", 3), "trailing space before the ellipsis is dropped")
}

func TestLimitsForUnknown(t *testing.T) {
	_, err := LimitsFor("myspace")
	assert.Error(t, err)
}
