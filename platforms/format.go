// ABOUTME: Per-platform content formatting
// ABOUTME: Appends CTA, scripture and hashtags by brand voice, then truncates to the rune limit
package platforms

import (
	"strings"
	"unicode/utf8"

	"github.com/harperreed/amplify/models"
)

const ellipsis = "…"

// Format renders content for a platform. The result never exceeds
// l.MaxChars runes.
func Format(c models.Content, l Limits) string {
	body := strings.TrimSpace(c.Text)

	if c.BrandVoice != "" && strings.TrimSpace(c.CTA) != "" {
		body = joinParagraph(body, strings.TrimSpace(c.CTA))
	}
	if c.BrandVoice == models.VoiceBibleScholar && strings.TrimSpace(c.Scripture) != "" {
		body = joinParagraph(body, strings.TrimSpace(c.Scripture))
	}

	if tags := NormalizeHashtags(c.Hashtags, l.MaxHashtags); len(tags) > 0 {
		body = joinParagraph(body, strings.Join(tags, " "))
	}

	return Truncate(body, l.MaxChars)
}

func joinParagraph(body, extra string) string {
	if body == "" {
		return extra
	}
	return body + "\n\n" + extra
}

// NormalizeHashtags prefixes each tag with "#", drops blanks and duplicates
// (case-insensitively) and keeps at most max. A max of zero or less keeps none.
func NormalizeHashtags(tags []string, max int) []string {
	if max <= 0 {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, tag := range tags {
		tag = strings.TrimLeft(strings.TrimSpace(tag), "#")
		tag = strings.Join(strings.Fields(tag), "")
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, "#"+tag)
		if len(out) == max {
			break
		}
	}
	return out
}

// Truncate cuts s to at most max runes, ending with an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)
	if max == 1 {
		return ellipsis
	}
	return strings.TrimRightFunc(string(runes[:max-1]), isSpace) + ellipsis
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}
