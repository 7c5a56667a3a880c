// ABOUTME: Canned reply table keyed by brand voice and response category
// ABOUTME: Builds reply text with an optional scripture reference
package responder

import (
	"math/rand"
	"strings"

	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/platforms"
)

// Response categories.
const (
	CategoryQuestion = "question"
	CategorySupport  = "support"
	CategorySales    = "sales"
	CategoryPraise   = "praise"
	CategoryGeneral  = "general"
)

var Categories = []string{CategoryQuestion, CategorySupport, CategorySales, CategoryPraise, CategoryGeneral}

var replyTable = map[string]map[string][]string{
	models.VoiceProfessional: {
		CategoryQuestion: {
			"Great question! We'll follow up with details shortly.",
			"Thanks for asking. Our team will get back to you with an answer soon.",
		},
		CategorySupport: {
			"Sorry to hear you're running into trouble. Please DM us and we'll help right away.",
			"We're here to help. Send us a direct message with the details.",
		},
		CategorySales: {
			"Thanks for your interest! Send us a DM and we'll share pricing options.",
		},
		CategoryPraise: {
			"Thank you for the kind words. We truly appreciate your support!",
			"We appreciate you taking the time to share this. Thank you!",
		},
		CategoryGeneral: {
			"Thanks for reaching out. We appreciate you!",
		},
	},
	models.VoiceCasual: {
		CategoryQuestion: {
			"Ooh good one! Let us dig into that and get back to you.",
		},
		CategorySupport: {
			"Oh no! Shoot us a DM and we'll sort it out.",
			"Ugh, sorry about that. DM us and we'll fix it.",
		},
		CategorySales: {
			"Glad you're interested! DM us and we'll hook you up with the details.",
		},
		CategoryPraise: {
			"You're the best, thank you!!",
			"This made our day. Thanks so much!",
		},
		CategoryGeneral: {
			"Hey, thanks for the shout!",
		},
	},
	models.VoiceBibleScholar: {
		CategoryQuestion: {
			"Thank you for asking. We will seek out an answer and return to you soon.",
		},
		CategorySupport: {
			"We're sorry for the trouble. Please message us so we can help carry this burden.",
		},
		CategorySales: {
			"Thank you for your interest. Message us and we'll gladly share the details.",
		},
		CategoryPraise: {
			"Your encouragement is a blessing. Thank you!",
		},
		CategoryGeneral: {
			"Grace and peace to you. Thanks for reaching out!",
		},
	},
}

var scriptureRefs = map[string][]string{
	CategoryQuestion: {"James 1:5", "Proverbs 2:6"},
	CategorySupport:  {"Galatians 6:2", "Psalm 46:1"},
	CategorySales:    {"Proverbs 16:3"},
	CategoryPraise:   {"1 Thessalonians 5:11", "Philippians 1:3"},
	CategoryGeneral:  {"Numbers 6:24"},
}

// BuildReply picks a reply for voice and category. Unknown voices fall back
// to professional and unknown categories to general. The result fits the
// platform's character limit.
func BuildReply(rng *rand.Rand, platform, voice, category, author string, includeScripture bool) string {
	byCategory, ok := replyTable[voice]
	if !ok {
		byCategory = replyTable[models.VoiceProfessional]
	}
	choices, ok := byCategory[category]
	if !ok {
		category = CategoryGeneral
		choices = byCategory[CategoryGeneral]
	}

	var b strings.Builder
	if author != "" {
		b.WriteString(author)
		b.WriteString(" ")
	}
	b.WriteString(choices[rng.Intn(len(choices))])

	if includeScripture {
		if refs := scriptureRefs[category]; len(refs) > 0 {
			b.WriteString(" (")
			b.WriteString(refs[rng.Intn(len(refs))])
			b.WriteString(")")
		}
	}

	text := b.String()
	if l, err := platforms.LimitsFor(platform); err == nil {
		text = platforms.Truncate(text, l.MaxChars)
	}
	return text
}
