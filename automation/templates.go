// ABOUTME: Post templates for automation rules, keyed by template set and brand voice
// ABOUTME: Renders text/template bodies with contact name, company, years and counts
package automation

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"text/template"

	"github.com/harperreed/amplify/models"
)

// TemplateData is what every automation template can reference.
type TemplateData struct {
	Name      string
	FirstName string
	Company   string
	Years     int
	Count     int
}

// voiceDefault is used when a set has no variant for the rule's voice.
const voiceDefault = "default"

type templateSet struct {
	hashtags  []string
	scripture []string
	bodies    map[string][]*template.Template
}

var templateSets = map[string]templateSet{
	models.RuleWelcome: {
		hashtags:  []string{"welcome", "networking"},
		scripture: []string{"Romans 15:7", "Proverbs 27:17"},
		bodies: compile(models.RuleWelcome, map[string][]string{
			voiceDefault: {
				"Welcome aboard, {{.Name}}! Looking forward to working together.",
			},
			models.VoiceProfessional: {
				"Pleased to welcome {{.Name}}{{if .Company}} of {{.Company}}{{end}} to our network. Looking forward to what we build together.",
				"A warm welcome to {{.Name}}{{if .Company}} from {{.Company}}{{end}}. Great connections make great work.",
			},
			models.VoiceCasual: {
				"Say hi to {{.FirstName}}{{if .Company}} from {{.Company}}{{end}}! Stoked to have you here.",
				"New friend alert: {{.Name}} just joined the crew!",
			},
			models.VoiceBibleScholar: {
				"We give thanks for {{.Name}} joining our community. Iron sharpens iron.",
			},
		}),
	},
	models.RuleFollowUp: {
		hashtags:  []string{"relationships"},
		scripture: []string{"Ecclesiastes 4:9-10"},
		bodies: compile(models.RuleFollowUp, map[string][]string{
			voiceDefault: {
				"Thinking about the great conversations with {{.Name}}. Time to catch up!",
			},
			models.VoiceProfessional: {
				"Relationships grow with attention. Reconnecting with {{.Name}}{{if .Company}} at {{.Company}}{{end}} this week.",
				"Great partnerships need regular check-ins. Looking forward to catching up with {{.Name}}.",
			},
			models.VoiceCasual: {
				"Been way too long, {{.FirstName}}! Coffee soon?",
			},
			models.VoiceBibleScholar: {
				"Two are better than one. Looking forward to reconnecting with {{.Name}}.",
			},
		}),
	},
	models.RuleBirthday: {
		hashtags:  []string{"birthday"},
		scripture: []string{"Numbers 6:24-26", "Psalm 118:24"},
		bodies: compile(models.RuleBirthday, map[string][]string{
			voiceDefault: {
				"Happy birthday, {{.FirstName}}!",
			},
			models.VoiceProfessional: {
				"Wishing {{.Name}} a very happy birthday and a great year ahead.",
			},
			models.VoiceCasual: {
				"Happy birthday {{.FirstName}}! Hope it's a great one 🎉",
				"It's {{.FirstName}}'s birthday! Go celebrate!",
			},
			models.VoiceBibleScholar: {
				"Happy birthday, {{.FirstName}}! May the Lord bless you and keep you.",
			},
		}),
	},
	models.RuleAnniversary: {
		hashtags:  []string{"workanniversary", "milestone"},
		scripture: []string{"Galatians 6:9"},
		bodies: compile(models.RuleAnniversary, map[string][]string{
			voiceDefault: {
				"Congratulations to {{.Name}} on {{.Years}} {{if eq .Years 1}}year{{else}}years{{end}}{{if .Company}} at {{.Company}}{{end}}!",
			},
			models.VoiceProfessional: {
				"Congratulations to {{.Name}} on {{.Years}} {{if eq .Years 1}}year{{else}}years{{end}}{{if .Company}} at {{.Company}}{{end}}. An impressive milestone.",
				"{{.Years}} {{if eq .Years 1}}year{{else}}years{{end}} and counting! Celebrating {{.Name}}'s dedication{{if .Company}} at {{.Company}}{{end}}.",
			},
			models.VoiceCasual: {
				"{{.Years}} {{if eq .Years 1}}year{{else}}years{{end}} at the job, {{.FirstName}}! Crushing it.",
			},
			models.VoiceBibleScholar: {
				"Celebrating {{.Years}} faithful {{if eq .Years 1}}year{{else}}years{{end}} for {{.Name}}. Let us not grow weary in doing good.",
			},
		}),
	},
	models.RuleNetworkingDigest: {
		hashtags:  []string{"networking", "community"},
		scripture: []string{"Hebrews 10:24"},
		bodies: compile(models.RuleNetworkingDigest, map[string][]string{
			voiceDefault: {
				"Connected with {{.Count}} {{if eq .Count 1}}person{{else}}people{{end}} this week. Grateful for this network!",
			},
			models.VoiceProfessional: {
				"This week I connected with {{.Count}} {{if eq .Count 1}}person{{else}}people{{end}} across our network. Every conversation moves the work forward.",
				"Weekly reflection: {{.Count}} meaningful {{if eq .Count 1}}conversation{{else}}conversations{{end}}. Thank you all.",
			},
			models.VoiceCasual: {
				"Caught up with {{.Count}} awesome {{if eq .Count 1}}person{{else}}people{{end}} this week. Good times!",
			},
			models.VoiceBibleScholar: {
				"Blessed to have shared time with {{.Count}} {{if eq .Count 1}}friend{{else}}friends{{end}} this week. Let us consider how to stir one another up to good works.",
			},
		}),
	},
	models.RuleClientSuccess: {
		hashtags:  []string{"clientsuccess", "partnership"},
		scripture: []string{"Philippians 1:3"},
		bodies: compile(models.RuleClientSuccess, map[string][]string{
			voiceDefault: {
				"Another great result with {{.Name}}. Thank you for the partnership!",
			},
			models.VoiceProfessional: {
				"Proud of what we accomplished with {{if .Company}}{{.Company}}{{else}}{{.Name}}{{end}} this week. Thank you for the trust.",
				"Client wins are team wins. Great progress with {{.Name}}{{if .Company}} and the {{.Company}} team{{end}}.",
			},
			models.VoiceCasual: {
				"Big win with {{.Name}} this week! Love working with great people.",
			},
			models.VoiceBibleScholar: {
				"Thankful for every moment of partnership with {{.Name}}.",
			},
		}),
	},
}

func compile(set string, sources map[string][]string) map[string][]*template.Template {
	out := make(map[string][]*template.Template, len(sources))
	for voice, bodies := range sources {
		for i, body := range bodies {
			name := fmt.Sprintf("%s/%s/%d", set, voice, i)
			out[voice] = append(out[voice], template.Must(template.New(name).Option("missingkey=error").Parse(body)))
		}
	}
	return out
}

// Render picks a random template from set for voice and executes it.
// It returns the body, the set's hashtags and a scripture reference.
func Render(rng *rand.Rand, set, voice string, data TemplateData) (models.Content, error) {
	ts, ok := templateSets[set]
	if !ok {
		return models.Content{}, fmt.Errorf("unknown template set: %s", set)
	}

	choices := ts.bodies[voice]
	if len(choices) == 0 {
		choices = ts.bodies[voiceDefault]
	}

	if data.FirstName == "" {
		data.FirstName = firstName(data.Name)
	}

	var buf bytes.Buffer
	if err := choices[rng.Intn(len(choices))].Execute(&buf, data); err != nil {
		return models.Content{}, fmt.Errorf("failed to render %s template: %w", set, err)
	}

	content := models.Content{
		Text:       buf.String(),
		Hashtags:   append([]string(nil), ts.hashtags...),
		BrandVoice: voice,
	}
	if voice == models.VoiceBibleScholar && len(ts.scripture) > 0 {
		content.Scripture = ts.scripture[rng.Intn(len(ts.scripture))]
	}
	return content, nil
}

// TemplateSets lists the known set names.
func TemplateSets() []string {
	return append([]string(nil), models.RuleNames...)
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[0]
}
