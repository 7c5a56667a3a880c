// ABOUTME: Auto-responder settings stored as one JSON blob in the KV store
// ABOUTME: Handles defaults, validation and keyword add/remove/list
package responder

import (
	"fmt"
	"slices"
	"strings"

	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/models"
)

// DefaultMaxPerHour caps responses in any sliding hour.
const DefaultMaxPerHour = 10

type Keyword struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

type Settings struct {
	Enabled          bool      `json:"enabled"`
	Keywords         []Keyword `json:"keywords"`
	MaxPerHour       int       `json:"max_per_hour"`
	BrandVoice       string    `json:"brand_voice"`
	IncludeScripture bool      `json:"include_scripture"`
	RequireApproval  bool      `json:"require_approval"`
	Platforms        []string  `json:"platforms"`
}

func DefaultSettings() Settings {
	return Settings{
		Keywords: []Keyword{
			{Keyword: "help", Category: CategorySupport},
			{Keyword: "pricing", Category: CategorySales},
			{Keyword: "how do", Category: CategoryQuestion},
			{Keyword: "thank", Category: CategoryPraise},
		},
		MaxPerHour:      DefaultMaxPerHour,
		BrandVoice:      models.VoiceProfessional,
		RequireApproval: true,
		Platforms:       []string{models.PlatformTwitter},
	}
}

// LoadSettings returns the stored settings, or the defaults when nothing
// has been saved yet.
func LoadSettings(store charm.Store) (Settings, error) {
	s := DefaultSettings()
	if _, err := charm.GetJSON(store, charm.KeyResponderSettings, &s); err != nil {
		return Settings{}, err
	}
	if s.MaxPerHour <= 0 {
		s.MaxPerHour = DefaultMaxPerHour
	}
	if s.BrandVoice == "" {
		s.BrandVoice = models.VoiceProfessional
	}
	return s, nil
}

func (s Settings) Validate() error {
	if s.MaxPerHour < 0 {
		return fmt.Errorf("max per hour must not be negative")
	}
	if err := models.ValidateVoice(s.BrandVoice); err != nil {
		return err
	}
	for _, p := range s.Platforms {
		if err := models.ValidatePlatform(p); err != nil {
			return err
		}
	}
	for _, k := range s.Keywords {
		if strings.TrimSpace(k.Keyword) == "" {
			return fmt.Errorf("keyword must not be empty")
		}
		if !slices.Contains(Categories, k.Category) {
			return fmt.Errorf("invalid response category %q (valid: %s)", k.Category, strings.Join(Categories, ", "))
		}
	}
	return nil
}

func SaveSettings(store charm.Store, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return charm.SetJSON(store, charm.KeyResponderSettings, s)
}

// UpdateSettings loads, applies fn and saves.
func UpdateSettings(store charm.Store, fn func(*Settings) error) (Settings, error) {
	s, err := LoadSettings(store)
	if err != nil {
		return Settings{}, err
	}
	if err := fn(&s); err != nil {
		return Settings{}, err
	}
	if err := SaveSettings(store, s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// AddKeyword adds a trigger or changes the category of an existing one.
func AddKeyword(store charm.Store, keyword, category string) (Settings, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if category == "" {
		category = CategoryGeneral
	}
	return UpdateSettings(store, func(s *Settings) error {
		if keyword == "" {
			return fmt.Errorf("keyword must not be empty")
		}
		for i := range s.Keywords {
			if strings.EqualFold(s.Keywords[i].Keyword, keyword) {
				s.Keywords[i].Category = category
				return nil
			}
		}
		s.Keywords = append(s.Keywords, Keyword{Keyword: keyword, Category: category})
		return nil
	})
}

func RemoveKeyword(store charm.Store, keyword string) (Settings, error) {
	keyword = strings.TrimSpace(keyword)
	return UpdateSettings(store, func(s *Settings) error {
		i := slices.IndexFunc(s.Keywords, func(k Keyword) bool {
			return strings.EqualFold(k.Keyword, keyword)
		})
		if i < 0 {
			return fmt.Errorf("keyword not found: %s", keyword)
		}
		s.Keywords = slices.Delete(s.Keywords, i, i+1)
		return nil
	})
}

// MatchKeyword returns the first keyword contained in text, ignoring case.
func MatchKeyword(keywords []Keyword, text string) (Keyword, bool) {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if k.Keyword != "" && strings.Contains(lower, strings.ToLower(k.Keyword)) {
			return k, true
		}
	}
	return Keyword{}, false
}
