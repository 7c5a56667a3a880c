// ABOUTME: Validation helpers for model enumerations
// ABOUTME: Normalizes and checks categories, interaction types, sentiments and platforms
package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	validCategories       = []string{CategoryPersonal, CategoryProfessional, CategoryClient, CategoryVendor}
	validInteractionTypes = []string{InteractionCall, InteractionEmail, InteractionMeeting, InteractionOther}
	validSentiments       = []string{SentimentPositive, SentimentNeutral, SentimentNegative}
	validVoices           = []string{VoiceProfessional, VoiceCasual, VoiceBibleScholar}
)

// NormalizeCategory lowercases a category and applies the professional default.
func NormalizeCategory(category string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return CategoryProfessional, nil
	}
	if !slices.Contains(validCategories, c) {
		return "", fmt.Errorf("invalid category %q (valid: %s)", category, strings.Join(validCategories, ", "))
	}
	return c, nil
}

// NormalizeInteractionType lowercases an interaction type, defaulting to other.
func NormalizeInteractionType(kind string) (string, error) {
	k := strings.ToLower(strings.TrimSpace(kind))
	if k == "" {
		return InteractionOther, nil
	}
	if !slices.Contains(validInteractionTypes, k) {
		return "", fmt.Errorf("invalid interaction type %q (valid: %s)", kind, strings.Join(validInteractionTypes, ", "))
	}
	return k, nil
}

// ValidateSentiment accepts an empty sentiment or one of the known values.
func ValidateSentiment(sentiment string) error {
	if sentiment == "" || slices.Contains(validSentiments, sentiment) {
		return nil
	}
	return fmt.Errorf("invalid sentiment %q (valid: %s)", sentiment, strings.Join(validSentiments, ", "))
}

// ValidatePlatform checks a platform name against the supported set.
func ValidatePlatform(platform string) error {
	if slices.Contains(AllPlatforms, platform) {
		return nil
	}
	return fmt.Errorf("unknown platform %q (valid: %s)", platform, strings.Join(AllPlatforms, ", "))
}

// ParsePlatforms splits a comma-separated list, validating each entry.
// An empty list means every supported platform.
func ParsePlatforms(list string) ([]string, error) {
	if strings.TrimSpace(list) == "" {
		return slices.Clone(AllPlatforms), nil
	}

	var platforms []string
	for _, p := range strings.Split(list, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if err := ValidatePlatform(p); err != nil {
			return nil, err
		}
		if !slices.Contains(platforms, p) {
			platforms = append(platforms, p)
		}
	}
	return platforms, nil
}

// ValidateVoice accepts an empty voice (brand voice off) or a known preset.
func ValidateVoice(voice string) error {
	if voice == "" || slices.Contains(validVoices, voice) {
		return nil
	}
	return fmt.Errorf("invalid brand voice %q (valid: %s)", voice, strings.Join(validVoices, ", "))
}

// IsRuleName reports whether name is one of the fixed automation rules.
func IsRuleName(name string) bool {
	return slices.Contains(RuleNames, name)
}

// DateLayout is the input format for birthdays and anniversaries.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date. An empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return &t, nil
}
