// ABOUTME: Automation rule settings stored as one JSON blob in the KV store
// ABOUTME: Provides defaults, loading with backfill, toggling and saving
package automation

import (
	"fmt"
	"slices"

	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/models"
)

// Rule defaults.
const (
	DefaultFollowUpDays      = 30
	DefaultDigestIntervalDay = 7
	DefaultClientSuccessDays = 7
)

// DefaultRules is the fixed rule set. Every rule starts disabled.
func DefaultRules() map[string]models.AutomationRule {
	return map[string]models.AutomationRule{
		models.RuleWelcome: {
			Name:        models.RuleWelcome,
			Platforms:   []string{models.PlatformLinkedIn, models.PlatformTwitter},
			Categories:  []string{models.CategoryClient, models.CategoryProfessional},
			TemplateSet: models.RuleWelcome,
			BrandVoice:  models.VoiceProfessional,
		},
		models.RuleFollowUp: {
			Name:        models.RuleFollowUp,
			Platforms:   []string{models.PlatformLinkedIn},
			DelayDays:   DefaultFollowUpDays,
			TemplateSet: models.RuleFollowUp,
			BrandVoice:  models.VoiceProfessional,
		},
		models.RuleBirthday: {
			Name:        models.RuleBirthday,
			Platforms:   []string{models.PlatformFacebook, models.PlatformTwitter},
			TemplateSet: models.RuleBirthday,
			BrandVoice:  models.VoiceCasual,
		},
		models.RuleAnniversary: {
			Name:        models.RuleAnniversary,
			Platforms:   []string{models.PlatformLinkedIn},
			TemplateSet: models.RuleAnniversary,
			BrandVoice:  models.VoiceProfessional,
		},
		models.RuleNetworkingDigest: {
			Name:         models.RuleNetworkingDigest,
			Platforms:    []string{models.PlatformLinkedIn},
			IntervalDays: DefaultDigestIntervalDay,
			TemplateSet:  models.RuleNetworkingDigest,
			BrandVoice:   models.VoiceProfessional,
		},
		models.RuleClientSuccess: {
			Name:        models.RuleClientSuccess,
			Platforms:   []string{models.PlatformLinkedIn, models.PlatformTwitter},
			DelayDays:   DefaultClientSuccessDays,
			Categories:  []string{models.CategoryClient},
			TemplateSet: models.RuleClientSuccess,
			BrandVoice:  models.VoiceProfessional,
		},
	}
}

// LoadRules reads the rule blob. Rules missing from the blob get their
// defaults and unknown names are dropped.
func LoadRules(store charm.Store) (map[string]models.AutomationRule, error) {
	rules := DefaultRules()

	var stored map[string]models.AutomationRule
	if _, err := charm.GetJSON(store, charm.KeyAutomationRules, &stored); err != nil {
		return nil, err
	}

	for name, rule := range stored {
		if !models.IsRuleName(name) {
			continue
		}
		rule.Name = name
		if rule.TemplateSet == "" {
			rule.TemplateSet = name
		}
		rules[name] = rule
	}
	return rules, nil
}

// SaveRules rewrites the whole blob.
func SaveRules(store charm.Store, rules map[string]models.AutomationRule) error {
	for name, rule := range rules {
		if !models.IsRuleName(name) {
			return fmt.Errorf("unknown automation rule: %s", name)
		}
		for _, p := range rule.Platforms {
			if err := models.ValidatePlatform(p); err != nil {
				return fmt.Errorf("rule %s: %w", name, err)
			}
		}
		if err := models.ValidateVoice(rule.BrandVoice); err != nil {
			return fmt.Errorf("rule %s: %w", name, err)
		}
	}
	return charm.SetJSON(store, charm.KeyAutomationRules, rules)
}

// UpdateRule loads the blob, applies fn to one rule and saves it back.
func UpdateRule(store charm.Store, name string, fn func(*models.AutomationRule)) (models.AutomationRule, error) {
	if !models.IsRuleName(name) {
		return models.AutomationRule{}, fmt.Errorf("unknown automation rule: %s", name)
	}

	rules, err := LoadRules(store)
	if err != nil {
		return models.AutomationRule{}, err
	}

	rule := rules[name]
	fn(&rule)
	rules[name] = rule

	if err := SaveRules(store, rules); err != nil {
		return models.AutomationRule{}, err
	}
	return rule, nil
}

// SetEnabled toggles a rule.
func SetEnabled(store charm.Store, name string, enabled bool) (models.AutomationRule, error) {
	return UpdateRule(store, name, func(r *models.AutomationRule) {
		r.Enabled = enabled
	})
}

// SortedRules returns rules in evaluation order.
func SortedRules(rules map[string]models.AutomationRule) []models.AutomationRule {
	out := make([]models.AutomationRule, 0, len(rules))
	for _, name := range models.RuleNames {
		if r, ok := rules[name]; ok {
			out = append(out, r)
		}
	}
	return out
}

func categoryAllowed(rule models.AutomationRule, category string, defaults []string) bool {
	allowed := rule.Categories
	if len(allowed) == 0 {
		allowed = defaults
	}
	if len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, category)
}
