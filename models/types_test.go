// ABOUTME: Tests for CRM data models
// ABOUTME: Validates ContactCadence scoring, enum normalization and JSON round-trips
package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactCadenceDefaults(t *testing.T) {
	cadence := &ContactCadence{
		ContactID:            uuid.New(),
		CadenceDays:          30,
		RelationshipStrength: StrengthMedium,
	}

	if cadence.ComputePriorityScore() != 0 {
		t.Errorf("expected zero priority without interactions, got %.1f", cadence.ComputePriorityScore())
	}
}

func TestComputePriorityScore(t *testing.T) {
	lastContact := time.Now().AddDate(0, 0, -45) // 45 days ago
	cadence := &ContactCadence{
		ContactID:            uuid.New(),
		CadenceDays:          30,
		RelationshipStrength: StrengthStrong,
		LastInteractionDate:  &lastContact,
	}

	score := cadence.ComputePriorityScore()

	// 45 - 30 = 15 days overdue
	// 15 * 2 = 30 base score
	// 30 * 2.0 (strong multiplier) = 60
	expected := 60.0
	if score != expected {
		t.Errorf("expected priority score %.1f, got %.1f", expected, score)
	}
}

func TestUpdateNextFollowup(t *testing.T) {
	last := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	cadence := &ContactCadence{CadenceDays: 14, LastInteractionDate: &last}
	cadence.UpdateNextFollowup()

	require.NotNil(t, cadence.NextFollowupDate)
	assert.Equal(t, time.Date(2026, 1, 24, 9, 0, 0, 0, time.UTC), *cadence.NextFollowupDate)
}

func TestNormalizeCategory(t *testing.T) {
	c, err := NormalizeCategory("")
	require.NoError(t, err)
	assert.Equal(t, CategoryProfessional, c)

	c, err = NormalizeCategory(" Client ")
	require.NoError(t, err)
	assert.Equal(t, CategoryClient, c)

	_, err = NormalizeCategory("enemy")
	assert.Error(t, err)
}

func TestNormalizeInteractionType(t *testing.T) {
	k, err := NormalizeInteractionType("")
	require.NoError(t, err)
	assert.Equal(t, InteractionOther, k)

	_, err = NormalizeInteractionType("telegram")
	assert.Error(t, err)
}

func TestParsePlatforms(t *testing.T) {
	all, err := ParsePlatforms("")
	require.NoError(t, err)
	assert.Equal(t, AllPlatforms, all)

	ps, err := ParsePlatforms("LinkedIn, twitter,linkedin")
	require.NoError(t, err)
	assert.Equal(t, []string{PlatformLinkedIn, PlatformTwitter}, ps)

	_, err = ParsePlatforms("myspace")
	assert.Error(t, err)
}

func TestAutomationRulesBlobRoundTrip(t *testing.T) {
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rules := map[string]AutomationRule{
		RuleWelcome: {Name: RuleWelcome, Enabled: true, Platforms: []string{PlatformLinkedIn}, Categories: []string{CategoryClient}, TemplateSet: "welcome"},
		RuleNetworkingDigest: {Name: RuleNetworkingDigest, IntervalDays: 7, TemplateSet: "digest", LastRunAt: &last},
	}

	data, err := json.Marshal(rules)
	require.NoError(t, err)

	var decoded map[string]AutomationRule
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rules, decoded)
}

func TestParseDate(t *testing.T) {
	none, err := ParseDate("  ")
	require.NoError(t, err)
	assert.Nil(t, none)

	d, err := ParseDate("1990-02-28")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.February, d.Month())

	_, err = ParseDate("28/02/1990")
	assert.Error(t, err)
}
