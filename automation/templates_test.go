// ABOUTME: Tests for automation template rendering
// ABOUTME: Every set renders for every voice and bible-scholar adds scripture
package automation

import (
	"math/rand"
	"testing"

	"github.com/harperreed/amplify/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAllSetsAndVoices(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	voices := []string{"", models.VoiceProfessional, models.VoiceCasual, models.VoiceBibleScholar}
	data := TemplateData{Name: "Ada Lovelace", Company: "Analytical Engines", Years: 3, Count: 4}

	for _, set := range TemplateSets() {
		for _, voice := range voices {
			for i := 0; i < 5; i++ {
				content, err := Render(rng, set, voice, data)
				require.NoError(t, err, "%s/%s", set, voice)
				assert.NotEmpty(t, content.Text)
				assert.NotContains(t, content.Text, "<no value>")
				assert.NotEmpty(t, content.Hashtags)
				assert.Equal(t, voice, content.BrandVoice)
				if voice == models.VoiceBibleScholar {
					assert.NotEmpty(t, content.Scripture)
				} else {
					assert.Empty(t, content.Scripture)
				}
			}
		}
	}
}

func TestRenderSingularForms(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	content, err := Render(rng, models.RuleNetworkingDigest, models.VoiceCasual, TemplateData{Count: 1})
	require.NoError(t, err)
	assert.Contains(t, content.Text, "1 awesome person")
}

func TestRenderUnknownSet(t *testing.T) {
	_, err := Render(rand.New(rand.NewSource(1)), "nope", "", TemplateData{})
	assert.Error(t, err)
}

func TestRenderUsesFirstName(t *testing.T) {
	content, err := Render(rand.New(rand.NewSource(1)), models.RuleBirthday, "", TemplateData{Name: "Grace Hopper"})
	require.NoError(t, err)
	assert.Equal(t, "Happy birthday, Grace!", content.Text)
}
