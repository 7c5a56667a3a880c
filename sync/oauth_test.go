package sync

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestOAuthConfigScopes(t *testing.T) {
	config := NewOAuthConfig()
	require.NotNil(t, config)

	assert.Len(t, config.Scopes, 6)
	assert.Contains(t, config.Scopes, "https://www.googleapis.com/auth/contacts.readonly")
	assert.Contains(t, config.Scopes, "https://www.googleapis.com/auth/gmail.send")
	assert.Contains(t, config.Scopes, "https://www.googleapis.com/auth/analytics.readonly")
	assert.Equal(t, RedirectURL, config.RedirectURL)
}

func TestGetConfigRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	_, err := GetConfig()
	assert.Error(t, err)

	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	config, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "id", config.ClientID)
}

func TestTokenRoundTrip(t *testing.T) {
	orig := xdg.DataHome
	xdg.DataHome = t.TempDir()
	t.Cleanup(func() { xdg.DataHome = orig })

	assert.Equal(t, filepath.Join(xdg.DataHome, "amplify", "google-credentials.json"), TokenPath())

	_, err := LoadToken()
	assert.Error(t, err)

	token := &oauth2.Token{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}
	require.NoError(t, SaveToken(token))

	loaded, err := LoadToken()
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, loaded.AccessToken)
	assert.Equal(t, token.RefreshToken, loaded.RefreshToken)
	assert.True(t, token.Expiry.Equal(loaded.Expiry))
}

func TestHTTPClientNilToken(t *testing.T) {
	client, err := HTTPClient(t.Context(), nil)
	assert.Error(t, err)
	assert.Nil(t, client)
}
