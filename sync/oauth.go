// ABOUTME: OAuth configuration and token management for Google APIs
// ABOUTME: Handles the loopback consent flow, token storage at XDG paths and refresh
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// RedirectURL is where the loopback flow listens for the consent callback.
const RedirectURL = "http://localhost:8080/oauth/callback"

// Scopes covers contacts and calendar import, fallback mail, and the
// YouTube, Search Console and Analytics dashboards.
var Scopes = []string{
	"https://www.googleapis.com/auth/contacts.readonly",
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/youtube.readonly",
	"https://www.googleapis.com/auth/webmasters.readonly",
	"https://www.googleapis.com/auth/analytics.readonly",
}

// NewOAuthConfig creates OAuth2 config for Google APIs. Client credentials
// come from GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.
func NewOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  RedirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

// GetConfig returns the OAuth config or an error when credentials are missing.
func GetConfig() (*oauth2.Config, error) {
	config := NewOAuthConfig()
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("google OAuth credentials not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables")
	}
	return config, nil
}

// TokenPath returns XDG-compliant path for storing OAuth tokens.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "amplify", "google-credentials.json")
}

// SaveToken saves OAuth token to XDG data directory.
func SaveToken(token *oauth2.Token) error {
	path := TokenPath()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}

// LoadToken loads OAuth token from XDG data directory.
func LoadToken() (*oauth2.Token, error) {
	f, err := os.Open(TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	return &token, nil
}

// HTTPClient returns a client that refreshes token as needed.
func HTTPClient(ctx context.Context, token *oauth2.Token) (*http.Client, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}
	return NewOAuthConfig().Client(ctx, token), nil
}

// AuthorizedClient loads the saved token and wraps it in an HTTP client.
func AuthorizedClient(ctx context.Context) (*http.Client, error) {
	token, err := LoadToken()
	if err != nil {
		return nil, fmt.Errorf("no authentication token found. Run 'amplify sync init' first: %w", err)
	}
	return HTTPClient(ctx, token)
}
