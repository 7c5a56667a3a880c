// ABOUTME: Tests for configuration loading, overrides and persistence
// ABOUTME: Points XDG data home at a temp dir so nothing touches the real config
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempDataHome(t *testing.T) string {
	t.Helper()
	orig := xdg.DataHome
	tmp := t.TempDir()
	xdg.DataHome = tmp
	t.Cleanup(func() { xdg.DataHome = orig })
	return tmp
}

func TestLoadDefaults(t *testing.T) {
	tmp := withTempDataHome(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "amplify", "amplify.db"), cfg.DBPath)
	assert.Equal(t, TransportLog, cfg.Fallback.Transport)
	assert.Equal(t, 2*time.Second, cfg.Publisher.PostDelay.Std())
	assert.Equal(t, 30*time.Second, cfg.Publisher.RetryDelay.Std())
	assert.Equal(t, 1, cfg.Publisher.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Daemon.ResponderInterval.Std())
	assert.Equal(t, time.Hour, cfg.Daemon.AutomationInterval.Std())
}

func TestSaveAndLoad(t *testing.T) {
	withTempDataHome(t)

	cfg := Default()
	cfg.Fallback.Transport = TransportSES
	cfg.Fallback.Recipient = "ops@example.com"
	cfg.Publisher.PostDelay = Duration(5 * time.Second)
	cfg.BaseURLs = map[string]string{"twitter": "http://localhost:9999"}
	require.NoError(t, cfg.Save())

	info, err := os.Stat(Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, TransportSES, loaded.Fallback.Transport)
	assert.Equal(t, 5*time.Second, loaded.Publisher.PostDelay.Std())
	assert.Equal(t, "http://localhost:9999", loaded.BaseURL("twitter", "https://api.twitter.com"))
	assert.Equal(t, "https://graph.facebook.com", loaded.BaseURL("facebook", "https://graph.facebook.com"))
}

func TestEnvOverrides(t *testing.T) {
	withTempDataHome(t)
	t.Setenv("AMPLIFY_DB_PATH", "/tmp/other.db")
	t.Setenv("AMPLIFY_RETRY_DELAY", "1s")
	t.Setenv("AMPLIFY_VERBOSE", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, time.Second, cfg.Publisher.RetryDelay.Std())
	assert.True(t, cfg.Verbose)
}

func TestEnvOverrideInvalidDuration(t *testing.T) {
	withTempDataHome(t)
	t.Setenv("AMPLIFY_POST_DELAY", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateTransport(t *testing.T) {
	cfg := Default()
	cfg.Fallback.Transport = TransportGmail
	assert.Error(t, cfg.Validate(), "gmail needs a recipient")

	cfg.Fallback.Recipient = "me@example.com"
	assert.NoError(t, cfg.Validate())

	cfg.Fallback.Transport = "pigeon"
	assert.Error(t, cfg.Validate())
}

func TestDurationAcceptsSeconds(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte("45")))
	assert.Equal(t, 45*time.Second, d.Std())

	require.NoError(t, d.UnmarshalJSON([]byte(`"1m30s"`)))
	assert.Equal(t, 90*time.Second, d.Std())
}
