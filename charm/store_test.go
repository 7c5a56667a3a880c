// ABOUTME: Tests for JSON settings blobs over the KV store
// ABOUTME: Runs against both the badger-backed test client and the memory store

package charm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleSettings struct {
	Enabled  bool     `json:"enabled"`
	Keywords []string `json:"keywords"`
}

func TestJSONBlobRoundTrip(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	var got sampleSettings
	found, err := GetJSON(c, KeyResponderSettings, &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := sampleSettings{Enabled: true, Keywords: []string{"pricing", "demo"}}
	require.NoError(t, SetJSON(c, KeyResponderSettings, want))

	found, err = GetJSON(c, KeyResponderSettings, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	keys, err := c.KeysWithPrefix([]byte("responder_"))
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	var got sampleSettings
	found, err := GetJSON(s, KeyAutomationRules, &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(s, KeyAutomationRules, sampleSettings{Keywords: []string{"a"}}))
	found, err = GetJSON(s, KeyAutomationRules, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a"}, got.Keywords)
}

func TestGetJSONCorruptBlob(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Set([]byte(KeyAutomationRules), []byte("{not json")))

	var got sampleSettings
	_, err := GetJSON(s, KeyAutomationRules, &got)
	assert.Error(t, err)
}

func TestClientResetClearsKeys(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	require.NoError(t, c.Set([]byte("k"), []byte("v")))
	require.NoError(t, c.Reset())

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}
