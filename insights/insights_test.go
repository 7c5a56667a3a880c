// ABOUTME: Tests for the insights client against httptest stand-ins for Google APIs
// ABOUTME: Checks request shape and result mapping for each service
package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	c.Now = func() time.Time { return time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestChannel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/channels"))
		assert.Equal(t, "true", r.URL.Query().Get("mine"))
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{{
				"id":         "UC123",
				"snippet":    map[string]any{"title": "Amplify Live"},
				"statistics": map[string]any{"subscriberCount": "1200", "viewCount": "98000", "videoCount": "42"},
			}},
		})
	})

	stats, err := c.Channel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Amplify Live", stats.Title)
	assert.Equal(t, uint64(1200), stats.Subscribers)
	assert.Equal(t, uint64(98000), stats.Views)
	assert.Equal(t, uint64(42), stats.Videos)
}

func TestChannelMissing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
	})

	_, err := c.Channel(context.Background())
	assert.Error(t, err)
}

func TestTopQueries(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/searchAnalytics/query"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]any{
			"rows": []map[string]any{
				{"keys": []string{"crm tips"}, "clicks": 5, "impressions": 100, "ctr": 0.05, "position": 7.2},
				{"keys": []string{"amplify"}, "clicks": 40, "impressions": 200, "ctr": 0.2, "position": 1.1},
			},
		})
	})

	rows, err := c.TopQueries(context.Background(), "https://example.com/", 7, 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "amplify", rows[0].Query)
	assert.InDelta(t, 0.2, rows[0].CTR, 1e-9)

	assert.Equal(t, "2026-03-24", body["startDate"])
	assert.Equal(t, "2026-03-31", body["endDate"])
	assert.Equal(t, float64(5), body["rowLimit"])

	_, err = c.TopQueries(context.Background(), "", 7, 5)
	assert.Error(t, err)
}

func TestTraffic(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "properties/123:runReport"), r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"rows": []map[string]any{
				{
					"dimensionValues": []map[string]any{{"value": "20260330"}},
					"metricValues":    []map[string]any{{"value": "10"}, {"value": "12"}, {"value": "30"}},
				},
				{
					"dimensionValues": []map[string]any{{"value": "20260331"}},
					"metricValues":    []map[string]any{{"value": "5"}, {"value": "6"}, {"value": "9"}},
				},
			},
		})
	})

	traffic, err := c.Traffic(context.Background(), "123", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(15), traffic.ActiveUsers)
	assert.Equal(t, int64(18), traffic.Sessions)
	assert.Equal(t, int64(39), traffic.PageViews)
	require.Len(t, traffic.Days, 2)
	assert.Equal(t, "20260330", traffic.Days[0].Date)
}

func TestTrafficAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": map[string]any{"code": 403, "message": "User does not have sufficient permissions"},
		})
	})

	_, err := c.Traffic(context.Background(), "123", 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sufficient permissions")
}
