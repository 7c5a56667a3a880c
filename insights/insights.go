// ABOUTME: Read-only dashboard figures from YouTube, Search Console and Google Analytics
// ABOUTME: Wraps the generated Google API clients behind small result types
package insights

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
	"google.golang.org/api/searchconsole/v1"
	"google.golang.org/api/youtube/v3"
)

const dateLayout = "2006-01-02"

type Client struct {
	YouTube   *youtube.Service
	Search    *searchconsole.Service
	Analytics *analyticsdata.Service
	Now       func() time.Time
}

// New builds all three services over one authorized HTTP client.
func New(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	all := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)

	yt, err := youtube.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	sc, err := searchconsole.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Search Console service: %w", err)
	}
	ga, err := analyticsdata.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Analytics Data service: %w", err)
	}

	return &Client{YouTube: yt, Search: sc, Analytics: ga, Now: time.Now}, nil
}

type ChannelStats struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subscribers uint64 `json:"subscribers"`
	Views       uint64 `json:"views"`
	Videos      uint64 `json:"videos"`
}

// Channel returns statistics for the authorized user's channel.
func (c *Client) Channel(ctx context.Context) (*ChannelStats, error) {
	resp, err := c.YouTube.Channels.List([]string{"snippet", "statistics"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("no YouTube channel for this account")
	}

	ch := resp.Items[0]
	stats := &ChannelStats{ID: ch.Id}
	if ch.Snippet != nil {
		stats.Title = ch.Snippet.Title
	}
	if ch.Statistics != nil {
		stats.Subscribers = ch.Statistics.SubscriberCount
		stats.Views = ch.Statistics.ViewCount
		stats.Videos = ch.Statistics.VideoCount
	}
	return stats, nil
}

type QueryRow struct {
	Query       string  `json:"query"`
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

func (c *Client) window(days int) (string, string) {
	if days <= 0 {
		days = 28
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	end := now().UTC()
	return end.AddDate(0, 0, -days).Format(dateLayout), end.Format(dateLayout)
}

// TopQueries returns the site's top search queries by clicks over the last days.
func (c *Client) TopQueries(ctx context.Context, siteURL string, days, limit int) ([]QueryRow, error) {
	if siteURL == "" {
		return nil, fmt.Errorf("site URL is required")
	}
	if limit <= 0 {
		limit = 10
	}
	start, end := c.window(days)

	resp, err := c.Search.Searchanalytics.Query(siteURL, &searchconsole.SearchAnalyticsQueryRequest{
		StartDate:  start,
		EndDate:    end,
		Dimensions: []string{"query"},
		RowLimit:   int64(limit),
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query search analytics: %w", err)
	}

	rows := make([]QueryRow, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		row := QueryRow{Clicks: r.Clicks, Impressions: r.Impressions, CTR: r.Ctr, Position: r.Position}
		if len(r.Keys) > 0 {
			row.Query = r.Keys[0]
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Clicks > rows[j].Clicks })
	return rows, nil
}

type DayTraffic struct {
	Date        string `json:"date"`
	ActiveUsers int64  `json:"active_users"`
	Sessions    int64  `json:"sessions"`
	PageViews   int64  `json:"page_views"`
}

type Traffic struct {
	ActiveUsers int64        `json:"active_users"`
	Sessions    int64        `json:"sessions"`
	PageViews   int64        `json:"page_views"`
	Days        []DayTraffic `json:"days"`
}

var trafficMetrics = []string{"activeUsers", "sessions", "screenPageViews"}

// Traffic sums GA4 traffic per day for a property. Summing daily active
// users over-counts returning visitors; the daily rows are exact.
func (c *Client) Traffic(ctx context.Context, propertyID string, days int) (*Traffic, error) {
	if propertyID == "" {
		return nil, fmt.Errorf("property ID is required")
	}
	start, end := c.window(days)

	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: start, EndDate: end}},
		Dimensions: []*analyticsdata.Dimension{{Name: "date"}},
		OrderBys:   []*analyticsdata.OrderBy{{Dimension: &analyticsdata.DimensionOrderBy{DimensionName: "date"}}},
	}
	for _, m := range trafficMetrics {
		req.Metrics = append(req.Metrics, &analyticsdata.Metric{Name: m})
	}

	resp, err := c.Analytics.Properties.RunReport("properties/"+propertyID, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to run analytics report: %w", err)
	}

	out := &Traffic{}
	for _, row := range resp.Rows {
		var day DayTraffic
		if len(row.DimensionValues) > 0 {
			day.Date = row.DimensionValues[0].Value
		}
		values := make([]int64, len(trafficMetrics))
		for i := range trafficMetrics {
			if i < len(row.MetricValues) {
				v, err := strconv.ParseInt(row.MetricValues[i].Value, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid %s value %q: %w", trafficMetrics[i], row.MetricValues[i].Value, err)
				}
				values[i] = v
			}
		}
		day.ActiveUsers, day.Sessions, day.PageViews = values[0], values[1], values[2]

		out.ActiveUsers += day.ActiveUsers
		out.Sessions += day.Sessions
		out.PageViews += day.PageViews
		out.Days = append(out.Days, day)
	}
	return out, nil
}
