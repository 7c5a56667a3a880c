// ABOUTME: Google insights CLI commands
// ABOUTME: YouTube channel stats, Search Console top queries and GA4 traffic
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/amplify/insights"
	"github.com/harperreed/amplify/sync"
)

func insightsClient(ctx context.Context) (*insights.Client, error) {
	httpClient, err := sync.AuthorizedClient(ctx)
	if err != nil {
		return nil, err
	}
	return insights.New(ctx, httpClient)
}

// InsightsYouTubeCommand prints channel statistics.
func InsightsYouTubeCommand(args []string) error {
	ctx := context.Background()
	client, err := insightsClient(ctx)
	if err != nil {
		return err
	}

	ch, err := client.Channel(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("📺 %s\n", ch.Title)
	fmt.Printf("  Subscribers: %d\n", ch.Subscribers)
	fmt.Printf("  Views:       %d\n", ch.Views)
	fmt.Printf("  Videos:      %d\n", ch.Videos)
	return nil
}

// InsightsSearchCommand prints the top search queries for a site.
func InsightsSearchCommand(args []string) error {
	fs := flag.NewFlagSet("insights search", flag.ExitOnError)
	site := fs.String("site", os.Getenv("AMPLIFY_SEARCH_SITE"), "Search Console property, e.g. sc-domain:example.com")
	days := fs.Int("days", 28, "Days to cover")
	limit := fs.Int("limit", 10, "Number of queries")
	_ = fs.Parse(args)

	if *site == "" {
		return fmt.Errorf("--site is required")
	}

	ctx := context.Background()
	client, err := insightsClient(ctx)
	if err != nil {
		return err
	}

	rows, err := client.TopQueries(ctx, *site, *days, *limit)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Println("No search data for this period")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "QUERY\tCLICKS\tIMPRESSIONS\tCTR\tPOSITION")
	_, _ = fmt.Fprintln(w, "-----\t------\t-----------\t---\t--------")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%.0f\t%.0f\t%.1f%%\t%.1f\n", r.Query, r.Clicks, r.Impressions, r.CTR*100, r.Position)
	}
	return w.Flush()
}

// InsightsAnalyticsCommand prints GA4 traffic for a property.
func InsightsAnalyticsCommand(args []string) error {
	fs := flag.NewFlagSet("insights analytics", flag.ExitOnError)
	property := fs.String("property", os.Getenv("AMPLIFY_GA4_PROPERTY"), "GA4 property ID")
	days := fs.Int("days", 28, "Days to cover")
	daily := fs.Bool("daily", false, "Print one row per day")
	_ = fs.Parse(args)

	if *property == "" {
		return fmt.Errorf("--property is required")
	}

	ctx := context.Background()
	client, err := insightsClient(ctx)
	if err != nil {
		return err
	}

	traffic, err := client.Traffic(ctx, *property, *days)
	if err != nil {
		return err
	}

	fmt.Printf("📈 Last %d days\n", *days)
	fmt.Printf("  Active users: %d\n", traffic.ActiveUsers)
	fmt.Printf("  Sessions:     %d\n", traffic.Sessions)
	fmt.Printf("  Page views:   %d\n", traffic.PageViews)

	if *daily && len(traffic.Days) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "DATE\tUSERS\tSESSIONS\tVIEWS")
		for _, d := range traffic.Days {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", d.Date, d.ActiveUsers, d.Sessions, d.PageViews)
		}
		return w.Flush()
	}
	return nil
}
