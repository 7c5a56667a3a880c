// ABOUTME: Post CLI commands
// ABOUTME: Compose, publish and list posts, and review the fallback log
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/platforms"
	"github.com/harperreed/amplify/publisher"
)

// splitList turns "a, b,,c" into [a b c].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PostComposeCommand saves a post as a draft, schedules it, or publishes it
// right away with --now.
func PostComposeCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("post compose", flag.ExitOnError)
	text := fs.String("text", "", "Post body (required)")
	platformList := fs.String("platforms", "", "Comma-separated platforms (default all)")
	hashtags := fs.String("hashtags", "", "Comma-separated hashtags")
	cta := fs.String("cta", "", "Call to action")
	scripture := fs.String("scripture", "", "Scripture line for the bible-scholar voice")
	media := fs.String("media", "", "Comma-separated media URLs")
	voice := fs.String("voice", "", "Brand voice: professional, casual or bible-scholar")
	ai := fs.Bool("ai", false, "Mark as AI generated")
	at := fs.String("at", "", "Schedule for this RFC3339 time")
	now := fs.Bool("now", false, "Publish immediately")
	preview := fs.Bool("preview", false, "Show the per-platform text and exit")
	_ = fs.Parse(args)

	if strings.TrimSpace(*text) == "" {
		return fmt.Errorf("--text is required")
	}
	if *now && *at != "" {
		return fmt.Errorf("--now and --at are mutually exclusive")
	}
	if err := models.ValidateVoice(*voice); err != nil {
		return err
	}

	targets, err := models.ParsePlatforms(*platformList)
	if err != nil {
		return err
	}

	post := &models.Post{
		Content: models.Content{
			Text:       *text,
			Hashtags:   splitList(*hashtags),
			CTA:        *cta,
			Scripture:  *scripture,
			MediaURLs:  splitList(*media),
			BrandVoice: *voice,
		},
		Platforms:   targets,
		AIGenerated: *ai,
		Source:      models.SourceComposer,
	}

	if *preview {
		return printPreview(post)
	}

	if *at != "" {
		when, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("invalid --at (use RFC3339): %w", err)
		}
		post.ScheduledAt = &when
	}

	if err := db.CreatePost(app.DB, post); err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}

	if *now {
		return publishAndReport(app, post)
	}

	if post.ScheduledAt != nil {
		fmt.Printf("✓ Post scheduled for %s (ID: %s)\n", post.ScheduledAt.Format(time.RFC1123), post.ID)
		return nil
	}
	fmt.Printf("✓ Draft saved (ID: %s)\n", post.ID)
	fmt.Printf("  Publish with: amplify post publish %s\n", post.ID)
	return nil
}

func printPreview(post *models.Post) error {
	for _, name := range post.Platforms {
		limits, err := platforms.LimitsFor(name)
		if err != nil {
			return err
		}
		body := platforms.Format(post.Content, limits)
		fmt.Printf("── %s (%d/%d chars)\n%s\n\n", name, len([]rune(body)), limits.MaxChars, body)
	}
	return nil
}

// PostPublishCommand dispatches a draft or scheduled post now.
func PostPublishCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("post publish", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("post ID is required")
	}

	post, err := db.GetPost(app.DB, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to get post: %w", err)
	}
	if post == nil {
		return fmt.Errorf("post not found: %s", fs.Arg(0))
	}
	if post.Status != models.PostStatusDraft && post.Status != models.PostStatusScheduled {
		return fmt.Errorf("post already dispatched (status %s)", post.Status)
	}

	return publishAndReport(app, post)
}

func publishAndReport(app *App, post *models.Post) error {
	fmt.Printf("Publishing to %s...\n", strings.Join(post.Platforms, ", "))

	summary, err := app.Publisher.Publish(context.Background(), post)
	if err != nil {
		return fmt.Errorf("failed to publish post: %w", err)
	}

	printSummary(summary)
	return nil
}

func printSummary(summary *publisher.Summary) {
	for _, r := range summary.Successes {
		line := fmt.Sprintf("  ✓ %s", r.Platform)
		if r.URL != "" {
			line += " " + r.URL
		}
		if r.Attempts > 1 {
			line += fmt.Sprintf(" (after %d attempts)", r.Attempts)
		}
		fmt.Println(line)
	}
	for _, r := range summary.Errors {
		line := fmt.Sprintf("  ✗ %s: %s", r.Platform, r.Error)
		if r.FallbackLogged {
			line += " → fallback log"
		}
		fmt.Println(line)
	}
	fmt.Printf("\nPost %s: %s\n", summary.PostID, summary.Status)
}

// PostListCommand lists posts, newest first.
func PostListCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("post list", flag.ExitOnError)
	status := fs.String("status", "", "Filter by status")
	limit := fs.Int("limit", 20, "Maximum results")
	_ = fs.Parse(args)

	posts, err := db.ListPosts(app.DB, *status, *limit)
	if err != nil {
		return fmt.Errorf("failed to list posts: %w", err)
	}

	if len(posts) == 0 {
		fmt.Println("No posts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tSOURCE\tPLATFORMS\tCREATED\tTEXT")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t---------\t-------\t----")
	for _, p := range posts {
		source := p.Source
		if p.RuleName != "" {
			source += ":" + p.RuleName
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Status, source, strings.Join(p.Platforms, ","),
			p.CreatedAt.Format("2006-01-02 15:04"), platforms.Truncate(p.Content.Text, 40))
	}
	return w.Flush()
}

// PostFallbacksCommand shows content that could not be delivered.
func PostFallbacksCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("post fallbacks", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum results")
	full := fs.Bool("full", false, "Print the full undelivered content")
	_ = fs.Parse(args)

	entries, err := db.ListFallbackEntries(app.DB, *limit)
	if err != nil {
		return fmt.Errorf("failed to list fallback log: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("✓ Fallback log is empty")
		return nil
	}

	for _, e := range entries {
		notified := "not sent"
		if e.Notified {
			notified = "sent to " + e.Recipient
		} else if e.NotifyError != "" {
			notified = "failed: " + e.NotifyError
		}
		fmt.Printf("%s  %s  %s (%s)\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Platform, e.Error, e.ErrorKind)
		fmt.Printf("  post %s, notification %s\n", orDash(e.PostID), notified)
		if *full {
			fmt.Printf("  %s\n", strings.ReplaceAll(e.Content, "\n", "\n  "))
		}
		fmt.Println()
	}
	return nil
}
