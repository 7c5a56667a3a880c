// ABOUTME: Google sync CLI commands
// ABOUTME: Handles OAuth setup, contact and calendar imports, and sync status
package cli

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/sync"
	"golang.org/x/oauth2"
)

// SyncInitCommand handles OAuth setup
func SyncInitCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()

	config, err := sync.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to get OAuth config: %w", err)
	}

	state, err := randomState()
	if err != nil {
		return err
	}

	// Start local server for OAuth callback
	callbackChan := make(chan *oauth2.Token, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			errChan <- fmt.Errorf("state mismatch in OAuth callback")
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		token, err := config.Exchange(ctx, code)
		if err != nil {
			errChan <- fmt.Errorf("failed to exchange code: %w", err)
			http.Error(w, "token exchange failed", http.StatusBadGateway)
			return
		}

		callbackChan <- token
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	server := &http.Server{Addr: "localhost:8080", Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	fmt.Println("Opening browser for Google OAuth...")
	fmt.Printf("\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)

	_ = openBrowser(authURL)

	select {
	case token := <-callbackChan:
		_ = server.Shutdown(ctx)

		if err := sync.SaveToken(token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}

		fmt.Printf("\n✓ Authenticated successfully\n")
		fmt.Printf("✓ Tokens saved to %s\n\n", sync.TokenPath())
		fmt.Println("Ready to sync! Run 'amplify sync contacts' to import contacts.")

		return nil

	case err := <-errChan:
		_ = server.Shutdown(ctx)
		return fmt.Errorf("OAuth flow failed: %w", err)
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SyncContactsCommand imports Google Contacts, birthdays included.
func SyncContactsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("contacts", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()

	httpClient, err := sync.AuthorizedClient(ctx)
	if err != nil {
		return err
	}

	client, err := sync.NewPeopleService(ctx, httpClient)
	if err != nil {
		return err
	}

	fmt.Println("Syncing Google Contacts...")
	stats, err := sync.ImportContacts(ctx, database, client)
	if err != nil {
		return fmt.Errorf("contact sync failed: %w", err)
	}

	fmt.Printf("  ✓ Fetched %d contacts\n", stats.Fetched)
	fmt.Printf("  ✓ Created %d, updated %d, skipped %d\n", stats.Created, stats.Updated, stats.Skipped)
	if stats.Failed > 0 {
		fmt.Printf("  ⚠️  %d contacts failed to import\n", stats.Failed)
	}
	return nil
}

// SyncCalendarCommand syncs Google Calendar events
func SyncCalendarCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("calendar", flag.ExitOnError)
	initial := fs.Bool("initial", false, "Full import (last 6 months)")
	_ = fs.Parse(args)

	ctx := context.Background()

	httpClient, err := sync.AuthorizedClient(ctx)
	if err != nil {
		return err
	}

	client, err := sync.NewCalendarService(ctx, httpClient)
	if err != nil {
		return err
	}

	fmt.Println("Syncing Google Calendar...")
	stats, err := sync.ImportCalendar(ctx, database, client, *initial)
	if err != nil {
		return fmt.Errorf("calendar sync failed: %w", err)
	}

	fmt.Printf("  ✓ Read %d events\n", stats.Events)
	fmt.Printf("  ✓ Logged %d meeting interactions (%d attendees not in contacts)\n", stats.Interactions, stats.Unmatched)
	if len(stats.Skipped) > 0 {
		reasons := make([]string, 0, len(stats.Skipped))
		for reason, n := range stats.Skipped {
			reasons = append(reasons, fmt.Sprintf("%s: %d", reason, n))
		}
		sort.Strings(reasons)
		fmt.Printf("  Skipped %s\n", strings.Join(reasons, ", "))
	}
	return nil
}

// SyncStatusCommand shows the last import time for each Google service and
// the auto-responder cursors.
func SyncStatusCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	_ = fs.Parse(args)

	states, err := db.GetAllSyncStates(database)
	if err != nil {
		return fmt.Errorf("failed to get sync state: %w", err)
	}

	if len(states) == 0 {
		fmt.Println("Nothing has been synced yet. Run 'amplify sync init' to get started.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SERVICE\tSTATUS\tLAST SYNC\tERROR")
	_, _ = fmt.Fprintln(w, "-------\t------\t---------\t-----")
	for _, s := range states {
		last := "never"
		if s.LastSyncTime != nil {
			last = formatTimeSince(*s.LastSyncTime)
		}
		errMsg := "-"
		if s.ErrorMessage != nil && *s.ErrorMessage != "" {
			errMsg = *s.ErrorMessage
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Service, orDash(s.Status), last, errMsg)
	}
	return w.Flush()
}

// formatTimeSince renders a past time as "5 minutes ago".
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	unit := func(n int, name string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", name)
		}
		return fmt.Sprintf("%d %ss ago", n, name)
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return unit(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return unit(int(d.Hours()), "hour")
	default:
		return unit(int(d.Hours()/24), "day")
	}
}

// openBrowser attempts to open URL in default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	command := exec.Command(cmd, args...)
	return command.Start()
}
