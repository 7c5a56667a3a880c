// ABOUTME: Auto-responder CLI commands
// ABOUTME: Manage keywords and settings, poll mentions, and approve or reject queued replies
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/responder"
	"golang.org/x/term"
)

// ResponderKeywordsCommand handles "responder keywords list|add|remove".
func ResponderKeywordsCommand(app *App, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		settings, err := responder.LoadSettings(app.Settings)
		if err != nil {
			return err
		}
		printKeywords(settings)
		return nil
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("responder keywords add", flag.ExitOnError)
		category := fs.String("category", responder.CategoryGeneral, "Reply category: "+strings.Join(responder.Categories, ", "))
		_ = fs.Parse(args[1:])
		if fs.NArg() < 1 {
			return fmt.Errorf("keyword is required")
		}
		settings, err := responder.AddKeyword(app.Settings, strings.Join(fs.Args(), " "), *category)
		if err != nil {
			return err
		}
		fmt.Println("✓ Keyword saved")
		printKeywords(settings)
		return nil

	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("keyword is required")
		}
		settings, err := responder.RemoveKeyword(app.Settings, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Println("✓ Keyword removed")
		printKeywords(settings)
		return nil
	}

	return fmt.Errorf("unknown keywords command: %s", args[0])
}

func printKeywords(settings responder.Settings) {
	if len(settings.Keywords) == 0 {
		fmt.Println("No keywords configured")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEYWORD\tCATEGORY")
	_, _ = fmt.Fprintln(w, "-------\t--------")
	for _, k := range settings.Keywords {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", k.Keyword, k.Category)
	}
	_ = w.Flush()
}

// ResponderConfigCommand shows the settings, changing any flag that was given.
func ResponderConfigCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("responder config", flag.ExitOnError)
	enabled := fs.Bool("enabled", false, "Turn the responder on or off")
	maxPerHour := fs.Int("max-per-hour", responder.DefaultMaxPerHour, "Hourly reply cap")
	voice := fs.String("voice", "", "Brand voice")
	scripture := fs.Bool("scripture", false, "Append a scripture reference")
	approval := fs.Bool("approval", true, "Queue replies for approval instead of sending")
	platformList := fs.String("platforms", "", "Comma-separated platforms to watch")
	_ = fs.Parse(args)

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var settings responder.Settings
	var err error
	if len(set) == 0 {
		settings, err = responder.LoadSettings(app.Settings)
	} else {
		settings, err = responder.UpdateSettings(app.Settings, func(s *responder.Settings) error {
			if set["enabled"] {
				s.Enabled = *enabled
			}
			if set["max-per-hour"] {
				s.MaxPerHour = *maxPerHour
			}
			if set["voice"] {
				s.BrandVoice = *voice
			}
			if set["scripture"] {
				s.IncludeScripture = *scripture
			}
			if set["approval"] {
				s.RequireApproval = *approval
			}
			if set["platforms"] {
				targets, err := models.ParsePlatforms(*platformList)
				if err != nil {
					return err
				}
				s.Platforms = targets
			}
			return nil
		})
		if err == nil {
			fmt.Println("✓ Responder settings saved")
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("  Enabled:          %t\n", settings.Enabled)
	fmt.Printf("  Platforms:        %s\n", strings.Join(settings.Platforms, ", "))
	fmt.Printf("  Max per hour:     %d\n", settings.MaxPerHour)
	fmt.Printf("  Brand voice:      %s\n", settings.BrandVoice)
	fmt.Printf("  Scripture:        %t\n", settings.IncludeScripture)
	fmt.Printf("  Require approval: %t\n", settings.RequireApproval)
	fmt.Printf("  Keywords:         %d\n", len(settings.Keywords))
	return nil
}

// ResponderTickCommand polls mentions once.
func ResponderTickCommand(app *App, args []string) error {
	r, err := app.Responder()
	if err != nil {
		return err
	}

	report, err := r.Tick(context.Background())
	if err != nil {
		return fmt.Errorf("responder tick failed: %w", err)
	}

	if report.Disabled {
		fmt.Println("Responder is disabled. Enable it with 'amplify responder config --enabled'.")
		return nil
	}

	fmt.Printf("✓ Fetched %d mentions: %d ignored, %d queued, %d sent, %d failed, %d over the hourly cap\n",
		report.Fetched, report.Ignored, report.Pending, report.Sent, report.Failed, report.Blocked)
	for _, e := range report.Errors {
		fmt.Printf("  ⚠️  %s\n", e)
	}
	return nil
}

// ResponderPendingCommand lists replies waiting for approval.
func ResponderPendingCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("responder pending", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum results")
	_ = fs.Parse(args)

	r, err := app.Responder()
	if err != nil {
		return err
	}

	pending, err := r.Pending(*limit)
	if err != nil {
		return fmt.Errorf("failed to list pending responses: %w", err)
	}

	if len(pending) == 0 {
		fmt.Println("✓ Nothing awaiting approval")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPLATFORM\tAUTHOR\tKEYWORD\tREPLY")
	_, _ = fmt.Fprintln(w, "--\t--------\t------\t-------\t-----")
	for _, p := range pending {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Platform, p.Author, p.Keyword, p.Text)
	}
	return w.Flush()
}

// ResponderApproveCommand sends a queued reply. On a terminal it shows the
// reply and asks first unless --yes is given.
func ResponderApproveCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("responder approve", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("response ID is required")
	}
	id := fs.Arg(0)

	r, err := app.Responder()
	if err != nil {
		return err
	}

	if !*yes && term.IsTerminal(int(os.Stdin.Fd())) {
		pending, err := r.Pending(1000)
		if err != nil {
			return err
		}
		for _, p := range pending {
			if p.ID == id {
				fmt.Printf("Reply to %s on %s:\n\n  %s\n\n", p.Author, p.Platform, p.Text)
			}
		}
		if !confirm(os.Stdin, "Send this reply?") {
			fmt.Println("Cancelled")
			return nil
		}
	}

	resp, err := r.Approve(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Reply sent to %s on %s\n", resp.Author, resp.Platform)
	return nil
}

// ResponderRejectCommand discards a queued reply.
func ResponderRejectCommand(app *App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("response ID is required")
	}

	r, err := app.Responder()
	if err != nil {
		return err
	}

	resp, err := r.Reject(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("✓ Reply to %s rejected\n", resp.Author)
	return nil
}

func confirm(in io.Reader, question string) bool {
	fmt.Printf("%s [y/N] ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
