// ABOUTME: Automation CLI commands
// ABOUTME: List, toggle, configure and run the CRM automation rules
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/amplify/automation"
	"github.com/harperreed/amplify/models"
)

// AutomationListCommand shows every rule and its configuration.
func AutomationListCommand(app *App, args []string) error {
	rules, err := automation.LoadRules(app.Settings)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RULE\tENABLED\tPLATFORMS\tTIMING\tVOICE\tLAST RUN")
	_, _ = fmt.Fprintln(w, "----\t-------\t---------\t------\t-----\t--------")
	for _, r := range automation.SortedRules(rules) {
		enabled := "○ off"
		if r.Enabled {
			enabled = "● on"
		}
		timing := "-"
		switch {
		case r.DelayDays > 0:
			timing = fmt.Sprintf("after %dd", r.DelayDays)
		case r.IntervalDays > 0:
			timing = fmt.Sprintf("every %dd", r.IntervalDays)
		}
		lastRun := "-"
		if r.LastRunAt != nil {
			lastRun = formatTimeSince(*r.LastRunAt)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Name, enabled, strings.Join(r.Platforms, ","), timing, orDash(r.BrandVoice), lastRun)
	}
	return w.Flush()
}

// AutomationToggleCommand enables or disables one rule.
func AutomationToggleCommand(app *App, args []string, enabled bool) error {
	if len(args) < 1 {
		return fmt.Errorf("rule name is required (one of: %s)", strings.Join(models.RuleNames, ", "))
	}

	rule, err := automation.SetEnabled(app.Settings, args[0], enabled)
	if err != nil {
		return err
	}

	state := "disabled"
	if rule.Enabled {
		state = "enabled"
	}
	fmt.Printf("✓ Rule %s %s\n", rule.Name, state)
	return nil
}

// AutomationSetCommand changes a rule's platforms, timing or voice.
func AutomationSetCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("automation set", flag.ExitOnError)
	platformList := fs.String("platforms", "", "Comma-separated platforms")
	delay := fs.Int("delay-days", -1, "Days to wait (welcome, follow_up)")
	interval := fs.Int("interval-days", -1, "Days between runs (networking_digest)")
	categories := fs.String("categories", "", "Comma-separated contact categories")
	voice := fs.String("voice", "", "Brand voice")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("rule name is required (one of: %s)", strings.Join(models.RuleNames, ", "))
	}

	var targets []string
	if *platformList != "" {
		var err error
		if targets, err = models.ParsePlatforms(*platformList); err != nil {
			return err
		}
	}
	var cats []string
	for _, c := range splitList(*categories) {
		normalized, err := models.NormalizeCategory(c)
		if err != nil {
			return err
		}
		cats = append(cats, normalized)
	}

	rule, err := automation.UpdateRule(app.Settings, fs.Arg(0), func(r *models.AutomationRule) {
		if targets != nil {
			r.Platforms = targets
		}
		if *delay >= 0 {
			r.DelayDays = *delay
		}
		if *interval >= 0 {
			r.IntervalDays = *interval
		}
		if cats != nil {
			r.Categories = cats
		}
		if *voice != "" {
			r.BrandVoice = *voice
		}
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Rule %s updated (platforms: %s)\n", rule.Name, strings.Join(rule.Platforms, ", "))
	return nil
}

// AutomationRunCommand evaluates every enabled rule once.
func AutomationRunCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("automation run", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "Show what would be posted without posting or recording anything")
	_ = fs.Parse(args)

	engine := app.Engine()

	var report *automation.Report
	var err error
	if *dryRun {
		report, err = engine.Preview(context.Background())
	} else {
		report, err = engine.Run(context.Background())
	}
	if err != nil {
		return fmt.Errorf("automation run failed: %w", err)
	}

	printReport(report)
	return nil
}

func printReport(report *automation.Report) {
	if report.DryRun {
		fmt.Println("DRY RUN: nothing was posted or recorded")
	}

	if len(report.Matches) == 0 {
		fmt.Println("No rules matched")
	}
	for _, m := range report.Matches {
		who := ""
		if m.ContactName != "" {
			who = " for " + m.ContactName
		}
		fmt.Printf("  [%s] %s%s: %s\n", m.Status, m.Rule, who, m.Text)
		if m.PostID != "" {
			fmt.Printf("    post %s\n", m.PostID)
		}
	}
	for _, e := range report.Errors {
		fmt.Printf("  ⚠️  %s\n", e)
	}
}
