// ABOUTME: Follow-up tracking CLI commands
// ABOUTME: Commands for listing follow-ups, network health and setting cadence
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
)

// FollowupListCommand lists contacts needing follow-up
func FollowupListCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("followups", flag.ExitOnError)
	overdueOnly := fs.Bool("overdue-only", false, "Show only overdue contacts")
	strength := fs.String("strength", "", "Filter by relationship strength (weak/medium/strong)")
	category := fs.String("category", "", "Filter by contact category")
	limit := fs.Int("limit", 10, "Maximum number of contacts to show")
	_ = fs.Parse(args)

	// Scores drift as days pass
	if err := db.RefreshPriorityScores(database); err != nil {
		return fmt.Errorf("failed to refresh priority scores: %w", err)
	}

	followups, err := db.GetFollowupList(database, *limit)
	if err != nil {
		return fmt.Errorf("failed to get followup list: %w", err)
	}

	var filtered []models.FollowupContact
	for _, f := range followups {
		if *overdueOnly && f.DaysSinceContact <= f.CadenceDays {
			continue
		}
		if *strength != "" && f.RelationshipStrength != *strength {
			continue
		}
		if *category != "" && f.Category != *category {
			continue
		}
		filtered = append(filtered, f)
	}

	if len(filtered) == 0 {
		fmt.Println("Nobody is due for a follow-up")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tDAYS SINCE\tPRIORITY\tSTRENGTH\tCATEGORY\tEMAIL")
	_, _ = fmt.Fprintln(w, "----\t----------\t--------\t--------\t--------\t-----")

	for _, f := range filtered {
		indicator := "🟢"
		if f.DaysSinceContact > f.CadenceDays+7 {
			indicator = "🔴"
		} else if f.DaysSinceContact >= f.CadenceDays-3 {
			indicator = "🟡"
		}

		_, _ = fmt.Fprintf(w, "%s %s\t%d\t%.1f\t%s\t%s\t%s\n",
			indicator, f.Name, f.DaysSinceContact, f.PriorityScore,
			f.RelationshipStrength, f.Category, orDash(f.Email))
	}

	_ = w.Flush()
	return nil
}

// FollowupStatsCommand shows follow-up statistics
func FollowupStatsCommand(database *sql.DB, args []string) error {
	query := `
		SELECT
			relationship_strength,
			COUNT(*) as count,
			AVG(CAST((julianday('now') - julianday(last_interaction_date)) AS INTEGER)) as avg_days
		FROM contact_cadence
		WHERE last_interaction_date IS NOT NULL
		GROUP BY relationship_strength
	`

	rows, err := database.Query(query)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	fmt.Println("NETWORK HEALTH")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	for rows.Next() {
		var strength string
		var count int
		var avgDays sql.NullFloat64

		err := rows.Scan(&strength, &count, &avgDays)
		if err != nil {
			return err
		}

		icon := "🟢"
		switch strength {
		case models.StrengthWeak:
			icon = "🔴"
		case models.StrengthMedium:
			icon = "🟡"
		}

		fmt.Printf("  %s %s relationships: %d (avg contact: %.0f days)\n",
			icon, strength, count, avgDays.Float64)
	}

	return rows.Err()
}

// SetCadenceCommand sets how often a contact should hear from you.
func SetCadenceCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("set-cadence", flag.ExitOnError)
	days := fs.Int("days", 30, "Days between contacts")
	strength := fs.String("strength", models.StrengthMedium, "Relationship strength (weak/medium/strong)")
	_ = fs.Parse(args)

	if len(fs.Args()) < 1 {
		return fmt.Errorf("contact ID is required")
	}
	if *days <= 0 {
		return fmt.Errorf("--days must be positive")
	}
	switch *strength {
	case models.StrengthWeak, models.StrengthMedium, models.StrengthStrong:
	default:
		return fmt.Errorf("invalid --strength %q (valid: weak, medium, strong)", *strength)
	}

	contact, err := resolveContact(database, fs.Arg(0))
	if err != nil {
		return err
	}

	if err := db.SetContactCadence(database, contact.ID, *days, *strength); err != nil {
		return fmt.Errorf("failed to set cadence: %w", err)
	}

	fmt.Printf("✓ %s: every %d days (%s)\n", contact.Name, *days, *strength)
	return nil
}
