// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides an ASCII overview of contacts, posts, platforms, automation and responses
package viz

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
)

const (
	staleContactDays = 30
	upcomingDays     = 14
	recentWindow     = 7 * 24 * time.Hour
)

type DashboardStats struct {
	GeneratedAt time.Time

	// Contacts
	TotalContacts      int
	ContactsByCategory map[string]int

	// Publishing
	PostsByStatus map[string]int
	Platforms     map[string]db.PlatformTally

	// Automation
	Rules       []RuleState
	RecentFires map[string]int

	// Responder
	PendingResponses int

	// Needs attention
	RecentFallbacks int
	StaleContacts   []StaleContact
	Upcoming        []UpcomingDate
}

type RuleState struct {
	Name      string
	Enabled   bool
	Platforms []string
}

type StaleContact struct {
	Name      string
	DaysSince int
}

// UpcomingDate is a birthday or work anniversary inside the lookahead window.
type UpcomingDate struct {
	Name      string
	Kind      string
	Date      time.Time
	DaysUntil int
}

// GenerateDashboardStats collects dashboard numbers as of now. rules is the
// current automation configuration; it is passed in so viz stays independent
// of the settings store.
func GenerateDashboardStats(database *sql.DB, rules []models.AutomationRule, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{
		GeneratedAt:        now,
		ContactsByCategory: make(map[string]int),
	}

	contacts, err := db.ListAllContacts(database)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	stats.TotalContacts = len(contacts)

	today := truncateDay(now)
	for _, contact := range contacts {
		stats.ContactsByCategory[contact.Category]++

		if contact.LastContactedAt == nil {
			stats.StaleContacts = append(stats.StaleContacts, StaleContact{
				Name:      contact.Name,
				DaysSince: -1, // Never contacted
			})
		} else {
			daysSince := int(now.Sub(*contact.LastContactedAt).Hours() / 24)
			if daysSince > staleContactDays {
				stats.StaleContacts = append(stats.StaleContacts, StaleContact{
					Name:      contact.Name,
					DaysSince: daysSince,
				})
			}
		}

		if contact.Birthday != nil {
			if next, days := nextOccurrence(*contact.Birthday, today); days <= upcomingDays {
				stats.Upcoming = append(stats.Upcoming, UpcomingDate{Name: contact.Name, Kind: models.RuleBirthday, Date: next, DaysUntil: days})
			}
		}
		if contact.WorkAnniversary != nil {
			next, days := nextOccurrence(*contact.WorkAnniversary, today)
			if days <= upcomingDays && next.Year() > contact.WorkAnniversary.Year() {
				stats.Upcoming = append(stats.Upcoming, UpcomingDate{Name: contact.Name, Kind: models.RuleAnniversary, Date: next, DaysUntil: days})
			}
		}
	}
	sort.SliceStable(stats.Upcoming, func(i, j int) bool {
		return stats.Upcoming[i].DaysUntil < stats.Upcoming[j].DaysUntil
	})

	stats.PostsByStatus, err = db.PostStats(database)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post stats: %w", err)
	}

	stats.Platforms, err = db.PlatformResultStats(database)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch platform stats: %w", err)
	}

	for _, rule := range rules {
		stats.Rules = append(stats.Rules, RuleState{Name: rule.Name, Enabled: rule.Enabled, Platforms: rule.Platforms})
	}

	stats.RecentFires, err = db.CountAutomationFires(database, now.Add(-recentWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count automation fires: %w", err)
	}

	pending, err := db.ListResponses(database, models.ResponsePending, 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending responses: %w", err)
	}
	stats.PendingResponses = len(pending)

	fallbacks, err := db.ListFallbackEntries(database, 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fallback log: %w", err)
	}
	for _, entry := range fallbacks {
		if now.Sub(entry.CreatedAt) <= recentWindow {
			stats.RecentFallbacks++
		}
	}

	return stats, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// nextOccurrence returns the next calendar match of d's month and day on or
// after today. Feb 29 maps to Feb 28 in non-leap years.
func nextOccurrence(d, today time.Time) (time.Time, int) {
	at := func(year int) time.Time {
		day := d.Day()
		if d.Month() == time.February && day == 29 && !isLeap(year) {
			day = 28
		}
		return time.Date(year, d.Month(), day, 0, 0, 0, 0, today.Location())
	}

	next := at(today.Year())
	if next.Before(today) {
		next = at(today.Year() + 1)
	}
	return next, int(next.Sub(today).Hours() / 24)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	// Header
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  AMPLIFY DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("POSTS\n")
	renderPosts(&out, stats.PostsByStatus)
	out.WriteString("\n")

	if len(stats.Platforms) > 0 {
		out.WriteString("PLATFORMS\n")
		renderPlatforms(&out, stats.Platforms)
		out.WriteString("\n")
	}

	if len(stats.Rules) > 0 {
		out.WriteString("AUTOMATION\n")
		for _, rule := range stats.Rules {
			mark := "○"
			if rule.Enabled {
				mark = "●"
			}
			out.WriteString(fmt.Sprintf("  %s %-18s %-28s %d fired this week\n",
				mark, rule.Name, strings.Join(rule.Platforms, ", "), stats.RecentFires[rule.Name]))
		}
		out.WriteString("\n")
	}

	// Stats
	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  💬 %d pending responses\n", stats.TotalContacts, stats.PendingResponses))
	if len(stats.ContactsByCategory) > 0 {
		categories := make([]string, 0, len(stats.ContactsByCategory))
		for category := range stats.ContactsByCategory {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		parts := make([]string, 0, len(categories))
		for _, category := range categories {
			parts = append(parts, fmt.Sprintf("%s %d", category, stats.ContactsByCategory[category]))
		}
		out.WriteString("  " + strings.Join(parts, " · ") + "\n")
	}
	out.WriteString("\n")

	if len(stats.Upcoming) > 0 {
		out.WriteString("UPCOMING\n")
		for _, u := range stats.Upcoming {
			icon := "🎂"
			if u.Kind == models.RuleAnniversary {
				icon = "🎉"
			}
			when := fmt.Sprintf("in %d days", u.DaysUntil)
			switch u.DaysUntil {
			case 0:
				when = "today"
			case 1:
				when = "tomorrow"
			}
			out.WriteString(fmt.Sprintf("  %s %s %s (%s)\n", icon, u.Name, when, u.Date.Format("Jan 2")))
		}
		out.WriteString("\n")
	}

	// Needs attention
	if len(stats.StaleContacts) > 0 || stats.RecentFallbacks > 0 || stats.PendingResponses > 0 {
		out.WriteString("NEEDS ATTENTION\n")

		if len(stats.StaleContacts) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d contacts - no contact in %d+ days\n", len(stats.StaleContacts), staleContactDays))
		}
		if stats.RecentFallbacks > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d undelivered posts in the fallback log this week\n", stats.RecentFallbacks))
		}
		if stats.PendingResponses > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d auto-responses awaiting approval\n", stats.PendingResponses))
		}
	}

	return out.String()
}

func renderBar(count, maxCount int) string {
	if maxCount == 0 {
		maxCount = 1
	}
	barLength := (count * 10) / maxCount
	return strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
}

func renderPosts(out *strings.Builder, byStatus map[string]int) {
	statuses := []string{
		models.PostStatusDraft,
		models.PostStatusScheduled,
		models.PostStatusPublished,
		models.PostStatusPartial,
		models.PostStatusFailed,
	}

	maxCount := 0
	for _, count := range byStatus {
		if count > maxCount {
			maxCount = count
		}
	}
	if maxCount == 0 {
		out.WriteString("  no posts yet\n")
		return
	}

	for _, status := range statuses {
		count, exists := byStatus[status]
		if !exists {
			continue
		}
		out.WriteString(fmt.Sprintf("  %-10s %s  %2d\n", status, renderBar(count, maxCount), count))
	}
}

func renderPlatforms(out *strings.Builder, platforms map[string]db.PlatformTally) {
	for _, name := range models.AllPlatforms {
		t, exists := platforms[name]
		if !exists {
			continue
		}
		total := t.Delivered + t.Failed
		line := fmt.Sprintf("  %-10s %s  %d/%d delivered", name, renderBar(t.Delivered, total), t.Delivered, total)
		if t.Fallbacks > 0 {
			line += fmt.Sprintf(" (%d to fallback)", t.Fallbacks)
		}
		out.WriteString(line + "\n")
	}
}
