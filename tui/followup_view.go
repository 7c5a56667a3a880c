// ABOUTME: TUI view for follow-up tracking
// ABOUTME: Displays prioritized list of contacts needing follow-up
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"

	"github.com/harperreed/amplify/db"
)

func (m Model) renderFollowupsTable() string {
	followups, err := db.GetFollowupList(m.db, listLimit)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if len(followups) == 0 {
		return "No contacts with a cadence yet"
	}

	columns := []table.Column{
		{Title: "Status", Width: 6},
		{Title: "Name", Width: 25},
		{Title: "Days", Width: 8},
		{Title: "Priority", Width: 10},
		{Title: "Strength", Width: 10},
		{Title: "Category", Width: 14},
	}

	var rows []table.Row
	for _, f := range followups {
		indicator := "🟢"
		if f.DaysSinceContact > f.CadenceDays+7 {
			indicator = "🔴"
		} else if f.DaysSinceContact >= f.CadenceDays-3 {
			indicator = "🟡"
		}

		rows = append(rows, table.Row{
			indicator,
			f.Name,
			fmt.Sprintf("%d", f.DaysSinceContact),
			fmt.Sprintf("%.1f", f.PriorityScore),
			f.RelationshipStrength,
			f.Category,
		})
	}

	return m.newTable(columns, rows)
}
