// ABOUTME: Reject confirmation view for TUI
// ABOUTME: Asks before discarding a queued auto-response
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/amplify/db"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmRejectView() string {
	resp, err := db.GetResponse(m.db, m.selectedID)
	if err != nil {
		return fmt.Sprintf("Error loading response: %v", err)
	}
	if resp == nil {
		return "Response not found"
	}

	title := warningStyle.Render("REJECT REPLY")
	message := fmt.Sprintf("Discard the reply to %s on %s?", resp.Author, resp.Platform)

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Reject (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		"",
		resp.Text,
		"",
		buttons,
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content),
	)
}

func (m Model) handleConfirmRejectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		resp, err := m.responder.Reject(m.selectedID)
		if err != nil {
			m.err = err
			m.status = ""
		} else {
			m.err = nil
			m.status = fmt.Sprintf("✓ Reply to %s rejected", resp.Author)
		}
		m.viewMode = ViewList
		m.selectedID = ""
		if n := m.rowCount(); m.selectedRow >= n {
			m.selectedRow = max(n-1, 0)
		}
	case "n", "N", "esc":
		m.viewMode = ViewList
	}

	return m, nil
}
