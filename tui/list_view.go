// ABOUTME: TUI list screens for pending auto-responses and the manual-posting log
// ABOUTME: Renders tabs and tables and handles approve, reject, edit and navigation keys
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
)

const listLimit = 100

// ResponseSentMsg reports the outcome of approving a reply.
type ResponseSentMsg struct {
	ID     string
	Author string
	Error  error
}

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("AMPLIFY"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.tab == TabSync {
		s.WriteString(m.renderSyncView())
		return s.String()
	}

	s.WriteString(m.renderTable())
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	} else if m.status != "" {
		s.WriteString(statusStyle.Render(m.status))
		s.WriteString("\n")
	}

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string

	for i, tab := range tabNames {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	switch m.tab {
	case TabPending:
		return m.renderPendingTable()
	case TabFallbacks:
		return m.renderFallbackTable()
	case TabFollowups:
		return m.renderFollowupsTable()
	}
	return ""
}

func (m Model) newTable(columns []table.Column, rows []table.Row) string {
	height := m.height - 10
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) pendingResponses() ([]models.Response, error) {
	return m.responder.Pending(listLimit)
}

func (m Model) renderPendingTable() string {
	pending, err := m.pendingResponses()
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if len(pending) == 0 {
		return "Nothing awaiting approval"
	}

	columns := []table.Column{
		{Title: "Platform", Width: 10},
		{Title: "Author", Width: 16},
		{Title: "Keyword", Width: 12},
		{Title: "Reply", Width: 50},
	}

	var rows []table.Row
	for _, p := range pending {
		rows = append(rows, table.Row{p.Platform, p.Author, p.Keyword, p.Text})
	}

	return m.newTable(columns, rows)
}

func (m Model) renderFallbackTable() string {
	entries, err := db.ListFallbackEntries(m.db, listLimit)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if len(entries) == 0 {
		return "Every platform delivered. Nothing to post by hand."
	}

	columns := []table.Column{
		{Title: "When", Width: 16},
		{Title: "Platform", Width: 10},
		{Title: "Kind", Width: 10},
		{Title: "Error", Width: 30},
		{Title: "Notified", Width: 8},
	}

	var rows []table.Row
	for _, e := range entries {
		notified := "no"
		if e.Notified {
			notified = "yes"
		}
		rows = append(rows, table.Row{
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Platform,
			e.ErrorKind,
			e.Error,
			notified,
		})
	}

	return m.newTable(columns, rows)
}

func (m Model) renderListHelp() string {
	help := []string{"↑/↓: Navigate", "Tab: Switch tabs"}
	switch m.tab {
	case TabPending:
		help = append(help, "Enter: View", "a: Approve", "e: Edit", "r: Reject")
	case TabFallbacks:
		help = append(help, "Enter: View", "g: Fan-out graph")
	}
	help = append(help, "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) rowCount() int {
	switch m.tab {
	case TabPending:
		pending, _ := m.pendingResponses()
		return len(pending)
	case TabFallbacks:
		entries, _ := db.ListFallbackEntries(m.db, listLimit)
		return len(entries)
	case TabFollowups:
		followups, _ := db.GetFollowupList(m.db, listLimit)
		return len(followups)
	}
	return 0
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "tab" {
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.selectedRow = 0
		m.status = ""
		m.err = nil
		return m, nil
	}
	if m.tab == TabSync {
		return m.handleSyncKeys(msg)
	}

	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "enter":
		if id := m.getSelectedID(); id != "" {
			m.selectedID = id
			m.viewMode = ViewDetail
		}
	case "a":
		if m.tab == TabPending {
			if id := m.getSelectedID(); id != "" {
				m.status = "Sending reply..."
				m.err = nil
				return m, m.approve(id)
			}
		}
	case "r":
		if m.tab == TabPending {
			if id := m.getSelectedID(); id != "" {
				m.selectedID = id
				m.viewMode = ViewConfirmReject
			}
		}
	case "e":
		if m.tab == TabPending {
			if id := m.getSelectedID(); id != "" {
				m.selectedID = id
				m.startEdit()
			}
		}
	case "g":
		if m.tab == TabFallbacks {
			m.selectedID = m.getSelectedID()
			if err := m.generateGraph(); err != nil {
				m.err = err
			} else {
				m.viewMode = ViewGraph
			}
		}
	}

	return m, nil
}

// getSelectedID returns the response ID or fallback entry ID under the cursor.
func (m Model) getSelectedID() string {
	switch m.tab {
	case TabPending:
		pending, _ := m.pendingResponses()
		if m.selectedRow < len(pending) {
			return pending[m.selectedRow].ID
		}
	case TabFallbacks:
		entries, _ := db.ListFallbackEntries(m.db, listLimit)
		if m.selectedRow < len(entries) {
			return entries[m.selectedRow].ID.String()
		}
	}
	return ""
}

func (m Model) selectedFallback() *models.FallbackEntry {
	entries, _ := db.ListFallbackEntries(m.db, listLimit)
	for i := range entries {
		if entries[i].ID.String() == m.selectedID {
			return &entries[i]
		}
	}
	return nil
}

// approve sends the reply off the UI goroutine.
func (m Model) approve(id string) tea.Cmd {
	r := m.responder
	return func() tea.Msg {
		resp, err := r.Approve(context.Background(), id)
		msg := ResponseSentMsg{ID: id, Error: err}
		if resp != nil {
			msg.Author = resp.Author
		}
		return msg
	}
}

func (m *Model) handleResponseSent(msg ResponseSentMsg) {
	if msg.Error != nil {
		m.err = msg.Error
		m.status = ""
	} else {
		m.err = nil
		m.status = fmt.Sprintf("✓ Reply sent to %s", msg.Author)
	}
	m.viewMode = ViewList
	m.selectedID = ""
	if n := m.rowCount(); m.selectedRow >= n {
		m.selectedRow = max(n-1, 0)
	}
}
