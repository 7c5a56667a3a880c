package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/amplify/db"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("DETAIL VIEW"))
	s.WriteString("\n\n")

	switch m.tab {
	case TabPending:
		s.WriteString(m.renderResponseDetail())
	case TabFallbacks:
		s.WriteString(m.renderFallbackDetail())
	}

	s.WriteString("\n\n")
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderResponseDetail() string {
	resp, err := db.GetResponse(m.db, m.selectedID)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if resp == nil {
		return "Response not found"
	}

	var s strings.Builder
	s.WriteString(m.renderField("Platform", resp.Platform))
	s.WriteString(m.renderField("Author", resp.Author))
	s.WriteString(m.renderField("Mention", resp.MentionID))
	s.WriteString(m.renderField("Keyword", resp.Keyword))
	s.WriteString(m.renderField("Category", resp.Category))
	s.WriteString(m.renderField("Status", resp.Status))
	s.WriteString(m.renderField("Queued", resp.CreatedAt.Local().Format("2006-01-02 15:04")))
	s.WriteString("\n")
	s.WriteString(fieldValueStyle.Render(resp.Text))
	return s.String()
}

func (m Model) renderFallbackDetail() string {
	entry := m.selectedFallback()
	if entry == nil {
		return "Entry not found"
	}

	var s strings.Builder
	s.WriteString(m.renderField("Platform", entry.Platform))
	s.WriteString(m.renderField("Post", entry.PostID))
	s.WriteString(m.renderField("Failure", entry.ErrorKind))
	s.WriteString(m.renderField("Error", entry.Error))
	if entry.Notified {
		s.WriteString(m.renderField("Notified", entry.Recipient))
	} else if entry.NotifyError != "" {
		s.WriteString(m.renderField("Notify error", entry.NotifyError))
	}
	s.WriteString("\n")
	s.WriteString(fieldLabelStyle.Render("Post this by hand:"))
	s.WriteString("\n\n")
	s.WriteString(fieldValueStyle.Render(entry.Content))
	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		return ""
	}
	return fieldLabelStyle.Render(label+":") + " " + fieldValueStyle.Render(value) + "\n"
}

func (m Model) renderDetailHelp() string {
	help := []string{"Esc: Back"}
	if m.tab == TabPending {
		help = append(help, "a: Approve", "e: Edit", "r: Reject")
	}
	if m.tab == TabFallbacks {
		help = append(help, "g: Fan-out graph")
	}
	help = append(help, "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.selectedID = ""
	case "a":
		if m.tab == TabPending {
			m.status = "Sending reply..."
			m.err = nil
			return m, m.approve(m.selectedID)
		}
	case "r":
		if m.tab == TabPending {
			m.viewMode = ViewConfirmReject
		}
	case "e":
		if m.tab == TabPending {
			m.startEdit()
		}
	case "g":
		if m.tab == TabFallbacks {
			if err := m.generateGraph(); err != nil {
				m.err = err
			} else {
				m.viewMode = ViewGraph
			}
		}
	}

	return m, nil
}
