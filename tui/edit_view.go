package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/platforms"
)

func (m Model) renderEditView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("EDIT REPLY"))
	s.WriteString("\n\n")
	s.WriteString("> ")
	s.WriteString(m.editInput.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(fmt.Sprintf("%d/%d", len([]rune(m.editInput.Value())), m.editInput.CharLimit)))
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

// startEdit loads the selected reply into the input, capped at the
// platform's text limit.
func (m *Model) startEdit() {
	resp, err := db.GetResponse(m.db, m.selectedID)
	if err != nil || resp == nil {
		m.err = fmt.Errorf("response not found: %s", m.selectedID)
		return
	}

	input := textinput.New()
	input.Placeholder = "Reply"
	input.CharLimit = 280
	if limits, err := platforms.LimitsFor(resp.Platform); err == nil && limits.MaxChars > 0 {
		input.CharLimit = limits.MaxChars
	}
	input.Width = 60
	input.SetValue(resp.Text)
	input.Focus()

	m.editInput = input
	m.err = nil
	m.viewMode = ViewEdit
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.err = nil
		return m, nil
	case "enter":
		resp, err := m.responder.Edit(m.selectedID, m.editInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("✓ Reply to %s updated", resp.Author)
		m.viewMode = ViewList
		return m, nil
	}

	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}
