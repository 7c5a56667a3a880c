// ABOUTME: TUI view for Google sync status and controls
// ABOUTME: Displays sync states and allows triggering contact and calendar imports
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
)

var syncServices = []string{"contacts", "calendar"}

var (
	syncHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Underline(true)

	syncServiceStyle = lipgloss.NewStyle().
				Bold(true).
				Width(12)

	syncIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	syncSyncingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)

	syncSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("235")).
				Foreground(lipgloss.Color("255")).
				Bold(true)

	syncMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)
)

// SyncStateDisplay is one service row on the sync tab.
type SyncStateDisplay struct {
	Service      string
	Status       string
	LastSyncTime string
	ErrorMessage string
	InProgress   bool
}

// SyncCompleteMsg is sent when a sync operation completes.
type SyncCompleteMsg struct {
	Service string
	Error   error
}

func (m Model) renderSyncView() string {
	var s strings.Builder

	m.loadSyncStates()

	s.WriteString(syncHeaderStyle.Render("Service Status"))
	s.WriteString("\n\n")

	for i, service := range syncServices {
		var state *SyncStateDisplay
		for j := range m.syncStates {
			if m.syncStates[j].Service == service {
				state = &m.syncStates[j]
				break
			}
		}

		var row strings.Builder
		if i == m.selectedService {
			row.WriteString("▶ ")
		} else {
			row.WriteString("  ")
		}

		serviceName := strings.ToUpper(service[:1]) + service[1:]
		if i == m.selectedService {
			row.WriteString(syncSelectedStyle.Render(syncServiceStyle.Render(serviceName)))
		} else {
			row.WriteString(syncServiceStyle.Render(serviceName))
		}

		switch {
		case m.syncInProgress[service] || (state != nil && state.InProgress):
			row.WriteString(syncSyncingStyle.Render("  ⟳ Syncing..."))
		case state == nil:
			row.WriteString(syncMessageStyle.Render("  Not synced yet"))
		case state.Status == models.SyncStatusError:
			row.WriteString(errorStyle.Render("  ✗ Error"))
			if state.ErrorMessage != "" {
				row.WriteString(errorStyle.Render(": " + state.ErrorMessage))
			}
		default:
			row.WriteString(syncIdleStyle.Render("  ✓ Idle"))
			if state.LastSyncTime != "" {
				row.WriteString(syncMessageStyle.Render(" • Last synced " + state.LastSyncTime))
			}
		}

		s.WriteString(row.String())
		s.WriteString("\n")
	}

	s.WriteString("\n")

	if len(m.syncMessages) > 0 {
		s.WriteString(syncHeaderStyle.Render("Recent Activity"))
		s.WriteString("\n\n")
		start := 0
		if len(m.syncMessages) > 5 {
			start = len(m.syncMessages) - 5
		}
		for _, line := range m.syncMessages[start:] {
			s.WriteString(syncMessageStyle.Render("  " + line))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	if m.syncFn == nil {
		s.WriteString(syncMessageStyle.Render("Run 'amplify sync init' to connect Google."))
		s.WriteString("\n")
	}

	s.WriteString(m.renderSyncHelp())

	return s.String()
}

func (m Model) renderSyncHelp() string {
	help := []string{
		"↑/↓: Select service",
		"Enter: Sync selected",
		"a: Sync all",
		"Tab: Switch tabs",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m *Model) loadSyncStates() {
	m.syncStates = []SyncStateDisplay{}

	states, err := db.GetAllSyncStates(m.db)
	if err != nil {
		return
	}

	for _, state := range states {
		display := SyncStateDisplay{
			Service:    state.Service,
			Status:     state.Status,
			InProgress: state.Status == models.SyncStatusSyncing,
		}
		if state.LastSyncTime != nil {
			display.LastSyncTime = formatTimeSince(*state.LastSyncTime)
		}
		if state.ErrorMessage != nil {
			display.ErrorMessage = *state.ErrorMessage
		}
		m.syncStates = append(m.syncStates, display)
	}
}

func (m Model) handleSyncKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedService > 0 {
			m.selectedService--
		}
	case "down", "j":
		if m.selectedService < len(syncServices)-1 {
			m.selectedService++
		}
	case "enter":
		service := syncServices[m.selectedService]
		if m.syncFn == nil || m.syncInProgress[service] {
			return m, nil
		}
		m.syncInProgress[service] = true
		m.addSyncMessage(fmt.Sprintf("Starting %s sync...", service))
		return m, m.syncService(service)
	case "a":
		if m.syncFn == nil {
			return m, nil
		}
		var cmds []tea.Cmd
		for _, service := range syncServices {
			if m.syncInProgress[service] {
				continue
			}
			m.syncInProgress[service] = true
			m.addSyncMessage(fmt.Sprintf("Starting %s sync...", service))
			cmds = append(cmds, m.syncService(service))
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// syncService runs one import off the UI goroutine.
func (m Model) syncService(service string) tea.Cmd {
	fn := m.syncFn
	return func() tea.Msg {
		return SyncCompleteMsg{Service: service, Error: fn(context.Background(), service)}
	}
}

func (m *Model) addSyncMessage(msg string) {
	timestamp := time.Now().Format("15:04:05")
	m.syncMessages = append(m.syncMessages, fmt.Sprintf("[%s] %s", timestamp, msg))
}

func (m *Model) handleSyncComplete(msg SyncCompleteMsg) tea.Cmd {
	m.syncInProgress[msg.Service] = false

	if msg.Error != nil {
		m.addSyncMessage(fmt.Sprintf("✗ %s sync failed: %v", msg.Service, msg.Error))
		errMsg := msg.Error.Error()
		_ = db.UpdateSyncStatus(m.db, msg.Service, models.SyncStatusError, &errMsg)
	} else {
		m.addSyncMessage(fmt.Sprintf("✓ %s sync completed", msg.Service))
	}

	m.loadSyncStates()
	return nil
}

// formatTimeSince formats a time duration in a human-readable way.
func formatTimeSince(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(duration.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
