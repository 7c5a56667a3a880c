// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Review queued auto-responses, the manual-posting log, follow-ups and sync status
package tui

import (
	"context"
	"database/sql"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/amplify/responder"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
	ViewGraph
	ViewConfirmReject
)

// Tab is one of the list screens
type Tab int

const (
	TabPending Tab = iota
	TabFallbacks
	TabFollowups
	TabSync
)

var tabNames = []string{"Pending replies", "Manual posting", "Follow-ups", "Sync"}

// SyncFunc imports one Google service ("contacts" or "calendar").
type SyncFunc func(ctx context.Context, service string) error

// Model is the main bubbletea model
type Model struct {
	db        *sql.DB
	responder *responder.Responder
	syncFn    SyncFunc
	viewMode  ViewMode
	tab       Tab

	selectedRow int
	selectedID  string

	editInput textinput.Model
	graphDOT  string

	// Sync tab
	syncStates      []SyncStateDisplay
	selectedService int
	syncInProgress  map[string]bool
	syncMessages    []string

	status string
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model. syncFn may be nil, which disables
// triggering imports from the sync tab.
func NewModel(db *sql.DB, r *responder.Responder, syncFn SyncFunc) Model {
	return Model{
		db:             db,
		responder:      r,
		syncFn:         syncFn,
		viewMode:       ViewList,
		tab:            TabPending,
		syncInProgress: make(map[string]bool),
		width:          80,
		height:         24,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case ResponseSentMsg:
		m.handleResponseSent(msg)
		return m, nil
	case SyncCompleteMsg:
		return m, m.handleSyncComplete(msg)
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewGraph:
		return m.renderGraphView()
	case ViewConfirmReject:
		return m.renderConfirmRejectView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	// q is text while editing
	if msg.String() == "q" && m.viewMode != ViewEdit {
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	case ViewConfirmReject:
		return m.handleConfirmRejectKeys(msg)
	}

	return m, nil
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)
