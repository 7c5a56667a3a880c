// ABOUTME: Tests for the TUI model
// ABOUTME: Drives key handling for approvals, rejections, edits, tabs and sync state
package tui

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/platforms"
	"github.com/harperreed/amplify/responder"
)

type fakeTwitter struct {
	replies []string
}

func (f *fakeTwitter) Name() string { return models.PlatformTwitter }

func (f *fakeTwitter) Limits() platforms.Limits {
	l, _ := platforms.LimitsFor(models.PlatformTwitter)
	return l
}

func (f *fakeTwitter) Publish(context.Context, string, []string) (*platforms.Receipt, error) {
	return nil, errors.New("not used")
}

func (f *fakeTwitter) Reply(_ context.Context, inReplyTo, text string) (*platforms.Receipt, error) {
	f.replies = append(f.replies, inReplyTo+":"+text)
	return &platforms.Receipt{ID: "reply-" + inReplyTo}, nil
}

func setupTestModel(t *testing.T, syncFn SyncFunc) (Model, *sql.DB, *fakeTwitter) {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	registry := platforms.NewRegistry(database, nil)
	fake := &fakeTwitter{}
	registry.Register(fake)

	r, err := responder.New(database, charm.NewMemoryStore(), registry)
	if err != nil {
		t.Fatalf("Failed to create responder: %v", err)
	}

	return NewModel(database, r, syncFn), database, fake
}

func queueResponse(t *testing.T, database *sql.DB, mentionID, text string) *models.Response {
	t.Helper()
	resp := &models.Response{
		MentionID: mentionID,
		Platform:  models.PlatformTwitter,
		Author:    "@" + mentionID,
		Keyword:   "help",
		Category:  responder.CategorySupport,
		Text:      text,
	}
	if err := db.CreateResponse(database, resp); err != nil {
		t.Fatalf("Failed to create response: %v", err)
	}
	return resp
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestPendingViewRendering(t *testing.T) {
	m, database, _ := setupTestModel(t, nil)

	if out := m.View(); !strings.Contains(out, "Nothing awaiting approval") {
		t.Errorf("Expected empty queue message, got:\n%s", out)
	}

	queueResponse(t, database, "m1", "Happy to help")
	if out := m.View(); !strings.Contains(out, "@m1") {
		t.Errorf("Expected pending author in view, got:\n%s", out)
	}
}

func TestApproveSendsReply(t *testing.T) {
	m, database, fake := setupTestModel(t, nil)
	resp := queueResponse(t, database, "m1", "Happy to help")

	m, cmd := press(t, m, "a")
	if cmd == nil {
		t.Fatal("Approve should return a command")
	}

	updated, _ := m.Update(cmd())
	m = updated.(Model)

	if len(fake.replies) != 1 || fake.replies[0] != "m1:Happy to help" {
		t.Errorf("Unexpected replies: %v", fake.replies)
	}
	if m.err != nil {
		t.Errorf("Unexpected error: %v", m.err)
	}
	if !strings.Contains(m.status, "@m1") {
		t.Errorf("Expected status to name the author, got %q", m.status)
	}

	got, _ := db.GetResponse(database, resp.ID)
	if got.Status != models.ResponseSent {
		t.Errorf("Expected status=sent, got %s", got.Status)
	}
}

func TestRejectAsksFirst(t *testing.T) {
	m, database, fake := setupTestModel(t, nil)
	resp := queueResponse(t, database, "m1", "Happy to help")

	m, _ = press(t, m, "r")
	if m.viewMode != ViewConfirmReject {
		t.Fatalf("Expected confirm view, got %d", m.viewMode)
	}

	m, _ = press(t, m, "n")
	if m.viewMode != ViewList {
		t.Errorf("Cancel should return to the list")
	}
	got, _ := db.GetResponse(database, resp.ID)
	if got.Status != models.ResponsePending {
		t.Errorf("Cancel should leave the response pending, got %s", got.Status)
	}

	m, _ = press(t, m, "r")
	m, _ = press(t, m, "y")
	got, _ = db.GetResponse(database, resp.ID)
	if got.Status != models.ResponseRejected {
		t.Errorf("Expected status=rejected, got %s", got.Status)
	}
	if len(fake.replies) != 0 {
		t.Errorf("Rejected reply should not be sent")
	}
	if m.selectedRow != 0 {
		t.Errorf("Expected cursor reset, got %d", m.selectedRow)
	}
}

func TestEditReply(t *testing.T) {
	m, database, _ := setupTestModel(t, nil)
	resp := queueResponse(t, database, "m1", "Hi")

	m, _ = press(t, m, "e")
	if m.viewMode != ViewEdit {
		t.Fatalf("Expected edit view, got %d", m.viewMode)
	}

	// q is typed, not a quit
	m, _ = press(t, m, "q")
	if m.viewMode != ViewEdit {
		t.Fatalf("Expected to stay in edit view, got %d", m.viewMode)
	}

	m, _ = press(t, m, "enter")
	if m.viewMode != ViewList {
		t.Errorf("Save should return to the list")
	}

	got, _ := db.GetResponse(database, resp.ID)
	if got.Text != "Hiq" {
		t.Errorf("Expected edited text %q, got %q", "Hiq", got.Text)
	}
}

func TestTabCyclesScreens(t *testing.T) {
	m, _, _ := setupTestModel(t, nil)

	for i, want := range []Tab{TabFallbacks, TabFollowups, TabSync, TabPending} {
		m, _ = press(t, m, "tab")
		if m.tab != want {
			t.Errorf("Press %d: expected tab %d, got %d", i+1, want, m.tab)
		}
	}
}

func TestFallbackDetail(t *testing.T) {
	m, database, _ := setupTestModel(t, nil)
	entry := &models.FallbackEntry{
		PostID:    "post-1",
		Platform:  models.PlatformLinkedIn,
		Content:   "Post me by hand",
		Error:     "unauthorized",
		ErrorKind: "permanent",
	}
	if err := db.CreateFallbackEntry(database, entry); err != nil {
		t.Fatalf("Failed to create fallback entry: %v", err)
	}

	m, _ = press(t, m, "tab")
	if out := m.View(); !strings.Contains(out, "linkedin") {
		t.Errorf("Expected fallback row in view, got:\n%s", out)
	}

	m, _ = press(t, m, "enter")
	if m.viewMode != ViewDetail {
		t.Fatalf("Expected detail view, got %d", m.viewMode)
	}
	if out := m.View(); !strings.Contains(out, "Post me by hand") {
		t.Errorf("Expected post content in detail, got:\n%s", out)
	}

	// The post no longer exists, so the graph cannot be built
	m, _ = press(t, m, "g")
	if m.err == nil {
		t.Error("Expected an error for a missing post")
	}
	if m.viewMode != ViewDetail {
		t.Errorf("Expected to stay on detail view, got %d", m.viewMode)
	}
}

func TestSyncKeysAndCompletion(t *testing.T) {
	var synced []string
	syncFn := func(_ context.Context, service string) error {
		synced = append(synced, service)
		if service == "calendar" {
			return errors.New("quota exceeded")
		}
		return nil
	}
	m, database, _ := setupTestModel(t, syncFn)
	m.tab = TabSync

	m, _ = press(t, m, "down")
	if m.selectedService != 1 {
		t.Errorf("Expected selectedService=1, got %d", m.selectedService)
	}
	m, _ = press(t, m, "up")
	if m.selectedService != 0 {
		t.Errorf("Expected selectedService=0, got %d", m.selectedService)
	}

	m, cmd := press(t, m, "enter")
	if !m.syncInProgress["contacts"] {
		t.Error("Contacts sync should be in progress")
	}
	updated, _ := m.Update(cmd())
	m = updated.(Model)
	if m.syncInProgress["contacts"] {
		t.Error("Contacts sync should be finished")
	}

	m.selectedService = 1
	m, cmd = press(t, m, "enter")
	updated, _ = m.Update(cmd())
	m = updated.(Model)

	if strings.Join(synced, ",") != "contacts,calendar" {
		t.Errorf("Unexpected syncs: %v", synced)
	}
	state, _ := db.GetSyncState(database, "calendar")
	if state == nil || state.Status != models.SyncStatusError {
		t.Fatalf("Expected calendar error state, got %+v", state)
	}
	if state.ErrorMessage == nil || *state.ErrorMessage != "quota exceeded" {
		t.Error("Should have recorded error message")
	}
	if len(m.syncMessages) != 4 {
		t.Errorf("Expected 4 activity lines, got %d", len(m.syncMessages))
	}
}

func TestSyncDisabledWithoutToken(t *testing.T) {
	m, _, _ := setupTestModel(t, nil)
	m.tab = TabSync

	m, cmd := press(t, m, "enter")
	if cmd != nil {
		t.Error("Sync should not start without a sync function")
	}
	if out := m.View(); !strings.Contains(out, "sync init") {
		t.Errorf("Expected connect hint, got:\n%s", out)
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := setupTestModel(t, nil)

	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected a quit message")
	}
}

func TestFormatTimeSince(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected string
	}{
		{name: "just now", time: time.Now().Add(-30 * time.Second), expected: "just now"},
		{name: "minutes ago", time: time.Now().Add(-5 * time.Minute), expected: "5 minutes ago"},
		{name: "one hour", time: time.Now().Add(-61 * time.Minute), expected: "1 hour ago"},
		{name: "days ago", time: time.Now().Add(-3 * 24 * time.Hour), expected: "3 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := formatTimeSince(tt.time); result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}
