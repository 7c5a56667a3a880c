// ABOUTME: Launches the interactive terminal UI
// ABOUTME: Wires the responder and, when Google is connected, the sync tab
package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/amplify/sync"
	"github.com/harperreed/amplify/tui"
)

func TUICommand(app *App) error {
	resp, err := app.Responder()
	if err != nil {
		return err
	}

	var syncFn tui.SyncFunc
	if _, err := os.Stat(sync.TokenPath()); err == nil {
		syncFn = func(ctx context.Context, service string) error {
			return importService(ctx, app, service)
		}
	}

	p := tea.NewProgram(tui.NewModel(app.DB, resp, syncFn), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
