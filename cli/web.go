// ABOUTME: Web dashboard subcommand
// ABOUTME: Serves the read-mostly web UI until interrupted
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/amplify/web"
)

func newWebServer(app *App) (*web.Server, error) {
	resp, err := app.Responder()
	if err != nil {
		return nil, err
	}
	return web.NewServer(app.DB, app.Settings, resp)
}

// WebCommand serves the dashboard on --addr.
func WebCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	addr := fs.String("addr", "localhost:8080", "Listen address")
	_ = fs.Parse(args)

	server, err := newWebServer(app)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("amplify web UI at http://%s\n", *addr)
	return server.Start(ctx, *addr)
}
