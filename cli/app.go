// ABOUTME: Shared wiring for CLI commands, the daemon and the MCP server
// ABOUTME: Builds the platform registry, publisher, automation engine and responder from config
package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/amplify/automation"
	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/config"
	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/notify"
	"github.com/harperreed/amplify/platforms"
	"github.com/harperreed/amplify/publisher"
	"github.com/harperreed/amplify/responder"
	"github.com/harperreed/amplify/sync"
)

// App holds what every command group shares.
type App struct {
	DB        *sql.DB
	Config    *config.Config
	Settings  charm.Store
	Registry  *platforms.Registry
	Publisher *publisher.Publisher
}

// NewApp wires the publisher to the configured fallback transport. A nil
// settings store opens the charm client.
func NewApp(ctx context.Context, database *sql.DB, cfg *config.Config, settings charm.Store) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if settings == nil {
		client, err := charm.GetClient()
		if err != nil {
			return nil, fmt.Errorf("failed to open settings store: %w", err)
		}
		settings = client
	}

	registry := platforms.NewRegistry(database, cfg.BaseURLs)

	notifier, err := NewNotifier(ctx, cfg.Fallback)
	if err != nil {
		return nil, err
	}

	pub := publisher.New(database, registry)
	pub.Notifier = notifier
	pub.PostDelay = cfg.Publisher.PostDelay.Std()
	pub.RetryDelay = cfg.Publisher.RetryDelay.Std()
	pub.MaxRetries = cfg.Publisher.MaxRetries

	return &App{
		DB:        database,
		Config:    cfg,
		Settings:  settings,
		Registry:  registry,
		Publisher: pub,
	}, nil
}

// NewNotifier builds the fallback transport named in the config.
func NewNotifier(ctx context.Context, cfg config.FallbackConfig) (notify.Notifier, error) {
	switch cfg.Transport {
	case "", config.TransportLog:
		return notify.LogNotifier{}, nil

	case config.TransportGmail:
		httpClient, err := sync.AuthorizedClient(ctx)
		if err != nil {
			return nil, err
		}
		svc, err := sync.NewGmailService(ctx, httpClient)
		if err != nil {
			return nil, err
		}
		n, err := notify.NewGmailNotifier(svc, cfg.Sender, cfg.Recipient)
		if err != nil {
			return nil, err
		}
		return n, nil

	case config.TransportSES:
		n, err := notify.NewSESNotifier(ctx, cfg.AWSRegion, cfg.Sender, cfg.Recipient)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
	return nil, fmt.Errorf("unknown fallback transport: %s", cfg.Transport)
}

// Engine returns an automation engine that publishes through the app's
// publisher.
func (a *App) Engine() *automation.Engine {
	return automation.NewEngine(a.DB, a.Settings, a.Publisher)
}

// Responder returns a responder that reads real Twitter mentions. Other
// platforms keep the mock source.
func (a *App) Responder() (*responder.Responder, error) {
	r, err := responder.New(a.DB, a.Settings, a.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create responder: %w", err)
	}
	r.Sources[models.PlatformTwitter] = &responder.TwitterSource{Registry: a.Registry}
	return r, nil
}
