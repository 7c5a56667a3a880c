// ABOUTME: Background daemon running the responder, scheduled posts and automation on fixed intervals
// ABOUTME: Stops cleanly on SIGINT/SIGTERM and optionally serves Prometheus metrics
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	gosync "sync"
	"syscall"
	"time"

	"github.com/harperreed/amplify/logging"
	"github.com/harperreed/amplify/metrics"
	"github.com/harperreed/amplify/sync"
)

// minSyncInterval keeps Google imports from running more often than the
// APIs' quotas tolerate.
const minSyncInterval = 5 * time.Minute

// job is one periodic task. It runs once at start and then every interval.
type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// runJobs runs every job on its own ticker until ctx is cancelled. A job
// error is logged and the job keeps its schedule.
func runJobs(ctx context.Context, jobs []job) {
	var wg gosync.WaitGroup
	for _, j := range jobs {
		if j.interval <= 0 {
			logging.Warn("job has no interval, not scheduling", "job", j.name)
			continue
		}
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			log := logging.With("job", j.name)

			tick := func() {
				start := time.Now()
				if err := j.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("job failed", "err", err)
					return
				}
				log.Debug("job finished", "took", time.Since(start))
			}

			tick()
			ticker := time.NewTicker(j.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					tick()
				}
			}
		}(j)
	}
	wg.Wait()
}

// daemonJobs builds the responder, scheduler and automation jobs from the
// app config. syncInterval adds Google contact and calendar imports when
// non-zero.
func daemonJobs(app *App, syncInterval time.Duration) ([]job, error) {
	resp, err := app.Responder()
	if err != nil {
		return nil, err
	}
	engine := app.Engine()
	cfg := app.Config.Daemon

	jobs := []job{
		{
			name:     "responder",
			interval: cfg.ResponderInterval.Std(),
			run: func(ctx context.Context) error {
				report, err := resp.Tick(ctx)
				if err != nil {
					return err
				}
				if report.Fetched > 0 {
					logging.Info("responder tick",
						"fetched", report.Fetched, "pending", report.Pending,
						"sent", report.Sent, "failed", report.Failed, "blocked", report.Blocked)
				}
				for _, e := range report.Errors {
					logging.Warn("responder source failed", "err", e)
				}
				return nil
			},
		},
		{
			name:     "scheduler",
			interval: cfg.ScheduleInterval.Std(),
			run: func(ctx context.Context) error {
				summaries, err := app.Publisher.PublishDue(ctx, time.Now())
				for _, s := range summaries {
					logging.Info("scheduled post dispatched", "post", s.PostID, "status", s.Status,
						"delivered", len(s.Successes), "failed", len(s.Errors))
				}
				return err
			},
		},
		{
			name:     "automation",
			interval: cfg.AutomationInterval.Std(),
			run: func(ctx context.Context) error {
				report, err := engine.Run(ctx)
				if err != nil {
					return err
				}
				for _, m := range report.Matches {
					logging.Info("automation fired", "rule", m.Rule, "contact", m.ContactName, "status", m.Status, "post", m.PostID)
				}
				for _, e := range report.Errors {
					logging.Warn("automation error", "err", e)
				}
				return nil
			},
		},
	}

	if syncInterval > 0 {
		jobs = append(jobs, job{
			name:     "google-sync",
			interval: syncInterval,
			run: func(ctx context.Context) error {
				return googleSync(ctx, app)
			},
		})
	}

	return jobs, nil
}

func googleSync(ctx context.Context, app *App) error {
	for _, service := range []string{"contacts", "calendar"} {
		if err := importService(ctx, app, service); err != nil {
			return fmt.Errorf("%s sync: %w", service, err)
		}
	}
	return nil
}

// importService runs one incremental Google import.
func importService(ctx context.Context, app *App, service string) error {
	httpClient, err := sync.AuthorizedClient(ctx)
	if err != nil {
		return err
	}

	switch service {
	case "contacts":
		peopleSvc, err := sync.NewPeopleService(ctx, httpClient)
		if err != nil {
			return err
		}
		stats, err := sync.ImportContacts(ctx, app.DB, peopleSvc)
		if err != nil {
			return err
		}
		logging.Info("contacts imported", "created", stats.Created, "updated", stats.Updated, "failed", stats.Failed)
	case "calendar":
		calendarSvc, err := sync.NewCalendarService(ctx, httpClient)
		if err != nil {
			return err
		}
		stats, err := sync.ImportCalendar(ctx, app.DB, calendarSvc, false)
		if err != nil {
			return err
		}
		logging.Info("calendar imported", "events", stats.Events, "meetings", stats.Interactions)
	default:
		return fmt.Errorf("unknown sync service: %s", service)
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logging.Info("serving metrics", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Error("metrics server failed", "err", err)
	}
}

// DaemonCommand runs every background job until interrupted.
func DaemonCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("daemon", flag.ExitOnError)
	metricsAddr := fs.String("metrics-addr", app.Config.Daemon.MetricsAddr, "Serve Prometheus metrics on this address (e.g. :9090)")
	syncInterval := fs.Duration("sync-interval", 0, "Also import Google contacts and calendar this often (minimum 5m, 0 disables)")
	webAddr := fs.String("web-addr", "", "Also serve the web UI on this address")
	_ = fs.Parse(args)

	if *syncInterval != 0 && *syncInterval < minSyncInterval {
		return fmt.Errorf("--sync-interval must be at least %s", minSyncInterval)
	}

	jobs, err := daemonJobs(app, *syncInterval)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		go serveMetrics(ctx, *metricsAddr)
	}
	if *webAddr != "" {
		server, err := newWebServer(app)
		if err != nil {
			return err
		}
		go func() {
			if err := server.Start(ctx, *webAddr); err != nil {
				logging.Error("web server failed", "err", err)
			}
		}()
	}

	for _, j := range jobs {
		logging.Info("scheduling job", "job", j.name, "every", j.interval)
	}
	fmt.Println("amplify daemon running. Press Ctrl+C to stop.")

	runJobs(ctx, jobs)

	logging.Info("daemon stopped")
	return nil
}
