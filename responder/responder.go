// ABOUTME: Keyword auto-responder that polls mentions and drafts or sends replies
// ABOUTME: Applies the hourly cap, the approval queue and per-platform cursors
package responder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/harperreed/amplify/charm"
	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/logging"
	"github.com/harperreed/amplify/metrics"
	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/platforms"
)

const window = time.Hour

type Responder struct {
	DB        *sql.DB
	Settings  charm.Store
	Sources   map[string]MentionSource
	Platforms platforms.Resolver
	Limiter   *Limiter
	Rand      *rand.Rand

	mu sync.Mutex
}

// TickReport counts what one poll did.
type TickReport struct {
	Disabled bool     `json:"disabled,omitempty"`
	Fetched  int      `json:"fetched"`
	Ignored  int      `json:"ignored"`
	Pending  int      `json:"pending"`
	Sent     int      `json:"sent"`
	Failed   int      `json:"failed"`
	Blocked  int      `json:"blocked"`
	Errors   []string `json:"errors,omitempty"`
}

// New builds a responder with a mock source for every platform and a
// limiter seeded from responses stored in the last hour.
func New(database *sql.DB, settings charm.Store, resolver platforms.Resolver) (*Responder, error) {
	s, err := LoadSettings(settings)
	if err != nil {
		return nil, err
	}

	limiter := NewLimiter(s.MaxPerHour, window)
	recent, err := db.ResponseTimesSince(database, time.Now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("failed to load recent responses: %w", err)
	}
	limiter.Seed(recent)

	sources := make(map[string]MentionSource, len(models.AllPlatforms))
	for _, p := range models.AllPlatforms {
		sources[p] = &MockSource{}
	}

	return &Responder{
		DB:        database,
		Settings:  settings,
		Sources:   sources,
		Platforms: resolver,
		Limiter:   limiter,
		Rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func cursorKey(platform string) string {
	return "responder:" + platform
}

// Tick polls every configured platform once.
func (r *Responder) Tick(ctx context.Context) (*TickReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings, err := LoadSettings(r.Settings)
	if err != nil {
		return nil, err
	}
	report := &TickReport{}
	if !settings.Enabled {
		report.Disabled = true
		return report, nil
	}
	r.Limiter.SetMax(settings.MaxPerHour)

	for _, platform := range settings.Platforms {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		src, ok := r.Sources[platform]
		if !ok {
			continue
		}
		if err := r.poll(ctx, platform, src, settings, report); err != nil {
			if errors.Is(err, platforms.ErrNotConnected) {
				logging.Debug("responder skipping platform", "platform", platform, "reason", err)
				continue
			}
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", platform, err))
			logging.Error("responder poll failed", "platform", platform, "error", err)
		}
	}

	return report, nil
}

func (r *Responder) poll(ctx context.Context, platform string, src MentionSource, settings Settings, report *TickReport) error {
	cursor, err := db.GetSyncToken(r.DB, cursorKey(platform))
	if err != nil {
		return err
	}

	mentions, next, err := src.Mentions(ctx, cursor)
	if err != nil {
		return err
	}
	report.Fetched += len(mentions)
	metrics.ResponderEvents.WithLabelValues(platform, "fetched").Add(float64(len(mentions)))

	done := cursor
	blocked := false
	for _, m := range mentions {
		if m.Platform == "" {
			m.Platform = platform
		}

		seen, err := db.IsMentionProcessed(r.DB, platform, m.ID)
		if err != nil {
			return err
		}
		if seen {
			done = m.ID
			continue
		}

		kw, ok := MatchKeyword(settings.Keywords, m.Text)
		if !ok {
			report.Ignored++
			if err := db.MarkMentionProcessed(r.DB, platform, m.ID); err != nil {
				return err
			}
			done = m.ID
			continue
		}

		// Blocked mentions stay unprocessed and the cursor stops before
		// them so the next poll sees them again.
		if !r.Limiter.Check() {
			blocked = true
			report.Blocked++
			metrics.ResponderEvents.WithLabelValues(platform, "blocked").Inc()
			logging.Warn("hourly response cap reached", "platform", platform, "mention", m.ID, "max", settings.MaxPerHour)
			break
		}

		if err := r.respond(ctx, m, kw, settings, report); err != nil {
			return err
		}
		done = m.ID
	}

	if !blocked && next != "" {
		done = next
	}
	if done != cursor {
		return db.UpdateSyncToken(r.DB, cursorKey(platform), done)
	}
	return nil
}

func (r *Responder) respond(ctx context.Context, m models.Mention, kw Keyword, settings Settings, report *TickReport) error {
	resp := &models.Response{
		MentionID: m.ID,
		Platform:  m.Platform,
		Author:    m.Author,
		Keyword:   kw.Keyword,
		Category:  kw.Category,
		Text:      BuildReply(r.Rand, m.Platform, settings.BrandVoice, kw.Category, m.Author, settings.IncludeScripture),
		Status:    models.ResponsePending,
	}
	if err := db.CreateResponse(r.DB, resp); err != nil {
		return err
	}
	r.Limiter.Record()
	if err := db.MarkMentionProcessed(r.DB, m.Platform, m.ID); err != nil {
		return err
	}

	log := logging.With("platform", m.Platform, "mention", m.ID, "response", resp.ID, "keyword", kw.Keyword)
	if settings.RequireApproval {
		report.Pending++
		metrics.ResponderEvents.WithLabelValues(m.Platform, "pending").Inc()
		log.Info("response queued for approval")
		return nil
	}

	if err := r.send(ctx, resp); err != nil {
		report.Failed++
		log.Warn("reply failed", "error", err)
		return nil
	}
	report.Sent++
	log.Info("reply sent")
	return nil
}

// send posts the reply and records the outcome. The returned error is the
// delivery error, already recorded on the response.
func (r *Responder) send(ctx context.Context, resp *models.Response) error {
	var sendErr error
	p, err := r.Platforms.Platform(resp.Platform)
	if err == nil {
		_, sendErr = p.Reply(ctx, resp.MentionID, resp.Text)
	} else {
		sendErr = err
	}

	status, msg := models.ResponseSent, ""
	if sendErr != nil {
		status, msg = models.ResponseFailed, sendErr.Error()
	}
	metrics.ResponderEvents.WithLabelValues(resp.Platform, status).Inc()

	if err := db.DecideResponse(r.DB, resp.ID, status, msg); err != nil {
		return errors.Join(sendErr, err)
	}
	resp.Status = status
	resp.Error = msg
	return sendErr
}

// Pending lists responses waiting for approval, newest first.
func (r *Responder) Pending(limit int) ([]models.Response, error) {
	return db.ListResponses(r.DB, models.ResponsePending, limit)
}

// Approve posts a pending response. A failed reply is recorded as failed
// and returned.
func (r *Responder) Approve(ctx context.Context, id string) (*models.Response, error) {
	resp, err := r.pending(id)
	if err != nil {
		return nil, err
	}
	if err := r.send(ctx, resp); err != nil {
		return resp, fmt.Errorf("failed to send reply: %w", err)
	}
	return resp, nil
}

// Edit rewrites a pending reply before it is approved.
func (r *Responder) Edit(id, text string) (*models.Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("reply text must not be empty")
	}
	resp, err := r.pending(id)
	if err != nil {
		return nil, err
	}
	if err := db.UpdateResponseText(r.DB, id, text); err != nil {
		return nil, err
	}
	resp.Text = text
	return resp, nil
}

func (r *Responder) Reject(id string) (*models.Response, error) {
	resp, err := r.pending(id)
	if err != nil {
		return nil, err
	}
	if err := db.DecideResponse(r.DB, id, models.ResponseRejected, ""); err != nil {
		return nil, err
	}
	metrics.ResponderEvents.WithLabelValues(resp.Platform, models.ResponseRejected).Inc()
	resp.Status = models.ResponseRejected
	return resp, nil
}

func (r *Responder) pending(id string) (*models.Response, error) {
	resp, err := db.GetResponse(r.DB, id)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("response not found: %s", id)
	}
	if resp.Status != models.ResponsePending {
		return nil, fmt.Errorf("response %s is %s, not pending", id, resp.Status)
	}
	return resp, nil
}
