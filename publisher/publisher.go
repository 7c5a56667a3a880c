// ABOUTME: Fan-out publishing of one post to each of its platforms in turn
// ABOUTME: Retries transient failures once and hands permanent ones to the fallback log
package publisher

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/logging"
	"github.com/harperreed/amplify/metrics"
	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/notify"
	"github.com/harperreed/amplify/platforms"
)

// Defaults for pacing between platforms and before the retry.
const (
	DefaultPostDelay  = 2 * time.Second
	DefaultRetryDelay = 30 * time.Second
	DefaultMaxRetries = 1
)

const cancelledMessage = "cancelled"

// PlatformResult is the outcome for one platform in a dispatch.
type PlatformResult struct {
	Platform       string              `json:"platform"`
	RemoteID       string              `json:"remote_id,omitempty"`
	URL            string              `json:"url,omitempty"`
	Error          string              `json:"error,omitempty"`
	ErrorKind      platforms.ErrorKind `json:"error_kind,omitempty"`
	Attempts       int                 `json:"attempts"`
	FallbackLogged bool                `json:"fallback_logged"`
}

// Summary reports a whole dispatch back to the caller.
type Summary struct {
	DispatchID string           `json:"dispatch_id"`
	PostID     string           `json:"post_id"`
	Status     string           `json:"status"`
	Successes  []PlatformResult `json:"successes"`
	Errors     []PlatformResult `json:"errors"`
}

// Publisher posts sequentially with a fixed delay between platforms.
type Publisher struct {
	DB         *sql.DB
	Platforms  platforms.Resolver
	Notifier   notify.Notifier
	PostDelay  time.Duration
	RetryDelay time.Duration
	MaxRetries int

	// Sleep waits for d or until ctx ends. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// New returns a publisher with default pacing and a log-only notifier.
func New(database *sql.DB, resolver platforms.Resolver) *Publisher {
	return &Publisher{
		DB:         database,
		Platforms:  resolver,
		Notifier:   notify.LogNotifier{},
		PostDelay:  DefaultPostDelay,
		RetryDelay: DefaultRetryDelay,
		MaxRetries: DefaultMaxRetries,
		Sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *Publisher) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep == nil {
		return sleepContext(ctx, d)
	}
	return p.Sleep(ctx, d)
}

// Publish dispatches post to every platform it targets. A post without an
// ID is stored first. The returned error covers storage problems only;
// delivery failures are reported in the Summary.
func (p *Publisher) Publish(ctx context.Context, post *models.Post) (*Summary, error) {
	if len(post.Platforms) == 0 {
		return nil, fmt.Errorf("post has no target platforms")
	}
	if post.ID == "" {
		if err := db.CreatePost(p.DB, post); err != nil {
			return nil, fmt.Errorf("failed to save post: %w", err)
		}
	}

	summary := &Summary{DispatchID: db.NewID(), PostID: post.ID}
	log := logging.With("dispatch", summary.DispatchID, "post", post.ID)
	log.Info("dispatch started", "platforms", post.Platforms)

	for i, name := range post.Platforms {
		var result PlatformResult
		switch {
		case ctx.Err() != nil:
			result = PlatformResult{Platform: name, Error: cancelledMessage, ErrorKind: platforms.KindPermanent}
		case i > 0 && p.sleep(ctx, p.PostDelay) != nil:
			result = PlatformResult{Platform: name, Error: cancelledMessage, ErrorKind: platforms.KindPermanent}
		default:
			result = p.publishOne(ctx, post, name)
		}

		if result.Error == "" {
			summary.Successes = append(summary.Successes, result)
			log.Info("published", "platform", name, "id", result.RemoteID, "attempts", result.Attempts)
		} else {
			summary.Errors = append(summary.Errors, result)
			log.Warn("publish failed", "platform", name, "kind", result.ErrorKind, "error", result.Error)
		}

		if err := db.SavePostResult(p.DB, toModel(post.ID, result)); err != nil {
			return summary, err
		}
	}

	summary.Status = statusFor(len(summary.Successes), len(post.Platforms))
	if err := db.UpdatePostStatus(p.DB, post.ID, summary.Status); err != nil {
		return summary, err
	}
	post.Status = summary.Status
	metrics.Dispatches.WithLabelValues(summary.Status).Inc()
	log.Info("dispatch finished", "status", summary.Status, "ok", len(summary.Successes), "failed", len(summary.Errors))

	return summary, nil
}

func statusFor(successes, total int) string {
	switch {
	case successes == total:
		return models.PostStatusPublished
	case successes > 0:
		return models.PostStatusPartial
	default:
		return models.PostStatusFailed
	}
}

func (p *Publisher) publishOne(ctx context.Context, post *models.Post, name string) PlatformResult {
	result := PlatformResult{Platform: name}

	client, err := p.Platforms.Platform(name)
	if err != nil {
		result.Error = err.Error()
		result.ErrorKind = platforms.Classify(err)
		p.fallback(ctx, post, name, fallbackText(post, name), &result)
		return result
	}

	text := platforms.Format(post.Content, client.Limits())
	for {
		result.Attempts++
		receipt, err := client.Publish(ctx, text, post.Content.MediaURLs)
		if err == nil {
			metrics.PublishAttempts.WithLabelValues(name, "success").Inc()
			result.RemoteID = receipt.ID
			result.URL = receipt.URL
			result.Error = ""
			result.ErrorKind = ""
			return result
		}

		kind := platforms.Classify(err)
		metrics.PublishAttempts.WithLabelValues(name, string(kind)).Inc()
		result.Error = err.Error()
		result.ErrorKind = kind

		if ctx.Err() != nil {
			result.Error = cancelledMessage
			result.ErrorKind = platforms.KindPermanent
			return result
		}
		if kind != platforms.KindTransient || result.Attempts > p.MaxRetries {
			break
		}

		metrics.PublishRetries.WithLabelValues(name).Inc()
		logging.Info("transient failure, retrying", "platform", name, "post", post.ID, "delay", p.RetryDelay, "error", err)
		if err := p.sleep(ctx, p.RetryDelay); err != nil {
			result.Error = cancelledMessage
			result.ErrorKind = platforms.KindPermanent
			return result
		}
	}

	p.fallback(ctx, post, name, text, &result)
	return result
}

// fallbackText formats for the platform's limits even when no client exists.
func fallbackText(post *models.Post, name string) string {
	l, err := platforms.LimitsFor(name)
	if err != nil {
		return post.Content.Text
	}
	return platforms.Format(post.Content, l)
}

// fallback persists the entry and then notifies. Notification failure is
// logged and recorded on the entry but never fails the dispatch.
func (p *Publisher) fallback(ctx context.Context, post *models.Post, name, text string, result *PlatformResult) {
	entry := &models.FallbackEntry{
		PostID:    post.ID,
		Platform:  name,
		Content:   text,
		Error:     result.Error,
		ErrorKind: string(result.ErrorKind),
	}
	if err := db.CreateFallbackEntry(p.DB, entry); err != nil {
		logging.Error("failed to write fallback entry", "platform", name, "post", post.ID, "error", err)
		return
	}
	result.FallbackLogged = true
	metrics.FallbackEntries.WithLabelValues(name, string(result.ErrorKind)).Inc()

	if p.Notifier == nil {
		return
	}
	notifyErr := p.Notifier.Notify(ctx, entry)
	if notifyErr != nil {
		logging.Error("fallback notification failed", "platform", name, "post", post.ID, "error", notifyErr)
	}
	if err := db.MarkFallbackNotified(p.DB, entry.ID, entry.Recipient, notifyErr); err != nil {
		logging.Error("failed to update fallback entry", "id", entry.ID, "error", err)
	}
}

func toModel(postID string, r PlatformResult) *models.PostResult {
	return &models.PostResult{
		PostID:         postID,
		Platform:       r.Platform,
		Success:        r.Error == "",
		RemoteID:       r.RemoteID,
		URL:            r.URL,
		Error:          r.Error,
		ErrorKind:      string(r.ErrorKind),
		Attempts:       r.Attempts,
		FallbackLogged: r.FallbackLogged,
	}
}

// PublishDue dispatches every scheduled post whose time has come. One post
// failing to store does not stop the others.
func (p *Publisher) PublishDue(ctx context.Context, now time.Time) ([]*Summary, error) {
	due, err := db.ListDueScheduledPosts(p.DB, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled posts: %w", err)
	}

	var summaries []*Summary
	var errs []error
	for i := range due {
		if ctx.Err() != nil {
			break
		}
		summary, err := p.Publish(ctx, &due[i])
		if err != nil {
			errs = append(errs, fmt.Errorf("post %s: %w", due[i].ID, err))
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, errors.Join(errs...)
}
