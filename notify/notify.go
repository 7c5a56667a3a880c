// ABOUTME: Fallback notifications for posts that could not be delivered
// ABOUTME: Defines the Notifier contract, message rendering and the log-only transport
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/amplify/logging"
	"github.com/harperreed/amplify/models"
)

// Notifier tells a human that content needs to be posted by hand.
// Implementations set entry.Recipient to whoever was notified.
type Notifier interface {
	Notify(ctx context.Context, entry *models.FallbackEntry) error
}

// Subject renders the email subject line for an entry.
func Subject(entry *models.FallbackEntry) string {
	return fmt.Sprintf("[amplify] %s post needs manual publishing", entry.Platform)
}

// Body renders the plain-text email body for an entry.
func Body(entry *models.FallbackEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Automatic publishing to %s failed and will not be retried.\n\n", entry.Platform)
	if entry.PostID != "" {
		fmt.Fprintf(&b, "Post:   %s\n", entry.PostID)
	}
	fmt.Fprintf(&b, "Error:  %s (%s)\n", entry.Error, entry.ErrorKind)
	fmt.Fprintf(&b, "Time:   %s\n\n", entry.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	b.WriteString("Content to post manually:\n\n")
	b.WriteString(entry.Content)
	b.WriteString("\n")
	return b.String()
}

// LogNotifier only records the entry in the log; nothing is sent.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, entry *models.FallbackEntry) error {
	logging.Warn("fallback: manual post required",
		"platform", entry.Platform,
		"post", entry.PostID,
		"kind", entry.ErrorKind,
		"error", entry.Error,
	)
	return nil
}
