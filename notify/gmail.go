// ABOUTME: Gmail API transport for fallback notifications
// ABOUTME: Sends a plain-text message from the authorized Google account
package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/harperreed/amplify/models"
	"google.golang.org/api/gmail/v1"
)

type GmailNotifier struct {
	svc  *gmail.Service
	from string
	to   string
}

// NewGmailNotifier sends as the authorized user. from may be empty, in which
// case Gmail fills in the account address.
func NewGmailNotifier(svc *gmail.Service, from, to string) (*GmailNotifier, error) {
	if svc == nil {
		return nil, fmt.Errorf("gmail service cannot be nil")
	}
	if to == "" {
		return nil, fmt.Errorf("fallback recipient is required")
	}
	return &GmailNotifier{svc: svc, from: from, to: to}, nil
}

func (g *GmailNotifier) Notify(ctx context.Context, entry *models.FallbackEntry) error {
	entry.Recipient = g.to

	msg := &gmail.Message{Raw: encodeMessage(g.from, g.to, Subject(entry), Body(entry))}
	if _, err := g.svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send gmail notification: %w", err)
	}
	return nil
}

// encodeMessage builds an RFC 2822 message in the base64url form Gmail expects.
func encodeMessage(from, to, subject, body string) string {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
