// ABOUTME: Mention sources polled by the auto-responder
// ABOUTME: MockSource serves canned mentions; TwitterSource reads the API v2 mentions timeline
package responder

import (
	"context"
	"sync"

	"github.com/harperreed/amplify/models"
	"github.com/harperreed/amplify/platforms"
)

// MentionSource returns mentions newer than cursor, oldest first, and the
// cursor to resume from.
type MentionSource interface {
	Mentions(ctx context.Context, cursor string) ([]models.Mention, string, error)
}

// MockSource returns whatever was queued with Add. An empty MockSource
// returns no mentions.
type MockSource struct {
	mu    sync.Mutex
	items []models.Mention
}

func (m *MockSource) Add(mentions ...models.Mention) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, mentions...)
}

func (m *MockSource) Mentions(_ context.Context, cursor string) ([]models.Mention, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := 0
	if cursor != "" {
		for i, item := range m.items {
			if item.ID == cursor {
				start = i + 1
				break
			}
		}
	}

	out := append([]models.Mention(nil), m.items[start:]...)
	next := cursor
	if len(out) > 0 {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

// TwitterSource resolves the Twitter client on every poll so credentials
// added while the daemon runs are picked up.
type TwitterSource struct {
	Registry *platforms.Registry
}

func (s *TwitterSource) Mentions(ctx context.Context, cursor string) ([]models.Mention, string, error) {
	tw, err := s.Registry.Twitter()
	if err != nil {
		return nil, cursor, err
	}
	return tw.Mentions(ctx, cursor)
}
