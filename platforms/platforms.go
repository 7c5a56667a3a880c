// ABOUTME: Platform adapter contracts shared by every social network client
// ABOUTME: Defines limits, publish receipts, API errors and the not-connected sentinel
package platforms

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/amplify/models"
)

// ErrNotConnected means no credential is stored for the platform.
var ErrNotConnected = errors.New("platform not connected")

// Limits describes what a platform accepts in a single post.
type Limits struct {
	MaxChars      int
	MaxHashtags   int
	RequiresMedia bool
}

// limits are counted in runes.
var limits = map[string]Limits{
	models.PlatformTwitter:   {MaxChars: 280, MaxHashtags: 3},
	models.PlatformInstagram: {MaxChars: 2200, MaxHashtags: 30, RequiresMedia: true},
	models.PlatformLinkedIn:  {MaxChars: 3000, MaxHashtags: 5},
	models.PlatformFacebook:  {MaxChars: 63206, MaxHashtags: 10},
}

// LimitsFor returns the limits for a platform name.
func LimitsFor(platform string) (Limits, error) {
	l, ok := limits[platform]
	if !ok {
		return Limits{}, fmt.Errorf("unknown platform: %s", platform)
	}
	return l, nil
}

// Receipt identifies what a platform created.
type Receipt struct {
	ID  string
	URL string
}

// Platform publishes and replies on one social network.
type Platform interface {
	Name() string
	Limits() Limits
	Publish(ctx context.Context, text string, media []string) (*Receipt, error)
	Reply(ctx context.Context, inReplyTo, text string) (*Receipt, error)
}

// APIError is a non-2xx response from a platform API. Retryable is set when
// the API itself flags the failure as temporary regardless of status.
type APIError struct {
	Platform   string
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error [%d]: %s", e.Platform, e.StatusCode, e.Message)
}
