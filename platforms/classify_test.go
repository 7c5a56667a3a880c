// ABOUTME: Tests for transient versus permanent error classification
// ABOUTME: Covers status codes, API hints, timeouts and message substrings
package platforms

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"429", &APIError{Platform: "twitter", StatusCode: 429, Message: "slow down"}, KindTransient},
		{"503", &APIError{Platform: "linkedin", StatusCode: 503, Message: "unavailable"}, KindTransient},
		{"401", &APIError{Platform: "facebook", StatusCode: 401, Message: "invalid token"}, KindPermanent},
		{"400 rate limit wording still permanent", &APIError{Platform: "twitter", StatusCode: 400, Message: "rate limit"}, KindPermanent},
		{"graph throttle flag", &APIError{Platform: "facebook", StatusCode: 400, Message: "(#4) limit reached", Retryable: true}, KindTransient},
		{"wrapped api error", fmt.Errorf("publish: %w", &APIError{StatusCode: 502}), KindTransient},
		{"deadline", context.DeadlineExceeded, KindTransient},
		{"cancelled", context.Canceled, KindPermanent},
		{"net timeout", timeoutErr{}, KindTransient},
		{"not connected", fmt.Errorf("twitter: %w", ErrNotConnected), KindPermanent},
		{"media required", ErrMediaRequired, KindPermanent},
		{"rate limit substring", errors.New("Rate Limit exceeded"), KindTransient},
		{"too many requests", errors.New("too many requests"), KindTransient},
		{"timed out", errors.New("request timed out"), KindTransient},
		{"server error", errors.New("internal server error"), KindTransient},
		{"temporarily unavailable", errors.New("service temporarily unavailable"), KindTransient},
		{"status text", errors.New("upstream returned 502"), KindTransient},
		{"duplicate content", errors.New("duplicate content"), KindPermanent},
		{"nil", nil, KindPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
