// ABOUTME: Transient versus permanent classification of delivery errors
// ABOUTME: Status codes decide first, then network timeouts, then message substrings
package platforms

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/harperreed/amplify/models"
)

// ErrorKind says whether retrying can help.
type ErrorKind string

const (
	KindTransient ErrorKind = models.ErrorKindTransient
	KindPermanent ErrorKind = models.ErrorKindPermanent
)

var transientMarkers = []string{
	"rate limit",
	"too many requests",
	"timeout",
	"timed out",
	"server error",
	"503",
	"502",
	"500",
	"temporarily unavailable",
}

// Classify decides whether err is worth one retry.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindPermanent
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Retryable {
			return KindTransient
		}
		if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500 {
			return KindTransient
		}
		if apiErr.StatusCode >= 400 {
			return KindPermanent
		}
	}

	if errors.Is(err, ErrNotConnected) || errors.Is(err, context.Canceled) {
		return KindPermanent
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTransient
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return KindTransient
		}
	}
	return KindPermanent
}
