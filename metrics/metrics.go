// ABOUTME: Prometheus counters for publishing, automation and the auto-responder
// ABOUTME: Registered once on the default registry and served by the daemon
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PublishAttempts counts calls to a platform API, labelled by outcome.
	PublishAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amplify_publish_attempts_total",
			Help: "Platform publish attempts by platform and outcome",
		},
		[]string{"platform", "outcome"},
	)

	// PublishRetries counts transient failures that were retried.
	PublishRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amplify_publish_retries_total",
			Help: "Retries after transient platform errors",
		},
		[]string{"platform"},
	)

	// FallbackEntries counts undeliverable posts written to the fallback log.
	FallbackEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amplify_fallback_entries_total",
			Help: "Fallback log entries by platform and error kind",
		},
		[]string{"platform", "kind"},
	)

	// Dispatches counts fan-out runs by final post status.
	Dispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amplify_dispatches_total",
			Help: "Fan-out dispatches by resulting post status",
		},
		[]string{"status"},
	)

	// AutomationMatches counts rule matches that produced a post.
	AutomationMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amplify_automation_matches_total",
			Help: "Automation rule matches by rule",
		},
		[]string{"rule"},
	)

	// ResponderEvents counts mentions by what the responder did with them.
	ResponderEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amplify_responder_events_total",
			Help: "Auto-responder outcomes: matched, rate_limited, queued, sent, failed",
		},
		[]string{"platform", "event"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
