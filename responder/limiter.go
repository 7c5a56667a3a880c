// ABOUTME: Sliding-window limiter capping responses per hour
// ABOUTME: Check and Record are separate so blocked work is not counted
package responder

import (
	"sync"
	"time"
)

type Limiter struct {
	mu     sync.Mutex
	hits   []time.Time
	max    int
	window time.Duration
	now    func() time.Time
}

func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{max: max, window: window, now: time.Now}
}

// Seed loads past hits, such as responses stored before a restart.
func (l *Limiter) Seed(times []time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hits = append(l.hits, times...)
}

func (l *Limiter) SetMax(max int) {
	l.mu.Lock()
	l.max = max
	l.mu.Unlock()
}

func (l *Limiter) prune() {
	cutoff := l.now().Add(-l.window)
	kept := l.hits[:0]
	for _, t := range l.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.hits = kept
}

// Check returns true if another hit fits in the window. It does not record.
func (l *Limiter) Check() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune()
	return len(l.hits) < l.max
}

func (l *Limiter) Record() {
	l.mu.Lock()
	l.hits = append(l.hits, l.now())
	l.mu.Unlock()
}

// Allow checks and records in one step.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune()
	if len(l.hits) >= l.max {
		return false
	}
	l.hits = append(l.hits, l.now())
	return true
}

// Remaining reports how many hits are left in the current window.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune()
	if n := l.max - len(l.hits); n > 0 {
		return n
	}
	return 0
}
