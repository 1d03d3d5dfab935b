package ads

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ShowLimiter enforces the minimum interval between two successful shows.
// Checking does not consume the allowance; only Record does, so failed shows
// never count against the interval.
type ShowLimiter struct {
	mu          sync.Mutex
	interval    time.Duration
	limiter     *rate.Limiter
	now         func() time.Time
	lastShownAt time.Time
}

// NewShowLimiter creates a limiter allowing one show per interval. now may be
// nil to use the wall clock.
func NewShowLimiter(interval time.Duration, now func() time.Time) *ShowLimiter {
	if now == nil {
		now = time.Now
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &ShowLimiter{
		interval: interval,
		limiter:  rate.NewLimiter(limit, 1),
		now:      now,
	}
}

// Allow reports whether a show is currently permitted
func (l *ShowLimiter) Allow() bool {
	if l.interval <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limiter.TokensAt(l.now()) >= 1
}

// Record marks a successful show at the current time
func (l *ShowLimiter) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.now()
	l.limiter.AllowN(t, 1)
	l.lastShownAt = t
}

// LastShownAt returns the time of the last recorded show, zero if none
func (l *ShowLimiter) LastShownAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastShownAt
}
