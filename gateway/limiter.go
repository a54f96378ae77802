package gateway

import (
	"sync"
	"time"

	"github.com/blocklords/ballot/configuration"
	"golang.org/x/time/rate"
)

// Limit of the give_right_to_vote route for one remote host
type Limit struct {
	Rps   float64       // granted requests per second. Zero disables the limit.
	Burst int           // requests allowed at once
	Idle  time.Duration // the host is forgotten after being idle this long
}

// NewLimitFromConfig returns the limit set by the RATE_LIMIT_* parameters
func NewLimitFromConfig(config *configuration.Config) Limit {
	return Limit{
		Rps:   config.GetFloat64(RateLimitName),
		Burst: int(config.GetUint64(RateLimitBurstName)),
		Idle:  config.GetDuration(RateLimitIdleName),
	}
}

type visitor struct {
	bucket *rate.Limiter
	seen   time.Time
}

// limiter keeps the token bucket of each remote host.
type limiter struct {
	Limit

	mu       sync.Mutex
	visitors map[string]*visitor
	swept    time.Time
}

// newLimiter returns nil if the limit is disabled.
// The nil limiter allows everything.
func newLimiter(limit Limit) *limiter {
	if limit.Rps <= 0 || limit.Burst <= 0 {
		return nil
	}
	if limit.Idle <= 0 {
		limit.Idle = IdleTimeout
	}

	return &limiter{
		Limit:    limit,
		visitors: make(map[string]*visitor),
	}
}

// allow takes one token from the bucket of the host.
// The hosts idle for longer than Idle are forgotten, at most once per Idle.
func (l *limiter) allow(host string, now time.Time) bool {
	if l == nil || len(host) == 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) >= l.Idle {
		l.sweep(now)
	}

	v, ok := l.visitors[host]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(rate.Limit(l.Rps), l.Burst)}
		l.visitors[host] = v
	}
	v.seen = now

	return v.bucket.AllowN(now, 1)
}

func (l *limiter) sweep(now time.Time) {
	cutoff := now.Add(-l.Idle)
	for host, v := range l.visitors {
		if v.seen.Before(cutoff) {
			delete(l.visitors, host)
		}
	}
	l.swept = now
}

func (l *limiter) hosts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}
