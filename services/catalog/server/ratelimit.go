package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiter throttles per client address. Entries idle for an hour get
// dropped by a background sweep so the map cannot grow unbounded.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipEntry
	rate     rate.Limit
	burst    int
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIpLimiter(requestsPerMinute int) *ipLimiter {
	l := &ipLimiter{
		limiters: map[string]*ipEntry{},
		rate:     rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    requestsPerMinute,
	}
	go l.sweep()
	return l
}

func (l *ipLimiter) allow(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[host]
	if !ok {
		entry = &ipEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[host] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (l *ipLimiter) sweep() {
	for range time.Tick(time.Minute * 5) {
		cutoff := time.Now().Add(-time.Hour)
		l.mu.Lock()
		for host, entry := range l.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(l.limiters, host)
			}
		}
		l.mu.Unlock()
	}
}

func (l *ipLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(r.RemoteAddr) {
			requestsTotal.WithLabelValues("throttled", "429").Inc()
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
