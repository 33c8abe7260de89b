package main

import (
	"net"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// clientLimiter rate limits requests per client IP. Idle clients are evicted
// once their bucket would have refilled, so the table stays bounded by the
// clients seen in one refill window.
type clientLimiter struct {
	clients *cache.Cache
	rate    rate.Limit
	burst   int
}

// minClientIdle is the shortest time an idle client is kept.
const minClientIdle = time.Minute

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	idle := minClientIdle
	if perSecond > 0 {
		if refill := time.Duration(float64(burst) / perSecond * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return newClientLimiterTTL(perSecond, burst, idle)
}

func newClientLimiterTTL(perSecond float64, burst int, idle time.Duration) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		clients: cache.New(idle, idle),
		rate:    rate.Limit(perSecond),
		burst:   burst,
	}
}

func (l *clientLimiter) get(client string) *rate.Limiter {
	if v, ok := l.clients.Get(client); ok {
		lim := v.(*rate.Limiter)
		l.clients.SetDefault(client, lim) // restart the idle clock
		return lim
	}

	lim := rate.NewLimiter(l.rate, l.burst)
	if err := l.clients.Add(client, lim, cache.DefaultExpiration); err != nil {
		// Lost the race to another request from the same client.
		if v, ok := l.clients.Get(client); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Middleware rejects requests over the client's budget with 429. A zero
// rate disables limiting.
func (l *clientLimiter) Middleware(next http.Handler) http.Handler {
	if l.rate <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.get(clientIP(r)).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
