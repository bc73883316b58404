package server

import (
	"container/list"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SecurityHeadersMiddleware adds security headers to all responses.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			// Video and social embeds are third-party iframes and media.
			// connect-src 'self' covers same-origin WebSocket (ws/wss) connections.
			w.Header().Set("Content-Security-Policy",
				"default-src 'self'; "+
					"script-src 'self'; "+
					"style-src 'self' 'unsafe-inline'; "+
					"img-src 'self' data: https:; "+
					"media-src 'self' https:; "+
					"frame-src https:; "+
					"font-src 'self' data:; "+
					"connect-src 'self'; "+
					"frame-ancestors 'none'")

			next.ServeHTTP(w, r)
		})
	}
}

// evictionLogInterval is the minimum time between eviction log messages.
const evictionLogInterval = 30 * time.Second

// ipLimiter tracks a per-IP token bucket and its position in the LRU list.
type ipLimiter struct {
	ip       string
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware limits requests using a token bucket algorithm with per-IP tracking.
// rps is the rate limit in requests per second, burst is the maximum burst size,
// and maxIPs is the maximum number of unique IPs to track (LRU eviction when full).
//
// The cleanup goroutine starts immediately when this function is called.
// The ctx parameter controls its lifetime; cancel ctx to stop it.
// The returned channel is closed when the goroutine exits,
// allowing callers to wait for a clean shutdown.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, maxIPs int, logger *zap.Logger) (func(http.Handler) http.Handler, <-chan struct{}) {
	if maxIPs <= 0 {
		maxIPs = 10000
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		items = make(map[string]*list.Element)
		order = list.New() // front = most recent, back = oldest
		mu    sync.Mutex

		// Eviction logging state (always accessed under mu)
		lastEvictLog time.Time
		evictCount   int
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mu.Lock()
				now := time.Now()
				// LRU order tracks access recency, not lastSeen, so
				// stale entries may appear anywhere.
				for e := order.Back(); e != nil; {
					lim := e.Value.(*ipLimiter)
					prev := e.Prev()
					if now.Sub(lim.lastSeen) > 10*time.Minute {
						order.Remove(e)
						delete(items, lim.ip)
					}
					e = prev
				}
				mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	middleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			mu.Lock()
			elem, exists := items[ip]
			if exists {
				order.MoveToFront(elem)
				elem.Value.(*ipLimiter).lastSeen = time.Now()
			} else {
				if order.Len() >= maxIPs {
					if back := order.Back(); back != nil {
						evicted := back.Value.(*ipLimiter)
						order.Remove(back)
						delete(items, evicted.ip)
						evictCount++
						if time.Since(lastEvictLog) >= evictionLogInterval {
							logger.Warn("rate limiter evicted least-recent IPs",
								zap.Int("evicted", evictCount), zap.Int("capacity", maxIPs))
							lastEvictLog = time.Now()
							evictCount = 0
						}
					}
				}
				lim := &ipLimiter{
					ip:       ip,
					limiter:  rate.NewLimiter(rate.Limit(rps), burst),
					lastSeen: time.Now(),
				}
				elem = order.PushFront(lim)
				items[ip] = elem
			}
			allowed := elem.Value.(*ipLimiter).limiter.Allow()
			mu.Unlock()

			if !allowed {
				w.Header().Set("Retry-After", "1")
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	return middleware, done
}

// getClientIP extracts the client IP from the request.
// It only trusts X-Forwarded-For / X-Real-IP when the immediate peer is a
// loopback or private address (i.e., behind a reverse proxy).
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	peerIP := net.ParseIP(host)
	trustedProxy := peerIP != nil && (peerIP.IsLoopback() || peerIP.IsPrivate())

	if trustedProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	if peerIP != nil {
		return peerIP.String()
	}
	return host
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Handler wraps the server in its middleware chain: security headers, per-IP
// rate limiting and compression. The rate limiter's cleanup goroutine runs
// until ctx is cancelled; the returned channel closes when it has exited.
func (s *Server) Handler(ctx context.Context) (http.Handler, <-chan struct{}) {
	rl := s.config.RateLimit
	limit, done := RateLimitMiddleware(ctx, rl.GetRequestsPerSecond(), rl.GetBurst(), rl.GetMaxTrackedIPs(), s.logger)
	return Chain(s, SecurityHeadersMiddleware(), limit, WithCompression), done
}

// Chain applies middleware so the first one listed runs first.
func Chain(h http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
