package server

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livetemplate/blockkit/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func reqFromIP(ip string) *http.Request {
	r := httptest.NewRequest("GET", "/about", nil)
	r.RemoteAddr = ip + ":12345"
	return r
}

// rateLimitWrap creates a rate-limited handler with a context that is
// cancelled when the test finishes, preventing goroutine leaks.
func rateLimitWrap(t *testing.T, rps float64, burst, maxIPs int, next http.Handler) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	mw, _ := RateLimitMiddleware(ctx, rps, burst, maxIPs, nil)
	return mw(next)
}

// TestRateLimitLRUEviction verifies that when the IP map is full, a new IP
// evicts the least-recently-used entry instead of returning 503.
func TestRateLimitLRUEviction(t *testing.T) {
	wrapped := rateLimitWrap(t, 100, 100, 3, okHandler())

	// Fill to capacity with 3 IPs
	for _, ip := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, reqFromIP(ip))
		if w.Code != http.StatusOK {
			t.Fatalf("IP %s: expected 200, got %d", ip, w.Code)
		}
	}

	// 4th IP should succeed (LRU eviction), not 503
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("4.4.4.4"))
	if w.Code != http.StatusOK {
		t.Errorf("4th IP at capacity: expected 200, got %d", w.Code)
	}
}

// TestRateLimitEvictedIPGetsFreshLimiter verifies that an evicted IP returning
// gets a fresh token bucket, not a stale one.
func TestRateLimitEvictedIPGetsFreshLimiter(t *testing.T) {
	// burst=1 so the first request consumes the token
	wrapped := rateLimitWrap(t, 100, 1, 2, okHandler())

	// IP "1.1.1.1" uses its burst token
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("1.1.1.1"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// Second request from same IP should be rate-limited (burst exhausted)
	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("1.1.1.1"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}

	// Push 1.1.1.1 out by filling capacity with 2 other IPs
	for _, ip := range []string{"2.2.2.2", "3.3.3.3"} {
		w = httptest.NewRecorder()
		wrapped.ServeHTTP(w, reqFromIP(ip))
		if w.Code != http.StatusOK {
			t.Fatalf("IP %s: expected 200, got %d", ip, w.Code)
		}
	}

	// 1.1.1.1 returns — should get a fresh limiter with a full burst token
	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("1.1.1.1"))
	if w.Code != http.StatusOK {
		t.Errorf("evicted IP returning: expected 200 (fresh limiter), got %d", w.Code)
	}
}

// TestRateLimitMRUNotEvicted verifies that accessing an IP moves it to the
// front of the LRU, protecting it from eviction.
func TestRateLimitMRUNotEvicted(t *testing.T) {
	wrapped := rateLimitWrap(t, 100, 100, 3, okHandler())

	// Fill: A, B, C (order: C=front, B, A=back)
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, reqFromIP(ip))
		if w.Code != http.StatusOK {
			t.Fatalf("IP %s: expected 200, got %d", ip, w.Code)
		}
	}

	// Touch A → moves to front (order: A=front, C, B=back)
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("10.0.0.1"))
	if w.Code != http.StatusOK {
		t.Fatalf("touch A: expected 200, got %d", w.Code)
	}

	// New IP D → evicts B (back), not A
	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("10.0.0.4"))
	if w.Code != http.StatusOK {
		t.Fatalf("new IP D: expected 200, got %d", w.Code)
	}

	// A should still be present (not evicted)
	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("10.0.0.1"))
	if w.Code != http.StatusOK {
		t.Errorf("A after eviction: expected 200 (still present), got %d", w.Code)
	}
}

// TestRateLimitNo503AtCapacity is a regression test ensuring that 503 is never
// returned when the rate limiter is at capacity.
func TestRateLimitNo503AtCapacity(t *testing.T) {
	wrapped := rateLimitWrap(t, 100, 100, 5, okHandler())

	// Send requests from 20 unique IPs — all should get 200, never 503
	for i := 0; i < 20; i++ {
		ip := fmt.Sprintf("192.168.%d.%d", i/256, i%256)
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, reqFromIP(ip))
		if w.Code == http.StatusServiceUnavailable {
			t.Fatalf("IP %s: got 503 (should never happen with LRU eviction)", ip)
		}
		if w.Code != http.StatusOK {
			t.Errorf("IP %s: expected 200, got %d", ip, w.Code)
		}
	}
}

// TestRateLimitConcurrentAccess verifies no races or panics under concurrent load.
func TestRateLimitConcurrentAccess(t *testing.T) {
	wrapped := rateLimitWrap(t, 1000, 1000, 100, okHandler())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			ip := fmt.Sprintf("10.0.%d.%d", id/256, id%256)
			for j := 0; j < 10; j++ {
				w := httptest.NewRecorder()
				wrapped.ServeHTTP(w, reqFromIP(ip))
				if w.Code == http.StatusServiceUnavailable {
					t.Errorf("IP %s: got 503 under concurrent load", ip)
				}
			}
		}(i)
	}
	wg.Wait()
}

// TestGetMaxTrackedIPs tests the config accessor with defaults and explicit values.
func TestGetMaxTrackedIPs(t *testing.T) {
	// Zero value → default
	cfg := config.RateLimitConfig{}
	if got := cfg.GetMaxTrackedIPs(); got != 10000 {
		t.Errorf("zero MaxTrackedIPs: expected 10000, got %d", got)
	}

	// Explicit value
	cfg = config.RateLimitConfig{MaxTrackedIPs: 500}
	if got := cfg.GetMaxTrackedIPs(); got != 500 {
		t.Errorf("explicit MaxTrackedIPs: expected 500, got %d", got)
	}
}

// TestRateLimitCleanupStopsOnCancel verifies that cancelling the context
// causes the cleanup goroutine to exit, confirmed via the done channel.
func TestRateLimitCleanupStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, done := RateLimitMiddleware(ctx, 100, 100, 100, nil)

	cancel()

	select {
	case <-done:
		// Goroutine exited cleanly.
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup goroutine did not exit within 2s")
	}
}

func TestRateLimitRejectsWithJSON(t *testing.T) {
	wrapped := rateLimitWrap(t, 1, 1, 10, okHandler())

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("8.8.8.8"))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("8.8.8.8"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"direct", "203.0.113.7:4000", "", "", "203.0.113.7"},
		{"untrusted forwarded header ignored", "203.0.113.7:4000", "1.2.3.4", "", "203.0.113.7"},
		{"loopback proxy", "127.0.0.1:4000", "1.2.3.4, 10.0.0.1", "", "1.2.3.4"},
		{"private proxy real ip", "10.0.0.2:4000", "", "5.6.7.8", "5.6.7.8"},
		{"no port", "198.51.100.1", "", "", "198.51.100.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeadersMiddleware()(okHandler())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	csp := w.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "script-src 'self'")
	assert.Contains(t, csp, "frame-src https:")
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(okHandler(), mark("a"), mark("b"), mark("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func textHandler(contentType, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = io.WriteString(w, body)
	})
}

func TestCompression(t *testing.T) {
	body := strings.Repeat("<p>hello</p>", 100)

	t.Run("compresses html", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Accept-Encoding", "gzip, deflate")
		w := httptest.NewRecorder()
		WithCompression(textHandler("text/html; charset=utf-8", body)).ServeHTTP(w, r)

		assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		assert.Equal(t, "Accept-Encoding", w.Header().Get("Vary"))
		gz, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		got, err := io.ReadAll(gz)
		require.NoError(t, err)
		assert.Equal(t, body, string(got))
	})

	t.Run("skips images", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		WithCompression(textHandler("image/png", "PNG")).ServeHTTP(w, r)

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, "PNG", w.Body.String())
	})

	t.Run("client without gzip", func(t *testing.T) {
		w := httptest.NewRecorder()
		WithCompression(textHandler("text/css", body)).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, body, w.Body.String())
	})

	t.Run("websocket upgrade passes through", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)
		r.Header.Set("Accept-Encoding", "gzip")
		r.Header.Set("Upgrade", "websocket")
		w := httptest.NewRecorder()
		WithCompression(textHandler("application/json", body)).ServeHTTP(w, r)

		assert.Empty(t, w.Header().Get("Content-Encoding"))
	})
}
