// Package source fetches the documents interactive blocks load at runtime:
// search indexes (JSON) and modal fragments (HTML). Remote fetches go through
// a per-host circuit breaker, retry with backoff, and a TTL cache; site-local
// paths are resolved in-process.
package source

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/livetemplate/blockkit/internal/cache"
	"github.com/livetemplate/blockkit/internal/search"
	"github.com/livetemplate/blockkit/internal/security"
)

// Resolver serves site-local paths ("/query-index.json", "/about.plain.html")
// without a network round trip.
type Resolver interface {
	Resolve(ctx context.Context, path string) ([]byte, error)
}

// Options configures a Fetcher.
type Options struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	Retry    RetryConfig
	Circuit  CircuitBreakerConfig
	// AllowPrivate disables the private-network check for remote URLs.
	AllowPrivate bool
}

// DefaultOptions returns the default fetch options.
func DefaultOptions() Options {
	return Options{
		Timeout:  10 * time.Second,
		CacheTTL: 5 * time.Minute,
		Retry:    DefaultRetryConfig(),
		Circuit:  DefaultCircuitBreakerConfig(),
	}
}

// Fetcher loads documents by URL or site path.
type Fetcher struct {
	opts     Options
	local    Resolver
	client   *http.Client
	cache    *cache.MemoryCache[[]byte]
	logger   *zap.Logger
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

// NewFetcher creates a fetcher. local may be nil, in which case site paths
// cannot be fetched. Call Close to stop the cache.
func NewFetcher(opts Options, local Resolver, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		opts:     opts,
		local:    local,
		client:   &http.Client{Timeout: opts.Timeout},
		cache:    cache.New[[]byte](),
		logger:   logger.Named("source"),
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Get returns the body at rawURL. Paths starting with "/" go to the local
// resolver; http(s) URLs are fetched remotely and cached.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, &ValidationError{Source: rawURL, Field: "url", Reason: "url is required"}
	}

	if strings.HasPrefix(rawURL, "/") && !strings.HasPrefix(rawURL, "//") {
		if f.local == nil {
			return nil, &ValidationError{Source: rawURL, Reason: "no resolver for site paths"}
		}
		return f.local.Resolve(ctx, rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ValidationError{Source: rawURL, Field: "url", Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &ValidationError{Source: rawURL, Field: "url", Reason: "scheme must be http or https"}
	}
	if !f.opts.AllowPrivate {
		if err := security.ValidateHTTPURL(rawURL); err != nil {
			return nil, &ValidationError{Source: rawURL, Field: "url", Reason: err.Error()}
		}
	}

	if body, ok := f.cache.Get(rawURL); ok {
		return body, nil
	}

	cb := f.breaker(u.Host)
	if err := cb.Allow(); err != nil {
		return nil, err
	}
	body, err := WithRetry(ctx, f.logger, rawURL, f.opts.Retry, func(ctx context.Context) ([]byte, error) {
		return f.doFetch(ctx, rawURL)
	})
	cb.Record(err)
	if err != nil {
		return nil, err
	}

	if f.opts.CacheTTL > 0 {
		f.cache.Set(rawURL, body, f.opts.CacheTTL)
	}
	return body, nil
}

// Entries loads and decodes a search index.
func (f *Fetcher) Entries(ctx context.Context, rawURL string) ([]search.Entry, error) {
	body, err := f.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	entries, err := search.Decode(body)
	if err != nil {
		return nil, &ValidationError{Source: rawURL, Reason: err.Error()}
	}
	return entries, nil
}

// Fragment loads an HTML fragment.
func (f *Fetcher) Fragment(ctx context.Context, rawURL string) (string, error) {
	body, err := f.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Invalidate drops every cached remote document.
func (f *Fetcher) Invalidate() {
	f.cache.InvalidateAll()
}

// Close stops the cache cleanup loop.
func (f *Fetcher) Close() error {
	f.cache.Stop()
	return nil
}

func (f *Fetcher) breaker(host string) *CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()
	cb, ok := f.breakers[host]
	if !ok {
		cb = NewCircuitBreaker(host, f.opts.Circuit, f.logger)
		f.breakers[host] = cb
	}
	return cb
}
