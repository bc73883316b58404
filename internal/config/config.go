package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/livetemplate/blockkit/internal/blocks"
	"github.com/livetemplate/blockkit/internal/search"
	"github.com/livetemplate/blockkit/internal/source"
	"github.com/livetemplate/blockkit/internal/widget"
)

// FileNames are the config files LoadFromDir looks for, in order.
var FileNames = []string{"blockkit.yaml", ".blockkit.yaml"}

// Config represents the blockkit configuration
type Config struct {
	Title     string          `yaml:"title"`
	Server    ServerConfig    `yaml:"server"`
	Widgets   WidgetsConfig   `yaml:"widgets"`
	Search    SearchConfig    `yaml:"search"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Features  FeaturesConfig  `yaml:"features"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Ignore    []string        `yaml:"ignore"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port  int    `yaml:"port"`
	Host  string `yaml:"host"`
	Debug bool   `yaml:"debug"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WidgetsConfig tunes the interactive blocks. Durations are strings such as
// "5s" or "300ms"; empty or invalid values fall back to the defaults.
type WidgetsConfig struct {
	AutoplayDelay  string  `yaml:"autoplay_delay,omitempty"`  // Carousel autoplay interval (default: 5s)
	SwipeThreshold float64 `yaml:"swipe_threshold,omitempty"` // Minimum swipe distance in px (default: 50)
	Breakpoint     int     `yaml:"breakpoint,omitempty"`      // Desktop navigation min width in px (default: 900)
	CountDuration  string  `yaml:"count_duration,omitempty"`  // Counter animation length (default: 2s)
	Frame          string  `yaml:"frame,omitempty"`           // Counter frame interval (default: 16ms)
	SearchDebounce string  `yaml:"search_debounce,omitempty"` // Typing debounce (default: 300ms)
	SearchLimit    int     `yaml:"search_limit,omitempty"`    // Maximum results (default: 10)
	SearchMinQuery int     `yaml:"search_min_query,omitempty"`
}

// SearchConfig configures the search index.
type SearchConfig struct {
	Index    string `yaml:"index,omitempty"`     // Index path or URL (default: /query-index.json)
	CacheTTL string `yaml:"cache_ttl,omitempty"` // Remote document cache TTL (default: 5m, "0" disables)
}

// FetchConfig configures runtime fetches of indexes and fragments.
type FetchConfig struct {
	Timeout      string       `yaml:"timeout,omitempty"` // Request timeout (default: 10s)
	AllowPrivate bool         `yaml:"allow_private,omitempty"`
	Retry        *RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig configures retry behavior for remote fetches
type RetryConfig struct {
	MaxRetries int    `yaml:"max_retries,omitempty"` // Maximum retry attempts (default: 3)
	BaseDelay  string `yaml:"base_delay,omitempty"`  // Initial delay (e.g., "100ms"). Default: 100ms
	MaxDelay   string `yaml:"max_delay,omitempty"`   // Maximum delay (e.g., "5s"). Default: 5s
}

// FeaturesConfig holds feature flags
type FeaturesConfig struct {
	HotReload bool `yaml:"hot_reload"`
}

// RateLimitConfig limits requests per client IP
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"` // default: 10
	Burst             int     `yaml:"burst,omitempty"`               // default: 20
	MaxTrackedIPs     int     `yaml:"max_tracked_ips,omitempty"`    // default: 10000
}

// LoggingConfig selects the log level and encoding
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error (default: info)
	JSON  bool   `yaml:"json,omitempty"`
}

func duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}

// GetAutoplayDelay returns the carousel interval (default: 5s)
func (c WidgetsConfig) GetAutoplayDelay() time.Duration {
	return duration(c.AutoplayDelay, widget.DefaultAutoplayDelay)
}

// GetCountDuration returns the counter animation length (default: 2s)
func (c WidgetsConfig) GetCountDuration() time.Duration {
	return duration(c.CountDuration, widget.DefaultCountDuration)
}

// GetFrame returns the counter frame interval (default: 16ms)
func (c WidgetsConfig) GetFrame() time.Duration {
	return duration(c.Frame, widget.DefaultFrame)
}

// GetSearchDebounce returns the typing debounce (default: 300ms)
func (c WidgetsConfig) GetSearchDebounce() time.Duration {
	return duration(c.SearchDebounce, widget.DefaultSearchDebounce)
}

// GetTimeout returns the fetch timeout (default: 10s)
func (c FetchConfig) GetTimeout() time.Duration {
	return duration(c.Timeout, 10*time.Second)
}

// GetRetry returns the retry policy. MaxRetries 0 disables retries; negative
// values fall back to 3.
func (c FetchConfig) GetRetry() source.RetryConfig {
	cfg := source.DefaultRetryConfig()
	if c.Retry == nil {
		return cfg
	}
	if c.Retry.MaxRetries >= 0 {
		cfg.MaxRetries = c.Retry.MaxRetries
	}
	cfg.BaseDelay = duration(c.Retry.BaseDelay, cfg.BaseDelay)
	cfg.MaxDelay = duration(c.Retry.MaxDelay, cfg.MaxDelay)
	return cfg
}

// GetCacheTTL returns the remote document TTL (default: 5m)
func (c SearchConfig) GetCacheTTL() time.Duration {
	return duration(c.CacheTTL, 5*time.Minute)
}

// GetIndex returns the index path (default: /query-index.json)
func (c SearchConfig) GetIndex() string {
	if c.Index == "" {
		return search.DefaultIndexPath
	}
	return c.Index
}

// GetRequestsPerSecond returns the rate limit (default: 10)
func (c RateLimitConfig) GetRequestsPerSecond() float64 {
	if c.RequestsPerSecond <= 0 {
		return 10
	}
	return c.RequestsPerSecond
}

// GetBurst returns the burst size (default: 20)
func (c RateLimitConfig) GetBurst() int {
	if c.Burst <= 0 {
		return 20
	}
	return c.Burst
}

// GetMaxTrackedIPs returns how many client IPs the limiter tracks (default: 10000)
func (c RateLimitConfig) GetMaxTrackedIPs() int {
	if c.MaxTrackedIPs <= 0 {
		return 10000
	}
	return c.MaxTrackedIPs
}

// BlockOptions converts the configuration into decorator options.
func (c *Config) BlockOptions() blocks.Options {
	opts := blocks.DefaultOptions()
	w := c.Widgets
	opts.AutoplayDelay = w.GetAutoplayDelay()
	opts.CountDuration = w.GetCountDuration()
	opts.Frame = w.GetFrame()
	opts.SearchDebounce = w.GetSearchDebounce()
	if w.SwipeThreshold > 0 {
		opts.SwipeThreshold = w.SwipeThreshold
	}
	if w.Breakpoint > 0 {
		opts.Breakpoint = w.Breakpoint
	}
	if w.SearchLimit > 0 {
		opts.SearchLimit = w.SearchLimit
	}
	if w.SearchMinQuery > 0 {
		opts.SearchMinQuery = w.SearchMinQuery
	}
	opts.SearchIndex = c.Search.GetIndex()
	opts.FetchTimeout = c.Fetch.GetTimeout()
	return opts
}

// FetchOptions converts the configuration into fetcher options.
func (c *Config) FetchOptions() source.Options {
	opts := source.DefaultOptions()
	opts.Timeout = c.Fetch.GetTimeout()
	opts.CacheTTL = c.Search.GetCacheTTL()
	opts.Retry = c.Fetch.GetRetry()
	opts.AllowPrivate = c.Fetch.AllowPrivate
	return opts
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Title: "blockkit",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Features: FeaturesConfig{
			HotReload: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Ignore: []string{
			"drafts/**",
			"_*.md",
		},
	}
}

// Load loads configuration from a YAML file
// If the file doesn't exist, returns the default configuration
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig() // Start with defaults
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// LoadFromDir looks for blockkit.yaml, then .blockkit.yaml, in dir.
// If none is found, returns the default configuration
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return DefaultConfig(), nil
}

// Save writes the configuration to a YAML file
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
