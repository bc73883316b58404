package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/livetemplate/blockkit"
	"github.com/livetemplate/blockkit/internal/assets"
	"github.com/livetemplate/blockkit/internal/blocks"
	"github.com/livetemplate/blockkit/internal/config"
	"github.com/livetemplate/blockkit/internal/search"
	"github.com/livetemplate/blockkit/internal/source"
	"github.com/livetemplate/blockkit/internal/widget"
)

// plainSuffix addresses the undecorated fragment of a page.
const plainSuffix = ".plain.html"

// Route represents a discovered page route.
type Route struct {
	Pattern  string         // URL pattern (e.g., "/counter")
	FilePath string         // Relative file path (e.g., "counter.md")
	Page     *blockkit.Page // Parsed page
}

// Server is the blockkit development server.
type Server struct {
	rootDir     string
	config      *config.Config
	logger      *zap.Logger
	registry    *blocks.Registry
	fetcher     *source.Fetcher
	clock       widget.Clock // nil means the system clock
	routes      []*Route
	mu          sync.RWMutex
	connections map[*wsConn]bool // Track connected WebSocket clients
	connMu      sync.RWMutex     // Separate mutex for connections
	watcher     *Watcher         // File watcher for live reload
	handlers    sync.WaitGroup   // Running WebSocket handlers
}

// New creates a new server for the given root directory with the default
// configuration.
func New(rootDir string) *Server {
	return NewWithConfig(rootDir, config.DefaultConfig(), nil)
}

// NewWithConfig creates a new server with a specific configuration. Call
// Close to release the fetcher and any open connections.
func NewWithConfig(rootDir string, cfg *config.Config, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		rootDir:     rootDir,
		config:      cfg,
		logger:      logger.Named("server"),
		registry:    blocks.NewRegistry(),
		routes:      make([]*Route, 0),
		connections: make(map[*wsConn]bool),
	}
	s.fetcher = source.NewFetcher(cfg.FetchOptions(), s, logger)
	return s
}

// SetClock replaces the clock sessions schedule their timers on.
func (s *Server) SetClock(c widget.Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = c
}

// Registry returns the decorator registry used for every page.
func (s *Server) Registry() *blocks.Registry { return s.registry }

// Discover scans the directory for .md and .html files and creates routes.
func (s *Server) Discover() error {
	var routes []*Route

	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			// Skip directories starting with _ or .
			name := d.Name()
			if path != s.rootDir && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".html" && ext != ".htm" {
			return nil
		}

		relPath, err := filepath.Rel(s.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		if strings.HasSuffix(relPath, plainSuffix) || ignored(relPath, s.config.Ignore) {
			return nil
		}

		page, err := blockkit.ParseFile(path)
		if err != nil {
			s.logger.Warn("failed to parse page", zap.String("file", relPath), zap.Error(err))
			return nil // Continue with other files
		}
		page.ID = strings.TrimSuffix(relPath, filepath.Ext(relPath))

		routes = append(routes, &Route{
			Pattern:  page.Path(),
			FilePath: relPath,
			Page:     page,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}

	sortRoutes(routes)

	s.mu.Lock()
	s.routes = routes
	s.mu.Unlock()

	// Fragments are served from routes; drop anything cached from before.
	s.fetcher.Invalidate()
	s.logger.Debug("discovered pages", zap.Int("routes", len(routes)))
	return nil
}

// ignored reports whether relPath matches one of the ignore globs. A
// trailing "/**" matches everything below a directory.
func ignored(relPath string, patterns []string) bool {
	for _, p := range patterns {
		if dir, ok := strings.CutSuffix(p, "/**"); ok {
			if relPath == dir || strings.HasPrefix(relPath, dir+"/") {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(p, relPath); ok {
			return true
		}
		if ok, _ := filepath.Match(p, filepath.Base(relPath)); ok {
			return true
		}
	}
	return false
}

// Routes returns the discovered routes.
func (s *Server) Routes() []*Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routes
}

// route returns the route serving pattern, or nil.
func (s *Server) route(pattern string) *Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.routes {
		if r.Pattern == pattern {
			return r
		}
	}
	return nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/ws":
		s.serveWebSocket(w, r)
		return
	case path == s.config.Search.GetIndex():
		s.serveSearchIndex(w, r)
		return
	case strings.HasPrefix(path, "/assets/"):
		s.serveAsset(w, r)
		return
	case strings.HasSuffix(path, plainSuffix):
		s.servePlain(w, r)
		return
	}

	if route := s.route(path); route != nil {
		s.servePage(w, r, route)
		return
	}

	if filepath.Ext(path) != "" {
		http.NotFound(w, r)
		return
	}
	// No route found - redirect to home page instead of 404
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// serveAsset serves embedded client assets.
func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/assets/")
	data, contentType, err := assets.Get(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

// searchIndex builds the index of every indexed page.
func (s *Server) searchIndex() *search.Index {
	var entries []search.Entry
	for _, route := range s.Routes() {
		if route.Page.Indexed() {
			entries = append(entries, route.Page.Entry())
		}
	}
	return search.NewIndex(entries)
}

// serveSearchIndex serves the generated search index.
func (s *Server) serveSearchIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache") // Don't cache during development

	if err := json.NewEncoder(w).Encode(s.searchIndex()); err != nil {
		s.logger.Warn("failed to encode search index", zap.Error(err))
	}
}

// servePlain serves the undecorated body of a page.
func (s *Server) servePlain(w http.ResponseWriter, r *http.Request) {
	route := s.route(plainPattern(r.URL.Path))
	if route == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(route.Page.Plain()))
}

// plainPattern maps "/about.plain.html" to "/about" and "/index.plain.html"
// to "/".
func plainPattern(p string) string {
	p = strings.TrimSuffix(p, plainSuffix)
	if p == "/index" || p == "" {
		return "/"
	}
	if strings.HasSuffix(p, "/index") {
		return strings.TrimSuffix(p, "index")
	}
	return p
}

// servePage serves a page with every block in its initial state.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request, route *Route) {
	html, err := s.renderPage(route)
	if err != nil {
		s.logger.Error("failed to render page", zap.String("page", route.Pattern), zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(html)
}

// blockEnv returns the environment decorators run in.
func (s *Server) blockEnv() blocks.Env {
	s.mu.RLock()
	clock := s.clock
	s.mu.RUnlock()
	return blocks.Env{
		Options: s.config.BlockOptions(),
		Clock:   clock,
		Fetcher: s.fetcher,
		Logger:  s.logger,
	}
}

// Resolve serves site-local documents to the fetcher: the search index and
// page fragments.
func (s *Server) Resolve(ctx context.Context, rawPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawPath)
	if err != nil {
		return nil, &source.ValidationError{Source: rawPath, Field: "path", Reason: err.Error()}
	}

	if u.Path == s.config.Search.GetIndex() {
		return json.Marshal(s.searchIndex())
	}

	pattern := u.Path
	if strings.HasSuffix(pattern, plainSuffix) {
		pattern = plainPattern(pattern)
	}
	if route := s.route(pattern); route != nil {
		return []byte(route.Page.Plain()), nil
	}
	return nil, &source.HTTPError{Source: rawPath, StatusCode: http.StatusNotFound, Status: "Not Found"}
}

// sortRoutes sorts routes: / first, then directory indexes, then the rest
// alphabetically.
func sortRoutes(routes []*Route) {
	rank := func(r *Route) int {
		switch {
		case r.Pattern == "/":
			return 0
		case strings.HasSuffix(r.Pattern, "/"):
			return 1
		}
		return 2
	}
	sort.SliceStable(routes, func(i, j int) bool {
		ri, rj := rank(routes[i]), rank(routes[j])
		if ri != rj {
			return ri < rj
		}
		return routes[i].Pattern < routes[j].Pattern
	})
}

// registerConnection adds a WebSocket connection to the tracked connections.
func (s *Server) registerConnection(c *wsConn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.connections[c] = true
	s.logger.Debug("websocket connection registered", zap.Int("active", len(s.connections)))
}

// unregisterConnection removes a WebSocket connection from tracked connections.
func (s *Server) unregisterConnection(c *wsConn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	delete(s.connections, c)
	s.logger.Debug("websocket connection unregistered", zap.Int("active", len(s.connections)))
}

// ConnectionCount returns the number of open WebSocket connections.
func (s *Server) ConnectionCount() int {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return len(s.connections)
}

// BroadcastReload sends a reload message to all connected WebSocket clients.
func (s *Server) BroadcastReload(filePath string) {
	s.connMu.RLock()
	defer s.connMu.RUnlock()

	if len(s.connections) == 0 {
		return
	}

	s.logger.Info("broadcasting reload", zap.String("file", filePath), zap.Int("connections", len(s.connections)))
	msg := reloadMessage{Action: "reload", FilePath: filePath}
	for c := range s.connections {
		if err := c.writeJSON(msg); err != nil {
			s.logger.Debug("failed to send reload", zap.Error(err))
		}
	}
}

// reloadMessage asks the client to reload the page.
type reloadMessage struct {
	Action   string `json:"action"`
	FilePath string `json:"filePath,omitempty"`
}

// EnableWatch enables file watching for live reload.
func (s *Server) EnableWatch() error {
	watcher, err := NewWatcher(s.rootDir, func(filePath string) error {
		// Re-discover pages
		if err := s.Discover(); err != nil {
			return fmt.Errorf("failed to re-discover pages: %w", err)
		}

		// Broadcast reload to all connected clients
		s.BroadcastReload(filePath)
		return nil
	}, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	s.watcher = watcher
	s.watcher.Start()

	s.logger.Info("file watcher started", zap.String("dir", s.rootDir))
	return nil
}

// StopWatch stops the file watcher if it's running.
func (s *Server) StopWatch() error {
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Stop()
	s.watcher = nil
	return err
}

// Close stops the watcher, closes every WebSocket connection (which tears
// down its session) and stops the fetcher.
func (s *Server) Close() error {
	err := s.StopWatch()

	s.connMu.RLock()
	conns := make([]*wsConn, 0, len(s.connections))
	for c := range s.connections {
		conns = append(conns, c)
	}
	s.connMu.RUnlock()
	for _, c := range conns {
		c.close()
	}
	s.handlers.Wait()

	if cerr := s.fetcher.Close(); err == nil {
		err = cerr
	}
	return err
}
