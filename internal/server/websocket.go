package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/livetemplate/blockkit/internal/blocks"
	"github.com/livetemplate/blockkit/internal/session"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: sameOrigin,
}

// sameOrigin accepts requests without an Origin header and requests whose
// Origin host matches the Host header.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// MessageEnvelope is a client-to-server event.
type MessageEnvelope struct {
	BlockID string          `json:"blockID"`
	Action  string          `json:"action"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// wsConn serializes writes to one connection. Session patches and reload
// broadcasts write from different goroutines.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(time.Second))
	_ = c.conn.Close()
}

// WebSocketHandler serves one page's live blocks over a WebSocket. Every
// connection gets its own session.
type WebSocketHandler struct {
	server *Server
	route  *Route
	logger *zap.Logger
}

// serveWebSocket handles WebSocket connections for the page named by the
// page query parameter.
func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("page")
	if pattern == "" {
		pattern = "/"
	}
	route := s.route(pattern)
	if route == nil {
		http.Error(w, "unknown page", http.StatusNotFound)
		return
	}

	h := &WebSocketHandler{
		server: s,
		route:  route,
		logger: s.logger.With(zap.String("page", route.Pattern)),
	}
	h.ServeHTTP(w, r)
}

// ServeHTTP handles WebSocket upgrade and message routing.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}
	c := &wsConn{conn: conn}

	s := h.server
	s.handlers.Add(1)
	defer s.handlers.Done()

	// Register connection for reload broadcasts
	s.registerConnection(c)
	defer func() {
		s.unregisterConnection(c)
		_ = conn.Close()
	}()

	sess := session.New(h.route.Page.Blocks(), session.Config{
		Registry: s.registry,
		Env:      s.blockEnv(),
		Sink: func(m session.Message) error {
			return c.writeJSON(m)
		},
		Logger: h.logger,
	})
	defer sess.Close()

	h.logger.Debug("client connected",
		zap.String("session", sess.ID()),
		zap.String("remote", conn.RemoteAddr().String()),
		zap.Strings("blocks", sess.Blocks()))

	conn.SetReadLimit(maxMessageSize)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("unexpected close", zap.Error(err))
			}
			break
		}
		h.handleMessage(sess, message)
	}

	h.logger.Debug("client disconnected", zap.String("session", sess.ID()))
}

// handleMessage decodes one envelope and dispatches it. Bad envelopes,
// unknown blocks and unknown actions are logged; the connection stays open.
func (h *WebSocketHandler) handleMessage(sess *session.Session, message []byte) {
	var envelope MessageEnvelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		h.logger.Warn("failed to parse message", zap.Error(err))
		return
	}

	var ev blocks.Event
	if len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		if err := json.Unmarshal(envelope.Data, &ev); err != nil {
			h.logger.Warn("failed to parse event data",
				zap.String("block", envelope.BlockID),
				zap.String("action", envelope.Action),
				zap.Error(err))
			return
		}
	}

	err := sess.Dispatch(envelope.BlockID, envelope.Action, ev)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrUnknownBlock), errors.Is(err, blocks.ErrUnknownAction):
		h.logger.Debug("ignored event",
			zap.String("block", envelope.BlockID),
			zap.String("action", envelope.Action),
			zap.Error(err))
	default:
		h.logger.Warn("event failed",
			zap.String("block", envelope.BlockID),
			zap.String("action", envelope.Action),
			zap.Error(err))
	}
}
