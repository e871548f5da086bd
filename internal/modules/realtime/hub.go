// Package realtime pushes published events to WebSocket clients.
package realtime

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/georgemunganga/cafepos/internal/platform/events"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	// clientBuffer is how many events a socket may lag before it starts
	// missing them.
	clientBuffer = 64
)

// Source is the event stream sockets are fed from.
type Source interface {
	Subscribe(buffer int) (<-chan events.Event, func())
}

type Handler struct {
	source     Source
	log        *slog.Logger
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
}

// NewHandler accepts upgrades from the given origins; "*" allows any.
func NewHandler(source Source, origins []string, log *slog.Logger) *Handler {
	h := &Handler{source: source, log: log, pingPeriod: pingPeriod}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(origins),
	}
	return h
}

func originChecker(origins []string) func(*http.Request) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return slices.Contains(origins, u.Scheme+"://"+u.Host)
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.ServeHTTP)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		h.log.Debug("websocket upgrade failed", "error", err)
		return
	}
	stream, unsubscribe := h.source.Subscribe(clientBuffer)
	c := &client{conn: conn, stream: stream, done: make(chan struct{}), pingPeriod: h.pingPeriod}

	go c.readLoop()
	c.writeLoop()
	unsubscribe()
	conn.Close()
	h.log.Debug("websocket closed", "remote", r.RemoteAddr)
}

type client struct {
	conn       *websocket.Conn
	stream     <-chan events.Event
	done       chan struct{}
	pingPeriod time.Duration
}

// readLoop discards client frames and keeps the read deadline alive on pongs.
// It closes done when the peer goes away.
func (c *client) readLoop() {
	defer close(c.done)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop forwards events until the peer leaves or a write misses its
// deadline, which is how slow clients get dropped.
func (c *client) writeLoop() {
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-c.stream:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
