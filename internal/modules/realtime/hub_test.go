package realtime

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/cafepos/internal/platform/events"
)

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func dial(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
}

func TestPushesPublishedEvents(t *testing.T) {
	bus := events.NewBus()
	srv := httptest.NewServer(NewHandler(bus, []string{"*"}, quietLog()))
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()

	// The subscription is registered right after the upgrade; publish until
	// the socket sees it.
	ev := events.Event{Type: events.OrderUpdate, OrderID: "42", OrderNumber: "ORD-20260301-AB12", Status: "ready"}
	got := make(chan events.Event, 1)
	go func() {
		var e events.Event
		if err := conn.ReadJSON(&e); err == nil {
			got <- e
		}
	}()
	deadline := time.After(2 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case e := <-got:
			assert.Equal(t, events.OrderUpdate, e.Type)
			assert.Equal(t, "ORD-20260301-AB12", e.OrderNumber)
			assert.False(t, e.Timestamp.IsZero())
			return
		case <-tick.C:
			bus.Publish(context.Background(), ev)
		case <-deadline:
			t.Fatal("no event received")
		}
	}
}

func TestPings(t *testing.T) {
	bus := events.NewBus()
	h := NewHandler(bus, nil, quietLog())
	h.pingPeriod = 20 * time.Millisecond
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()

	pinged := make(chan struct{}, 1)
	conn.SetPingHandler(func(string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("no ping received")
	}
}

func TestRejectsUnknownOrigin(t *testing.T) {
	srv := httptest.NewServer(NewHandler(events.NewBus(), []string{"https://till.example.com"}, quietLog()))
	defer srv.Close()

	_, resp, err := dial(t, srv, "https://evil.example.com")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial(t, srv, "https://till.example.com")
	require.NoError(t, err)
	conn.Close()
}

func TestUnsubscribesOnClose(t *testing.T) {
	src := &countingSource{bus: events.NewBus(), closed: make(chan struct{})}
	srv := httptest.NewServer(NewHandler(src, nil, quietLog()))
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	conn.Close()

	select {
	case <-src.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not released")
	}
}

type countingSource struct {
	bus    *events.Bus
	closed chan struct{}
}

func (s *countingSource) Subscribe(buffer int) (<-chan events.Event, func()) {
	ch, unsub := s.bus.Subscribe(buffer)
	return ch, func() {
		unsub()
		close(s.closed)
	}
}
