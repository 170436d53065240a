package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func serveAccount(hub *Hub, accountID int64) http.HandlerFunc {
	upgrader := NewUpgrader(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, accountID)
		if !hub.Attach(client) {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PublishToAccount(t *testing.T) {
	hub := startHub(t)
	srv := httptest.NewServer(serveAccount(hub, 7))
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Connections(7) == 1 }, time.Second, 5*time.Millisecond)

	hub.PublishEvent(7, []byte(`{"event_type":"file.uploaded"}`))
	hub.PublishEvent(8, []byte(`{"event_type":"other"}`))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.JSONEq(t, `{"event_type":"file.uploaded"}`, string(msg))
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub := startHub(t)
	srv := httptest.NewServer(serveAccount(hub, 3))
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Connections(3) == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Connections(3) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_AttachAfterStop(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	attached := make(chan bool, 1)
	go func() { attached <- hub.Attach(&Client{hub: hub, AccountID: 1}) }()

	select {
	case ok := <-attached:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Attach blocked on a stopped hub")
	}
	require.Zero(t, hub.Connections(1))
}

func TestUpgrader_CheckOrigin(t *testing.T) {
	u := NewUpgrader([]string{"https://app.example"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "https://app.example")
	require.True(t, u.CheckOrigin(r))

	r.Header.Set("Origin", "https://evil.example")
	require.False(t, u.CheckOrigin(r))

	open := NewUpgrader(nil)
	require.True(t, open.CheckOrigin(r))
}
