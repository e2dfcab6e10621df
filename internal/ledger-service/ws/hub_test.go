package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func waitFor(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout esperando callback para %q", want)
	}
}

func TestHubSubscribeLifecycle(t *testing.T) {
	h := NewHub(func(*http.Request) bool { return true })
	firsts := make(chan string, 4)
	lasts := make(chan string, 4)
	h.OnFirstSub = func(u string) { firsts <- u }
	h.OnLastUnsub = func(u string) { lasts <- u }

	conn, cleanup := dialHub(t, h)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", UserID: "u1"}))
	waitFor(t, firsts, "u1")

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "unsubscribe", UserID: "u1"}))
	waitFor(t, lasts, "u1")
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub(func(*http.Request) bool { return true })
	firsts := make(chan string, 1)
	h.OnFirstSub = func(u string) { firsts <- u }

	conn, cleanup := dialHub(t, h)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", UserID: "u1"}))
	waitFor(t, firsts, "u1")

	h.Broadcast("u1", map[string]string{"hello": "dashboard"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got map[string]string
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "dashboard", got["hello"])
}

func TestHubDisconnectFiresLastUnsub(t *testing.T) {
	h := NewHub(func(*http.Request) bool { return true })
	firsts := make(chan string, 1)
	lasts := make(chan string, 1)
	h.OnFirstSub = func(u string) { firsts <- u }
	h.OnLastUnsub = func(u string) { lasts <- u }

	conn, cleanup := dialHub(t, h)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", UserID: "u1"}))
	waitFor(t, firsts, "u1")

	conn.Close()
	waitFor(t, lasts, "u1")
}

func TestHubConcurrentBroadcastAndPing(t *testing.T) {
	h := NewHub(func(*http.Request) bool { return true })
	firsts := make(chan string, 1)
	h.OnFirstSub = func(u string) { firsts <- u }

	conn, cleanup := dialHub(t, h)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "subscribe", UserID: "u1"}))
	waitFor(t, firsts, "u1")
	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "ping"}))

	// broadcasts de duas goroutines disputando a escrita com o pong
	const perWriter = 50
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				h.Broadcast("u1", map[string]string{"kind": "snapshot"})
			}
		}()
	}
	wg.Wait()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	snapshots, pongs := 0, 0
	for snapshots < 2*perWriter || pongs < 1 {
		var got map[string]string
		require.NoError(t, conn.ReadJSON(&got))
		if got["type"] == "pong" {
			pongs++
		} else {
			assert.Equal(t, "snapshot", got["kind"])
			snapshots++
		}
	}
}

func TestHubPing(t *testing.T) {
	h := NewHub(func(*http.Request) bool { return true })
	conn, cleanup := dialHub(t, h)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(ClientMsg{Type: "ping"}))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got map[string]string
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "pong", got["type"])
}
