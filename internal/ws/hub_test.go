package ws_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unichat-backend/internal/ws"
)

// testConn is a real websocket pair: the server side goes into the hub,
// the client side is what the test reads from.
type testConn struct {
	server *websocket.Conn
	client *websocket.Conn
}

func dialPairs(t *testing.T, n int) []testConn {
	t.Helper()

	accepted := make(chan *websocket.Conn, n)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		accepted <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	pairs := make([]testConn, 0, n)
	for i := 0; i < n; i++ {
		client, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { client.Close() })
		server := <-accepted
		t.Cleanup(func() { server.Close() })
		pairs = append(pairs, testConn{server: server, client: client})
	}
	return pairs
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var out map[string]any
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

func assertSilent(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	var out json.RawMessage
	err := conn.ReadJSON(&out)
	assert.Error(t, err, "expected no message, got %s", out)
}

func TestBroadcastRoom(t *testing.T) {
	hub := ws.NewHub()
	pairs := dialPairs(t, 3)

	hub.Register(1, pairs[0].server)
	hub.Register(2, pairs[1].server)
	hub.Register(3, pairs[2].server)
	hub.Join("direct_1_2", pairs[0].server)
	hub.Join("direct_1_2", pairs[1].server)
	// pairs[2] never joins

	hub.BroadcastRoom("direct_1_2", nil, map[string]any{"type": "new-message"})

	assert.Equal(t, "new-message", readEvent(t, pairs[0].client)["type"])
	assert.Equal(t, "new-message", readEvent(t, pairs[1].client)["type"])
	assertSilent(t, pairs[2].client)
}

func TestBroadcastRoomExcept(t *testing.T) {
	hub := ws.NewHub()
	pairs := dialPairs(t, 2)

	hub.Join("direct_1_2", pairs[0].server)
	hub.Join("direct_1_2", pairs[1].server)

	// typing indicators skip the sender's own connection
	hub.BroadcastRoom("direct_1_2", pairs[0].server, map[string]any{"type": "user-typing"})

	assert.Equal(t, "user-typing", readEvent(t, pairs[1].client)["type"])
	assertSilent(t, pairs[0].client)
}

func TestJoinLeaveIdempotent(t *testing.T) {
	hub := ws.NewHub()
	pairs := dialPairs(t, 1)

	hub.Join("42", pairs[0].server)
	hub.Join("42", pairs[0].server)
	assert.Equal(t, 1, hub.RoomSize("42"))

	hub.Leave("42", pairs[0].server)
	assert.Zero(t, hub.RoomSize("42"))
	hub.Leave("42", pairs[0].server)
	assert.Zero(t, hub.RoomSize("42"))
}

func TestUnregister(t *testing.T) {
	t.Run("DropsAllRoomSubscriptions", func(t *testing.T) {
		hub := ws.NewHub()
		pairs := dialPairs(t, 1)

		hub.Register(1, pairs[0].server)
		hub.Join("42", pairs[0].server)
		hub.Join("direct_1_2", pairs[0].server)

		remaining := hub.Unregister(1, pairs[0].server)
		assert.Zero(t, remaining)
		assert.Zero(t, hub.RoomSize("42"))
		assert.Zero(t, hub.RoomSize("direct_1_2"))
	})

	t.Run("CountsRemainingConnections", func(t *testing.T) {
		hub := ws.NewHub()
		pairs := dialPairs(t, 2)

		// same user on two devices
		hub.Register(1, pairs[0].server)
		hub.Register(1, pairs[1].server)

		assert.Equal(t, 1, hub.Unregister(1, pairs[0].server))
		assert.Zero(t, hub.Unregister(1, pairs[1].server))
	})
}

func TestToUsers(t *testing.T) {
	hub := ws.NewHub()
	pairs := dialPairs(t, 3)

	hub.Register(1, pairs[0].server)
	hub.Register(1, pairs[1].server)
	hub.Register(2, pairs[2].server)

	hub.ToUsers([]int64{1}, map[string]any{"type": "conversation-updated"})

	// both of user 1's connections hear it, user 2 does not
	assert.Equal(t, "conversation-updated", readEvent(t, pairs[0].client)["type"])
	assert.Equal(t, "conversation-updated", readEvent(t, pairs[1].client)["type"])
	assertSilent(t, pairs[2].client)
}

func TestAll(t *testing.T) {
	hub := ws.NewHub()
	pairs := dialPairs(t, 2)

	hub.Register(1, pairs[0].server)
	hub.Register(2, pairs[1].server)

	hub.All(map[string]any{"type": "announcement", "message": "maintenance"})

	assert.Equal(t, "announcement", readEvent(t, pairs[0].client)["type"])
	assert.Equal(t, "announcement", readEvent(t, pairs[1].client)["type"])
}
