package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitea.kood.tech/petrkubec/matchrelay/match"
)

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat" + query
}

func dialChat(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?userId="+userID), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var out map[string]interface{}
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

func TestWebSocketChat(t *testing.T) {
	a, _ := newTestApp(t)
	addProfiles(t, a, match.NewProfile("alice", nil), match.NewProfile("bob", nil), match.NewProfile("carol", nil))
	require.NoError(t, a.graph.Connect("alice", "bob"))

	srv := httptest.NewServer(a.routes())
	t.Cleanup(srv.Close)

	alice := dialChat(t, srv, "alice")
	bob := dialChat(t, srv, "bob")
	require.Eventually(t, func() bool {
		return a.registry.Online("alice") && a.registry.Online("bob")
	}, 2*time.Second, 10*time.Millisecond)

	t.Run("connected users chat", func(t *testing.T) {
		require.NoError(t, alice.WriteJSON(map[string]string{"receiverId": "bob", "message": "Hello"}))
		assert.Equal(t, map[string]interface{}{"senderId": "alice", "message": "Hello"}, readFrame(t, bob))

		require.NoError(t, bob.WriteJSON(map[string]string{"receiverId": "alice", "message": "Hi back"}))
		assert.Equal(t, map[string]interface{}{"senderId": "bob", "message": "Hi back"}, readFrame(t, alice))
	})

	t.Run("unconnected receiver is refused", func(t *testing.T) {
		require.NoError(t, alice.WriteJSON(map[string]string{"receiverId": "carol", "message": "hey"}))
		assert.Equal(t, map[string]interface{}{"error": "You can only chat with connected users."}, readFrame(t, alice))
	})

	t.Run("signaling", func(t *testing.T) {
		require.NoError(t, bob.WriteJSON(map[string]interface{}{
			"type":     "signaling",
			"targetId": "alice",
			"data":     map[string]string{"candidate": "c1"},
		}))
		assert.Equal(t, map[string]interface{}{
			"senderId": "bob",
			"type":     "signaling",
			"data":     map[string]interface{}{"candidate": "c1"},
		}, readFrame(t, alice))
	})
}

func TestWebSocketRejectsMissingIdentity(t *testing.T) {
	a, _ := newTestApp(t)
	srv := httptest.NewServer(a.routes())
	t.Cleanup(srv.Close)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketClosesUnknownIdentity(t *testing.T) {
	a, _ := newTestApp(t)
	srv := httptest.NewServer(a.routes())
	t.Cleanup(srv.Close)

	conn := dialChat(t, srv, "ghost")
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}
