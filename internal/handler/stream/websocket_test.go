package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, protocols ...string) *websocket.Conn {
	t.Helper()
	return dialHandler(t, newTestHandler(t), protocols...)
}

func dialHandler(t *testing.T, h *Handler, protocols ...string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(routerFor(h))
	t.Cleanup(srv.Close)

	dialer := websocket.Dialer{Subprotocols: protocols, HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/graphql/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func receive(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func expectClose(t *testing.T, conn *websocket.Conn, code int) {
	t.Helper()
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, code), "expected close %d, got %v", code, err)
}

func TestWebSocketSubscribe(t *testing.T) {
	conn := dial(t, Subprotocol)
	assert.Equal(t, Subprotocol, conn.Subprotocol())

	send(t, conn, map[string]interface{}{"type": MsgConnectionInit})
	assert.Equal(t, MsgConnectionAck, receive(t, conn)["type"])

	send(t, conn, map[string]interface{}{
		"id":   "1",
		"type": MsgSubscribe,
		"payload": map[string]interface{}{
			"query":     `query ($email: Email!) { getUserByEmail(email: $email) { id email } }`,
			"variables": map[string]interface{}{"email": "a@x.com"},
		},
	})

	next := receive(t, conn)
	assert.Equal(t, MsgNext, next["type"])
	assert.Equal(t, "1", next["id"])
	payload, err := json.Marshal(next["payload"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"getUserByEmail":{"id":1,"email":"a@x.com"}}}`, string(payload))

	done := receive(t, conn)
	assert.Equal(t, MsgComplete, done["type"])
	assert.Equal(t, "1", done["id"])
}

func TestWebSocketValidationErrorMessage(t *testing.T) {
	conn := dial(t, Subprotocol)
	send(t, conn, map[string]interface{}{"type": MsgConnectionInit})
	receive(t, conn)

	send(t, conn, map[string]interface{}{
		"id":      "bad",
		"type":    MsgSubscribe,
		"payload": map[string]interface{}{"query": `{ getUserByEmail(email: "nope") { id } }`},
	})

	msg := receive(t, conn)
	assert.Equal(t, MsgError, msg["type"])
	assert.Equal(t, "bad", msg["id"])
	errs, ok := msg["payload"].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, errs)
}

func TestWebSocketPingPong(t *testing.T) {
	conn := dial(t, Subprotocol)
	send(t, conn, map[string]interface{}{"type": MsgConnectionInit})
	receive(t, conn)

	send(t, conn, map[string]interface{}{"type": MsgPing})
	assert.Equal(t, MsgPong, receive(t, conn)["type"])
}

func TestWebSocketSubscribeBeforeInit(t *testing.T) {
	conn := dial(t, Subprotocol)
	send(t, conn, map[string]interface{}{
		"id":      "1",
		"type":    MsgSubscribe,
		"payload": map[string]interface{}{"query": `{ getUserByEmail(email: "a@x.com") { id } }`},
	})
	expectClose(t, conn, CloseUnauthorized)
}

func TestWebSocketDuplicateInit(t *testing.T) {
	conn := dial(t, Subprotocol)
	send(t, conn, map[string]interface{}{"type": MsgConnectionInit})
	receive(t, conn)

	send(t, conn, map[string]interface{}{"type": MsgConnectionInit})
	expectClose(t, conn, CloseTooManyInitialisations)
}

func TestWebSocketInvalidMessage(t *testing.T) {
	conn := dial(t, Subprotocol)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	expectClose(t, conn, CloseBadRequest)
}

func TestWebSocketRequiresSubprotocol(t *testing.T) {
	conn := dial(t)
	expectClose(t, conn, CloseSubprotocolRejected)
}

func TestWebSocketInitTimeout(t *testing.T) {
	h := newTestHandler(t)
	h.initTimeout = 50 * time.Millisecond

	conn := dialHandler(t, h, Subprotocol)
	expectClose(t, conn, CloseInitTimeout)
}

func TestWebSocketInitStopsTimeout(t *testing.T) {
	h := newTestHandler(t)
	h.initTimeout = 200 * time.Millisecond

	conn := dialHandler(t, h, Subprotocol)
	send(t, conn, map[string]interface{}{"type": MsgConnectionInit})
	assert.Equal(t, MsgConnectionAck, receive(t, conn)["type"])

	time.Sleep(400 * time.Millisecond)
	send(t, conn, map[string]interface{}{"type": MsgPing})
	assert.Equal(t, MsgPong, receive(t, conn)["type"])
}

func TestWebSocketClientComplete(t *testing.T) {
	conn := dial(t, Subprotocol)
	send(t, conn, map[string]interface{}{"type": MsgConnectionInit})
	receive(t, conn)

	send(t, conn, map[string]interface{}{"id": "1", "type": MsgComplete})
	send(t, conn, map[string]interface{}{"type": MsgPing})

	// The complete produces no reply, so the next frame is the pong.
	assert.Equal(t, MsgPong, receive(t, conn)["type"])
}
