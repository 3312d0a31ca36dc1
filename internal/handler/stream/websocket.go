package stream

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/user-lookup/backend/internal/graph"
)

// Subprotocol is the WebSocket subprotocol spoken on /graphql/ws.
const Subprotocol = "graphql-transport-ws"

// Message types of the graphql-transport-ws protocol.
const (
	MsgConnectionInit = "connection_init"
	MsgConnectionAck  = "connection_ack"
	MsgPing           = "ping"
	MsgPong           = "pong"
	MsgSubscribe      = "subscribe"
	MsgNext           = "next"
	MsgError          = "error"
	MsgComplete       = "complete"
)

// Close codes of the graphql-transport-ws protocol.
const (
	CloseBadRequest             = 4400
	CloseUnauthorized           = 4401
	CloseSubprotocolRejected    = 4406
	CloseInitTimeout            = 4408
	CloseTooManyInitialisations = 4429
)

type inboundMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type outgoingMessage struct {
	ID      string      `json:"id,omitempty"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// handleWebSocket runs one connection. Every message is handled on this
// goroutine, so writes never race.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithField("component", "ws").WithError(err).Warn("upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithFields(logrus.Fields{"component": "ws", "remote": r.RemoteAddr})
	if conn.Subprotocol() != Subprotocol {
		closeWith(conn, CloseSubprotocolRejected, "Subprotocol not acceptable")
		return
	}

	acknowledged := false
	_ = conn.SetReadDeadline(time.Now().Add(h.initTimeout))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var netErr net.Error
			if !acknowledged && errors.As(err, &netErr) && netErr.Timeout() {
				closeWith(conn, CloseInitTimeout, "Connection initialisation timeout")
				return
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("connection closed")
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			closeWith(conn, CloseBadRequest, "Invalid message received")
			return
		}

		switch msg.Type {
		case MsgConnectionInit:
			if acknowledged {
				closeWith(conn, CloseTooManyInitialisations, "Too many initialisation requests")
				return
			}
			acknowledged = true
			_ = conn.SetReadDeadline(time.Time{})
			if err := conn.WriteJSON(outgoingMessage{Type: MsgConnectionAck}); err != nil {
				return
			}
		case MsgPing:
			if err := conn.WriteJSON(outgoingMessage{Type: MsgPong}); err != nil {
				return
			}
		case MsgPong, MsgComplete:
			// Nothing is long-running, so a client complete has nothing to cancel.
		case MsgSubscribe:
			if !acknowledged {
				closeWith(conn, CloseUnauthorized, "Unauthorized")
				return
			}
			var req graph.Request
			if msg.ID == "" || json.Unmarshal(msg.Payload, &req) != nil || req.Query == "" {
				closeWith(conn, CloseBadRequest, "Invalid message received")
				return
			}
			if err := h.runOperation(r, conn, msg.ID, req); err != nil {
				log.WithError(err).Debug("write failed")
				return
			}
		default:
			closeWith(conn, CloseBadRequest, "Invalid message received")
			return
		}
	}
}

// runOperation executes req and reports it. Requests rejected before
// execution (data is nil) get a single "error" message; everything else
// gets "next" followed by "complete".
func (h *Handler) runOperation(r *http.Request, conn *websocket.Conn, id string, req graph.Request) error {
	result := h.exec.Execute(r.Context(), req)
	if result.Data == nil && len(result.Errors) > 0 {
		return conn.WriteJSON(outgoingMessage{ID: id, Type: MsgError, Payload: result.Errors})
	}

	if err := conn.WriteJSON(outgoingMessage{ID: id, Type: MsgNext, Payload: result}); err != nil {
		return err
	}
	return conn.WriteJSON(outgoingMessage{ID: id, Type: MsgComplete})
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
