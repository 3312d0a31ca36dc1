package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/user-lookup/backend/internal/graph"
	"github.com/zhouzirui/user-lookup/backend/internal/handler/query"
	"github.com/zhouzirui/user-lookup/backend/pkg/utils"
)

// Executor runs a GraphQL request.
type Executor interface {
	Execute(ctx context.Context, req graph.Request) *graphql.Result
}

// Handler serves GraphQL results over Server-Sent Events and WebSocket.
type Handler struct {
	exec        Executor
	log         logrus.FieldLogger
	upgrader    websocket.Upgrader
	initTimeout time.Duration
}

// New creates a stream handler
func New(exec Executor, log logrus.FieldLogger) *Handler {
	return &Handler{
		exec: exec,
		log:  log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Subprotocols:    []string{Subprotocol},
		},
		initTimeout: 3 * time.Second,
	}
}

// RegisterRoutes 注册流式路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/graphql/stream", h.handleSSE)
	r.Post("/graphql/stream", h.handleSSE)
	r.Get("/graphql/ws", h.handleWebSocket)
}

// handleSSE answers in single-result mode: one "next" event carrying the
// execution result followed by "complete".
func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	req, err := query.ParseRequest(w, r)
	if err != nil {
		utils.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	result := h.exec.Execute(r.Context(), req)
	if err := utils.SendSSEEvent(w, flusher, "next", result); err != nil {
		h.log.WithField("component", "sse").WithError(err).Warn("failed to send result")
		return
	}
	if err := utils.SendSSEEvent(w, flusher, "complete", nil); err != nil {
		h.log.WithField("component", "sse").WithError(err).Warn("failed to send complete")
	}
}
