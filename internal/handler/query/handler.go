package query

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/graphql-go/graphql"

	"github.com/zhouzirui/user-lookup/backend/internal/graph"
	"github.com/zhouzirui/user-lookup/backend/pkg/utils"
)

// Executor runs a GraphQL request.
type Executor interface {
	Execute(ctx context.Context, req graph.Request) *graphql.Result
}

// Handler GraphQL HTTP处理器
type Handler struct {
	exec Executor
}

// New 创建GraphQL处理器
func New(exec Executor) *Handler {
	return &Handler{exec: exec}
}

// RegisterRoutes 注册GraphQL路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/graphql", h.handleQuery)
	r.Post("/graphql", h.handleQuery)
}

// handleQuery executes the request and always answers 200 once execution
// ran; query-level failures are reported in the "errors" member.
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(w, r)
	if err != nil {
		utils.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result := h.exec.Execute(r.Context(), req)
	utils.RespondJSON(w, http.StatusOK, result)
}
