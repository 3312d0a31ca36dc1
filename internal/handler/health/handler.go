package health

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/user-lookup/backend/internal/model/user"
	"github.com/zhouzirui/user-lookup/backend/pkg/utils"
)

// Handler 健康检查处理器
type Handler struct {
	users user.Store
}

// New 创建健康检查处理器
func New(users user.Store) *Handler {
	return &Handler{users: users}
}

// RegisterRoutes 注册健康检查路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"records":  h.users.Len(),
		"revision": h.users.Revision(),
	})
}
