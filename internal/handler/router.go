package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/user-lookup/backend/internal/graph"
	"github.com/zhouzirui/user-lookup/backend/internal/handler/health"
	"github.com/zhouzirui/user-lookup/backend/internal/handler/query"
	"github.com/zhouzirui/user-lookup/backend/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/user-lookup/backend/internal/middleware"
	"github.com/zhouzirui/user-lookup/backend/internal/model/user"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(users user.Store, exec *graph.Executor, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger(log))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	health.New(users).RegisterRoutes(r)
	query.New(exec).RegisterRoutes(r)
	stream.New(exec, log).RegisterRoutes(r)

	return r
}
