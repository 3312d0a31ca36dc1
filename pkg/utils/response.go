package utils

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// ErrorBody is the JSON shape of every non-GraphQL error response.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

// RespondError 发送错误响应，并带上 chi 分配的请求ID以便与访问日志对应。
func RespondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	reqID := middleware.GetReqID(r.Context())
	logrus.WithFields(logrus.Fields{
		"status":     status,
		"path":       r.URL.Path,
		"request_id": reqID,
	}).Debug(message)

	RespondJSON(w, status, ErrorBody{Error: message, RequestID: reqID})
}
