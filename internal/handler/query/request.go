package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/zhouzirui/user-lookup/backend/internal/graph"
)

const maxBodyBytes = 1 << 20

// ErrMissingQuery is returned when a request carries no query document.
var ErrMissingQuery = errors.New("query is required")

// ParseRequest extracts a GraphQL request from URL parameters (GET) or the
// body (POST, application/json or application/graphql).
func ParseRequest(w http.ResponseWriter, r *http.Request) (graph.Request, error) {
	var req graph.Request

	switch r.Method {
	case http.MethodGet:
		params := r.URL.Query()
		req.Query = params.Get("query")
		req.OperationName = params.Get("operationName")
		if raw := params.Get("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				return graph.Request{}, fmt.Errorf("invalid variables: %w", err)
			}
		}
	case http.MethodPost:
		body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

		if mediaType == "application/graphql" {
			data, err := io.ReadAll(body)
			if err != nil {
				return graph.Request{}, fmt.Errorf("read body: %w", err)
			}
			req.Query = string(data)
			break
		}

		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return graph.Request{}, fmt.Errorf("invalid request body: %w", err)
		}
	default:
		return graph.Request{}, fmt.Errorf("method %s not allowed", r.Method)
	}

	if strings.TrimSpace(req.Query) == "" {
		return graph.Request{}, ErrMissingQuery
	}
	return req, nil
}
