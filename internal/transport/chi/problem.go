package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/genomebank/searchgw/internal/domain"
	"github.com/genomebank/searchgw/internal/logger"
)

// Problem is the uniform error response body (RFC 7807 shape).
type Problem struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail"`
	Instance  string `json:"instance"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId"`
}

var statusTitles = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusNotFound:            "Not Found",
	http.StatusUnprocessableEntity: "Unprocessable Entity",
	http.StatusInternalServerError: "Internal Server Error",
	http.StatusNotImplemented:      "Not Implemented",
}

func statusTitle(status int) string {
	if title, ok := statusTitles[status]; ok {
		return title
	}
	if title := http.StatusText(status); title != "" {
		return title
	}
	return "Error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	p := Problem{
		Type:      "about:blank",
		Title:     statusTitle(status),
		Status:    status,
		Detail:    detail,
		Instance:  r.URL.Path,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: RequestIDFromContext(r.Context()),
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, r *http.Request, err error) bool

// sentinelHandler returns an errorHandler that matches one sentinel
// error and reports the error text as the problem detail.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeProblem(w, r, status, err.Error())
		return true
	}
}

// domainErrorHandlers map the error taxonomy to HTTP statuses. Deep
// paging precedes the generic parameter check: a well-formed request
// breaking the paging rule is a 400, not a 422.
var domainErrorHandlers = []errorHandler{
	sentinelHandler(domain.ErrDeepPaging, http.StatusBadRequest),
	sentinelHandler(domain.ErrInvalidParameter, http.StatusUnprocessableEntity),
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
}

// handleError translates a domain error into a problem response.
// Unclassified errors, engine failures included, become a 500 with a
// generic detail; the underlying error text stays in the log only.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	for _, h := range domainErrorHandlers {
		if h(w, r, err) {
			log.Warn("request failed", zap.Error(err))
			return
		}
	}

	log.Error("internal error", zap.Error(err))
	writeProblem(w, r, http.StatusInternalServerError, "An unexpected error occurred.")
}
