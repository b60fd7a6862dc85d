// Package httpapi serves the office API that field and office clients talk to.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/alexanderramin/fieldbridge/internal/backend"
	"github.com/alexanderramin/fieldbridge/internal/domain"
)

// Server exposes a backend.Backend over HTTP.
type Server struct {
	backend backend.Backend
	logger  *slog.Logger
}

func NewServer(b backend.Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{backend: b, logger: logger}
}

// Handler builds the router. Every route lives under backend.APIPrefix.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix(backend.APIPrefix).Subrouter()

	api.HandleFunc("/quote-requests", s.listQuotes).Methods(http.MethodGet)
	api.HandleFunc("/quote-requests", s.createQuote).Methods(http.MethodPost)
	api.HandleFunc("/quote-requests/{id}", s.getQuote).Methods(http.MethodGet)
	api.HandleFunc("/quote-requests/{id}", s.updateQuote).Methods(http.MethodPatch)
	api.HandleFunc("/quote-requests/{id}/assign", s.assignQuote).Methods(http.MethodPost)
	api.HandleFunc("/quote-requests/{id}/convert", s.convertQuote).Methods(http.MethodPost)

	api.HandleFunc("/projects", s.listProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects", s.createProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}", s.getProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/publish", s.publishProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/rfis", s.listRFIs).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/constraints", s.listConstraints).Methods(http.MethodGet)

	api.HandleFunc("/tasks", s.listTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", s.createTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}", s.getTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}/{action:acknowledge|start|complete|block|unblock}", s.taskAction).Methods(http.MethodPost)

	api.HandleFunc("/rfis", s.createRFI).Methods(http.MethodPost)
	api.HandleFunc("/constraints", s.createConstraint).Methods(http.MethodPost)
	api.HandleFunc("/daily-reports", s.listDailyReports).Methods(http.MethodGet)
	api.HandleFunc("/daily-reports", s.createDailyReport).Methods(http.MethodPost)

	api.HandleFunc("/queue/stats", s.queueStats).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.Use(s.logRequests)
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.logger.Info("http_request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"latency_ms", time.Since(start).Milliseconds(),
			"user_id", r.Header.Get(backend.HeaderUserID),
		)
	})
}

// actorFrom reads the caller identity forwarded by the client.
func actorFrom(r *http.Request) domain.Actor {
	return domain.Actor{
		UserID: r.Header.Get(backend.HeaderUserID),
		Name:   r.Header.Get(backend.HeaderUserName),
		Role:   domain.Role(r.Header.Get(backend.HeaderUserRole)),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the shared error taxonomy onto status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, backend.CodeInternal
	switch {
	case domain.IsValidation(err):
		status, code = http.StatusUnprocessableEntity, backend.CodeValidation
	case domain.IsInvalidTransition(err):
		status, code = http.StatusConflict, backend.CodeInvalidTransition
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, backend.CodeNotFound
	case errors.Is(err, domain.ErrForbidden):
		status, code = http.StatusForbidden, backend.CodeForbidden
	}
	detail := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		detail = "internal error"
	}
	writeJSON(w, status, backend.ErrorJSON{Code: code, Detail: detail})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("body", "malformed JSON: "+err.Error())
	}
	return nil
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer")
	}
	return n, nil
}

func queryDate(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be a YYYY-MM-DD date")
	}
	return &t, nil
}

func typedValues[S ~string](vals []string) []S {
	out := make([]S, 0, len(vals))
	for _, v := range vals {
		out = append(out, S(v))
	}
	return out
}
