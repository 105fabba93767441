// Package http exposes a Runtime over an embeddable HTTP handler, letting a
// hosted editor or preview frontend evaluate expressions, patch the context
// and run actions remotely.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formworks/bindery"
	"github.com/formworks/bindery/internal/logging"
	"github.com/formworks/bindery/pkg/domain"
)

// evaluateRequest carries either a single expression or a template.
type evaluateRequest struct {
	Expression string `json:"expression,omitempty"`
	Template   string `json:"template,omitempty"`
}

type evaluateResponse struct {
	Value    any    `json:"value,omitempty"`
	Rendered string `json:"rendered,omitempty"`
	Valid    bool   `json:"valid"`
	Error    string `json:"error,omitempty"`
}

type contextRequest struct {
	Widgets map[string]any `json:"widgets,omitempty"`
	Actions map[string]any `json:"actions,omitempty"`
	Page    map[string]any `json:"page,omitempty"`
	Store   map[string]any `json:"store,omitempty"`
}

type runRequest struct {
	Params map[string]any `json:"params,omitempty"`
}

// Server bridges HTTP requests to a Runtime.
type Server struct {
	runtime *bindery.Runtime
	logger  *slog.Logger
}

// NewHandler creates an HTTP handler around the runtime. A nil logger
// disables request logging.
func NewHandler(rt *bindery.Runtime, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{runtime: rt, logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Post("/evaluate", s.handleEvaluate)
	r.Post("/context", s.handleContext)
	r.Post("/actions/{id}/run", s.handleRun)
	r.Get("/actions/{id}/result", s.handleResult)

	return enableCORS(r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": bindery.Version,
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	switch {
	case req.Expression != "":
		value, err := s.runtime.EvaluateStrict(req.Expression)
		if err != nil {
			writeJSON(w, http.StatusOK, evaluateResponse{Valid: false, Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, evaluateResponse{Valid: true, Value: value})

	case req.Template != "":
		rendered, err := s.runtime.EvaluateTemplateStrict(req.Template)
		if err != nil {
			writeJSON(w, http.StatusOK, evaluateResponse{Valid: false, Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, evaluateResponse{Valid: true, Rendered: rendered})

	default:
		http.Error(w, "expression or template is required", http.StatusBadRequest)
	}
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	s.runtime.UpdateContext(domain.ContextPatch{
		Widgets: req.Widgets,
		Actions: req.Actions,
		Page:    req.Page,
		Store:   req.Store,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req runRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
	}

	result := s.runtime.RunAction(r.Context(), id, req.Params)
	s.logger.Debug("Action executed over HTTP", "action_id", id, "success", result.Success)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, ok := s.runtime.ActionResult(id)
	if !ok {
		http.Error(w, "no result for action "+id, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
