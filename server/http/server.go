package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	toolhandler "github.com/docqa/docqa/tool_handler"
)

// Server is a thin JSON surface over the tool registry. It holds no pipeline
// logic; any transport could replace it.
type Server struct {
	registry *toolhandler.Registry
	router   *mux.Router
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version": "1.0",
		"tools":   s.registry.Specs(),
	})
}

func (s *Server) invokeTool(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	defer r.Body.Close()

	args := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
	}

	result, err := s.registry.Invoke(r.Context(), name, args)
	if err != nil {
		slog.ErrorContext(r.Context(), "tool invocation failed", "tool", name, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result": result,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"error": detail})
}

func NewServer(registry *toolhandler.Registry) *Server {
	s := &Server{
		registry: registry,
	}

	router := mux.NewRouter()
	router.HandleFunc("/tools", s.listTools).Methods(http.MethodGet)
	router.HandleFunc("/tools/{name}", s.invokeTool).Methods(http.MethodPost)

	s.router = router

	return s
}
