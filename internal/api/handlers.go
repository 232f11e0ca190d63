package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voxgate/voxgate/internal/payload"
)

// handleHealthz handles GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthzResponse{
		Status:         "ok",
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
		StorageBackend: s.config.StorageBackend,
	})
}

// handleLatest handles GET /conversations/latest.
// An empty store is a normal answer, not an error.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	raw, err := s.store.Latest(r.Context())
	if err != nil {
		s.logger.Error("failed to read latest payload", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read payload")
		return
	}

	resp := LatestResponse{Transcript: []payload.Turn{}}
	if raw != nil {
		env, err := payload.Parse(raw)
		if err != nil {
			s.logger.Error("stored payload failed to decode", "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to read payload")
			return
		}
		if len(env.Data.Transcript) > 0 {
			resp.Transcript = env.Data.Transcript
		}
		resp.Summary = env.Summary()
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleList handles GET /conversations/.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List(r.Context(), listLimit)
	if err != nil {
		s.logger.Error("failed to list payloads", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list payloads")
		return
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	s.writeJSON(w, http.StatusOK, ListResponse{Items: items})
}

// handleGet handles GET /conversations/{conversationID}.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")

	raw, err := s.store.GetByConversation(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to read payload", "conversation_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to read payload")
		return
	}
	if raw == nil {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// writeJSON sends a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError sends a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
