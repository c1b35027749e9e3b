package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datachat-io/datachat/internal/chat"
	"github.com/datachat-io/datachat/internal/importer"
	"github.com/datachat-io/datachat/internal/model"
	"github.com/datachat-io/datachat/internal/registry"
)

// snapshot reloads the registry for one request, so freshly imported
// datasets appear without a restart.
func (s *Server) snapshot(r *http.Request) (*registry.Snapshot, error) {
	return registry.Load(r.Context(), s.store)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"databases": snap.Len(),
	})
}

func (s *Server) handleListDatabases(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	datasets := snap.Datasets()
	if datasets == nil {
		datasets = []model.Dataset{}
	}
	respondJSON(w, http.StatusOK, datasets)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	entries, err := importer.ScanDir(s.sourceDir, snap)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, eris.Wrap(err, "server: decode chat request"))
		return
	}

	snap, err := s.snapshot(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	resp, err := s.chat.Handle(r.Context(), snap, req)
	if err != nil {
		if eris.Is(err, chat.ErrEmptyMessage) {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// rawQueryRequest is the body of POST /api/query.
type rawQueryRequest struct {
	Database string `json:"database"`
	SQL      string `json:"sql"`
}

func (s *Server) handleRawQuery(w http.ResponseWriter, r *http.Request) {
	var req rawQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, eris.Wrap(err, "server: decode query request"))
		return
	}

	snap, err := s.snapshot(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	results, err := s.executor.Execute(r.Context(), snap, req.Database, req.SQL)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := s.store.ListConversations(r.Context(), 50)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, convs)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.store.ListMessages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	queries, err := s.store.CountUserMessages(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	convs, err := s.store.CountConversations(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, model.Stats{
		TotalDatabases:     snap.Len(),
		TotalRecords:       snap.TotalRows(),
		TotalQueries:       queries,
		TotalConversations: convs,
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	zap.L().Warn("server: request failed", zap.Int("status", status), zap.Error(err))
	respondJSON(w, status, map[string]string{"error": eris.Cause(err).Error()})
}
