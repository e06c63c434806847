package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/articlekit/enrich/internal/model"
	"github.com/articlekit/enrich/internal/storage"
)

const (
	maxTitleLen     = 255
	maxSourceURLLen = 500
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	articles, err := s.storage.List(r.Context())
	if err != nil {
		s.logger.Error("list articles failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.respondJSON(w, http.StatusOK, articles)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.articleID(w, r)
	if !ok {
		return
	}

	article, err := s.storage.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("get article failed", zap.Int("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.respondJSON(w, http.StatusOK, article)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.articleID(w, r)
	if !ok {
		return
	}

	var update model.ArticleUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := validateUpdate(update); msg != "" {
		s.respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	article, err := s.storage.Update(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("update article failed", zap.Int("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.logger.Info("article updated",
		zap.Int("id", id),
		zap.Bool("enhanced", article.IsProcessed()),
		zap.Int("references", len(article.References)))
	s.respondJSON(w, http.StatusOK, article)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.articleID(w, r)
	if !ok {
		return
	}

	if err := s.storage.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("delete article failed", zap.Int("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.logger.Info("article deleted", zap.Int("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// validateUpdate mirrors the store's validation rules. Returns an empty
// string when the update is acceptable.
func validateUpdate(update model.ArticleUpdate) string {
	if update.Title != nil {
		if *update.Title == "" {
			return "title must not be empty"
		}
		if len(*update.Title) > maxTitleLen {
			return "title must not exceed 255 characters"
		}
	}
	if update.SourceURL != nil && len(*update.SourceURL) > maxSourceURLLen {
		return "source_url must not exceed 500 characters"
	}
	return ""
}

func (s *Server) articleID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid article id")
		return 0, false
	}
	return id, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
