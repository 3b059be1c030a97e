// Package handler exposes the speller over HTTP/JSON.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller"
	apperrors "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/logger"
)

// maxBodyBytes bounds POST /api/v1/words.
const maxBodyBytes = 4 << 20

type Handler struct {
	service *speller.Service
	logger  *slog.Logger
}

func New(service *speller.Service) *Handler {
	return &Handler{
		service: service,
		logger:  slog.Default().With("component", "speller-handler"),
	}
}

// Register mounts the lookup routes on mux and the state-changing routes
// behind admin.
func (h *Handler) Register(mux *http.ServeMux, admin func(http.Handler) http.Handler) {
	if admin == nil {
		admin = func(next http.Handler) http.Handler { return next }
	}
	mux.HandleFunc("GET /api/v1/match", h.Match)
	mux.HandleFunc("GET /api/v1/check", h.Check)
	mux.HandleFunc("GET /api/v1/contains", h.Contains)
	mux.HandleFunc("GET /api/v1/dictionary/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.Handle("POST /api/v1/words", admin(http.HandlerFunc(h.AddWords)))
	mux.Handle("POST /api/v1/cache/invalidate", admin(http.HandlerFunc(h.CacheInvalidate)))
}

// Match serves GET /api/v1/match?w=<word>&d=<distance>.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	word, distance, err := lookupParams(r)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	resp, err := h.service.BestMatch(r.Context(), word, distance)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Check serves GET /api/v1/check?w=<word>&d=<distance>.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	word, distance, err := lookupParams(r)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	resp, err := h.service.HasMatches(r.Context(), word, distance)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Contains serves GET /api/v1/contains?w=<word>.
func (h *Handler) Contains(w http.ResponseWriter, r *http.Request) {
	word, ok := r.URL.Query()["w"]
	if !ok {
		h.writeAppError(w, r, fmt.Errorf("%w: query parameter 'w' is required", apperrors.ErrInvalidInput))
		return
	}
	resp, err := h.service.Contains(r.Context(), word[0])
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type addWordsRequest struct {
	Words []string `json:"words"`
}

// AddWords serves POST /api/v1/words with a {"words": [...]} body.
func (h *Handler) AddWords(w http.ResponseWriter, r *http.Request) {
	var req addWordsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.writeAppError(w, r, fmt.Errorf("%w: invalid JSON body: %v", apperrors.ErrInvalidInput, err))
		return
	}
	if len(req.Words) == 0 {
		h.writeAppError(w, r, fmt.Errorf("%w: 'words' must not be empty", apperrors.ErrInvalidInput))
		return
	}
	resp, err := h.service.AddWords(r.Context(), req.Words, "http")
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Stats())
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if !h.service.CacheEnabled() {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.service.CacheStats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if !h.service.CacheEnabled() {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	deleted, err := h.service.InvalidateCache(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

// lookupParams reads w and d. w may be empty but must be present; a missing
// d means the service default.
func lookupParams(r *http.Request) (string, int, error) {
	q := r.URL.Query()
	word, ok := q["w"]
	if !ok {
		return "", 0, fmt.Errorf("%w: query parameter 'w' is required", apperrors.ErrInvalidInput)
	}
	distance := -1
	if s := q.Get("d"); s != "" {
		d, err := strconv.Atoi(s)
		if err != nil || d < 0 {
			return "", 0, fmt.Errorf("%w: 'd' must be a non-negative integer", apperrors.ErrInvalidDistance)
		}
		distance = d
	}
	return word[0], distance, nil
}

func (h *Handler) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		if !errors.Is(err, apperrors.ErrSourceUnavailable) && !errors.Is(err, apperrors.ErrDictionaryEmpty) {
			h.writeError(w, status, "internal error")
			return
		}
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
