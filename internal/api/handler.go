package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/etflens/etflens/internal/domain"
	"github.com/etflens/etflens/internal/portfolio"
	"github.com/etflens/etflens/internal/snapshot"
	"github.com/etflens/etflens/internal/store"
)

const maxSnapshotLimit = 365

// Handler provides HTTP endpoints for the portfolio API.
type Handler struct {
	portfolios   *portfolio.Service
	snapshots    *snapshot.Service
	rankingLimit int
}

// NewHandler creates a new API handler. rankingLimit applies when a ranking
// request carries no limit parameter.
func NewHandler(portfolios *portfolio.Service, snapshots *snapshot.Service, rankingLimit int) *Handler {
	return &Handler{portfolios: portfolios, snapshots: snapshots, rankingLimit: rankingLimit}
}

// GetLatestSnapshot handles GET /api/v1/users/{user}/snapshots/latest.
func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	s, err := h.snapshots.GetLatest(r.Context(), user)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no snapshots found")
			return
		}
		slog.Error("failed to get latest snapshot", "user", user, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GetSnapshotByDate handles GET /api/v1/users/{user}/snapshots/{date}.
func (h *Handler) GetSnapshotByDate(w http.ResponseWriter, r *http.Request) {
	user, dateStr := r.PathValue("user"), r.PathValue("date")
	date, err := domain.ParseDate(dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	s, err := h.snapshots.GetByDate(r.Context(), user, date)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "snapshot not found for date")
			return
		}
		slog.Error("failed to get snapshot by date", "user", user, "date", dateStr, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListSnapshots handles GET /api/v1/users/{user}/snapshots.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	limit := snapshot.DefaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxSnapshotLimit)
		}
	}

	snapshots, err := h.snapshots.List(r.Context(), user, limit)
	if err != nil {
		slog.Error("failed to list snapshots", "user", user, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if snapshots == nil {
		snapshots = []snapshot.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snapshots)
}

// GenerateSnapshot handles POST /api/v1/users/{user}/snapshots/generate.
// An optional date query parameter backfills a specific day.
func (h *Handler) GenerateSnapshot(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	date := domain.Today()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := domain.ParseDate(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	data, err := h.snapshots.Generate(r.Context(), user, date)
	if err != nil {
		slog.Error("failed to generate snapshot", "user", user, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate snapshot")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// writeServiceError maps service errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, snapshot.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		slog.Error("request failed", "operation", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
