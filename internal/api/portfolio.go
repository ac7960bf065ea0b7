package api

import (
	"net/http"
	"strconv"

	"github.com/samber/mo"

	"github.com/etflens/etflens/internal/domain"
	"github.com/etflens/etflens/internal/portfolio"
)

// ListETFs handles GET /api/v1/etfs.
func (h *Handler) ListETFs(w http.ResponseWriter, r *http.Request) {
	etfs, err := h.portfolios.ETFs(r.Context())
	if err != nil {
		writeServiceError(w, "list etfs", err)
		return
	}
	writeJSON(w, http.StatusOK, etfs)
}

// GetETF handles GET /api/v1/etfs/{ticker}.
func (h *Handler) GetETF(w http.ResponseWriter, r *http.Request) {
	etf, err := h.portfolios.ETF(r.Context(), r.PathValue("ticker"))
	if err != nil {
		writeServiceError(w, "get etf", err)
		return
	}
	writeJSON(w, http.StatusOK, etf)
}

// RankETFs handles GET /api/v1/etfs/ranking?horizon=1m&limit=10.
// limit=0 returns the whole catalog.
func (h *Handler) RankETFs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	horizon, err := domain.ParseReturnHorizon(q.Get("horizon"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := h.rankingLimit
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit, expected a non-negative integer")
			return
		}
		limit = n
	}

	ranking, err := h.portfolios.Ranking(r.Context(), horizon, limit)
	if err != nil {
		writeServiceError(w, "rank etfs", err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

// GetPositions handles GET /api/v1/users/{user}/positions.
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	result, err := h.portfolios.Positions(r.Context(), r.PathValue("user"))
	if err != nil {
		writeServiceError(w, "positions", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetSummary handles GET /api/v1/users/{user}/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.portfolios.Summary(r.Context(), r.PathValue("user"))
	if err != nil {
		writeServiceError(w, "summary", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetAllocation handles GET /api/v1/users/{user}/allocation/{dimension}.
func (h *Handler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	dim, err := domain.ParseDimension(r.PathValue("dimension"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.portfolios.Allocation(r.Context(), r.PathValue("user"), dim)
	if err != nil {
		writeServiceError(w, "allocation", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetDividendCalendar handles GET /api/v1/users/{user}/dividends/calendar.
func (h *Handler) GetDividendCalendar(w http.ResponseWriter, r *http.Request) {
	query, err := parseCalendarQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.portfolios.Calendar(r.Context(), r.PathValue("user"), query)
	if err != nil {
		writeServiceError(w, "dividend calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseCalendarQuery(r *http.Request) (portfolio.CalendarQuery, error) {
	q := r.URL.Query()
	var query portfolio.CalendarQuery

	if v := q.Get("held"); v != "" {
		held, err := strconv.ParseBool(v)
		if err != nil {
			return query, &domain.InvalidInputError{Field: "held", Reason: "expected true or false"}
		}
		query.HeldOnly = held
	}

	var err error
	if query.From, err = optionalDate(q.Get("from"), "from"); err != nil {
		return query, err
	}
	if query.To, err = optionalDate(q.Get("to"), "to"); err != nil {
		return query, err
	}
	return query, nil
}

func optionalDate(v, field string) (mo.Option[domain.Date], error) {
	if v == "" {
		return mo.None[domain.Date](), nil
	}
	d, err := domain.ParseDate(v)
	if err != nil {
		return mo.None[domain.Date](), &domain.InvalidInputError{Field: field, Reason: "expected YYYY-MM-DD"}
	}
	return mo.Some(d), nil
}
