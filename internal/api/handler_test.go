package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
	"github.com/etflens/etflens/internal/portfolio"
	"github.com/etflens/etflens/internal/snapshot"
	"github.com/etflens/etflens/internal/store"
)

type mockCatalog struct{ etfs []domain.ETF }

func (m *mockCatalog) ListETFs(_ context.Context) ([]domain.ETF, error) { return m.etfs, nil }

func (m *mockCatalog) GetETFByTicker(_ context.Context, ticker string) (domain.ETF, error) {
	for _, e := range m.etfs {
		if e.Ticker == ticker {
			return e, nil
		}
	}
	return domain.ETF{}, store.ErrNotFound
}

type mockPositions struct{ positions []domain.Position }

func (m *mockPositions) ListPositions(_ context.Context, userID string) ([]domain.Position, error) {
	if userID != "default" {
		return nil, nil
	}
	return m.positions, nil
}

type mockDividends struct{ dividends []domain.Dividend }

func (m *mockDividends) ListDividends(_ context.Context) ([]domain.Dividend, error) {
	return m.dividends, nil
}

type mockSnapshotRepo struct {
	snapshots     []snapshot.Snapshot
	saved         json.RawMessage
	savedDate     domain.Date
	lastListLimit int
}

func (m *mockSnapshotRepo) Save(_ context.Context, _ string, date domain.Date, data json.RawMessage) error {
	m.saved, m.savedDate = data, date
	return nil
}

func (m *mockSnapshotRepo) GetLatest(_ context.Context, _ string) (snapshot.Snapshot, error) {
	if len(m.snapshots) == 0 {
		return snapshot.Snapshot{}, snapshot.ErrNotFound
	}
	return m.snapshots[0], nil
}

func (m *mockSnapshotRepo) GetByDate(_ context.Context, _ string, date domain.Date) (snapshot.Snapshot, error) {
	for _, s := range m.snapshots {
		if s.SnapshotDate.Equal(date) {
			return s, nil
		}
	}
	return snapshot.Snapshot{}, snapshot.ErrNotFound
}

func (m *mockSnapshotRepo) List(_ context.Context, _ string, limit int) ([]snapshot.Snapshot, error) {
	m.lastListLimit = limit
	return m.snapshots[:min(limit, len(m.snapshots))], nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestMux(t *testing.T, repo *mockSnapshotRepo, adminKey string) http.Handler {
	t.Helper()
	catalog := &mockCatalog{etfs: []domain.ETF{
		{ID: 1, Ticker: "SCHD", Name: "Schwab US Dividend", CurrentPrice: dec("120"), DividendYield: mo.Some(dec("0.035")),
			Sector: "Dividend", Region: "US", Returns: domain.Returns{Month: dec("0.02")}},
		{ID: 2, Ticker: "JEPI", Name: "JPMorgan Equity Premium", CurrentPrice: dec("60"), DividendYield: mo.Some(dec("0.07")),
			Sector: "Covered Call", Region: "US", Returns: domain.Returns{Month: dec("0.01")}},
		{ID: 3, Ticker: "VYM", Name: "Vanguard High Dividend", CurrentPrice: dec("100"),
			Sector: "Dividend", Region: "US", Returns: domain.Returns{Month: dec("0.03")}},
	}}
	positions := &mockPositions{positions: []domain.Position{
		{ID: 1, UserID: "default", ETFID: 1, Shares: dec("10"), AvgPrice: dec("100"), TotalInvested: dec("1000")},
		{ID: 2, UserID: "default", ETFID: 999, Shares: dec("5"), AvgPrice: dec("10"), TotalInvested: dec("50")},
	}}
	dividends := &mockDividends{dividends: []domain.Dividend{
		{ID: 1, ETFID: 1, ExDividendDate: domain.MustParseDate("2024-03-01"), PaymentDate: domain.MustParseDate("2024-03-15"), DividendPerShare: dec("0.35"), Frequency: domain.FrequencyQuarterly},
		{ID: 2, ETFID: 2, ExDividendDate: domain.MustParseDate("2024-01-15"), PaymentDate: domain.MustParseDate("2024-01-29"), DividendPerShare: dec("0.3"), Frequency: domain.FrequencyMonthly},
	}}

	portfolios := portfolio.NewService(catalog, positions, dividends, portfolio.Options{})
	snapshots := snapshot.NewService(portfolios, repo)
	return NewMux(NewHandler(portfolios, snapshots, 2), adminKey)
}

func serve(t *testing.T, h http.Handler, method, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestStatusCodes(t *testing.T) {
	mux := newTestMux(t, &mockSnapshotRepo{}, "")

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"catalog", "/api/v1/etfs", http.StatusOK},
		{"etf", "/api/v1/etfs/SCHD", http.StatusOK},
		{"unknown etf", "/api/v1/etfs/NOPE", http.StatusNotFound},
		{"ranking", "/api/v1/etfs/ranking?horizon=1m", http.StatusOK},
		{"ranking bad horizon", "/api/v1/etfs/ranking?horizon=5y", http.StatusBadRequest},
		{"ranking missing horizon", "/api/v1/etfs/ranking", http.StatusBadRequest},
		{"ranking bad limit", "/api/v1/etfs/ranking?horizon=1m&limit=x", http.StatusBadRequest},
		{"positions", "/api/v1/users/default/positions", http.StatusOK},
		{"summary", "/api/v1/users/default/summary", http.StatusOK},
		{"allocation", "/api/v1/users/default/allocation/sector", http.StatusOK},
		{"allocation bad dimension", "/api/v1/users/default/allocation/style", http.StatusBadRequest},
		{"calendar", "/api/v1/users/default/dividends/calendar", http.StatusOK},
		{"calendar bad held", "/api/v1/users/default/dividends/calendar?held=maybe", http.StatusBadRequest},
		{"calendar bad from", "/api/v1/users/default/dividends/calendar?from=01/02/2024", http.StatusBadRequest},
		{"latest snapshot missing", "/api/v1/users/default/snapshots/latest", http.StatusNotFound},
		{"snapshot bad date", "/api/v1/users/default/snapshots/not-a-date", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, mux, http.MethodGet, tt.target)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestGetSummary(t *testing.T) {
	mux := newTestMux(t, &mockSnapshotRepo{}, "")

	w := serve(t, mux, http.MethodGet, "/api/v1/users/default/summary")

	var got struct {
		Summary struct {
			TotalInvested string `json:"total_invested"`
			TotalValue    string `json:"total_value"`
			ProfitRate    string `json:"profit_rate"`
		} `json:"summary"`
		Diagnostics struct {
			SkippedCount int `json:"skipped_count"`
		} `json:"diagnostics"`
		StaleTickers []string `json:"stale_tickers"`
	}
	decode(t, w, &got)

	if got.Summary.TotalInvested != "1000" || got.Summary.TotalValue != "1200" || got.Summary.ProfitRate != "0.2" {
		t.Errorf("summary = %+v", got.Summary)
	}
	if got.Diagnostics.SkippedCount != 1 {
		t.Errorf("skipped_count = %d, want 1", got.Diagnostics.SkippedCount)
	}
	if got.StaleTickers == nil {
		t.Error("stale_tickers should be an empty array, not null")
	}
}

func TestRankETFs(t *testing.T) {
	mux := newTestMux(t, &mockSnapshotRepo{}, "")

	tests := []struct {
		target string
		want   []string
	}{
		{"/api/v1/etfs/ranking?horizon=1m", []string{"VYM", "SCHD"}},
		{"/api/v1/etfs/ranking?horizon=1m&limit=1", []string{"VYM"}},
		{"/api/v1/etfs/ranking?horizon=1m&limit=0", []string{"VYM", "SCHD", "JEPI"}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var got []struct {
				Ticker string `json:"ticker"`
			}
			decode(t, serve(t, mux, http.MethodGet, tt.target), &got)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.Ticker != tt.want[i] {
					t.Errorf("[%d] = %s, want %s", i, r.Ticker, tt.want[i])
				}
			}
		})
	}
}

func TestGetDividendCalendar(t *testing.T) {
	mux := newTestMux(t, &mockSnapshotRepo{}, "")

	tests := []struct {
		target string
		want   []int64
	}{
		{"/api/v1/users/default/dividends/calendar", []int64{2, 1}},
		{"/api/v1/users/default/dividends/calendar?held=true", []int64{1}},
		{"/api/v1/users/default/dividends/calendar?from=2024-02-01", []int64{1}},
		{"/api/v1/users/nobody/dividends/calendar?held=true", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var got struct {
				Items []struct {
					ID int64 `json:"id"`
				} `json:"items"`
			}
			decode(t, serve(t, mux, http.MethodGet, tt.target), &got)
			if len(got.Items) != len(tt.want) {
				t.Fatalf("items = %d, want %d", len(got.Items), len(tt.want))
			}
			for i, item := range got.Items {
				if item.ID != tt.want[i] {
					t.Errorf("[%d] id = %d, want %d", i, item.ID, tt.want[i])
				}
			}
		})
	}
}

func TestGetAllocation(t *testing.T) {
	mux := newTestMux(t, &mockSnapshotRepo{}, "")

	var got struct {
		Allocation domain.Allocation `json:"allocation"`
	}
	decode(t, serve(t, mux, http.MethodGet, "/api/v1/users/default/allocation/region"), &got)

	us, ok := got.Allocation.Get("US")
	if !ok || !us.Equal(decimal.NewFromInt(1)) {
		t.Errorf("US = %s (%v), want 1", us, ok)
	}
}

func TestSnapshotRoutes(t *testing.T) {
	data, _ := json.Marshal(map[string]string{"test": "data"})
	repo := &mockSnapshotRepo{snapshots: []snapshot.Snapshot{
		{ID: 2, UserID: "default", SnapshotDate: domain.MustParseDate("2024-01-16"), Data: data},
		{ID: 1, UserID: "default", SnapshotDate: domain.MustParseDate("2024-01-15"), Data: data},
	}}
	mux := newTestMux(t, repo, "")

	var latest snapshot.Snapshot
	decode(t, serve(t, mux, http.MethodGet, "/api/v1/users/default/snapshots/latest"), &latest)
	if latest.ID != 2 {
		t.Errorf("latest ID = %d, want 2", latest.ID)
	}

	var byDate snapshot.Snapshot
	decode(t, serve(t, mux, http.MethodGet, "/api/v1/users/default/snapshots/2024-01-15"), &byDate)
	if byDate.ID != 1 {
		t.Errorf("by date ID = %d, want 1", byDate.ID)
	}

	if w := serve(t, mux, http.MethodGet, "/api/v1/users/default/snapshots/2023-12-31"); w.Code != http.StatusNotFound {
		t.Errorf("missing date status = %d, want 404", w.Code)
	}
}

func TestListSnapshotsLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", snapshot.DefaultListLimit},
		{"?limit=10", 10},
		{"?limit=9999", maxSnapshotLimit},
		{"?limit=-5", snapshot.DefaultListLimit},
		{"?limit=abc", snapshot.DefaultListLimit},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			repo := &mockSnapshotRepo{}
			mux := newTestMux(t, repo, "")

			w := serve(t, mux, http.MethodGet, "/api/v1/users/default/snapshots"+tt.query)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if repo.lastListLimit != tt.want {
				t.Errorf("limit = %d, want %d", repo.lastListLimit, tt.want)
			}
			if body := w.Body.String(); body != "[]\n" {
				t.Errorf("body = %q, want empty array", body)
			}
		})
	}
}

func TestGenerateSnapshot(t *testing.T) {
	repo := &mockSnapshotRepo{}
	mux := newTestMux(t, repo, "secret-key")

	if w := serve(t, mux, http.MethodPost, "/api/v1/users/default/snapshots/generate"); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", w.Code)
	}

	w := serve(t, mux, http.MethodPost, "/api/v1/users/default/snapshots/generate?date=2024-02-01", "Authorization", "Bearer secret-key")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if repo.saved == nil {
		t.Fatal("expected snapshot to be saved")
	}
	if got := repo.savedDate.String(); got != "2024-02-01" {
		t.Errorf("saved date = %s, want 2024-02-01", got)
	}

	w = serve(t, mux, http.MethodPost, "/api/v1/users/default/snapshots/generate?date=bad", "Authorization", "Bearer secret-key")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", w.Code)
	}
}

func TestGenerateSnapshotDefaultsToToday(t *testing.T) {
	repo := &mockSnapshotRepo{}
	mux := newTestMux(t, repo, "")

	before := domain.Today()
	if w := serve(t, mux, http.MethodPost, "/api/v1/users/default/snapshots/generate"); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	after := domain.DateOf(time.Now().UTC())
	if repo.savedDate.Before(before) || repo.savedDate.After(after) {
		t.Errorf("saved date = %s, want today", repo.savedDate)
	}
}
