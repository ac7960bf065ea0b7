package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/etflens/etflens/internal/portfolio"
	"github.com/etflens/etflens/internal/snapshot"
)

// ServerOptions configures NewServer.
type ServerOptions struct {
	AdminAPIKey  string
	RankingLimit int
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, portfolios *portfolio.Service, snapshots *snapshot.Service, opts ServerOptions) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      NewMux(NewHandler(portfolios, snapshots, opts.RankingLimit), opts.AdminAPIKey),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewMux registers every route of the handler.
func NewMux(handler *Handler, adminAPIKey string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/etfs", handler.ListETFs)
	mux.HandleFunc("GET /api/v1/etfs/ranking", handler.RankETFs)
	mux.HandleFunc("GET /api/v1/etfs/{ticker}", handler.GetETF)

	mux.HandleFunc("GET /api/v1/users/{user}/positions", handler.GetPositions)
	mux.HandleFunc("GET /api/v1/users/{user}/summary", handler.GetSummary)
	mux.HandleFunc("GET /api/v1/users/{user}/allocation/{dimension}", handler.GetAllocation)
	mux.HandleFunc("GET /api/v1/users/{user}/dividends/calendar", handler.GetDividendCalendar)

	mux.HandleFunc("GET /api/v1/users/{user}/snapshots/latest", handler.GetLatestSnapshot)
	mux.HandleFunc("GET /api/v1/users/{user}/snapshots/{date}", handler.GetSnapshotByDate)
	mux.HandleFunc("GET /api/v1/users/{user}/snapshots", handler.ListSnapshots)

	generateHandler := http.HandlerFunc(handler.GenerateSnapshot)
	if adminAPIKey != "" {
		mux.Handle("POST /api/v1/users/{user}/snapshots/generate", requireAuth(adminAPIKey, generateHandler))
	} else {
		mux.Handle("POST /api/v1/users/{user}/snapshots/generate", generateHandler)
	}
	return mux
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
