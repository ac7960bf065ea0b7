package worker

import (
	"context"
	"log/slog"
	"time"
)

// PriceChecker reloads the catalog and reports funds with outdated prices.
type PriceChecker interface {
	CheckPrices(ctx context.Context) ([]string, error)
}

// PriceWorker periodically refreshes the catalog and warns about stale prices.
type PriceWorker struct {
	checker  PriceChecker
	interval time.Duration
}

// NewPriceWorker creates a new PriceWorker.
func NewPriceWorker(checker PriceChecker, interval time.Duration) *PriceWorker {
	return &PriceWorker{
		checker:  checker,
		interval: interval,
	}
}

func (w *PriceWorker) check(ctx context.Context) {
	stale, err := w.checker.CheckPrices(ctx)
	if err != nil {
		slog.Error("PriceWorker: check failed", "error", err)
		return
	}
	if len(stale) > 0 {
		slog.Warn("PriceWorker: stale prices", "count", len(stale), "tickers", stale)
		return
	}
	slog.Debug("PriceWorker: all prices fresh")
}

// Run starts the price worker loop. It blocks until the context is cancelled.
func (w *PriceWorker) Run(ctx context.Context) {
	slog.Info("PriceWorker: starting", "interval", w.interval)

	w.check(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("PriceWorker: shutting down")
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}
