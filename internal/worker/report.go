// Package worker runs periodic background jobs.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/etflens/etflens/internal/domain"
	"github.com/etflens/etflens/internal/portfolio"
)

// SnapshotGenerator defines the interface for generating snapshots.
type SnapshotGenerator interface {
	Generate(ctx context.Context, userID string, date domain.Date) (portfolio.SummaryResult, error)
}

// AfterSnapshotHook is called after each successful snapshot generation.
type AfterSnapshotHook interface {
	Export(ctx context.Context, userID string) error
}

// UserLister lists the users to report on.
type UserLister interface {
	ListUsers(ctx context.Context) ([]string, error)
}

// StaticUsers is a fixed user list.
type StaticUsers []string

// ListUsers returns the list itself.
func (u StaticUsers) ListUsers(context.Context) ([]string, error) { return u, nil }

// ReportWorker periodically generates a snapshot for every user.
type ReportWorker struct {
	generator SnapshotGenerator
	users     UserLister
	interval  time.Duration
	hook      AfterSnapshotHook // optional
	today     func() domain.Date
}

// NewReportWorker creates a new ReportWorker with an optional post-generation hook.
func NewReportWorker(generator SnapshotGenerator, users UserLister, interval time.Duration, hook AfterSnapshotHook) *ReportWorker {
	return &ReportWorker{
		generator: generator,
		users:     users,
		interval:  interval,
		hook:      hook,
		today:     domain.Today,
	}
}

// runHook calls the post-generation hook if one is configured.
func (w *ReportWorker) runHook(ctx context.Context, userID string) {
	if w.hook == nil {
		return
	}
	if err := w.hook.Export(ctx, userID); err != nil {
		slog.Error("ReportWorker: export hook failed", "user", userID, "error", err)
	} else {
		slog.Info("ReportWorker: export hook completed", "user", userID)
	}
}

// RunOnce generates today's snapshot for every user and returns how many succeeded.
// A failing user does not stop the others.
func (w *ReportWorker) RunOnce(ctx context.Context) int {
	users, err := w.users.ListUsers(ctx)
	if err != nil {
		slog.Error("ReportWorker: listing users failed", "error", err)
		return 0
	}

	date := w.today()
	done := 0
	for _, user := range users {
		if ctx.Err() != nil {
			break
		}
		result, err := w.generator.Generate(ctx, user, date)
		if err != nil {
			slog.Error("ReportWorker: generation failed", "user", user, "error", err)
			continue
		}
		slog.Info("ReportWorker: generation completed", "user", user, "date", date,
			"total_value", result.Summary.TotalValue, "skipped", result.Diagnostics.Count())
		w.runHook(ctx, user)
		done++
	}
	return done
}

// Run starts the report worker loop. It blocks until the context is cancelled.
func (w *ReportWorker) Run(ctx context.Context) {
	slog.Info("ReportWorker: starting", "interval", w.interval)

	// Generate immediately on startup
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ReportWorker: shutting down")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}
