package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/etflens/etflens/internal/domain"
	"github.com/etflens/etflens/internal/portfolio"
)

// SummaryService computes the current summary of a user.
type SummaryService interface {
	Summary(ctx context.Context, userID string) (portfolio.SummaryResult, error)
}

// Service manages snapshot generation and retrieval.
type Service struct {
	summaries SummaryService
	repo      Repository
}

// NewService creates a new snapshot Service.
func NewService(summaries SummaryService, repo Repository) *Service {
	return &Service{summaries: summaries, repo: repo}
}

// Generate computes the user's summary and stores it under date, replacing
// any snapshot already stored for that day.
func (s *Service) Generate(ctx context.Context, userID string, date domain.Date) (portfolio.SummaryResult, error) {
	result, err := s.summaries.Summary(ctx, userID)
	if err != nil {
		return portfolio.SummaryResult{}, fmt.Errorf("computing summary: %w", err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return portfolio.SummaryResult{}, fmt.Errorf("marshaling summary: %w", err)
	}

	if err := s.repo.Save(ctx, userID, date, data); err != nil {
		return portfolio.SummaryResult{}, fmt.Errorf("saving snapshot: %w", err)
	}

	slog.Info("snapshot saved", "user", userID, "date", date, "skipped", result.Diagnostics.Count())
	return result, nil
}

// GetLatest retrieves the most recent snapshot of the user.
func (s *Service) GetLatest(ctx context.Context, userID string) (Snapshot, error) {
	return s.repo.GetLatest(ctx, userID)
}

// GetByDate retrieves the user's snapshot for a specific date.
func (s *Service) GetByDate(ctx context.Context, userID string, date domain.Date) (Snapshot, error) {
	return s.repo.GetByDate(ctx, userID, date)
}

// List retrieves recent snapshots, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Snapshot, error) {
	return s.repo.List(ctx, userID, limit)
}
