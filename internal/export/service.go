// Package export renders portfolio reports into spreadsheets and text.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/etflens/etflens/internal/portfolio"
)

// SheetWriter writes a report to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, r Report) error
}

// OverviewSource computes every portfolio view of a user at once.
type OverviewSource interface {
	Overview(ctx context.Context, userID string) (portfolio.Overview, error)
}

// Service builds reports and hands them to every configured writer.
type Service struct {
	overviews OverviewSource
	writers   []SheetWriter
}

// NewService creates a new export Service.
func NewService(overviews OverviewSource, writers ...SheetWriter) *Service {
	return &Service{overviews: overviews, writers: writers}
}

// Export builds the user's report and writes it with every writer. A failing
// writer does not stop the others.
func (s *Service) Export(ctx context.Context, userID string) error {
	ov, err := s.overviews.Overview(ctx, userID)
	if err != nil {
		return fmt.Errorf("building overview for %s: %w", userID, err)
	}
	report := ReportFromOverview(ov)

	var errs []error
	for _, w := range s.writers {
		if err := w.Write(ctx, report); err != nil {
			slog.Error("export writer failed", "user", userID, "writer", fmt.Sprintf("%T", w), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
