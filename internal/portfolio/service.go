// Package portfolio loads consistent input snapshots from the store and runs the
// aggregation engine over them.
package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/mo"
	"golang.org/x/sync/errgroup"

	"github.com/etflens/etflens/internal/domain"
	"github.com/etflens/etflens/internal/engine"
)

// CatalogSource provides the ETF catalog.
type CatalogSource interface {
	ListETFs(ctx context.Context) ([]domain.ETF, error)
	GetETFByTicker(ctx context.Context, ticker string) (domain.ETF, error)
}

// PositionSource provides the positions of a user.
type PositionSource interface {
	ListPositions(ctx context.Context, userID string) ([]domain.Position, error)
}

// DividendSource provides dividend events.
type DividendSource interface {
	ListDividends(ctx context.Context) ([]domain.Dividend, error)
}

// Options tunes the service. Zero values disable caching and stale-price checks.
type Options struct {
	CatalogCacheTTL time.Duration
	StaleAfter      time.Duration
	Now             func() time.Time
}

// Service runs engine computations over freshly loaded snapshots.
type Service struct {
	etfs       CatalogSource
	positions  PositionSource
	dividends  DividendSource
	cache      *catalogCache
	staleAfter time.Duration
	now        func() time.Time
}

// NewService creates a new portfolio Service. All sources are required.
func NewService(etfs CatalogSource, positions PositionSource, dividends DividendSource, opts Options) *Service {
	if etfs == nil {
		panic("portfolio.NewService: etfs is nil")
	}
	if positions == nil {
		panic("portfolio.NewService: positions is nil")
	}
	if dividends == nil {
		panic("portfolio.NewService: dividends is nil")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		etfs:       etfs,
		positions:  positions,
		dividends:  dividends,
		cache:      newCatalogCache(opts.CatalogCacheTTL, now),
		staleAfter: opts.StaleAfter,
		now:        now,
	}
}

// Snapshot is an immutable set of inputs for one user.
type Snapshot struct {
	Catalog   engine.Catalog
	Positions []domain.Position
	Dividends []domain.Dividend
	LoadedAt  time.Time
}

// LoadSnapshot fetches the catalog, the user's positions and all dividends in parallel.
// The catalog is always read from the store so joined views track the latest prices.
func (s *Service) LoadSnapshot(ctx context.Context, userID string) (Snapshot, error) {
	var (
		etfs      []domain.ETF
		positions []domain.Position
		dividends []domain.Dividend
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		etfs, err = s.loadCatalog(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		if positions, err = s.positions.ListPositions(gctx, userID); err != nil {
			return fmt.Errorf("loading positions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if dividends, err = s.dividends.ListDividends(gctx); err != nil {
			return fmt.Errorf("loading dividends: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Catalog:   engine.NewCatalog(etfs),
		Positions: positions,
		Dividends: dividends,
		LoadedAt:  s.now(),
	}, nil
}

// catalog serves catalog-only reads from the cache.
func (s *Service) catalog(ctx context.Context) ([]domain.ETF, error) {
	if etfs, ok := s.cache.get(); ok {
		return etfs, nil
	}
	return s.loadCatalog(ctx)
}

// loadCatalog reads the catalog from the store and refreshes the cache.
func (s *Service) loadCatalog(ctx context.Context) ([]domain.ETF, error) {
	etfs, err := s.etfs.ListETFs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading etf catalog: %w", err)
	}
	s.cache.set(etfs)
	return etfs, nil
}

// InvalidateCatalog drops the cached catalog so the next read hits the store.
func (s *Service) InvalidateCatalog() { s.cache.invalidate() }

// CheckPrices refreshes the cached catalog and returns tickers whose price is
// older than the stale threshold.
func (s *Service) CheckPrices(ctx context.Context) ([]string, error) {
	etfs, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if s.staleAfter <= 0 {
		return []string{}, nil
	}
	return engine.StalePrices(engine.NewCatalog(etfs), s.now(), s.staleAfter), nil
}

// SummaryResult is a summary with the records it had to skip.
type SummaryResult struct {
	UserID       string                  `json:"user_id"`
	Summary      domain.PortfolioSummary `json:"summary"`
	Diagnostics  engine.Diagnostics      `json:"diagnostics"`
	StaleTickers []string                `json:"stale_tickers"`
}

// Summary computes the portfolio summary of one user.
func (s *Service) Summary(ctx context.Context, userID string) (SummaryResult, error) {
	snap, err := s.LoadSnapshot(ctx, userID)
	if err != nil {
		return SummaryResult{}, err
	}
	return s.summarize(userID, snap), nil
}

func (s *Service) summarize(userID string, snap Snapshot) SummaryResult {
	summary, diag := engine.ComputeSummary(snap.Positions, snap.Catalog)
	logSkipped("summary", userID, diag)
	return SummaryResult{
		UserID:       userID,
		Summary:      summary,
		Diagnostics:  diag,
		StaleTickers: s.stale(snap),
	}
}

// stale lists catalog tickers older than the configured threshold.
func (s *Service) stale(snap Snapshot) []string {
	if s.staleAfter <= 0 {
		return []string{}
	}
	tickers := engine.StalePrices(snap.Catalog, snap.LoadedAt, s.staleAfter)
	if len(tickers) > 0 {
		slog.Warn("stale etf prices", "count", len(tickers), "tickers", tickers)
	}
	return tickers
}

// AllocationResult is an allocation along one dimension.
type AllocationResult struct {
	UserID      string             `json:"user_id"`
	Dimension   domain.Dimension   `json:"dimension"`
	Allocation  domain.Allocation  `json:"allocation"`
	Diagnostics engine.Diagnostics `json:"diagnostics"`
}

// Allocation computes the sector or region breakdown of one user's portfolio.
func (s *Service) Allocation(ctx context.Context, userID string, dim domain.Dimension) (AllocationResult, error) {
	if _, err := domain.ParseDimension(string(dim)); err != nil {
		return AllocationResult{}, err
	}
	snap, err := s.LoadSnapshot(ctx, userID)
	if err != nil {
		return AllocationResult{}, err
	}
	return allocate(userID, snap, dim)
}

func allocate(userID string, snap Snapshot, dim domain.Dimension) (AllocationResult, error) {
	a, diag, err := engine.ComputeAllocation(snap.Positions, snap.Catalog, dim)
	if err != nil {
		return AllocationResult{}, err
	}
	logSkipped(string(dim)+" allocation", userID, diag)
	return AllocationResult{UserID: userID, Dimension: dim, Allocation: a, Diagnostics: diag}, nil
}

// CalendarQuery selects the dividends shown in a calendar.
type CalendarQuery struct {
	HeldOnly bool
	From     mo.Option[domain.Date]
	To       mo.Option[domain.Date]
}

// CalendarResult is an ordered dividend calendar.
type CalendarResult struct {
	UserID      string                        `json:"user_id"`
	Items       []domain.DividendCalendarItem `json:"items"`
	Diagnostics engine.Diagnostics            `json:"diagnostics"`
}

// Calendar builds the dividend calendar, optionally restricted to funds the user holds.
func (s *Service) Calendar(ctx context.Context, userID string, q CalendarQuery) (CalendarResult, error) {
	snap, err := s.LoadSnapshot(ctx, userID)
	if err != nil {
		return CalendarResult{}, err
	}
	return calendar(userID, snap, q), nil
}

func calendar(userID string, snap Snapshot, q CalendarQuery) CalendarResult {
	filter := engine.CalendarFilter{From: q.From, To: q.To}
	if q.HeldOnly {
		filter.Held = mo.Some(snap.Positions)
	}
	items, diag := engine.BuildDividendCalendar(snap.Dividends, snap.Catalog, filter)
	logSkipped("dividend calendar", userID, diag)
	return CalendarResult{UserID: userID, Items: items, Diagnostics: diag}
}

// PositionsResult lists the joined positions of a user.
type PositionsResult struct {
	UserID      string                   `json:"user_id"`
	Positions   []domain.PositionWithETF `json:"positions"`
	Diagnostics engine.Diagnostics       `json:"diagnostics"`
}

// Positions joins the user's positions with the current catalog.
func (s *Service) Positions(ctx context.Context, userID string) (PositionsResult, error) {
	snap, err := s.LoadSnapshot(ctx, userID)
	if err != nil {
		return PositionsResult{}, err
	}
	return join(userID, snap), nil
}

func join(userID string, snap Snapshot) PositionsResult {
	joined, diag := engine.JoinPositions(snap.Positions, snap.Catalog)
	logSkipped("positions", userID, diag)
	return PositionsResult{UserID: userID, Positions: joined, Diagnostics: diag}
}

// Overview is every derived view of one user computed from a single snapshot.
type Overview struct {
	UserID    string           `json:"user_id"`
	AsOf      time.Time        `json:"as_of"`
	Summary   SummaryResult    `json:"summary"`
	Positions PositionsResult  `json:"positions"`
	Sectors   AllocationResult `json:"sectors"`
	Regions   AllocationResult `json:"regions"`
	Calendar  CalendarResult   `json:"calendar"`
}

// Overview computes summary, positions, both allocations and the held-fund
// calendar from one consistent snapshot.
func (s *Service) Overview(ctx context.Context, userID string) (Overview, error) {
	snap, err := s.LoadSnapshot(ctx, userID)
	if err != nil {
		return Overview{}, err
	}

	sectors, err := allocate(userID, snap, domain.DimensionSector)
	if err != nil {
		return Overview{}, err
	}
	regions, err := allocate(userID, snap, domain.DimensionRegion)
	if err != nil {
		return Overview{}, err
	}

	return Overview{
		UserID:    userID,
		AsOf:      snap.LoadedAt,
		Summary:   s.summarize(userID, snap),
		Positions: join(userID, snap),
		Sectors:   sectors,
		Regions:   regions,
		Calendar:  calendar(userID, snap, CalendarQuery{HeldOnly: true}),
	}, nil
}

// Ranking ranks the whole catalog by the given return horizon.
func (s *Service) Ranking(ctx context.Context, horizon domain.ReturnHorizon, limit int) ([]domain.ETFRanking, error) {
	if _, err := domain.ParseReturnHorizon(string(horizon)); err != nil {
		return nil, err
	}
	etfs, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return engine.RankETFs(etfs, horizon, limit)
}

// ETFs returns the catalog sorted by ticker.
func (s *Service) ETFs(ctx context.Context) ([]domain.ETF, error) {
	etfs, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return engine.NewCatalog(etfs).ETFs(), nil
}

// ETF returns one fund by ticker.
func (s *Service) ETF(ctx context.Context, ticker string) (domain.ETF, error) {
	return s.etfs.GetETFByTicker(ctx, ticker)
}

func logSkipped(operation, userID string, diag engine.Diagnostics) {
	if diag.Count() == 0 {
		return
	}
	slog.Warn("skipped records", "operation", operation, "user", userID, "count", diag.Count(), "error", diag.Err())
}
