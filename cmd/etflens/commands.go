package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/mo"
	"github.com/urfave/cli/v2"

	"github.com/etflens/etflens/internal/api"
	"github.com/etflens/etflens/internal/config"
	"github.com/etflens/etflens/internal/database"
	"github.com/etflens/etflens/internal/domain"
	"github.com/etflens/etflens/internal/export"
	"github.com/etflens/etflens/internal/portfolio"
	"github.com/etflens/etflens/internal/seed"
	"github.com/etflens/etflens/internal/snapshot"
	"github.com/etflens/etflens/internal/store"
	"github.com/etflens/etflens/internal/worker"
)

// services is the wired application graph over one connection pool.
type services struct {
	pool       *pgxpool.Pool
	etfs       *store.PgETFRepository
	positions  *store.PgPositionRepository
	dividends  *store.PgDividendRepository
	portfolios *portfolio.Service
	snapshots  *snapshot.Service
}

func connect(ctx context.Context, cfg config.Config) (*services, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s := &services{
		pool:      pool,
		etfs:      store.NewPgETFRepository(pool),
		positions: store.NewPgPositionRepository(pool),
		dividends: store.NewPgDividendRepository(pool),
	}
	s.portfolios = portfolio.NewService(s.etfs, s.positions, s.dividends, portfolio.Options{
		CatalogCacheTTL: cfg.CatalogCacheTTL,
		StaleAfter:      cfg.PriceStaleThreshold,
	})
	s.snapshots = snapshot.NewService(s.portfolios, snapshot.NewPgRepository(pool))
	return s, nil
}

func (s *services) Close() { s.pool.Close() }

// exporter builds the export service with every configured writer.
func exporter(ctx context.Context, cfg config.Config, portfolios *portfolio.Service, dir string) (*export.Service, error) {
	var writers []export.SheetWriter
	if dir != "" {
		writers = append(writers, export.NewXLSXWriter(dir))
	}
	if cfg.SheetsEnabled() {
		sheetsWriter, err := export.NewSheetsWriter(ctx, cfg.GoogleSheetsID, cfg.GoogleCredentials)
		if err != nil {
			return nil, err
		}
		writers = append(writers, sheetsWriter)
	}
	if len(writers) == 0 {
		return nil, nil
	}
	return export.NewService(portfolios, writers...), nil
}

func serve(ctx context.Context, cfg config.Config) error {
	svc, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	exportSvc, err := exporter(ctx, cfg, svc.portfolios, cfg.ExportDir)
	if err != nil {
		return fmt.Errorf("configuring export: %w", err)
	}

	var users worker.UserLister = svc.positions
	if len(cfg.ReportUsers) > 0 {
		users = worker.StaticUsers(cfg.ReportUsers)
	}
	var hook worker.AfterSnapshotHook
	if exportSvc != nil {
		hook = exportSvc
	}

	// Start workers
	reportWorker := worker.NewReportWorker(svc.snapshots, users, cfg.ReportWorkerInterval, hook)
	go reportWorker.Run(ctx)

	if cfg.PriceStaleThreshold > 0 && cfg.CatalogCacheTTL > 0 {
		priceWorker := worker.NewPriceWorker(svc.portfolios, cfg.CatalogCacheTTL)
		go priceWorker.Run(ctx)
	}

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, generate endpoint is unprotected")
	}

	// Start HTTP server
	srv := api.NewServer(cfg.HTTPPort, svc.portfolios, svc.snapshots, api.ServerOptions{
		AdminAPIKey:  cfg.AdminAPIKey,
		RankingLimit: cfg.RankingLimit,
	})

	serveCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	// Wait for shutdown signal
	<-serveCtx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func migrate(ctx context.Context, cfg config.Config) error {
	svc, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	svc.Close()
	return nil
}

func seedData(ctx context.Context, cfg config.Config, user string, force bool) error {
	svc, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := seed.Seed(ctx, svc.etfs, svc.positions, svc.dividends, seed.Options{UserID: user, Force: force})
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Println("catalog already populated, use --force to reseed")
		return nil
	}
	fmt.Printf("seeded %d etfs, %d positions, %d dividends for %s\n", res.ETFs, res.Positions, res.Dividends, user)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSummary(c *cli.Context, cfg config.Config) error {
	svc, err := connect(c.Context, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.portfolios.Summary(c.Context, c.String("user"))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(result)
	}
	return export.WriteSummary(os.Stdout, result, cfg.BaseCurrency)
}

func printAllocation(c *cli.Context, cfg config.Config) error {
	dim, err := domain.ParseDimension(c.String("dimension"))
	if err != nil {
		return err
	}
	svc, err := connect(c.Context, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.portfolios.Allocation(c.Context, c.String("user"), dim)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(result)
	}
	return export.WriteAllocation(os.Stdout, result)
}

func optionalDate(s string) (mo.Option[domain.Date], error) {
	if s == "" {
		return mo.None[domain.Date](), nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return mo.None[domain.Date](), err
	}
	return mo.Some(d), nil
}

func printCalendar(c *cli.Context, cfg config.Config) error {
	from, err := optionalDate(c.String("from"))
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := optionalDate(c.String("to"))
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	svc, err := connect(c.Context, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.portfolios.Calendar(c.Context, c.String("user"), portfolio.CalendarQuery{
		HeldOnly: c.Bool("held"),
		From:     from,
		To:       to,
	})
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(result)
	}
	return export.WriteCalendar(os.Stdout, result, cfg.BaseCurrency)
}

func printRanking(c *cli.Context, cfg config.Config) error {
	horizon, err := domain.ParseReturnHorizon(c.String("horizon"))
	if err != nil {
		return err
	}
	svc, err := connect(c.Context, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	ranking, err := svc.portfolios.Ranking(c.Context, horizon, c.Int("limit"))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(ranking)
	}
	return export.WriteRanking(os.Stdout, ranking)
}

func exportReport(ctx context.Context, cfg config.Config, user, dir string) error {
	svc, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if dir == "" {
		dir = "."
	}
	exportSvc, err := exporter(ctx, cfg, svc.portfolios, dir)
	if err != nil {
		return err
	}
	if err := exportSvc.Export(ctx, user); err != nil {
		return err
	}
	fmt.Printf("report for %s written to %s\n", user, dir)
	return nil
}
