package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/etflens/etflens/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if err := newApp(cfg).RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		log.Fatalf("Failed to create migrations sub-fs: %v", err)
	}
	return sub
}

var (
	userFlag = &cli.StringFlag{Name: "user", Aliases: []string{"u"}, Value: "default", Usage: "portfolio owner"}
	jsonFlag = &cli.BoolFlag{Name: "json", Usage: "print JSON instead of a table"}
)

func newApp(cfg config.Config) *cli.App {
	return &cli.App{
		Name:  "etflens",
		Usage: "ETF portfolio valuation, allocation and dividend calendar",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and background workers",
				Action: func(c *cli.Context) error { return serve(c.Context, cfg) },
			},
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations",
				Action: func(c *cli.Context) error { return migrate(c.Context, cfg) },
			},
			{
				Name:  "seed",
				Usage: "load the sample catalog and a demo portfolio",
				Flags: []cli.Flag{
					userFlag,
					&cli.BoolFlag{Name: "force", Usage: "seed even if the catalog is not empty"},
				},
				Action: func(c *cli.Context) error {
					return seedData(c.Context, cfg, c.String("user"), c.Bool("force"))
				},
			},
			{
				Name:   "summary",
				Usage:  "print the portfolio summary",
				Flags:  []cli.Flag{userFlag, jsonFlag},
				Action: func(c *cli.Context) error { return printSummary(c, cfg) },
			},
			{
				Name:  "allocation",
				Usage: "print the sector or region allocation",
				Flags: []cli.Flag{
					userFlag, jsonFlag,
					&cli.StringFlag{Name: "dimension", Aliases: []string{"d"}, Value: "sector", Usage: "sector or region"},
				},
				Action: func(c *cli.Context) error { return printAllocation(c, cfg) },
			},
			{
				Name:  "calendar",
				Usage: "print the dividend calendar",
				Flags: []cli.Flag{
					userFlag, jsonFlag,
					&cli.BoolFlag{Name: "held", Usage: "only funds the user holds"},
					&cli.StringFlag{Name: "from", Usage: "first ex-dividend date (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "to", Usage: "last ex-dividend date (YYYY-MM-DD)"},
				},
				Action: func(c *cli.Context) error { return printCalendar(c, cfg) },
			},
			{
				Name:  "rank",
				Usage: "rank the catalog by trailing return",
				Flags: []cli.Flag{
					jsonFlag,
					&cli.StringFlag{Name: "horizon", Value: "1m", Usage: "1d, 1w, 1m or 1y"},
					&cli.IntFlag{Name: "limit", Value: cfg.RankingLimit, Usage: "number of funds, 0 for all"},
				},
				Action: func(c *cli.Context) error { return printRanking(c, cfg) },
			},
			{
				Name:  "export",
				Usage: "write the portfolio report to XLSX and, when configured, Google Sheets",
				Flags: []cli.Flag{
					userFlag,
					&cli.StringFlag{Name: "dir", Value: cfg.ExportDir, Usage: "directory for XLSX files"},
				},
				Action: func(c *cli.Context) error {
					return exportReport(c.Context, cfg, c.String("user"), c.String("dir"))
				},
			},
		},
	}
}
