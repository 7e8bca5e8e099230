package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/abcd5251/PawXAI/internal/api"
	"github.com/abcd5251/PawXAI/internal/config"
	"github.com/abcd5251/PawXAI/internal/explorer"
	"github.com/abcd5251/PawXAI/internal/export"
	"github.com/abcd5251/PawXAI/internal/ledger"
	"github.com/abcd5251/PawXAI/internal/narrate"
	"github.com/abcd5251/PawXAI/internal/portfolio"
	"github.com/abcd5251/PawXAI/internal/render"
	"github.com/abcd5251/PawXAI/internal/tags"
	"github.com/abcd5251/PawXAI/internal/worker"
)

// services bundles everything built from configuration.
type services struct {
	cfg        config.Config
	ledger     *ledger.Service
	portfolio  *portfolio.Service
	narrator   *narrate.Service
	generative render.TextRenderer
	exporter   *export.Service
}

func buildServices() *services {
	cfg := config.Load()

	client := explorer.NewClient(cfg.ExplorerURL, cfg.RequestTimeout, cfg.ExplorerRetryMax, cfg.ExplorerRetryBaseDelay)

	s := &services{
		cfg:       cfg,
		ledger:    ledger.NewService(client),
		portfolio: portfolio.NewService(client),
		narrator:  narrate.NewService(client),
	}
	if cfg.OpenAIAPIKey != "" {
		s.generative = render.NewGenerative(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	return s
}

// buildExporter assembles the configured report writers. Returns nil when no
// destination is configured.
func buildExporter(ctx context.Context, cfg config.Config) (*export.Service, error) {
	var writers []export.ReportWriter
	if cfg.XLSXOutput != "" {
		writers = append(writers, export.NewWorkbookWriter(cfg.XLSXOutput))
	}
	if cfg.SpreadsheetID != "" && cfg.GoogleCredentialsJSON != "" {
		sheetsWriter, err := export.NewSheetsWriter(ctx, cfg.SpreadsheetID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("creating sheets writer: %w", err)
		}
		writers = append(writers, sheetsWriter)
	}
	if len(writers) == 0 {
		return nil, nil
	}
	return export.NewService(writers...), nil
}

func serve(cliCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := buildServices()
	cfg := s.cfg

	handler := api.NewHandler(s.ledger, s.portfolio, s.narrator, s.generative)

	var filters *api.FilterHandler
	if snap, err := tags.Load(cfg.TagsDataset); err != nil {
		slog.Warn("tags dataset unavailable, filter routes disabled", "error", err)
	} else {
		filters = api.NewFilterHandler(snap)
	}

	var reportWorker *worker.ReportWorker
	if len(cfg.WatchAddresses) > 0 {
		exporter, err := buildExporter(ctx, cfg)
		if err != nil {
			return err
		}
		var hook worker.AfterReportHook
		if exporter != nil {
			hook = exporter
		}
		reportWorker = worker.NewReportWorker(s.portfolio, cfg.WatchChainID, cfg.WatchAddresses, cfg.ReportWorkerInterval, hook)
		go reportWorker.Run(ctx)
	}

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, export endpoint is unprotected")
	}

	var exportRunner api.ExportRunner
	if reportWorker != nil {
		exportRunner = reportWorker
	}
	srv := api.NewServer(cfg.HTTPPort, handler, filters, exportRunner, cfg.AdminAPIKey)

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func report(cliCtx *cli.Context) error {
	s := buildServices()
	chainID := cliCtx.String("chain")
	address := cliCtx.String("address")
	renderer := render.NewDeterministic()

	var text string
	switch kind := cliCtx.String("kind"); kind {
	case "balance":
		rep, err := s.ledger.Report(cliCtx.Context, chainID, address)
		if err != nil {
			return err
		}
		text = renderer.RenderLedger(rep)
	case "tokens":
		rep, err := s.portfolio.Report(cliCtx.Context, chainID, address)
		if err != nil {
			return err
		}
		text, _ = renderer.RenderPortfolio(cliCtx.Context, rep)
	case "transactions":
		rep, err := s.narrator.Report(cliCtx.Context, chainID, address)
		if err != nil {
			return err
		}
		text, _ = renderer.RenderTransactions(cliCtx.Context, rep)
	default:
		return fmt.Errorf("unknown report kind %q", kind)
	}

	fmt.Println(text)
	return nil
}

func exportOnce(cliCtx *cli.Context) error {
	s := buildServices()
	cfg := s.cfg
	if len(cfg.WatchAddresses) == 0 {
		return fmt.Errorf("WATCH_ADDRESSES is not configured")
	}

	exporter, err := buildExporter(cliCtx.Context, cfg)
	if err != nil {
		return err
	}
	if exporter == nil {
		return fmt.Errorf("no export destination configured")
	}

	w := worker.NewReportWorker(s.portfolio, cfg.WatchChainID, cfg.WatchAddresses, cfg.ReportWorkerInterval, exporter)
	return w.RunOnce(cliCtx.Context)
}

func main() {
	app := &cli.App{
		Name:  "pawxai",
		Usage: "address balance, portfolio, and transaction reports",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP report service",
				Action: serve,
			},
			{
				Name:  "report",
				Usage: "print a one-shot report for an address",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "address", Required: true, Usage: "account address"},
					&cli.StringFlag{Name: "chain", Value: "8453", Usage: "chain ID"},
					&cli.StringFlag{Name: "kind", Value: "tokens", Usage: "balance, tokens, or transactions"},
				},
				Action: report,
			},
			{
				Name:   "export",
				Usage:  "build reports for the watch addresses and export them",
				Action: exportOnce,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
