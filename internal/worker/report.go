package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abcd5251/PawXAI/internal/domain"
)

// ReportGenerator defines the interface for building portfolio reports.
type ReportGenerator interface {
	Report(ctx context.Context, chainID, address string) (domain.PortfolioReport, error)
}

// AfterReportHook is called after each successful report pass.
type AfterReportHook interface {
	Export(ctx context.Context, reports []domain.AddressPortfolio) error
}

// ReportWorker periodically rebuilds portfolio reports for a set of watch
// addresses.
type ReportWorker struct {
	generator ReportGenerator
	chainID   string
	addresses []string
	interval  time.Duration
	hook      AfterReportHook // optional
}

// NewReportWorker creates a new ReportWorker with an optional post-pass hook.
func NewReportWorker(generator ReportGenerator, chainID string, addresses []string, interval time.Duration, hook AfterReportHook) *ReportWorker {
	return &ReportWorker{
		generator: generator,
		chainID:   chainID,
		addresses: addresses,
		interval:  interval,
		hook:      hook,
	}
}

// generate builds a report for every watch address. A failing address is
// logged and skipped; the pass continues with the rest.
func (w *ReportWorker) generate(ctx context.Context) []domain.AddressPortfolio {
	reports := make([]domain.AddressPortfolio, 0, len(w.addresses))
	for _, addr := range w.addresses {
		report, err := w.generator.Report(ctx, w.chainID, addr)
		if err != nil {
			slog.Error("ReportWorker: report failed", "address", addr, "error", err)
			continue
		}
		reports = append(reports, domain.AddressPortfolio{
			ChainID: w.chainID,
			Address: addr,
			Report:  report,
		})
	}
	return reports
}

// runHook calls the post-pass hook if one is configured.
func (w *ReportWorker) runHook(ctx context.Context, reports []domain.AddressPortfolio) {
	if w.hook == nil || len(reports) == 0 {
		return
	}
	if err := w.hook.Export(ctx, reports); err != nil {
		slog.Error("ReportWorker: export hook failed", "error", err)
	} else {
		slog.Info("ReportWorker: export hook completed")
	}
}

// RunOnce performs a single report pass and export, outside the loop.
func (w *ReportWorker) RunOnce(ctx context.Context) error {
	reports := w.generate(ctx)
	if len(reports) == 0 {
		return errors.New("no reports generated")
	}
	if w.hook == nil {
		return nil
	}
	if err := w.hook.Export(ctx, reports); err != nil {
		return fmt.Errorf("exporting reports: %w", err)
	}
	return nil
}

// Run starts the report worker loop. It blocks until the context is cancelled.
func (w *ReportWorker) Run(ctx context.Context) {
	if len(w.addresses) == 0 {
		slog.Info("ReportWorker: no watch addresses configured, not starting")
		return
	}

	slog.Info("ReportWorker: starting", "addresses", len(w.addresses), "interval", w.interval)

	// Generate immediately on startup
	w.runHook(ctx, w.generate(ctx))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ReportWorker: shutting down")
			return
		case <-ticker.C:
			w.runHook(ctx, w.generate(ctx))
		}
	}
}
