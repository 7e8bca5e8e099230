package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/abcd5251/PawXAI/internal/domain"
)

// ReportWriter writes portfolio reports to a destination.
type ReportWriter interface {
	Write(ctx context.Context, reports []domain.AddressPortfolio) error
}

// Service fans portfolio reports out to one or more writers.
// Implements worker.AfterReportHook.
type Service struct {
	writers []ReportWriter
}

// NewService creates an export Service over the given writers.
func NewService(writers ...ReportWriter) *Service {
	return &Service{writers: writers}
}

// Export writes the reports with every configured writer. All writers run
// even when an earlier one fails; their errors are joined.
func (s *Service) Export(ctx context.Context, reports []domain.AddressPortfolio) error {
	var errs []error
	for _, w := range s.writers {
		if err := w.Write(ctx, reports); err != nil {
			errs = append(errs, fmt.Errorf("writing reports: %w", err))
		}
	}
	return errors.Join(errs...)
}

// buildHoldingRows builds the tabular form of one portfolio report: a summary
// block, a blank row, then one row per holding.
func buildHoldingRows(p domain.AddressPortfolio) [][]any {
	r := p.Report
	rows := [][]any{
		{"Address", p.Address},
		{"Chain", p.ChainID},
		{"Tokens held", r.TokenCount},
		{"Priced tokens", r.PricedCount},
		{"Total USD", domain.FormatUSD(r.TotalUSD)},
		{"Top1 %", domain.FormatPercent(r.Top1Pct)},
		{"Top3 %", domain.FormatPercent(r.Top3Pct)},
		nil,
		{"Symbol", "Name", "Amount", "Price", "USD Value", "Stable", "Suspicious"},
	}

	for _, h := range r.Holdings {
		price, usd := "", ""
		if h.Price != nil {
			price = h.Price.String()
		}
		if h.USDValue != nil {
			usd = domain.FormatUSD(*h.USDValue)
		}
		rows = append(rows, []any{
			h.Symbol, h.Name, domain.FormatAmount(h.Amount), price, usd, h.IsStable, h.IsSuspicious,
		})
	}

	return rows
}

// sheetName derives a spreadsheet-safe sheet title from an address.
func sheetName(address string) string {
	return domain.ShortAddress(address)
}
