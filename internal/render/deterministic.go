package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/abcd5251/PawXAI/internal/domain"
)

const disclaimer = "Note: Crypto assets are volatile. This is a snapshot and rough estimation; do your own research before making decisions."

// nativeFeeDecimals is the scale of native-coin amounts (wei).
const nativeFeeDecimals = 18

// Deterministic is a rule-based plain-text renderer. It holds no state and
// produces byte-identical output for identical input.
type Deterministic struct{}

// NewDeterministic creates a Deterministic renderer.
func NewDeterministic() *Deterministic { return &Deterministic{} }

// RenderPortfolio implements TextRenderer. It never returns an error.
func (d *Deterministic) RenderPortfolio(_ context.Context, report domain.PortfolioReport) (string, error) {
	var lines []string

	lines = append(lines, fmt.Sprintf("Tokens held: %d, priced tokens: %d, total estimated value ≈$%s",
		report.TokenCount, report.PricedCount, domain.FormatUSD(report.TotalUSD)))
	lines = append(lines, fmt.Sprintf("Concentration: Top1 %s%%, Top3 combined %s%%",
		domain.FormatPercent(report.Top1Pct), domain.FormatPercent(report.Top3Pct)))
	lines = append(lines, "")

	lines = append(lines, "Top 5 (by estimated value):")
	if len(report.Top5) > 0 {
		for i, h := range report.Top5 {
			lines = append(lines, fmt.Sprintf("%d. %s: amount %s, ≈$%s",
				i+1, h.DisplayName(), domain.FormatAmount(h.Amount), domain.FormatUSD(*h.USDValue)))
		}
	} else {
		lines = append(lines, "No priced holdings available")
	}
	lines = append(lines, "")

	if len(report.StableHoldings) > 0 {
		lines = append(lines, "Stablecoin holdings:")
		for _, h := range report.StableHoldings {
			usd := ""
			if h.USDValue != nil {
				usd = fmt.Sprintf(", ≈$%s", domain.FormatUSD(*h.USDValue))
			}
			lines = append(lines, fmt.Sprintf("- %s: amount %s%s", h.DisplayName(), domain.FormatAmount(h.Amount), usd))
		}
	} else {
		lines = append(lines, "Stablecoin holdings: None or not detected")
	}
	lines = append(lines, "")

	if len(report.UnpricedSymbols) > 0 {
		lines = append(lines, "No price / cannot be valued: "+strings.Join(report.UnpricedSymbols, ", "))
	}
	if len(report.SuspiciousSymbols) > 0 {
		lines = append(lines, "Suspicious or look-alike tokens: "+strings.Join(report.SuspiciousSymbols, ", "))
	}
	lines = append(lines, "")
	lines = append(lines, disclaimer)

	return strings.Join(lines, "\n"), nil
}

// RenderTransactions implements TextRenderer. It never returns an error.
func (d *Deterministic) RenderTransactions(_ context.Context, report domain.TransactionReport) (string, error) {
	if report.Empty {
		return "No transactions found.", nil
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Count: %d transfers across %d transactions",
		report.TransferCount, report.TransactionCount))
	lines = append(lines, fmt.Sprintf("Period: %s → %s",
		timestampOr(report.PeriodStart, "(unknown)"), timestampOr(report.PeriodEnd, "(unknown)")))
	lines = append(lines, "Notes: Amounts shown when available; gas fee is native ≈ fee/1e18.")
	lines = append(lines, "")

	for _, rec := range report.Transfers {
		amount := "unknown"
		if rec.Amount != nil {
			amount = domain.FormatAmount(*rec.Amount)
		}
		usd := "no available price"
		if rec.USDValue != nil {
			usd = "≈ $" + domain.FormatUSD(*rec.USDValue)
		}
		fee := "unknown"
		if rec.Fee != nil {
			fee = domain.FormatAmount(*rec.Fee)
		}
		lines = append(lines, fmt.Sprintf("- %s — %s — %s → %s — %s %s (%s); gas ≈ %s — %s",
			timestampOr(rec.Timestamp, "(unknown time)"),
			rec.Action,
			domain.ShortAddress(rec.FromAddress),
			domain.ShortAddress(rec.ToAddress),
			amount, rec.Symbol, usd, fee,
			domain.ShortHash(rec.Hash)))
	}

	lines = append(lines, "")
	if len(report.TopCounterparties) > 0 {
		lines = append(lines, "Top counterparties:")
		for _, cp := range report.TopCounterparties {
			lines = append(lines, fmt.Sprintf("- %s: %d interactions", domain.ShortAddress(cp.Address), cp.Interactions))
		}
	}
	if len(report.TopTokens) > 0 {
		lines = append(lines, "Top tokens by estimated USD volume:")
		for _, tv := range report.TopTokens {
			lines = append(lines, fmt.Sprintf("- %s: ≈ $%s", tv.Symbol, domain.FormatUSD(tv.USD)))
		}
	}

	return strings.Join(lines, "\n"), nil
}

// RenderLedger renders a balance-change ledger. The ledger endpoint never
// uses the generative renderer, so this is plain and infallible.
func (d *Deterministic) RenderLedger(report domain.LedgerReport) string {
	if report.Empty {
		return "No balance change data found."
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Count: %d", report.Count))
	lines = append(lines, fmt.Sprintf("Period: %s → %s",
		domain.FormatTimestamp(report.PeriodStart), domain.FormatTimestamp(report.PeriodEnd)))
	lines = append(lines, "Notes: Positive delta = income, negative delta = expense; balance unit is ETH (Base/Ethereum native coin).")
	lines = append(lines, "")

	for _, ev := range report.Events {
		deltaUnits := ev.Delta.Abs()
		lines = append(lines, fmt.Sprintf("%s | Block %d | Tx %s | %s %s ETH (%s wei) | New balance %s ETH",
			domain.FormatTimestamp(ev.Timestamp),
			ev.BlockNumber,
			domain.ShortHash(ev.TxHash),
			ev.Direction,
			domain.FormatAmount(domain.ToDecimalAmount(deltaUnits, nativeFeeDecimals)),
			domain.FormatBaseUnits(deltaUnits),
			domain.FormatAmount(domain.ToDecimalAmount(ev.NewBalance, nativeFeeDecimals))))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Total income: %s ETH (%s wei)",
		domain.FormatAmount(domain.ToDecimalAmount(report.TotalIncomeUnits, nativeFeeDecimals)),
		domain.FormatBaseUnits(report.TotalIncomeUnits)))
	lines = append(lines, fmt.Sprintf("Total expense: %s ETH (%s wei)",
		domain.FormatAmount(domain.ToDecimalAmount(report.TotalExpenseUnits, nativeFeeDecimals)),
		domain.FormatBaseUnits(report.TotalExpenseUnits)))
	lines = append(lines, fmt.Sprintf("Net change: %s ETH (%s wei)",
		domain.FormatAmount(domain.ToDecimalAmount(report.NetUnits, nativeFeeDecimals)),
		domain.FormatBaseUnits(report.NetUnits)))

	return strings.Join(lines, "\n")
}

func timestampOr(ts, placeholder string) string {
	if ts == "" {
		return placeholder
	}
	return domain.FormatTimestamp(ts)
}
