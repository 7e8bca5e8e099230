package portfolio

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/abcd5251/PawXAI/internal/domain"
	"github.com/abcd5251/PawXAI/internal/explorer"
)

// stableSymbols is the fixed set of recognized stablecoin symbols,
// matched against the upper-cased holding symbol.
var stableSymbols = map[string]bool{
	"USDC": true,
	"USDT": true,
	"DAI":  true,
	"LUSD": true,
	"FRAX": true,
	"USD+": true,
}

// TokenClient defines the subset of the explorer API used by the portfolio Service.
type TokenClient interface {
	FetchTokenHoldings(ctx context.Context, chainID, address string) ([]explorer.TokenHoldingItem, error)
}

// Service builds portfolio valuation reports for an address.
type Service struct {
	client TokenClient
}

// NewService creates a new portfolio Service.
func NewService(client TokenClient) *Service {
	return &Service{client: client}
}

// Report fetches the token holdings for an address and values them.
func (s *Service) Report(ctx context.Context, chainID, address string) (domain.PortfolioReport, error) {
	items, err := s.client.FetchTokenHoldings(ctx, chainID, address)
	if err != nil {
		return domain.PortfolioReport{}, fmt.Errorf("fetching token holdings for %s: %w", address, err)
	}
	return BuildReport(items), nil
}

// BuildReport values a list of raw token holdings and produces a read-only
// PortfolioReport. Malformed fields degrade to documented defaults
// (decimals 18, balance 0, price absent); a record is never dropped.
func BuildReport(items []explorer.TokenHoldingItem) domain.PortfolioReport {
	totalUSD := decimal.Zero
	pricedCount := 0
	var unpriced, suspicious []string

	holdings := lo.Map(items, func(it explorer.TokenHoldingItem, _ int) domain.TokenHolding {
		decimals, decimalsDefaulted := domain.ParseDecimals(it.Decimals.String())
		balance, balanceDefaulted := domain.ParseBaseUnits(it.Balance.String())
		price := domain.ParsePrice(it.ExchangeRate.String())

		h := domain.TokenHolding{
			Symbol:            it.Symbol,
			Name:              it.Name,
			Decimals:          decimals,
			DecimalsDefaulted: decimalsDefaulted,
			BalanceDefaulted:  balanceDefaulted,
			Amount:            domain.ToDecimalAmount(balance, decimals),
			Price:             price,
			IsStable:          stableSymbols[strings.ToUpper(it.Symbol)],
			IsSuspicious:      hasNonPrintableASCII(it.Symbol) || hasNonPrintableASCII(it.Name),
		}

		if price != nil {
			usd := h.Amount.Mul(*price)
			h.USDValue = &usd
			totalUSD = totalUSD.Add(usd)
			pricedCount++
		} else {
			unpriced = append(unpriced, h.DisplayName())
		}
		if h.IsSuspicious {
			suspicious = append(suspicious, h.DisplayName())
		}

		return h
	})

	priced := lo.Filter(holdings, func(h domain.TokenHolding, _ int) bool {
		return h.USDValue != nil
	})
	// stable sort keeps input order for equal values
	sort.SliceStable(priced, func(i, j int) bool {
		return priced[i].USDValue.GreaterThan(*priced[j].USDValue)
	})

	top3USD := lo.Reduce(firstN(priced, 3), func(acc decimal.Decimal, h domain.TokenHolding, _ int) decimal.Decimal {
		return acc.Add(*h.USDValue)
	}, decimal.Zero)

	top1Pct := decimal.Zero
	top3Pct := decimal.Zero
	if totalUSD.IsPositive() {
		hundred := decimal.NewFromInt(100)
		top1Pct = priced[0].USDValue.Div(totalUSD).Mul(hundred)
		top3Pct = top3USD.Div(totalUSD).Mul(hundred)
	}

	return domain.PortfolioReport{
		TokenCount:  len(holdings),
		PricedCount: pricedCount,
		TotalUSD:    totalUSD,
		Top1Pct:     top1Pct,
		Top3Pct:     top3Pct,
		Top5:        firstN(priced, 5),
		StableHoldings: lo.Filter(holdings, func(h domain.TokenHolding, _ int) bool {
			return h.IsStable
		}),
		UnpricedSymbols:   dedupeSorted(unpriced),
		SuspiciousSymbols: dedupeSorted(suspicious),
		Holdings:          holdings,
	}
}

// hasNonPrintableASCII reports whether s contains any rune outside the
// printable-ASCII range. Homoglyph look-alike symbols ("UЅDС") trip this.
func hasNonPrintableASCII(s string) bool {
	for _, r := range s {
		if r < ' ' || r > '~' {
			return true
		}
	}
	return false
}

func firstN(holdings []domain.TokenHolding, n int) []domain.TokenHolding {
	if len(holdings) < n {
		n = len(holdings)
	}
	return holdings[:n]
}

// dedupeSorted applies set semantics; order is fixed so rendering stays
// byte-deterministic.
func dedupeSorted(symbols []string) []string {
	out := lo.Uniq(symbols)
	sort.Strings(out)
	return out
}
