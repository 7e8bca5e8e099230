package narrate

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

// nativeFeeDecimals is the scale of the gas fee field. The fee is always
// denominated in the native coin, regardless of the transferred token.
const nativeFeeDecimals = 18

// TransferClient defines the subset of the explorer API used by the narrator.
type TransferClient interface {
	FetchTransfers(ctx context.Context, chainID, address string) ([]explorer.TransferItem, error)
}

// Service builds transaction narratives for an address.
type Service struct {
	client TransferClient
}

// NewService creates a new narrator Service.
func NewService(client TransferClient) *Service {
	return &Service{client: client}
}

// Report fetches the transfer records for an address and aggregates them.
func (s *Service) Report(ctx context.Context, chainID, address string) (domain.TransactionReport, error) {
	items, err := s.client.FetchTransfers(ctx, chainID, address)
	if err != nil {
		return domain.TransactionReport{}, fmt.Errorf("fetching transfers for %s: %w", address, err)
	}
	return BuildReport(items), nil
}

// BuildReport aggregates transfer records into a TransactionReport.
// Records are sorted oldest to newest (missing timestamps sort first as empty
// strings); a malformed numeric field degrades that field only and never
// discards the record.
func BuildReport(items []explorer.TransferItem) domain.TransactionReport {
	if len(items) == 0 {
		return domain.TransactionReport{Empty: true}
	}

	sorted := make([]explorer.TransferItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BestTimestamp() < sorted[j].BestTimestamp()
	})

	counterparties := map[string]int{}
	tokenVolume := map[string]decimal.Decimal{}
	hashTokens := map[string]map[string]bool{}

	transfers := lo.Map(sorted, func(it explorer.TransferItem, _ int) domain.TransferRecord {
		rec := domain.TransferRecord{
			Hash:        it.BestHash(),
			Timestamp:   it.BestTimestamp(),
			FromAddress: it.FromAddress,
			ToAddress:   it.ToAddress,
			Method:      it.Method,
			Action:      classifyMethod(it.Method),
			Symbol:      tokenLabel(it.Token),
		}

		if it.FromAddress != "" {
			counterparties[it.FromAddress]++
		}
		if it.ToAddress != "" {
			counterparties[it.ToAddress]++
		}

		// an absent fee means no gas data, which the upstream reports as zero
		feeRaw := it.Fee.String()
		if feeRaw == "" {
			feeRaw = "0"
		}
		if fee, defaulted := domain.ParseBaseUnits(feeRaw); !defaulted {
			f := domain.ToDecimalAmount(fee, nativeFeeDecimals)
			rec.Fee = &f
		}

		// the transfer's own decimals win over the token metadata's; an
		// absent field falls back to 18, but a present unparseable one
		// leaves the scale unknown and the amount cannot be trusted
		decimalsRaw := it.Total.Decimals.String()
		if decimalsRaw == "" {
			decimalsRaw = it.Token.Decimals.String()
		}
		decimals, decimalsDefaulted := domain.ParseDecimals(decimalsRaw)
		scaleKnown := decimalsRaw == "" || !decimalsDefaulted

		if value, defaulted := domain.ParseBaseUnits(it.Total.Value.String()); !defaulted && scaleKnown {
			amount := domain.ToDecimalAmount(value, decimals)
			rec.Amount = &amount

			if price := domain.ParsePrice(it.Token.ExchangeRate.String()); price != nil {
				usd := amount.Mul(*price)
				rec.USDValue = &usd
				tokenVolume[rec.Symbol] = tokenVolume[rec.Symbol].Add(usd)
			}
		}

		if rec.Hash != "" {
			if hashTokens[rec.Hash] == nil {
				hashTokens[rec.Hash] = map[string]bool{}
			}
			hashTokens[rec.Hash][rec.Symbol] = true
		}

		return rec
	})

	// a hash moving two or more distinct tokens is a multi-leg swap
	for i, rec := range transfers {
		if rec.Action == domain.ActionTransfer && len(hashTokens[rec.Hash]) >= 2 {
			transfers[i].Action = domain.ActionSwap
		}
	}

	return domain.TransactionReport{
		TransferCount:     len(transfers),
		TransactionCount:  countDistinctHashes(transfers),
		PeriodStart:       transfers[0].Timestamp,
		PeriodEnd:         transfers[len(transfers)-1].Timestamp,
		Transfers:         transfers,
		TopCounterparties: topCounterparties(counterparties, 5),
		TopTokens:         topTokens(tokenVolume, 5),
	}
}

// classifyMethod maps a contract method name to an action, in priority order.
func classifyMethod(method string) domain.TransferAction {
	m := strings.ToLower(method)
	switch {
	case strings.Contains(m, "swap"):
		return domain.ActionSwap
	case m == "claim":
		return domain.ActionClaim
	default:
		return domain.ActionTransfer
	}
}

func tokenLabel(token explorer.TransferToken) string {
	if token.Symbol != "" {
		return token.Symbol
	}
	if token.Name != "" {
		return token.Name
	}
	return "(unknown)"
}

func countDistinctHashes(transfers []domain.TransferRecord) int {
	return len(lo.UniqBy(transfers, func(r domain.TransferRecord) string { return r.Hash }))
}

// topCounterparties returns the n most frequent addresses; ties break by
// address so identical input always yields identical order.
func topCounterparties(counts map[string]int, n int) []domain.Counterparty {
	out := lo.MapToSlice(counts, func(addr string, c int) domain.Counterparty {
		return domain.Counterparty{Address: addr, Interactions: c}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Interactions != out[j].Interactions {
			return out[i].Interactions > out[j].Interactions
		}
		return out[i].Address < out[j].Address
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// topTokens returns the n highest-volume tokens; ties break by symbol.
func topTokens(volumes map[string]decimal.Decimal, n int) []domain.TokenVolume {
	out := lo.MapToSlice(volumes, func(sym string, v decimal.Decimal) domain.TokenVolume {
		return domain.TokenVolume{Symbol: sym, USD: v}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].USD.Equal(out[j].USD) {
			return out[i].USD.GreaterThan(out[j].USD)
		}
		return out[i].Symbol < out[j].Symbol
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
