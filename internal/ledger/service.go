package ledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/abcd5251/PawXAI/internal/domain"
	"github.com/abcd5251/PawXAI/internal/explorer"
)

// HistoryClient defines the subset of the explorer API used by the ledger Service.
type HistoryClient interface {
	FetchBalanceHistory(ctx context.Context, chainID, address string) ([]explorer.BalanceHistoryItem, error)
}

// Service builds balance-change ledger reports for an address.
type Service struct {
	client HistoryClient
}

// NewService creates a new ledger Service.
func NewService(client HistoryClient) *Service {
	return &Service{client: client}
}

// Report fetches the balance history for an address and aggregates it.
func (s *Service) Report(ctx context.Context, chainID, address string) (domain.LedgerReport, error) {
	items, err := s.client.FetchBalanceHistory(ctx, chainID, address)
	if err != nil {
		return domain.LedgerReport{}, fmt.Errorf("fetching balance history for %s: %w", address, err)
	}
	return BuildReport(items), nil
}

// BuildReport aggregates balance-change items into a LedgerReport.
// Items are sorted oldest to newest by their raw timestamp string; the
// upstream normalizes all timestamps to UTC, so lexicographic order is
// chronological order. Totals accumulate in integer base units only.
func BuildReport(items []explorer.BalanceHistoryItem) domain.LedgerReport {
	if len(items) == 0 {
		return domain.LedgerReport{Empty: true}
	}

	sorted := make([]explorer.BalanceHistoryItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BlockTimestamp < sorted[j].BlockTimestamp
	})

	totalIncome := decimal.Zero
	totalExpense := decimal.Zero

	events := lo.Map(sorted, func(it explorer.BalanceHistoryItem, _ int) domain.BalanceChangeEvent {
		delta, _ := domain.ParseBaseUnits(it.Delta.String())
		balance, _ := domain.ParseBaseUnits(it.Value.String())
		blockNumber, _ := strconv.ParseInt(it.BlockNumber.String(), 10, 64)

		direction := domain.DirectionNone
		switch {
		case delta.IsPositive():
			direction = domain.DirectionIncome
			totalIncome = totalIncome.Add(delta)
		case delta.IsNegative():
			direction = domain.DirectionExpense
			totalExpense = totalExpense.Add(delta.Neg())
		}

		return domain.BalanceChangeEvent{
			BlockNumber: blockNumber,
			Timestamp:   it.BlockTimestamp,
			TxHash:      it.TransactionHash,
			Delta:       delta,
			NewBalance:  balance,
			Direction:   direction,
		}
	})

	return domain.LedgerReport{
		Count:             len(events),
		PeriodStart:       events[0].Timestamp,
		PeriodEnd:         events[len(events)-1].Timestamp,
		Events:            events,
		TotalIncomeUnits:  totalIncome,
		TotalExpenseUnits: totalExpense,
		NetUnits:          totalIncome.Sub(totalExpense),
	}
}
