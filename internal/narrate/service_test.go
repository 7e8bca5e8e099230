package narrate

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/abcd5251/PawXAI/internal/domain"
	"github.com/abcd5251/PawXAI/internal/explorer"
)

type mockTransferClient struct {
	items []explorer.TransferItem
	err   error
}

func (m *mockTransferClient) FetchTransfers(_ context.Context, _, _ string) ([]explorer.TransferItem, error) {
	return m.items, m.err
}

func transferItem(hash, ts, from, to, method, symbol, value, decimals, rate, fee string) explorer.TransferItem {
	return explorer.TransferItem{
		Hash:        hash,
		Timestamp:   ts,
		FromAddress: from,
		ToAddress:   to,
		Method:      method,
		Token: explorer.TransferToken{
			Symbol:       symbol,
			Decimals:     explorer.FlexString(decimals),
			ExchangeRate: explorer.FlexString(rate),
		},
		Total: explorer.TransferTotal{
			Value:    explorer.FlexString(value),
			Decimals: explorer.FlexString(decimals),
		},
		Fee: explorer.FlexString(fee),
	}
}

func TestBuildReportAmountsAndFees(t *testing.T) {
	items := []explorer.TransferItem{
		transferItem("0xaa", "2024-01-01T00:00:00Z", "0xf1", "0xf2", "transfer",
			"USDC", "2500000", "6", "1", "21000000000000"),
	}

	report := BuildReport(items)

	if report.TransferCount != 1 || report.TransactionCount != 1 {
		t.Fatalf("counts = %d/%d, want 1/1", report.TransferCount, report.TransactionCount)
	}
	rec := report.Transfers[0]
	if rec.Amount == nil || !rec.Amount.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("Amount = %v, want 2.5", rec.Amount)
	}
	if rec.USDValue == nil || !rec.USDValue.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("USDValue = %v, want 2.5", rec.USDValue)
	}
	if rec.Fee == nil || !rec.Fee.Equal(decimal.RequireFromString("0.000021")) {
		t.Errorf("Fee = %v, want 0.000021", rec.Fee)
	}
}

func TestBuildReportActionClassification(t *testing.T) {
	tests := []struct {
		method string
		want   domain.TransferAction
	}{
		{"swapExactETHForTokens", domain.ActionSwap},
		{"SwapAndBridge", domain.ActionSwap},
		{"claim", domain.ActionClaim},
		{"claimRewards", domain.ActionTransfer},
		{"transfer", domain.ActionTransfer},
		{"", domain.ActionTransfer},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			if got := classifyMethod(tt.method); got != tt.want {
				t.Errorf("classifyMethod(%q) = %q, want %q", tt.method, got, tt.want)
			}
		})
	}
}

func TestBuildReportMultiTokenHashBecomesSwap(t *testing.T) {
	items := []explorer.TransferItem{
		transferItem("0xaa", "2024-01-01T00:00:00Z", "0xf1", "0xf2", "execute",
			"USDC", "1000000", "6", "1", ""),
		transferItem("0xaa", "2024-01-01T00:00:00Z", "0xf2", "0xf1", "execute",
			"WETH", "1000000000000000000", "18", "2000", ""),
		transferItem("0xbb", "2024-01-02T00:00:00Z", "0xf1", "0xf3", "execute",
			"USDC", "1000000", "6", "1", ""),
	}

	report := BuildReport(items)

	if report.TransferCount != 3 {
		t.Fatalf("TransferCount = %d, want 3", report.TransferCount)
	}
	if report.TransactionCount != 2 {
		t.Errorf("TransactionCount = %d, want 2", report.TransactionCount)
	}
	for _, rec := range report.Transfers[:2] {
		if rec.Action != domain.ActionSwap {
			t.Errorf("hash 0xaa record action = %q, want %q", rec.Action, domain.ActionSwap)
		}
	}
	if got := report.Transfers[2].Action; got != domain.ActionTransfer {
		t.Errorf("hash 0xbb record action = %q, want %q", got, domain.ActionTransfer)
	}
}

func TestBuildReportSortsByTimestamp(t *testing.T) {
	items := []explorer.TransferItem{
		transferItem("0xcc", "2024-03-01T00:00:00Z", "0xf1", "0xf2", "transfer", "USDC", "1", "6", "", ""),
		transferItem("0xaa", "2024-01-01T00:00:00Z", "0xf1", "0xf2", "transfer", "USDC", "1", "6", "", ""),
		transferItem("0xbb", "2024-02-01T00:00:00Z", "0xf1", "0xf2", "transfer", "USDC", "1", "6", "", ""),
	}

	report := BuildReport(items)

	if report.Transfers[0].Hash != "0xaa" || report.Transfers[2].Hash != "0xcc" {
		t.Errorf("sort order = %s, %s, %s", report.Transfers[0].Hash, report.Transfers[1].Hash, report.Transfers[2].Hash)
	}
	if report.PeriodStart != "2024-01-01T00:00:00Z" || report.PeriodEnd != "2024-03-01T00:00:00Z" {
		t.Errorf("period = %s .. %s", report.PeriodStart, report.PeriodEnd)
	}
}

func TestBuildReportMissingTimestampSortsFirst(t *testing.T) {
	items := []explorer.TransferItem{
		transferItem("0xbb", "2024-02-01T00:00:00Z", "0xf1", "0xf2", "transfer", "USDC", "1", "6", "", ""),
		transferItem("0xaa", "", "0xf1", "0xf2", "transfer", "USDC", "1", "6", "", ""),
	}

	report := BuildReport(items)

	if report.Transfers[0].Hash != "0xaa" {
		t.Errorf("first record = %s, want 0xaa", report.Transfers[0].Hash)
	}
	if report.PeriodStart != "" {
		t.Errorf("PeriodStart = %q, want empty", report.PeriodStart)
	}
}

func TestBuildReportMalformedFieldsDegrade(t *testing.T) {
	items := []explorer.TransferItem{
		transferItem("0xaa", "2024-01-01T00:00:00Z", "0xf1", "0xf2", "transfer",
			"USDC", "not-a-number", "6", "1", "garbage"),
	}

	report := BuildReport(items)

	rec := report.Transfers[0]
	if rec.Amount != nil {
		t.Errorf("Amount = %v, want nil", rec.Amount)
	}
	if rec.USDValue != nil {
		t.Errorf("USDValue = %v, want nil", rec.USDValue)
	}
	if rec.Fee != nil {
		t.Errorf("Fee = %v, want nil", rec.Fee)
	}
	if report.TransferCount != 1 {
		t.Errorf("TransferCount = %d, want 1 (record must not be dropped)", report.TransferCount)
	}
}

func TestBuildReportMalformedDecimalsDegradesAmount(t *testing.T) {
	items := []explorer.TransferItem{
		transferItem("0xaa", "2024-01-01T00:00:00Z", "0xf1", "0xf2", "transfer",
			"TKN", "5000000", "abc", "1", ""),
	}

	report := BuildReport(items)

	rec := report.Transfers[0]
	if rec.Amount != nil {
		t.Errorf("Amount = %v, want nil (scale unknown)", rec.Amount)
	}
	if rec.USDValue != nil {
		t.Errorf("USDValue = %v, want nil", rec.USDValue)
	}
	if len(report.TopTokens) != 0 {
		t.Errorf("TopTokens = %v, want empty (no volume from an unknown scale)", report.TopTokens)
	}
	if report.TransferCount != 1 {
		t.Errorf("TransferCount = %d, want 1 (record must not be dropped)", report.TransferCount)
	}
}

func TestBuildReportAbsentDecimalsFallsBack(t *testing.T) {
	items := []explorer.TransferItem{
		{
			Hash:      "0xaa",
			Timestamp: "2024-01-01T00:00:00Z",
			Method:    "transfer",
			Token:     explorer.TransferToken{Symbol: "WETH"},
			Total:     explorer.TransferTotal{Value: "1000000000000000000"},
		},
	}

	report := BuildReport(items)

	rec := report.Transfers[0]
	if rec.Amount == nil || !rec.Amount.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Amount = %v, want 1 (absent decimals defaults to 18)", rec.Amount)
	}
}

func TestBuildReportAbsentFeeIsZero(t *testing.T) {
	items := []explorer.TransferItem{
		transferItem("0xaa", "2024-01-01T00:00:00Z", "0xf1", "0xf2", "transfer",
			"USDC", "1000000", "6", "1", ""),
	}

	report := BuildReport(items)

	rec := report.Transfers[0]
	if rec.Fee == nil || !rec.Fee.IsZero() {
		t.Errorf("Fee = %v, want 0 (absent fee is zero, not unknown)", rec.Fee)
	}
}

func TestBuildReportMissingRateSkipsUSD(t *testing.T) {
	items := []explorer.TransferItem{
		transferItem("0xaa", "2024-01-01T00:00:00Z", "0xf1", "0xf2", "transfer",
			"MEME", "1000000000000000000", "18", "", ""),
	}

	report := BuildReport(items)

	rec := report.Transfers[0]
	if rec.Amount == nil || !rec.Amount.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Amount = %v, want 1", rec.Amount)
	}
	if rec.USDValue != nil {
		t.Errorf("USDValue = %v, want nil", rec.USDValue)
	}
	if len(report.TopTokens) != 0 {
		t.Errorf("TopTokens = %v, want empty (no USD volume without a rate)", report.TopTokens)
	}
}

func TestBuildReportTopCounterparties(t *testing.T) {
	items := []explorer.TransferItem{
		transferItem("0x1", "2024-01-01T00:00:00Z", "0xaaa", "0xbbb", "transfer", "USDC", "1", "6", "", ""),
		transferItem("0x2", "2024-01-02T00:00:00Z", "0xaaa", "0xccc", "transfer", "USDC", "1", "6", "", ""),
		transferItem("0x3", "2024-01-03T00:00:00Z", "0xbbb", "0xaaa", "transfer", "USDC", "1", "6", "", ""),
	}

	report := BuildReport(items)

	if len(report.TopCounterparties) != 3 {
		t.Fatalf("len(TopCounterparties) = %d, want 3", len(report.TopCounterparties))
	}
	top := report.TopCounterparties[0]
	if top.Address != "0xaaa" || top.Interactions != 3 {
		t.Errorf("top counterparty = %s (%d), want 0xaaa (3)", top.Address, top.Interactions)
	}
	// 0xbbb and 0xccc tie at 2 and 1; order is count desc then address asc
	if report.TopCounterparties[1].Address != "0xbbb" {
		t.Errorf("second counterparty = %s, want 0xbbb", report.TopCounterparties[1].Address)
	}
}

func TestBuildReportTopCounterpartiesTieBreak(t *testing.T) {
	items := []explorer.TransferItem{
		transferItem("0x1", "2024-01-01T00:00:00Z", "0xzz", "0xaa", "transfer", "USDC", "1", "6", "", ""),
	}

	report := BuildReport(items)

	if len(report.TopCounterparties) != 2 {
		t.Fatalf("len(TopCounterparties) = %d, want 2", len(report.TopCounterparties))
	}
	if report.TopCounterparties[0].Address != "0xaa" {
		t.Errorf("tie-break: first = %s, want 0xaa", report.TopCounterparties[0].Address)
	}
}

func TestBuildReportTopTokensByVolume(t *testing.T) {
	items := []explorer.TransferItem{
		transferItem("0x1", "2024-01-01T00:00:00Z", "0xf1", "0xf2", "transfer",
			"USDC", "100000000", "6", "1", ""),
		transferItem("0x2", "2024-01-02T00:00:00Z", "0xf1", "0xf2", "transfer",
			"WETH", "1000000000000000000", "18", "2000", ""),
		transferItem("0x3", "2024-01-03T00:00:00Z", "0xf1", "0xf2", "transfer",
			"USDC", "50000000", "6", "1", ""),
	}

	report := BuildReport(items)

	if len(report.TopTokens) != 2 {
		t.Fatalf("len(TopTokens) = %d, want 2", len(report.TopTokens))
	}
	if report.TopTokens[0].Symbol != "WETH" || !report.TopTokens[0].USD.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("top token = %s %s, want WETH 2000", report.TopTokens[0].Symbol, report.TopTokens[0].USD)
	}
	if report.TopTokens[1].Symbol != "USDC" || !report.TopTokens[1].USD.Equal(decimal.NewFromInt(150)) {
		t.Errorf("second token = %s %s, want USDC 150", report.TopTokens[1].Symbol, report.TopTokens[1].USD)
	}
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(nil)
	if !report.Empty {
		t.Error("Empty = false, want true")
	}
	if report.TransferCount != 0 || len(report.Transfers) != 0 {
		t.Errorf("empty report carries data: %+v", report)
	}
}

func TestBuildReportUnknownToken(t *testing.T) {
	items := []explorer.TransferItem{
		transferItem("0xaa", "2024-01-01T00:00:00Z", "0xf1", "0xf2", "transfer",
			"", "1000", "18", "", ""),
	}

	report := BuildReport(items)

	if got := report.Transfers[0].Symbol; got != "(unknown)" {
		t.Errorf("Symbol = %q, want (unknown)", got)
	}
}

func TestBuildReportAlternateKeys(t *testing.T) {
	items := []explorer.TransferItem{
		{
			TransactionHash: "0xalt",
			BlockTimestamp:  "2024-01-01T00:00:00Z",
			FromAddress:     "0xf1",
			ToAddress:       "0xf2",
			Method:          "transfer",
			Token:           explorer.TransferToken{Symbol: "USDC", Decimals: "6"},
			Total:           explorer.TransferTotal{Value: "1000000"},
		},
	}

	report := BuildReport(items)

	rec := report.Transfers[0]
	if rec.Hash != "0xalt" {
		t.Errorf("Hash = %q, want 0xalt", rec.Hash)
	}
	if rec.Timestamp != "2024-01-01T00:00:00Z" {
		t.Errorf("Timestamp = %q", rec.Timestamp)
	}
	if rec.Amount == nil || !rec.Amount.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Amount = %v, want 1 (token decimals fallback)", rec.Amount)
	}
}

func TestServiceReportPropagatesError(t *testing.T) {
	svc := NewService(&mockTransferClient{err: explorer.ErrUpstream})

	_, err := svc.Report(context.Background(), "8453", "0xabc")
	if !errors.Is(err, explorer.ErrUpstream) {
		t.Errorf("err = %v, want ErrUpstream", err)
	}
}

func TestServiceReport(t *testing.T) {
	svc := NewService(&mockTransferClient{items: []explorer.TransferItem{
		transferItem("0xaa", "2024-01-01T00:00:00Z", "0xf1", "0xf2", "transfer",
			"USDC", "1000000", "6", "1", ""),
	}})

	report, err := svc.Report(context.Background(), "8453", "0xabc")
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if report.TransferCount != 1 {
		t.Errorf("TransferCount = %d, want 1", report.TransferCount)
	}
}
