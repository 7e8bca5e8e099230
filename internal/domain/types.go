package domain

import "github.com/shopspring/decimal"

// Direction classifies a balance change.
type Direction string

const (
	DirectionIncome  Direction = "Income"
	DirectionExpense Direction = "Expense"
	DirectionNone    Direction = "No change"
)

// BalanceChangeEvent is a single native-coin balance change for an address.
// All amounts are integer base units ("wei").
type BalanceChangeEvent struct {
	BlockNumber int64           `json:"blockNumber"`
	Timestamp   string          `json:"timestamp"`
	TxHash      string          `json:"txHash"`
	Delta       decimal.Decimal `json:"delta"`
	NewBalance  decimal.Decimal `json:"newBalance"`
	Direction   Direction       `json:"direction"`
}

// LedgerReport aggregates a chronologically sorted balance-change history.
// Totals are accumulated in integer base units before any decimal conversion
// so rounding error cannot compound across events.
type LedgerReport struct {
	Empty             bool                 `json:"empty"`
	Count             int                  `json:"count"`
	PeriodStart       string               `json:"periodStart"`
	PeriodEnd         string               `json:"periodEnd"`
	Events            []BalanceChangeEvent `json:"events"`
	TotalIncomeUnits  decimal.Decimal      `json:"totalIncomeUnits"`
	TotalExpenseUnits decimal.Decimal      `json:"totalExpenseUnits"`
	NetUnits          decimal.Decimal      `json:"netUnits"`
}

// TokenHolding is one token position with derived valuation fields.
// USDValue is nil when no price is known; absence is never coerced to zero.
type TokenHolding struct {
	Symbol            string           `json:"symbol"`
	Name              string           `json:"name"`
	Decimals          int              `json:"decimals"`
	DecimalsDefaulted bool             `json:"decimalsDefaulted,omitempty"`
	BalanceDefaulted  bool             `json:"balanceDefaulted,omitempty"`
	Amount            decimal.Decimal  `json:"amount"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	USDValue          *decimal.Decimal `json:"usdValue,omitempty"`
	IsStable          bool             `json:"isStable"`
	IsSuspicious      bool             `json:"isSuspicious"`
}

// DisplayName returns the best label for a holding: symbol, then name,
// then "(unknown)".
func (h TokenHolding) DisplayName() string {
	if h.Symbol != "" {
		return h.Symbol
	}
	if h.Name != "" {
		return h.Name
	}
	return "(unknown)"
}

// PortfolioReport is the full valuation of one address's token holdings.
// It is recomputed per request and never mutated after construction.
type PortfolioReport struct {
	TokenCount        int             `json:"tokenCount"`
	PricedCount       int             `json:"pricedCount"`
	TotalUSD          decimal.Decimal `json:"totalUsd"`
	Top1Pct           decimal.Decimal `json:"top1Pct"`
	Top3Pct           decimal.Decimal `json:"top3Pct"`
	Top5              []TokenHolding  `json:"top5"`
	StableHoldings    []TokenHolding  `json:"stableHoldings"`
	UnpricedSymbols   []string        `json:"unpricedSymbols"`
	SuspiciousSymbols []string        `json:"suspiciousSymbols"`
	Holdings          []TokenHolding  `json:"holdings"`
}

// AddressPortfolio pairs a portfolio report with the address it was built for.
type AddressPortfolio struct {
	ChainID string          `json:"chainId"`
	Address string          `json:"address"`
	Report  PortfolioReport `json:"report"`
}

// TransferAction classifies a transfer record.
type TransferAction string

const (
	ActionSwap     TransferAction = "Swap/Trade"
	ActionClaim    TransferAction = "Claim"
	ActionTransfer TransferAction = "Transfer"
)

// TransferRecord is one token transfer leg. Amount, USDValue, and Fee are nil
// when the corresponding upstream field failed to parse; the rest of the
// record stays usable.
type TransferRecord struct {
	Hash        string           `json:"hash"`
	Timestamp   string           `json:"timestamp"`
	FromAddress string           `json:"fromAddress"`
	ToAddress   string           `json:"toAddress"`
	Method      string           `json:"method"`
	Action      TransferAction   `json:"action"`
	Symbol      string           `json:"symbol"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	USDValue    *decimal.Decimal `json:"usdValue,omitempty"`
	Fee         *decimal.Decimal `json:"fee,omitempty"`
}

// Counterparty is an address with its interaction count across a batch.
type Counterparty struct {
	Address      string `json:"address"`
	Interactions int    `json:"interactions"`
}

// TokenVolume is a token symbol with its aggregate estimated USD volume.
type TokenVolume struct {
	Symbol string          `json:"symbol"`
	USD    decimal.Decimal `json:"usd"`
}

// TransactionReport aggregates a batch of transfer records. Records sharing a
// hash belong to one logical transaction (multi-leg swap).
type TransactionReport struct {
	Empty             bool             `json:"empty"`
	TransferCount     int              `json:"transferCount"`
	TransactionCount  int              `json:"transactionCount"`
	PeriodStart       string           `json:"periodStart"`
	PeriodEnd         string           `json:"periodEnd"`
	Transfers         []TransferRecord `json:"transfers"`
	TopCounterparties []Counterparty   `json:"topCounterparties"`
	TopTokens         []TokenVolume    `json:"topTokens"`
}
