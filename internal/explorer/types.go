package explorer

import "encoding/json"

// FlexString unmarshals a JSON string, number, or null into a plain string.
// Upstream explorers are inconsistent about quoting numeric fields; a field
// that cannot be made sense of degrades at parse time, not at decode time.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(b)
	return nil
}

// String returns the underlying string value.
func (f FlexString) String() string { return string(f) }

// BalanceHistoryItem is one entry of a coin-balance-history response.
type BalanceHistoryItem struct {
	BlockNumber     FlexString `json:"block_number"`
	BlockTimestamp  string     `json:"block_timestamp"`
	TransactionHash string     `json:"transaction_hash"`
	Delta           FlexString `json:"delta"`
	Value           FlexString `json:"value"`
}

// TokenHoldingItem is one entry of a tokens-by-address response.
type TokenHoldingItem struct {
	Symbol       string     `json:"symbol"`
	Name         string     `json:"name"`
	Decimals     FlexString `json:"decimals"`
	Balance      FlexString `json:"balance"`
	ExchangeRate FlexString `json:"exchange_rate"`
}

// TransferToken describes the token of a transfer record.
type TransferToken struct {
	Symbol       string     `json:"symbol"`
	Name         string     `json:"name"`
	Decimals     FlexString `json:"decimals"`
	ExchangeRate FlexString `json:"exchange_rate"`
}

// TransferTotal carries the transferred amount of a transfer record.
type TransferTotal struct {
	Value    FlexString `json:"value"`
	Decimals FlexString `json:"decimals"`
}

// TransferItem is one entry of a transactions-by-address response.
type TransferItem struct {
	Hash            string        `json:"hash"`
	TransactionHash string        `json:"transaction_hash"`
	FromAddress     string        `json:"from_address"`
	ToAddress       string        `json:"to_address"`
	Timestamp       string        `json:"timestamp"`
	BlockTimestamp  string        `json:"block_timestamp"`
	Method          string        `json:"method"`
	Token           TransferToken `json:"token"`
	Total           TransferTotal `json:"total"`
	Fee             FlexString    `json:"fee"`
}

// BestHash returns the transaction hash under whichever key the upstream used.
func (t TransferItem) BestHash() string {
	if t.Hash != "" {
		return t.Hash
	}
	return t.TransactionHash
}

// BestTimestamp returns the record timestamp, falling back to the block
// timestamp, then to the empty string.
func (t TransferItem) BestTimestamp() string {
	if t.Timestamp != "" {
		return t.Timestamp
	}
	return t.BlockTimestamp
}
