package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// amountPrecision is the maximum number of fractional digits shown for token amounts.
const amountPrecision = 8

func init() {
	// Wei-scale balances (up to 2**256) multiplied by fiat rates need far more
	// headroom than the library default of 16 digits.
	if decimal.DivisionPrecision < 50 {
		decimal.DivisionPrecision = 50
	}
}

// ToDecimalAmount converts an integer base-unit amount into token units as
// raw / 10^decimals. The conversion is an exponent shift, so it is exact for
// any magnitude.
func ToDecimalAmount(raw decimal.Decimal, decimals int) decimal.Decimal {
	return raw.Shift(int32(-decimals))
}

// FormatAmount renders a token amount with up to 8 fractional digits,
// stripping trailing zeros and a dangling decimal point. Zero renders as "0".
func FormatAmount(d decimal.Decimal) string {
	s := d.Round(amountPrecision).StringFixed(amountPrecision)
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// FormatUSD renders a fiat value with exactly 2 fractional digits.
func FormatUSD(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatPercent renders a percentage with exactly 1 fractional digit.
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1)
}

// FormatBaseUnits renders an integer base-unit amount with comma-grouped digits.
func FormatBaseUnits(d decimal.Decimal) string {
	s := d.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// ShortAddress shortens an address to first6…last4 for display.
// Short or empty input is returned unchanged.
func ShortAddress(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// ShortHash shortens a transaction hash to first10…last8 for display.
// Short or empty input is returned unchanged.
func ShortHash(hash string) string {
	if len(hash) < 10 {
		return hash
	}
	return hash[:10] + "…" + hash[len(hash)-8:]
}

// FormatTimestamp renders an ISO-8601 timestamp as "YYYY-MM-DD HH:MM:SS UTC".
// Unparseable input is returned unchanged so a bad upstream field never
// aborts a report.
func FormatTimestamp(ts string) string {
	if ts == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format("2006-01-02 15:04:05") + " UTC"
}
