// Package render turns aggregated reports into human-readable plain text.
//
// Two renderers exist: a generative one backed by a chat model, and a pure
// deterministic one. Callers try the generative renderer first and fall back
// to the deterministic one, so the deterministic output is the contract:
// identical input must produce byte-identical text.
package render

import (
	"context"

	"github.com/abcd5251/PawXAI/internal/domain"
)

// TextRenderer renders reports as plain English text.
type TextRenderer interface {
	RenderPortfolio(ctx context.Context, report domain.PortfolioReport) (string, error)
	RenderTransactions(ctx context.Context, report domain.TransactionReport) (string, error)
}
