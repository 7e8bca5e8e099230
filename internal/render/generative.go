package render

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"github.com/abcd5251/PawXAI/internal/domain"
)

const portfolioPrompt = `You are a Web3 investment advisor. You will be given a token portfolio snapshot for a specific address (including each token's amount, price, valuation, statistics, and risk alerts). Rewrite it in clear, human-readable English according to the following rules:

Start with a brief overview (how many tokens are held, total estimated value in USD, and whether the holdings are concentrated).

List the Top 5 tokens (Symbol, amount, ≈USD value).

Summarize stablecoin holdings and liquidity (if a token's price is missing, note "No available price").

Identify tokens with no price / cannot be valued.

If there is any phishing or look-alike risk (e.g., a fake USDC token with special characters), clearly point it out.

End with a short risk reminder sentence.

Output plain English text only — do not output JSON or code.`

const transactionsPrompt = `You are a Web3 on-chain analyst. You will be given a JSON payload containing token transfer records for a single address, already aggregated: each record carries a hash, timestamp, from/to addresses, an action label (Swap/Trade, Claim, or Transfer), token symbol, converted amount, estimated USD value, and gas fee, plus top counterparties and top tokens by USD volume. Rewrite it into clear, human-readable English:

- Plain English only; do not output JSON, code, or tables.
- Start with a brief overview: number of transfers and transactions, and the date range.
- Then list each transfer as a short bullet: timestamp (UTC) — [Action] — [from_short] → [to_short] — [amount token] (≈ USD or "no available price"); gas — hash_short. Use short formats like 0xF7Fa…47a1 for addresses and hashes.
- A null amount, USD value, or fee means the field was unavailable; say so rather than inventing a number.
- After the bullets, summarize the top counterparties (by interaction count) and top tokens (by approximate USD volume).
- Flag zero-value transfers and look-alike token symbols (Unicode variants such as "UЅDС") if present.`

// Generative renders reports with a chat completion model at temperature
// zero. Any transport or API failure is returned to the caller, which is
// expected to fall back to the Deterministic renderer.
type Generative struct {
	client *openai.Client
	model  string
}

// NewGenerative creates a Generative renderer for the given API key and model.
func NewGenerative(apiKey, model string) *Generative {
	return &Generative{client: openai.NewClient(apiKey), model: model}
}

// RenderPortfolio implements TextRenderer.
func (g *Generative) RenderPortfolio(ctx context.Context, report domain.PortfolioReport) (string, error) {
	return g.complete(ctx, portfolioPrompt, "tokens_snapshot", report)
}

// RenderTransactions implements TextRenderer.
func (g *Generative) RenderTransactions(ctx context.Context, report domain.TransactionReport) (string, error) {
	return g.complete(ctx, transactionsPrompt, "transfers_snapshot", report)
}

func (g *Generative) complete(ctx context.Context, systemPrompt, label string, payload any) (string, error) {
	content, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling %s: %w", label, err)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		// a literal zero is dropped by omitempty and falls back to the
		// API default, so send the smallest value that survives encoding
		Temperature: math.SmallestNonzeroFloat32,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: label + ":" + string(content) + "\nOUTPUT:"},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
