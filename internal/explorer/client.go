package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrUpstream marks failures of the upstream explorer API (non-2xx responses,
// invalid JSON). Callers map it to a gateway error, distinct from "no data".
var ErrUpstream = errors.New("upstream explorer error")

// Client is an HTTP client for the explorer proxy API with retry on 429.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewClient creates a new explorer API client.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, baseDelay time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// FetchBalanceHistory retrieves the native-coin balance history for an address.
func (c *Client) FetchBalanceHistory(ctx context.Context, chainID, address string) ([]BalanceHistoryItem, error) {
	params := url.Values{}
	params.Set("chain_id", chainID)
	params.Set("endpoint_path", fmt.Sprintf("/api/v2/addresses/%s/coin-balance-history", address))

	raw, err := c.getItems(ctx, "/v1/direct_api_call?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return decodeItems[BalanceHistoryItem](raw), nil
}

// FetchTokenHoldings retrieves the token holdings for an address.
func (c *Client) FetchTokenHoldings(ctx context.Context, chainID, address string) ([]TokenHoldingItem, error) {
	params := url.Values{}
	params.Set("chain_id", chainID)
	params.Set("address", address)

	raw, err := c.getItems(ctx, "/v1/get_tokens_by_address?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return decodeItems[TokenHoldingItem](raw), nil
}

// FetchTransfers retrieves the token transfer records for an address.
func (c *Client) FetchTransfers(ctx context.Context, chainID, address string) ([]TransferItem, error) {
	params := url.Values{}
	params.Set("chain_id", chainID)
	params.Set("address", address)

	raw, err := c.getItems(ctx, "/v1/get_transactions_by_address?"+params.Encode())
	if err != nil {
		return nil, err
	}
	return decodeItems[TransferItem](raw), nil
}

// getItems performs a GET request and extracts the item list from whatever
// envelope the upstream wrapped it in.
func (c *Client) getItems(ctx context.Context, path string) ([]json.RawMessage, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	items, err := extractItems(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing response from %s: %v", ErrUpstream, path, err)
	}
	return items, nil
}

// get performs a GET request with exponential-backoff retry on 429.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	reqURL := c.baseURL + path

	var lastErr error
	for attempt := range c.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: executing request: %v", ErrUpstream, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("%w: HTTP 429 at %s (attempt %d/%d)", ErrUpstream, reqURL, attempt+1, c.maxRetries+1)
			if attempt < c.maxRetries {
				delay := c.baseDelay * time.Duration(1<<uint(attempt))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, lastErr
		}

		return nil, fmt.Errorf("%w: HTTP %d from %s: %s", ErrUpstream, resp.StatusCode, reqURL, string(body))
	}

	return nil, lastErr
}

// extractItems pulls the record list out of an upstream payload. The list may
// be the top-level value or live under items, data, data.items, data.data, or
// data.transactions. A payload with none of these yields an empty list.
func extractItems(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var env struct {
		Items        json.RawMessage `json:"items"`
		Data         json.RawMessage `json:"data"`
		Transactions json.RawMessage `json:"transactions"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}

	for _, inner := range []json.RawMessage{env.Items, env.Transactions} {
		if isArray(inner) {
			var items []json.RawMessage
			if err := json.Unmarshal(inner, &items); err != nil {
				return nil, err
			}
			return items, nil
		}
	}

	// recurse only into a nested container; a scalar data value (string,
	// number, null) carries no records and degrades to an empty list
	if inner := bytes.TrimSpace(env.Data); len(inner) > 0 && (inner[0] == '{' || inner[0] == '[') {
		return extractItems(inner)
	}

	return nil, nil
}

func isArray(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '['
}

// decodeItems unmarshals each raw record, skipping entries that are not
// objects of the expected shape. A skipped record is logged; it never aborts
// the batch.
func decodeItems[T any](raw []json.RawMessage) []T {
	items := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			slog.Warn("skipping malformed explorer record", "error", err)
			continue
		}
		items = append(items, item)
	}
	return items
}
