// =============================
// File: internal/tui/client.go
// =============================

// Package tui is the terminal dashboard for a running curved daemon: live
// market state, recent trades, and a trade entry line, all over the HTTP
// API.
package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/opencurve/curved/internal/market"
)

// TradeResult mirrors the API's trade response.
type TradeResult struct {
	Side      string `json:"side"`
	GrossIn   string `json:"gross_in"`
	Fee       string `json:"fee"`
	AmountOut string `json:"amount_out"`
}

// Client is a thin API client. Reads retry with exponential backoff; trades
// are submitted exactly once.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a client for the API at base (e.g. http://localhost:8085).
func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

// Market fetches the current market snapshot.
func (c *Client) Market(ctx context.Context) (market.Snapshot, error) {
	var snap market.Snapshot
	err := c.getJSON(ctx, "/api/v1/market", &snap)
	return snap, err
}

// Trades fetches up to limit recent trades, oldest first.
func (c *Client) Trades(ctx context.Context, limit int) ([]market.Trade, error) {
	var trades []market.Trade
	err := c.getJSON(ctx, fmt.Sprintf("/api/v1/trades?limit=%d", limit), &trades)
	return trades, err
}

// Buy submits a buy of ethIn wei for address.
func (c *Client) Buy(ctx context.Context, address, ethIn string) (TradeResult, error) {
	return c.postTrade(ctx, "/api/v1/buy", map[string]string{
		"address": address, "eth_in": ethIn,
	})
}

// Sell submits a sell of tokensIn token-wei for address.
func (c *Client) Sell(ctx context.Context, address, tokensIn string) (TradeResult, error) {
	return c.postTrade(ctx, "/api/v1/sell", map[string]string{
		"address": address, "tokens_in": tokensIn,
	})
}

func (c *Client) getJSON(ctx context.Context, path string, v interface{}) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(apiError(resp.StatusCode, body))
		}
		return body, nil
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(4))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func (c *Client) postTrade(ctx context.Context, path string, payload map[string]string) (TradeResult, error) {
	var result TradeResult

	raw, err := json.Marshal(payload)
	if err != nil {
		return result, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(raw))
	if err != nil {
		return result, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, err
	}
	if resp.StatusCode != http.StatusOK {
		return result, apiError(resp.StatusCode, body)
	}
	return result, json.Unmarshal(body, &result)
}

func apiError(status int, body []byte) error {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return fmt.Errorf("api %d: %s", status, parsed.Error)
	}
	return fmt.Errorf("api %d", status)
}
