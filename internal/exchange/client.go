// Package exchange is the HTTP client for the prediction-market CLOB:
// auth handshake, market metadata, orderbook depth, order submission, and
// account positions/orders. Every request carries the static API key
// header; personal endpoints additionally carry a bearer token obtained
// through the challenge/response handshake.
package exchange

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/predict-account/internal/signing"
	"github.com/mselser95/predict-account/pkg/types"
	"go.uber.org/zap"
)

// maxAttempts bounds retries for transport failures and 5xx responses.
// A 4xx response is terminal on the first attempt.
const maxAttempts = 3

// orderbookPaths are the candidate orderbook endpoints, tried in this
// canonical order. The exchange has moved the endpoint twice; older
// deployments still answer on the legacy paths.
//
//nolint:gochecknoglobals // Fixed endpoint resolution order
var orderbookPaths = []string{
	"/v1/markets/%s/orderbook",
	"/orderbook/%s",
	"/v1/orderbook/%s",
}

// tokenKeys are the accepted aliases for the bearer token in the auth
// response, in resolution order.
//
//nolint:gochecknoglobals // Fixed alias list
var tokenKeys = []string{"token", "jwt"}

// Client talks to the exchange HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	retryDelay time.Duration
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *zap.Logger

	// RetryDelay is the base backoff between attempts; attempt n waits
	// n*RetryDelay. Overridden in tests.
	RetryDelay time.Duration
}

// New creates an exchange client.
func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
		retryDelay: retryDelay,
	}
}

// AuthMessage fetches the challenge message to sign. address may be empty
// for the smart-account flow, which uses an address-less challenge.
func (c *Client) AuthMessage(ctx context.Context, address string) (string, error) {
	endpoint := c.baseURL + "/v1/auth/message"
	if address != "" {
		endpoint += "?address=" + url.QueryEscape(address)
	}

	body, err := c.get(ctx, endpoint, "", "auth_message")
	if err != nil {
		return "", fmt.Errorf("fetch auth message: %w", err)
	}

	var payload struct {
		Message string `json:"message"`
		Data    struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode auth message: %w", err)
	}

	if payload.Data.Message != "" {
		return payload.Data.Message, nil
	}
	if payload.Message != "" {
		return payload.Message, nil
	}

	return "", &types.AuthenticationError{Reason: "auth message missing from response"}
}

// ExchangeToken trades a signed challenge for a bearer token. Fails with
// AuthenticationError when the response carries no token under any
// recognized key.
func (c *Client) ExchangeToken(ctx context.Context, signer, message, signature string) (string, error) {
	if signature != "" && !strings.HasPrefix(signature, "0x") {
		signature = "0x" + signature
	}

	reqBody, err := json.Marshal(map[string]string{
		"signer":    signer,
		"message":   message,
		"signature": signature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal auth request: %w", err)
	}

	body, err := c.post(ctx, c.baseURL+"/v1/auth", "", reqBody, "auth")
	if err != nil {
		return "", fmt.Errorf("exchange token: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("decode auth response: %w", err)
	}

	// Token may sit at the top level or under a data envelope.
	if data, ok := raw["data"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(data, &inner); err == nil {
			if token := types.FirstString(inner, tokenKeys); token != "" {
				return token, nil
			}
		}
	}
	if token := types.FirstString(raw, tokenKeys); token != "" {
		return token, nil
	}

	return "", &types.AuthenticationError{Reason: "no token field in auth response"}
}

// Authenticate runs the full handshake for a signer: fetch challenge, sign
// it, trade for a bearer token. Tokens are opaque and time-limited; the
// caller holds it only for the duration of one operation.
func (c *Client) Authenticate(ctx context.Context, signer signing.Signer) (string, error) {
	message, err := c.AuthMessage(ctx, signer.ChallengeAddress())
	if err != nil {
		return "", err
	}

	signature, err := signer.SignMessage(message)
	if err != nil {
		return "", err
	}

	return c.ExchangeToken(ctx, signer.Address(), message, signature)
}

// GetMarket fetches market metadata by id, retrying transport and
// server-side failures.
func (c *Client) GetMarket(ctx context.Context, marketID string) (*types.Market, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, err := c.get(ctx, c.baseURL+"/v1/markets/"+url.PathEscape(marketID), "", "market")
		if err != nil {
			lastErr = err
			if !types.IsRetryable(err) {
				break
			}
			if attempt < maxAttempts {
				c.sleep(ctx, attempt)
			}
			continue
		}

		var market types.Market
		if err := json.Unmarshal(unwrapData(body), &market); err != nil {
			return nil, fmt.Errorf("decode market %s: %w", marketID, err)
		}
		if market.ID == "" {
			market.ID = marketID
		}
		return &market, nil
	}

	return nil, fmt.Errorf("fetch market %s: %w", marketID, lastErr)
}

// GetOrderbook fetches market depth, trying the candidate paths in
// canonical order within each retry round.
func (c *Client) GetOrderbook(ctx context.Context, marketID string) (*types.Orderbook, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		for _, p := range orderbookPaths {
			endpoint := c.baseURL + fmt.Sprintf(p, url.PathEscape(marketID))

			body, err := c.get(ctx, endpoint, "", "orderbook")
			if err != nil {
				lastErr = err
				continue
			}

			var book types.Orderbook
			if err := json.Unmarshal(unwrapData(body), &book); err != nil {
				return nil, fmt.Errorf("decode orderbook %s: %w", marketID, err)
			}
			if book.MarketID == "" {
				book.MarketID = marketID
			}
			return &book, nil
		}
		if attempt < maxAttempts {
			c.sleep(ctx, attempt)
		}
	}

	return nil, fmt.Errorf("fetch orderbook %s: %w", marketID, lastErr)
}

// GetOpenMarkets lists currently open markets.
func (c *Client) GetOpenMarkets(ctx context.Context, limit int) ([]*types.Market, error) {
	endpoint := fmt.Sprintf("%s/v1/markets?status=OPEN&limit=%d", c.baseURL, limit)

	body, err := c.get(ctx, endpoint, "", "markets")
	if err != nil {
		return nil, fmt.Errorf("fetch open markets: %w", err)
	}

	var markets []*types.Market
	if err := json.Unmarshal(unwrapData(body), &markets); err != nil {
		return nil, fmt.Errorf("decode open markets: %w", err)
	}
	return markets, nil
}

// GetPositions fetches raw position records for an address. The records
// are kept as loose maps: the close-position planner tolerates schema
// drift by resolving field aliases itself.
func (c *Client) GetPositions(ctx context.Context, address, token string) ([]map[string]any, error) {
	endpoint := c.baseURL + "/v1/positions?address=" + url.QueryEscape(address)

	body, err := c.get(ctx, endpoint, token, "positions")
	if err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}

	var positions []map[string]any
	if err := json.Unmarshal(unwrapData(body), &positions); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}
	return positions, nil
}

// GetOrders fetches open orders for an address.
func (c *Client) GetOrders(ctx context.Context, address, token string) ([]map[string]any, error) {
	endpoint := c.baseURL + "/v1/orders?address=" + url.QueryEscape(address)

	body, err := c.get(ctx, endpoint, token, "orders")
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}

	var orders []map[string]any
	if err := json.Unmarshal(unwrapData(body), &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// get issues a GET with the API key header and optional bearer token.
func (c *Client) get(ctx context.Context, endpoint, token, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.do(req, token, name, c.httpClient)
}

// post issues a POST with a JSON body, API key header and optional bearer
// token.
func (c *Client) post(ctx context.Context, endpoint, token string, body []byte, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, token, name, c.httpClient)
}

// do executes a request and classifies failures: network errors become
// TransportError, non-2xx responses become APIError.
func (c *Client) do(req *http.Request, token, name string, client *http.Client) ([]byte, error) {
	req.Header.Set("x-api-key", c.apiKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	RequestDurationSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		RequestsTotal.WithLabelValues(name, "transport_error").Inc()
		return nil, &types.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		RequestsTotal.WithLabelValues(name, "transport_error").Inc()
		return nil, &types.TransportError{Err: err}
	}

	RequestsTotal.WithLabelValues(name, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &types.APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// sleep waits for the linear backoff of the given attempt, honoring
// context cancellation.
func (c *Client) sleep(ctx context.Context, attempt int) {
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(attempt) * c.retryDelay):
	}
}

// unwrapData strips the {"data": ...} envelope when present.
func unwrapData(body []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		return envelope.Data
	}
	return body
}
