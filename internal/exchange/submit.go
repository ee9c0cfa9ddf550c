package exchange

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/predict-account/pkg/types"
	"go.uber.org/zap"
)

// SubmitOrder posts a signed order, retrying transport failures and 5xx
// responses up to the attempt bound with linearly increasing backoff. A
// 4xx response is a validation rejection: terminal, surfaced immediately,
// never retried. Every attempt reuses the same signed payload — the salt
// is fixed per logical trade, so transport-level retries cannot create two
// distinct orders.
//
// proxyURL, when non-empty, routes the submission through the account's
// dedicated network proxy.
func (c *Client) SubmitOrder(ctx context.Context, token string, priceWei *big.Int, order *types.SignedOrder, proxyURL string) (*types.OrderResponse, error) {
	payload := map[string]any{
		"data": &types.OrderSubmission{
			PricePerShare: priceWei.String(),
			Strategy:      "LIMIT",
			SlippageBps:   "0",
			IsFillOrKill:  false,
			Order:         order,
		},
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	client, err := c.submitClient(proxyURL)
	if err != nil {
		return nil, err
	}

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		SubmitAttemptsTotal.Inc()

		body, err := c.postWith(ctx, client, c.baseURL+"/v1/orders", token, reqBody, "submit_order")
		if err == nil {
			var resp types.OrderResponse
			if err := json.Unmarshal(unwrapData(body), &resp); err != nil {
				return nil, fmt.Errorf("decode order response: %w", err)
			}
			resp.Raw = body

			c.logger.Info("order-submitted",
				zap.String("order-hash", resp.ID()),
				zap.Int("attempt", attempt))
			return &resp, nil
		}

		lastErr = err

		if !types.IsRetryable(err) {
			c.logger.Warn("order-rejected", zap.Error(err))
			return nil, err
		}

		c.logger.Warn("order-submit-retry",
			zap.Int("attempt", attempt),
			zap.Error(err))
		SubmitRetriesTotal.Inc()

		if attempt < maxAttempts {
			c.sleep(ctx, attempt)
		}
	}

	return nil, fmt.Errorf("submit order after %d attempts: %w", maxAttempts, lastErr)
}

// submitClient returns the HTTP client for order submission, routed
// through the account proxy when one is configured.
func (c *Client) submitClient(proxyURL string) (*http.Client, error) {
	if proxyURL == "" {
		return c.httpClient, nil
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}

	return &http.Client{
		Timeout: c.httpClient.Timeout + 30*time.Second,
		Transport: &http.Transport{
			Proxy: http.ProxyURL(parsed),
		},
	}, nil
}

// postWith is post with an explicit HTTP client.
func (c *Client) postWith(ctx context.Context, client *http.Client, endpoint, token string, body []byte, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, token, name, client)
}
