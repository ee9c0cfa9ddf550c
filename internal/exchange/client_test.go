package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mselser95/predict-account/internal/signing"
	"github.com/mselser95/predict-account/pkg/types"
	"go.uber.org/zap"
)

const testKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

// recordingServer wraps httptest.Server and records every request.
type recordingServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
}

func newRecordingServer(handler http.HandlerFunc) *recordingServer {
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.requests = append(rs.requests, r.Clone(r.Context()))
		rs.mu.Unlock()
		handler(w, r)
	}))
	return rs
}

func (rs *recordingServer) count() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.requests)
}

func (rs *recordingServer) last() *http.Request {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if len(rs.requests) == 0 {
		return nil
	}
	return rs.requests[len(rs.requests)-1]
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	return New(&Config{
		BaseURL:    baseURL,
		APIKey:     "test-api-key",
		Timeout:    5 * time.Second,
		RetryDelay: time.Millisecond,
		Logger:     zap.NewNop(),
	})
}

func TestAuthMessage_WithAddress(t *testing.T) {
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"message": "sign me"},
		})
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	msg, err := c.AuthMessage(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "sign me" {
		t.Errorf("expected challenge message, got %q", msg)
	}

	req := srv.last()
	if got := req.URL.Query().Get("address"); got != "0xabc" {
		t.Errorf("expected address query param, got %q", got)
	}
	if got := req.Header.Get("x-api-key"); got != "test-api-key" {
		t.Errorf("expected api key header, got %q", got)
	}
}

func TestAuthMessage_AddressOmittedForSmartAccount(t *testing.T) {
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"message": "sign me"},
		})
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	if _, err := c.AuthMessage(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if srv.last().URL.RawQuery != "" {
		t.Errorf("expected no query params, got %q", srv.last().URL.RawQuery)
	}
}

func TestExchangeToken_TokenAliases(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "data.token", body: map[string]any{"data": map[string]string{"token": "jwt-1"}}},
		{name: "data.jwt", body: map[string]any{"data": map[string]string{"jwt": "jwt-1"}}},
		{name: "flat token", body: map[string]any{"token": "jwt-1"}},
		{name: "flat jwt", body: map[string]any{"jwt": "jwt-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(tt.body)
			})
			defer srv.Close()

			c := newTestClient(t, srv.URL)

			token, err := c.ExchangeToken(context.Background(), "0xabc", "msg", "0xsig")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if token != "jwt-1" {
				t.Errorf("expected jwt-1, got %q", token)
			}
		})
	}
}

func TestExchangeToken_NoTokenField(t *testing.T) {
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"ok": "yes"}})
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.ExchangeToken(context.Background(), "0xabc", "msg", "0xsig")
	if err == nil {
		t.Fatal("expected error")
	}

	var authErr *types.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Errorf("expected AuthenticationError, got %T", err)
	}
}

func TestExchangeToken_PrefixesSignature(t *testing.T) {
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["signature"] != "0xdeadbeef" {
			http.Error(w, "bad signature", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "jwt-1"})
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	if _, err := c.ExchangeToken(context.Background(), "0xabc", "msg", "deadbeef"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthenticate_FullHandshake(t *testing.T) {
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/message":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]string{"message": "challenge-text"},
			})
		case "/v1/auth":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["message"] != "challenge-text" || body["signature"] == "" {
				http.Error(w, "bad auth", http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]string{"token": "jwt-ok"},
			})
		default:
			http.NotFound(w, r)
		}
	})
	defer srv.Close()

	signer, err := signing.NewEOASigner(testKey)
	if err != nil {
		t.Fatalf("create signer: %v", err)
	}

	c := newTestClient(t, srv.URL)

	token, err := c.Authenticate(context.Background(), signer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "jwt-ok" {
		t.Errorf("expected jwt-ok, got %q", token)
	}
}

func TestGetMarket_Envelope(t *testing.T) {
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id":         "6714",
				"title":      "Will it happen?",
				"feeRateBps": 200,
				"isNegRisk":  true,
				"outcomes": []map[string]any{
					{"name": "Yes", "onChainId": "111"},
					{"name": "No", "tokenId": "222"},
				},
			},
		})
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	market, err := c.GetMarket(context.Background(), "6714")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if market.FeeRateBps != 200 {
		t.Errorf("expected fee 200, got %d", market.FeeRateBps)
	}
	if !market.IsNegRisk {
		t.Error("expected neg-risk flag")
	}
	if len(market.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(market.Outcomes))
	}
	if market.Outcomes[0].TokenID != "111" {
		t.Errorf("expected onChainId alias resolution, got %q", market.Outcomes[0].TokenID)
	}
	if market.Outcomes[1].TokenID != "222" {
		t.Errorf("expected tokenId alias resolution, got %q", market.Outcomes[1].TokenID)
	}
}

func TestGetMarket_RetriesServerErrors(t *testing.T) {
	var calls int
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"id": "m1"}})
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	market, err := c.GetMarket(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if market.ID != "m1" {
		t.Errorf("expected market m1, got %s", market.ID)
	}
	if srv.count() != 3 {
		t.Errorf("expected 3 attempts, got %d", srv.count())
	}
}

func TestGetOrderbook_PathFallbackOrder(t *testing.T) {
	var paths []string
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path != "/v1/orderbook/m1" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"bids": [][]float64{{0.4, 100}},
				"asks": [][]float64{{0.6, 50}},
			},
		})
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	book, err := c.GetOrderbook(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"/v1/markets/m1/orderbook", "/orderbook/m1", "/v1/orderbook/m1"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d probes, got %d (%v)", len(want), len(paths), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("probe %d: expected %s, got %s", i, want[i], paths[i])
		}
	}

	if len(book.Bids) != 1 || book.Bids[0].Price() != 0.4 {
		t.Errorf("unexpected bids: %+v", book.Bids)
	}
}

func TestGetOrderbook_NoBackoffAfterFinalAttempt(t *testing.T) {
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	defer srv.Close()

	c := New(&Config{
		BaseURL:    srv.URL,
		Timeout:    5 * time.Second,
		RetryDelay: 30 * time.Millisecond,
		Logger:     zap.NewNop(),
	})

	// Backoff runs between rounds only: 1*30ms + 2*30ms. A trailing
	// sleep after the last round would add another 90ms.
	start := time.Now()
	_, err := c.GetOrderbook(context.Background(), "m1")
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected error from exhausted orderbook lookup")
	}
	if elapsed >= 150*time.Millisecond {
		t.Errorf("lookup took %v, expected under 150ms without a final backoff", elapsed)
	}
}

func TestGetPositions_BearerToken(t *testing.T) {
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"marketId": "m1", "tokenId": "t1", "shares": "2.5"}},
		})
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	positions, err := c.GetPositions(context.Background(), "0xabc", "jwt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}

	if got := srv.last().Header.Get("Authorization"); got != "Bearer jwt-1" {
		t.Errorf("expected bearer header, got %q", got)
	}
}

func TestGetOpenMarkets(t *testing.T) {
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("status") != "OPEN" {
			http.Error(w, "missing status filter", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": "m1"}, {"id": "m2"}},
		})
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	markets, err := c.GetOpenMarkets(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(markets) != 2 {
		t.Errorf("expected 2 markets, got %d", len(markets))
	}
}
