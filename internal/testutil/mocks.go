package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockExchange is an httptest server that stands in for the exchange API:
// auth handshake, market metadata, order book, and order submission. It
// records submitted order payloads for assertions.
type MockExchange struct {
	*httptest.Server

	mu          sync.Mutex
	submissions []map[string]any

	// SubmitStatus overrides the order submission response code when
	// non-zero, for failure-path tests.
	SubmitStatus int
}

// NewMockExchange starts a mock exchange serving one binary market.
func NewMockExchange(marketID string) *MockExchange {
	m := &MockExchange{}
	market := CreateTestMarket(marketID)

	mux := http.NewServeMux()

	mux.HandleFunc("/v1/auth/message", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]string{"message": "mock challenge"})
	})

	mux.HandleFunc("/v1/auth", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]string{"token": "mock-jwt"})
	})

	mux.HandleFunc("/v1/markets/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/orderbook") {
			writeData(w, map[string]any{
				"bids": [][]float64{{0.4, 100}},
				"asks": [][]float64{{0.6, 50}},
			})
			return
		}
		writeData(w, market)
	})

	mux.HandleFunc("/v1/markets", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []any{market})
	})

	mux.HandleFunc("/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeData(w, []any{})
			return
		}
		if m.SubmitStatus != 0 && m.SubmitStatus != http.StatusOK {
			http.Error(w, "mock submit failure", m.SubmitStatus)
			return
		}

		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		m.mu.Lock()
		m.submissions = append(m.submissions, payload)
		m.mu.Unlock()

		writeData(w, map[string]string{"hash": "0xmockorder", "status": "LIVE"})
	})

	mux.HandleFunc("/v1/positions", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, []map[string]any{
			{"market_id": marketID, "tokenId": "111", "shares": "2.5"},
		})
	})

	m.Server = httptest.NewServer(mux)
	return m
}

// Submissions returns the recorded order submission payloads.
func (m *MockExchange) Submissions() []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]any, len(m.submissions))
	copy(out, m.submissions)
	return out
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}
