package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http"
	"testing"

	"github.com/mselser95/predict-account/pkg/types"
)

func testOrder() *types.SignedOrder {
	return &types.SignedOrder{
		Salt:          "12345",
		Maker:         "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23",
		Signer:        "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23",
		Taker:         "0x0000000000000000000000000000000000000000",
		TokenID:       "111",
		MakerAmount:   "1000000000000000000",
		TakerAmount:   "2000000000000000000",
		Expiration:    "1767225600",
		Nonce:         "0",
		FeeRateBps:    "200",
		Side:          types.OrderSideBuy,
		SignatureType: types.SignatureTypeEOA,
		Signature:     "0xabcdef",
	}
}

func TestSubmitOrder_RetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "upstream unavailable", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"hash": "0xorder1", "status": "LIVE"},
		})
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	resp, err := c.SubmitOrder(context.Background(), "jwt-1", big.NewInt(1), testOrder(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ID() != "0xorder1" {
		t.Errorf("expected order id 0xorder1, got %q", resp.ID())
	}
	if srv.count() != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", srv.count())
	}
}

func TestSubmitOrder_ClientErrorIsTerminal(t *testing.T) {
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"insufficient balance"}`, http.StatusBadRequest)
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.SubmitOrder(context.Background(), "jwt-1", big.NewInt(1), testOrder(), "")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *types.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", apiErr.StatusCode)
	}
	if srv.count() != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", srv.count())
	}
}

func TestSubmitOrder_ExhaustsAttempts(t *testing.T) {
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.SubmitOrder(context.Background(), "jwt-1", big.NewInt(1), testOrder(), "")
	if err == nil {
		t.Fatal("expected error")
	}
	if srv.count() != maxAttempts {
		t.Errorf("expected %d attempts, got %d", maxAttempts, srv.count())
	}
}

func TestSubmitOrder_Envelope(t *testing.T) {
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Data types.OrderSubmission `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if payload.Data.Strategy != "LIMIT" || payload.Data.SlippageBps != "0" {
			http.Error(w, "bad envelope", http.StatusBadRequest)
			return
		}
		if payload.Data.PricePerShare != "500000000000000000" {
			http.Error(w, "bad price", http.StatusBadRequest)
			return
		}
		if payload.Data.Order == nil || payload.Data.Order.Salt != "12345" {
			http.Error(w, "bad order", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"orderHash": "0xorder2"})
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	price, _ := new(big.Int).SetString("500000000000000000", 10)
	resp, err := c.SubmitOrder(context.Background(), "jwt-1", price, testOrder(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ID() != "0xorder2" {
		t.Errorf("expected orderHash fallback, got %q", resp.ID())
	}

	req := srv.last()
	if got := req.Header.Get("Authorization"); got != "Bearer jwt-1" {
		t.Errorf("expected bearer token, got %q", got)
	}
	if got := req.Header.Get("x-api-key"); got != "test-api-key" {
		t.Errorf("expected api key header, got %q", got)
	}
}

func TestSubmitOrder_PayloadIdenticalAcrossRetries(t *testing.T) {
	var bodies []string
	srv := newRecordingServer(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(buf))
		if len(bodies) < 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"hash": "0xorder3"})
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	if _, err := c.SubmitOrder(context.Background(), "jwt-1", big.NewInt(1), testOrder(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bodies) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(bodies))
	}
	if bodies[0] != bodies[1] {
		t.Error("expected identical payload across retries")
	}
}
