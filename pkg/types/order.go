package types

import (
	json "github.com/goccy/go-json"
)

// Order side codes on the wire.
const (
	OrderSideBuy  = 0
	OrderSideSell = 1
)

// Signature scheme codes on the wire.
const (
	SignatureTypeEOA          = 0
	SignatureTypeSmartAccount = 1
)

// SignedOrder is the exchange wire artifact. All big integers are string
// encoded; native JSON numbers would lose precision on 256-bit values.
// The salt is fixed once per logical trade, so resubmitting the same
// payload after a transport failure cannot create a second order.
type SignedOrder struct {
	Salt          string `json:"salt"`
	Maker         string `json:"maker"`
	Signer        string `json:"signer"`
	Taker         string `json:"taker"`
	TokenID       string `json:"tokenId"`
	MakerAmount   string `json:"makerAmount"`
	TakerAmount   string `json:"takerAmount"`
	Expiration    string `json:"expiration"`
	Nonce         string `json:"nonce"`
	FeeRateBps    string `json:"feeRateBps"`
	Side          int    `json:"side"`
	SignatureType int    `json:"signatureType"`
	Signature     string `json:"signature"`
}

// OrderSubmission wraps a signed order in the exchange's submission
// envelope.
type OrderSubmission struct {
	PricePerShare string       `json:"pricePerShare"`
	Strategy      string       `json:"strategy"`
	SlippageBps   string       `json:"slippageBps"`
	IsFillOrKill  bool         `json:"isFillOrKill"`
	Order         *SignedOrder `json:"order"`
}

// OrderResponse is the exchange's reply to an order submission. The order
// identifier has been shipped under both "hash" and "orderHash".
type OrderResponse struct {
	Hash      string          `json:"hash"`
	OrderHash string          `json:"orderHash"`
	Status    string          `json:"status"`
	Raw       json.RawMessage `json:"-"`
}

// ID returns the order identifier under whichever key the exchange used.
func (r *OrderResponse) ID() string {
	if r.Hash != "" {
		return r.Hash
	}
	return r.OrderHash
}
