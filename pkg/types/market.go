package types

import (
	json "github.com/goccy/go-json"
)

// Market holds exchange-side market metadata. Fetched fresh on every trade;
// never cached across calls on the trade path, so fee and risk flags are
// current at submission time.
type Market struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	FeeRateBps     int       `json:"feeRateBps"`
	IsNegRisk      bool      `json:"isNegRisk"`
	IsYieldBearing bool      `json:"isYieldBearing"`
	Outcomes       []Outcome `json:"outcomes"`
}

// Outcome is one side of a market. The exchange has shipped the on-chain
// token identifier under several keys over time; UnmarshalJSON resolves the
// first matching alias so callers only see TokenID.
type Outcome struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TokenID string `json:"tokenId"`
}

// outcomeTokenIDKeys are the accepted aliases for the on-chain token
// identifier, in resolution order. First match wins.
var outcomeTokenIDKeys = []string{"onChainId", "tokenId", "id"}

// outcomeNameKeys are the accepted aliases for the outcome display name.
var outcomeNameKeys = []string{"name", "title"}

// UnmarshalJSON decodes an outcome payload tolerating historical field
// aliases for the token identifier and name.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	o.ID = rawString(raw, "id")
	o.Name = FirstString(raw, outcomeNameKeys)
	o.TokenID = FirstString(raw, outcomeTokenIDKeys)

	return nil
}

// FirstString resolves the first key in keys that is present in raw and
// carries a non-empty value, returning it as a string. Numeric values are
// rendered in their raw JSON form so large on-chain identifiers never pass
// through a float.
func FirstString(raw map[string]json.RawMessage, keys []string) string {
	for _, k := range keys {
		if s := rawString(raw, k); s != "" {
			return s
		}
	}
	return ""
}

func rawString(raw map[string]json.RawMessage, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}

	// Numeric identifier: keep the exact textual form.
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}

	return ""
}

// Level is a single orderbook price level: [price, size].
type Level [2]float64

// Price returns the level price.
func (l Level) Price() float64 { return l[0] }

// Size returns the level size.
func (l Level) Size() float64 { return l[1] }

// Orderbook is a snapshot of market depth. Used for dry-run previews only.
type Orderbook struct {
	MarketID string  `json:"marketId"`
	Bids     []Level `json:"bids"`
	Asks     []Level `json:"asks"`
}
