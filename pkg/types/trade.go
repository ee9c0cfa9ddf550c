package types

import (
	"time"
)

// Trade statuses. A trade row is created at dispatch time and transitioned
// exactly once by the executor; submitted trades are later moved to filled
// or cancelled by the fill monitor, not by this service.
const (
	TradeStatusPending   = "pending"
	TradeStatusDryRun    = "dry_run"
	TradeStatusSubmitted = "submitted"
	TradeStatusFilled    = "filled"
	TradeStatusCancelled = "cancelled"
	TradeStatusFailed    = "failed"
)

// Trade sides as requested by callers.
const (
	SideYes = "yes"
	SideNo  = "no"
)

// TradeRequest is a caller's trade intent. Confirm gates real submission:
// a request with Confirm=false never causes a mutating exchange call.
type TradeRequest struct {
	AccountID string  `json:"account_id"`
	MarketID  string  `json:"market_id"`
	Side      string  `json:"side"`
	Price     float64 `json:"price"`
	Shares    float64 `json:"shares"`
	Confirm   bool    `json:"confirm"`
}

// Validate checks the request parameters.
func (r *TradeRequest) Validate() error {
	if r.AccountID == "" {
		return &ValidationError{Field: "account_id", Reason: "required"}
	}
	if r.MarketID == "" {
		return &ValidationError{Field: "market_id", Reason: "required"}
	}
	if r.Side != SideYes && r.Side != SideNo {
		return &ValidationError{Field: "side", Reason: `must be "yes" or "no"`}
	}
	if r.Price <= 0 || r.Price > 1 {
		return &ValidationError{Field: "price", Reason: "must be in (0, 1]"}
	}
	if r.Shares <= 0 {
		return &ValidationError{Field: "shares", Reason: "must be positive"}
	}
	return nil
}

// TradeResult is what the executor returns to the caller.
type TradeResult struct {
	TradeID     string  `json:"trade_id"`
	AccountID   string  `json:"account_id"`
	AccountName string  `json:"account_name"`
	MarketID    string  `json:"market_id"`
	OutcomeID   string  `json:"outcome_id,omitempty"`
	Side        string  `json:"side"`
	Price       float64 `json:"price"`
	Shares      float64 `json:"shares"`
	OrderHash   string  `json:"order_hash,omitempty"`
	Status      string  `json:"status"`
	Message     string  `json:"message"`
}

// Trade is the persisted trade row.
type Trade struct {
	ID          string     `json:"id"`
	AccountID   string     `json:"account_id"`
	AccountName string     `json:"account_name"`
	MarketID    string     `json:"market_id"`
	OutcomeID   string     `json:"outcome_id"`
	Side        string     `json:"side"`
	Price       float64    `json:"price"`
	Shares      float64    `json:"shares"`
	OrderHash   string     `json:"order_hash,omitempty"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	FilledAt    *time.Time `json:"filled_at,omitempty"`
}

// ClosePlanItem is one closing action produced by the close-position
// planner. Action is always "market_sell": closing a held position means
// selling the outcome tokens at market.
type ClosePlanItem struct {
	MarketID  string  `json:"market_id"`
	OutcomeID string  `json:"outcome_id"`
	Side      string  `json:"side,omitempty"`
	Shares    float64 `json:"shares"`
	Action    string  `json:"action"`
}
