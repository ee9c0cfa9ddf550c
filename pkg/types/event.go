package types

import "time"

// Event stream names. Fixed set; the relay reads all of them.
const (
	StreamTradeEvents   = "trade_events"
	StreamAccountEvents = "account_events"
	StreamFillEvents    = "fill_events"
)

// Domain event types.
const (
	EventTradeExecuted  = "trade_executed"
	EventTradeDryRun    = "trade_dry_run"
	EventTradeError     = "trade_error"
	EventAccountCreated = "account_created"
	EventAccountUpdated = "account_updated"
	EventAccountDeleted = "account_deleted"
	EventFill           = "fill"
)

// Platform tag stamped on every published event.
const EventPlatform = "predict"

// Event is one entry of the append-only domain event stream. The ID is
// assigned by the stream on append; consumers hold only a read cursor and
// never mutate entries. Delivery is at-least-once, so consumers needing
// exactly-once effects must deduplicate by ID.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Platform  string         `json:"platform"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}
