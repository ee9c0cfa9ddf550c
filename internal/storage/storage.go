package storage

import (
	"context"
	"errors"

	"github.com/mselser95/predict-account/pkg/types"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store persists accounts and trades.
type Store interface {
	// CreateTrade inserts a trade row at dispatch time, status pending.
	CreateTrade(ctx context.Context, trade *types.Trade) error

	// UpdateTradeStatus transitions a trade to its terminal status,
	// recording the order hash and error text when present.
	UpdateTradeStatus(ctx context.Context, id, status, orderHash, errText string) error

	// GetTrade returns one trade by id.
	GetTrade(ctx context.Context, id string) (*types.Trade, error)

	// ListTrades returns recent trades, newest first, optionally filtered
	// by account.
	ListTrades(ctx context.Context, accountID string, limit int) ([]*types.Trade, error)

	// CreateAccount inserts a new account.
	CreateAccount(ctx context.Context, acct *types.Account) error

	// GetAccount returns one account by id.
	GetAccount(ctx context.Context, id string) (*types.Account, error)

	// ListAccounts returns all accounts.
	ListAccounts(ctx context.Context) ([]*types.Account, error)

	// UpdateAccount overwrites an account's mutable fields.
	UpdateAccount(ctx context.Context, acct *types.Account) error

	// DeleteAccount removes an account by id.
	DeleteAccount(ctx context.Context, id string) error

	// Ping reports backend health, used by the readiness probe.
	Ping(ctx context.Context) error

	// Close closes the storage connection.
	Close() error
}
