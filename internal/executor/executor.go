// Package executor orchestrates trade execution: authenticate, build and
// sign, submit, persist, emit. The confirm flag is the safety gate: a
// request with Confirm=false performs no mutating exchange call of any
// kind, only reads.
package executor

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/predict-account/internal/order"
	"github.com/mselser95/predict-account/internal/signing"
	"github.com/mselser95/predict-account/internal/storage"
	"github.com/mselser95/predict-account/pkg/types"
	"go.uber.org/zap"
)

// ExchangeClient is the exchange surface the executor needs. Narrowed to
// an interface so tests can substitute a recording double.
type ExchangeClient interface {
	Authenticate(ctx context.Context, signer signing.Signer) (string, error)
	GetMarket(ctx context.Context, marketID string) (*types.Market, error)
	GetOrderbook(ctx context.Context, marketID string) (*types.Orderbook, error)
	SubmitOrder(ctx context.Context, token string, priceWei *big.Int, ord *types.SignedOrder, proxyURL string) (*types.OrderResponse, error)
}

// EventSink receives trade lifecycle events. Publishing is best-effort
// on the sink's side; the executor never checks for delivery.
type EventSink interface {
	PublishTrade(ctx context.Context, eventType string, data map[string]any)
}

// Executor runs one trade request end to end. Invocations are
// independent: nothing is shared across trades except the injected
// collaborators, so concurrent executions need no coordination here.
type Executor struct {
	client  ExchangeClient
	builder *order.Builder
	store   storage.Store
	events  EventSink
	logger  *zap.Logger
}

// Config holds executor dependencies.
type Config struct {
	Client  ExchangeClient
	Builder *order.Builder
	Store   storage.Store
	Events  EventSink
	Logger  *zap.Logger
}

func New(cfg *Config) *Executor {
	return &Executor{
		client:  cfg.Client,
		builder: cfg.Builder,
		store:   cfg.Store,
		events:  cfg.Events,
		logger:  cfg.Logger,
	}
}

// Execute validates the request, records a pending trade row, then runs
// either the read-only dry-run path or the full confirm path. The trade
// row is transitioned exactly once, to dry_run, submitted, or failed.
func (e *Executor) Execute(ctx context.Context, acct *types.Account, req *types.TradeRequest) (*types.TradeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !acct.Active {
		return nil, &types.ValidationError{Field: "account", Reason: "account is not active"}
	}

	trade := &types.Trade{
		ID:          uuid.New().String(),
		AccountID:   acct.ID,
		AccountName: acct.Name,
		MarketID:    req.MarketID,
		Side:        req.Side,
		Price:       req.Price,
		Shares:      req.Shares,
		Status:      types.TradeStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.store.CreateTrade(ctx, trade); err != nil {
		return nil, fmt.Errorf("record trade: %w", err)
	}

	start := time.Now()
	result, err := e.run(ctx, acct, req, trade)

	status := types.TradeStatusFailed
	if err == nil {
		status = result.Status
	}
	TradesTotal.WithLabelValues(status).Inc()
	TradeDurationSeconds.Observe(time.Since(start).Seconds())

	return result, err
}

func (e *Executor) run(ctx context.Context, acct *types.Account, req *types.TradeRequest, trade *types.Trade) (*types.TradeResult, error) {
	if !req.Confirm {
		return e.dryRun(ctx, req, trade)
	}
	return e.confirm(ctx, acct, req, trade)
}

// dryRun resolves the market and quotes the trade without any mutating
// exchange call. Lookup failures here are downgraded to omissions: a dry
// run reports what it could learn and never fails on exchange reads.
func (e *Executor) dryRun(ctx context.Context, req *types.TradeRequest, trade *types.Trade) (*types.TradeResult, error) {
	message := "dry run, no order submitted"
	var outcomeID string

	market, err := e.client.GetMarket(ctx, req.MarketID)
	if err != nil {
		e.logger.Warn("dry-run-market-lookup-failed",
			zap.String("market-id", req.MarketID),
			zap.Error(err))
		message = "dry run, market lookup unavailable"
	} else {
		outcome, err := order.ResolveOutcome(market, req.Side)
		if err != nil {
			e.logger.Warn("dry-run-outcome-unresolved",
				zap.String("market-id", req.MarketID),
				zap.Error(err))
		} else {
			outcomeID = outcome.TokenID
		}

		if book, err := e.client.GetOrderbook(ctx, req.MarketID); err != nil {
			e.logger.Warn("dry-run-orderbook-unavailable",
				zap.String("market-id", req.MarketID),
				zap.Error(err))
		} else if len(book.Bids) > 0 || len(book.Asks) > 0 {
			message = fmt.Sprintf("dry run, book depth %d bids / %d asks", len(book.Bids), len(book.Asks))
		}
	}

	if err := e.store.UpdateTradeStatus(ctx, trade.ID, types.TradeStatusDryRun, "", ""); err != nil {
		e.logger.Warn("trade-status-update-failed",
			zap.String("trade-id", trade.ID),
			zap.Error(err))
	}

	e.events.PublishTrade(ctx, types.EventTradeDryRun, map[string]any{
		"trade_id":  trade.ID,
		"account":   trade.AccountName,
		"market_id": req.MarketID,
		"side":      req.Side,
		"price":     req.Price,
		"shares":    req.Shares,
	})

	e.logger.Info("trade-dry-run",
		zap.String("trade-id", trade.ID),
		zap.String("market-id", req.MarketID),
		zap.String("side", req.Side))

	return &types.TradeResult{
		TradeID:     trade.ID,
		AccountID:   trade.AccountID,
		AccountName: trade.AccountName,
		MarketID:    req.MarketID,
		OutcomeID:   outcomeID,
		Side:        req.Side,
		Price:       req.Price,
		Shares:      req.Shares,
		Status:      types.TradeStatusDryRun,
		Message:     message,
	}, nil
}

// confirm runs the full pipeline in strict order: authenticate, fetch
// market, build and sign, submit. Any failure marks the trade failed,
// emits exactly one trade_error event, and is surfaced to the caller.
func (e *Executor) confirm(ctx context.Context, acct *types.Account, req *types.TradeRequest, trade *types.Trade) (*types.TradeResult, error) {
	signer, err := signing.ForAccount(acct)
	if err != nil {
		return nil, e.fail(ctx, trade, req, err)
	}

	token, err := e.client.Authenticate(ctx, signer)
	if err != nil {
		return nil, e.fail(ctx, trade, req, err)
	}

	// Always a fresh fetch: fee rate and risk flags must not come from a
	// prior dry-run snapshot.
	market, err := e.client.GetMarket(ctx, req.MarketID)
	if err != nil {
		return nil, e.fail(ctx, trade, req, err)
	}

	built, err := e.builder.Build(req, market, signer, time.Time{})
	if err != nil {
		return nil, e.fail(ctx, trade, req, err)
	}

	resp, err := e.client.SubmitOrder(ctx, token, built.PriceWei, built.Order, acct.ProxyURL)
	if err != nil {
		return nil, e.fail(ctx, trade, req, err)
	}

	orderHash := resp.ID()
	if err := e.store.UpdateTradeStatus(ctx, trade.ID, types.TradeStatusSubmitted, orderHash, ""); err != nil {
		e.logger.Warn("trade-status-update-failed",
			zap.String("trade-id", trade.ID),
			zap.Error(err))
	}

	e.events.PublishTrade(ctx, types.EventTradeExecuted, map[string]any{
		"trade_id":   trade.ID,
		"account":    trade.AccountName,
		"market_id":  req.MarketID,
		"outcome_id": built.Outcome.TokenID,
		"side":       req.Side,
		"price":      req.Price,
		"shares":     req.Shares,
		"order_hash": orderHash,
	})

	e.logger.Info("trade-submitted",
		zap.String("trade-id", trade.ID),
		zap.String("market-id", req.MarketID),
		zap.String("order-hash", orderHash))

	return &types.TradeResult{
		TradeID:     trade.ID,
		AccountID:   trade.AccountID,
		AccountName: trade.AccountName,
		MarketID:    req.MarketID,
		OutcomeID:   built.Outcome.TokenID,
		Side:        req.Side,
		Price:       req.Price,
		Shares:      req.Shares,
		OrderHash:   orderHash,
		Status:      types.TradeStatusSubmitted,
		Message:     "order submitted",
	}, nil
}

// fail records the terminal failed status, emits a single trade_error
// event, and returns the original error for the caller.
func (e *Executor) fail(ctx context.Context, trade *types.Trade, req *types.TradeRequest, cause error) error {
	if err := e.store.UpdateTradeStatus(ctx, trade.ID, types.TradeStatusFailed, "", cause.Error()); err != nil {
		e.logger.Warn("trade-status-update-failed",
			zap.String("trade-id", trade.ID),
			zap.Error(err))
	}

	e.events.PublishTrade(ctx, types.EventTradeError, map[string]any{
		"trade_id":  trade.ID,
		"account":   trade.AccountName,
		"market_id": req.MarketID,
		"side":      req.Side,
		"error":     cause.Error(),
	})

	e.logger.Error("trade-failed",
		zap.String("trade-id", trade.ID),
		zap.String("market-id", req.MarketID),
		zap.Error(cause))

	return cause
}
