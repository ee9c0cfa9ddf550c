package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mselser95/predict-account/internal/signing"
	"github.com/mselser95/predict-account/internal/storage"
	"github.com/mselser95/predict-account/pkg/types"
	"go.uber.org/zap"
)

// TradeService runs one trade request end to end.
type TradeService interface {
	Execute(ctx context.Context, acct *types.Account, req *types.TradeRequest) (*types.TradeResult, error)
}

// MarketLister serves the open-markets listing.
type MarketLister interface {
	List(ctx context.Context) ([]*types.Market, error)
}

// PortfolioService reads bearer-authenticated account data.
type PortfolioService interface {
	Positions(ctx context.Context, acct *types.Account) ([]map[string]any, error)
	Orders(ctx context.Context, acct *types.Account) ([]map[string]any, error)
	ClosePlan(ctx context.Context, acct *types.Account) ([]types.ClosePlanItem, error)
}

// AccountEventSink receives account lifecycle events.
type AccountEventSink interface {
	PublishAccount(ctx context.Context, eventType string, data map[string]any)
}

// Handlers holds the API handler dependencies.
type Handlers struct {
	Trades    TradeService
	Store     storage.Store
	Markets   MarketLister
	Portfolio PortfolioService
	Events    AccountEventSink
	Logger    *zap.Logger
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleTrade handles POST /api/trade.
func (h *Handlers) HandleTrade(w http.ResponseWriter, r *http.Request) {
	var req types.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	acct, err := h.Store.GetAccount(r.Context(), req.AccountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, "account not found", http.StatusNotFound)
			return
		}
		h.writeError(w, "account lookup failed", http.StatusInternalServerError)
		return
	}

	result, err := h.Trades.Execute(r.Context(), acct, &req)
	if err != nil {
		h.writeTradeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleListTrades handles GET /api/trades?account_id=&limit=.
func (h *Handlers) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	trades, err := h.Store.ListTrades(r.Context(), r.URL.Query().Get("account_id"), limit)
	if err != nil {
		h.writeError(w, "list trades failed", http.StatusInternalServerError)
		return
	}
	if trades == nil {
		trades = []*types.Trade{}
	}
	h.writeJSON(w, http.StatusOK, trades)
}

// HandleGetTrade handles GET /api/trades/{id}.
func (h *Handlers) HandleGetTrade(w http.ResponseWriter, r *http.Request) {
	trade, err := h.Store.GetTrade(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, "trade not found", http.StatusNotFound)
			return
		}
		h.writeError(w, "trade lookup failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, trade)
}

// HandleListMarkets handles GET /api/markets.
func (h *Handlers) HandleListMarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := h.Markets.List(r.Context())
	if err != nil {
		h.writeError(w, "list markets failed", http.StatusBadGateway)
		return
	}
	if markets == nil {
		markets = []*types.Market{}
	}
	h.writeJSON(w, http.StatusOK, markets)
}

// accountRequest is the create/update payload for accounts.
type accountRequest struct {
	Name         string   `json:"name"`
	PrivateKey   string   `json:"private_key"`
	SmartAccount string   `json:"smart_account"`
	APIKey       string   `json:"api_key"`
	ProxyURL     string   `json:"proxy_url"`
	Active       *bool    `json:"active"`
	Tags         []string `json:"tags"`
	Notes        string   `json:"notes"`
}

// HandleCreateAccount handles POST /api/accounts. The account address is
// derived from the submitted key, never taken from the caller.
func (h *Handlers) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		h.writeError(w, "name is required", http.StatusBadRequest)
		return
	}

	signer, err := signing.NewEOASigner(req.PrivateKey)
	if err != nil {
		h.writeError(w, "invalid private key", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	acct := &types.Account{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Address:      signer.Address(),
		PrivateKey:   req.PrivateKey,
		SmartAccount: req.SmartAccount,
		APIKey:       req.APIKey,
		ProxyURL:     req.ProxyURL,
		Active:       true,
		Tags:         req.Tags,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Active != nil {
		acct.Active = *req.Active
	}

	if err := h.Store.CreateAccount(r.Context(), acct); err != nil {
		h.Logger.Error("account-create-failed", zap.Error(err))
		h.writeError(w, "account create failed", http.StatusInternalServerError)
		return
	}

	h.Events.PublishAccount(r.Context(), types.EventAccountCreated, map[string]any{
		"account_id": acct.ID,
		"name":       acct.Name,
		"address":    acct.Address,
	})

	h.writeJSON(w, http.StatusCreated, acct)
}

// HandleListAccounts handles GET /api/accounts.
func (h *Handlers) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.ListAccounts(r.Context())
	if err != nil {
		h.writeError(w, "list accounts failed", http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []*types.Account{}
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

// HandleGetAccount handles GET /api/accounts/{id}.
func (h *Handlers) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.loadAccount(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, acct)
}

// HandleUpdateAccount handles PUT /api/accounts/{id}.
func (h *Handlers) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.loadAccount(w, r)
	if !ok {
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name != "" {
		acct.Name = req.Name
	}
	if req.SmartAccount != "" {
		acct.SmartAccount = req.SmartAccount
	}
	if req.APIKey != "" {
		acct.APIKey = req.APIKey
	}
	if req.ProxyURL != "" {
		acct.ProxyURL = req.ProxyURL
	}
	if req.Active != nil {
		acct.Active = *req.Active
	}
	if req.Tags != nil {
		acct.Tags = req.Tags
	}
	if req.Notes != "" {
		acct.Notes = req.Notes
	}
	acct.UpdatedAt = time.Now().UTC()

	if err := h.Store.UpdateAccount(r.Context(), acct); err != nil {
		h.writeError(w, "account update failed", http.StatusInternalServerError)
		return
	}

	h.Events.PublishAccount(r.Context(), types.EventAccountUpdated, map[string]any{
		"account_id": acct.ID,
		"name":       acct.Name,
		"active":     acct.Active,
	})

	h.writeJSON(w, http.StatusOK, acct)
}

// HandleDeleteAccount handles DELETE /api/accounts/{id}.
func (h *Handlers) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.loadAccount(w, r)
	if !ok {
		return
	}

	if err := h.Store.DeleteAccount(r.Context(), acct.ID); err != nil {
		h.writeError(w, "account delete failed", http.StatusInternalServerError)
		return
	}

	h.Events.PublishAccount(r.Context(), types.EventAccountDeleted, map[string]any{
		"account_id": acct.ID,
		"name":       acct.Name,
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandlePositions handles GET /api/accounts/{id}/positions.
func (h *Handlers) HandlePositions(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.loadAccount(w, r)
	if !ok {
		return
	}

	positions, err := h.Portfolio.Positions(r.Context(), acct)
	if err != nil {
		h.Logger.Warn("positions-fetch-failed", zap.String("account", acct.Name), zap.Error(err))
		h.writeError(w, "positions fetch failed", http.StatusBadGateway)
		return
	}
	if positions == nil {
		positions = []map[string]any{}
	}
	h.writeJSON(w, http.StatusOK, positions)
}

// HandleOrders handles GET /api/accounts/{id}/orders.
func (h *Handlers) HandleOrders(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.loadAccount(w, r)
	if !ok {
		return
	}

	orders, err := h.Portfolio.Orders(r.Context(), acct)
	if err != nil {
		h.Logger.Warn("orders-fetch-failed", zap.String("account", acct.Name), zap.Error(err))
		h.writeError(w, "orders fetch failed", http.StatusBadGateway)
		return
	}
	if orders == nil {
		orders = []map[string]any{}
	}
	h.writeJSON(w, http.StatusOK, orders)
}

// HandleClosePlan handles GET /api/accounts/{id}/close-plan. The plan is
// advisory: nothing is submitted by this endpoint.
func (h *Handlers) HandleClosePlan(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.loadAccount(w, r)
	if !ok {
		return
	}

	plan, err := h.Portfolio.ClosePlan(r.Context(), acct)
	if err != nil {
		h.writeError(w, "close plan failed", http.StatusBadGateway)
		return
	}
	if plan == nil {
		plan = []types.ClosePlanItem{}
	}
	h.writeJSON(w, http.StatusOK, plan)
}

func (h *Handlers) loadAccount(w http.ResponseWriter, r *http.Request) (*types.Account, bool) {
	acct, err := h.Store.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, "account not found", http.StatusNotFound)
			return nil, false
		}
		h.writeError(w, "account lookup failed", http.StatusInternalServerError)
		return nil, false
	}
	return acct, true
}

// writeTradeError maps executor errors to HTTP statuses: caller mistakes
// are 4xx, exchange-side failures 502.
func (h *Handlers) writeTradeError(w http.ResponseWriter, err error) {
	var (
		vErr    *types.ValidationError
		outErr  *types.UnknownOutcomeError
		authErr *types.AuthenticationError
		apiErr  *types.APIError
	)

	switch {
	case errors.As(err, &vErr), errors.As(err, &outErr):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &authErr):
		h.writeError(w, err.Error(), http.StatusBadGateway)
	case errors.As(err, &apiErr) && !apiErr.Retryable():
		h.writeError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.writeError(w, err.Error(), http.StatusBadGateway)
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		h.Logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
