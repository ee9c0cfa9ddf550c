package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mselser95/predict-account/pkg/types"
	"go.uber.org/zap"
)

// MemoryStore implements Store in process memory. Used for local runs and
// tests where no PostgreSQL instance is available; nothing survives a
// restart.
type MemoryStore struct {
	mu       sync.RWMutex
	trades   map[string]*types.Trade
	accounts map[string]*types.Account
	logger   *zap.Logger
}

func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	logger.Info("memory-storage-initialized")
	return &MemoryStore{
		trades:   make(map[string]*types.Trade),
		accounts: make(map[string]*types.Account),
		logger:   logger,
	}
}

func (m *MemoryStore) CreateTrade(ctx context.Context, trade *types.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.trades[trade.ID]; exists {
		return fmt.Errorf("trade %s already exists", trade.ID)
	}
	clone := *trade
	m.trades[trade.ID] = &clone
	return nil
}

func (m *MemoryStore) UpdateTradeStatus(ctx context.Context, id, status, orderHash, errText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	trade, ok := m.trades[id]
	if !ok {
		return fmt.Errorf("update trade %s: %w", id, ErrNotFound)
	}
	trade.Status = status
	if orderHash != "" {
		trade.OrderHash = orderHash
	}
	trade.Error = errText
	return nil
}

func (m *MemoryStore) GetTrade(ctx context.Context, id string) (*types.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trade, ok := m.trades[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *trade
	return &clone, nil
}

func (m *MemoryStore) ListTrades(ctx context.Context, accountID string, limit int) ([]*types.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var trades []*types.Trade
	for _, trade := range m.trades {
		if accountID != "" && trade.AccountID != accountID {
			continue
		}
		clone := *trade
		trades = append(trades, &clone)
	}

	sort.Slice(trades, func(i, j int) bool {
		return trades[i].CreatedAt.After(trades[j].CreatedAt)
	})
	if limit > 0 && len(trades) > limit {
		trades = trades[:limit]
	}
	return trades, nil
}

func (m *MemoryStore) CreateAccount(ctx context.Context, acct *types.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[acct.ID]; exists {
		return fmt.Errorf("account %s already exists", acct.ID)
	}
	clone := *acct
	m.accounts[acct.ID] = &clone
	return nil
}

func (m *MemoryStore) GetAccount(ctx context.Context, id string) (*types.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *acct
	return &clone, nil
}

func (m *MemoryStore) ListAccounts(ctx context.Context) ([]*types.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var accounts []*types.Account
	for _, acct := range m.accounts {
		clone := *acct
		accounts = append(accounts, &clone)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (m *MemoryStore) UpdateAccount(ctx context.Context, acct *types.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[acct.ID]; !ok {
		return fmt.Errorf("update account %s: %w", acct.ID, ErrNotFound)
	}
	clone := *acct
	m.accounts[acct.ID] = &clone
	return nil
}

func (m *MemoryStore) DeleteAccount(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[id]; !ok {
		return fmt.Errorf("delete account %s: %w", id, ErrNotFound)
	}
	delete(m.accounts, id)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error {
	m.logger.Info("closing-memory-storage")
	return nil
}

var _ Store = (*MemoryStore)(nil)
