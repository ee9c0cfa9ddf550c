package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mselser95/predict-account/pkg/types"
	"go.uber.org/zap"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStore connects to PostgreSQL and verifies the connection.
func NewPostgresStore(cfg *PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStore{db: db, logger: cfg.Logger}, nil
}

// NewPostgresStoreWithDB wraps an existing connection, used in tests.
func NewPostgresStoreWithDB(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

func (p *PostgresStore) CreateTrade(ctx context.Context, trade *types.Trade) error {
	query := `
		INSERT INTO trades (
			id, account_id, account_name, market_id, outcome_id,
			side, price, shares, order_hash, status, error, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		trade.ID,
		trade.AccountID,
		trade.AccountName,
		trade.MarketID,
		trade.OutcomeID,
		trade.Side,
		trade.Price,
		trade.Shares,
		nullable(trade.OrderHash),
		trade.Status,
		nullable(trade.Error),
		trade.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}

	p.logger.Debug("trade-stored",
		zap.String("trade-id", trade.ID),
		zap.String("market-id", trade.MarketID),
		zap.String("status", trade.Status))

	return nil
}

func (p *PostgresStore) UpdateTradeStatus(ctx context.Context, id, status, orderHash, errText string) error {
	query := `
		UPDATE trades
		SET status = $2, order_hash = COALESCE($3, order_hash), error = $4
		WHERE id = $1
	`

	res, err := p.db.ExecContext(ctx, query, id, status, nullable(orderHash), nullable(errText))
	if err != nil {
		return fmt.Errorf("update trade %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update trade %s: %w", id, ErrNotFound)
	}

	p.logger.Debug("trade-updated",
		zap.String("trade-id", id),
		zap.String("status", status))

	return nil
}

func (p *PostgresStore) GetTrade(ctx context.Context, id string) (*types.Trade, error) {
	query := `
		SELECT id, account_id, account_name, market_id, outcome_id,
		       side, price, shares, order_hash, status, error, created_at, filled_at
		FROM trades
		WHERE id = $1
	`
	return scanTrade(p.db.QueryRowContext(ctx, query, id))
}

func (p *PostgresStore) ListTrades(ctx context.Context, accountID string, limit int) ([]*types.Trade, error) {
	query := `
		SELECT id, account_id, account_name, market_id, outcome_id,
		       side, price, shares, order_hash, status, error, created_at, filled_at
		FROM trades
		WHERE ($1 = '' OR account_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := p.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	var trades []*types.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	return trades, rows.Err()
}

func (p *PostgresStore) CreateAccount(ctx context.Context, acct *types.Account) error {
	query := `
		INSERT INTO accounts (
			id, name, address, private_key, smart_account, api_key,
			proxy_url, active, tags, notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		acct.ID,
		acct.Name,
		acct.Address,
		acct.PrivateKey,
		nullable(acct.SmartAccount),
		nullable(acct.APIKey),
		nullable(acct.ProxyURL),
		acct.Active,
		pq.Array(acct.Tags),
		nullable(acct.Notes),
		acct.CreatedAt,
		acct.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	p.logger.Debug("account-stored",
		zap.String("account-id", acct.ID),
		zap.String("name", acct.Name))

	return nil
}

func (p *PostgresStore) GetAccount(ctx context.Context, id string) (*types.Account, error) {
	query := `
		SELECT id, name, address, private_key, smart_account, api_key,
		       proxy_url, active, tags, notes, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	return scanAccount(p.db.QueryRowContext(ctx, query, id))
}

func (p *PostgresStore) ListAccounts(ctx context.Context) ([]*types.Account, error) {
	query := `
		SELECT id, name, address, private_key, smart_account, api_key,
		       proxy_url, active, tags, notes, created_at, updated_at
		FROM accounts
		ORDER BY created_at
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*types.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

func (p *PostgresStore) UpdateAccount(ctx context.Context, acct *types.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, smart_account = $3, api_key = $4, proxy_url = $5,
		    active = $6, tags = $7, notes = $8, updated_at = $9
		WHERE id = $1
	`

	res, err := p.db.ExecContext(ctx, query,
		acct.ID,
		acct.Name,
		nullable(acct.SmartAccount),
		nullable(acct.APIKey),
		nullable(acct.ProxyURL),
		acct.Active,
		pq.Array(acct.Tags),
		nullable(acct.Notes),
		acct.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update account %s: %w", acct.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update account %s: %w", acct.ID, ErrNotFound)
	}
	return nil
}

func (p *PostgresStore) DeleteAccount(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete account %s: %w", id, ErrNotFound)
	}
	return nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgresStore) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (*types.Trade, error) {
	var trade types.Trade
	var orderHash, errText sql.NullString
	var filledAt sql.NullTime

	err := row.Scan(
		&trade.ID,
		&trade.AccountID,
		&trade.AccountName,
		&trade.MarketID,
		&trade.OutcomeID,
		&trade.Side,
		&trade.Price,
		&trade.Shares,
		&orderHash,
		&trade.Status,
		&errText,
		&trade.CreatedAt,
		&filledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan trade: %w", err)
	}

	trade.OrderHash = orderHash.String
	trade.Error = errText.String
	if filledAt.Valid {
		trade.FilledAt = &filledAt.Time
	}
	return &trade, nil
}

func scanAccount(row rowScanner) (*types.Account, error) {
	var acct types.Account
	var smartAccount, apiKey, proxyURL, notes sql.NullString

	err := row.Scan(
		&acct.ID,
		&acct.Name,
		&acct.Address,
		&acct.PrivateKey,
		&smartAccount,
		&apiKey,
		&proxyURL,
		&acct.Active,
		pq.Array(&acct.Tags),
		&notes,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	acct.SmartAccount = smartAccount.String
	acct.APIKey = apiKey.String
	acct.ProxyURL = proxyURL.String
	acct.Notes = notes.String
	return &acct, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Store = (*PostgresStore)(nil)
