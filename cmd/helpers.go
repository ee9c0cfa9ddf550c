package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mselser95/predict-account/internal/eventbus"
	"github.com/mselser95/predict-account/internal/exchange"
	"github.com/mselser95/predict-account/internal/storage"
	"github.com/mselser95/predict-account/pkg/config"
	"github.com/mselser95/predict-account/pkg/types"
	"go.uber.org/zap"
)

// bootstrap loads .env, the config, and the logger. Shared by every
// command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, logger, nil
}

func newExchangeClient(cfg *config.Config, logger *zap.Logger) *exchange.Client {
	return exchange.New(&exchange.Config{
		BaseURL: cfg.PredictAPIURL,
		APIKey:  cfg.PredictAPIKey,
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
	})
}

func newStore(cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	if cfg.StorageMode == "postgres" {
		return storage.NewPostgresStore(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
	}
	return storage.NewMemoryStore(logger), nil
}

// newPublisher connects the event stream best-effort: without Redis the
// command still works, it just publishes into a null stream.
func newPublisher(cfg *config.Config, logger *zap.Logger) (*eventbus.Publisher, func()) {
	if cfg.RedisAddr == "" {
		return eventbus.NewPublisher(eventbus.NewNullStream(), logger), func() {}
	}

	redis, err := eventbus.NewRedisStream(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Warn("redis-unavailable-events-disabled", zap.Error(err))
		return eventbus.NewPublisher(eventbus.NewNullStream(), logger), func() {}
	}

	return eventbus.NewPublisher(redis, logger), func() { _ = redis.Close() }
}

// findAccount resolves an account reference: first as an id, then as a
// case-insensitive name.
func findAccount(ctx context.Context, store storage.Store, ref string) (*types.Account, error) {
	if acct, err := store.GetAccount(ctx, ref); err == nil {
		return acct, nil
	}

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	for _, acct := range accounts {
		if strings.EqualFold(acct.Name, ref) {
			return acct, nil
		}
	}
	return nil, fmt.Errorf("account %q not found", ref)
}
