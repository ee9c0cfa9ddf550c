package app

import (
	"fmt"

	"github.com/mselser95/predict-account/internal/eventbus"
	"github.com/mselser95/predict-account/internal/exchange"
	"github.com/mselser95/predict-account/internal/executor"
	"github.com/mselser95/predict-account/internal/markets"
	"github.com/mselser95/predict-account/internal/order"
	"github.com/mselser95/predict-account/internal/portfolio"
	"github.com/mselser95/predict-account/internal/storage"
	"github.com/mselser95/predict-account/pkg/cache"
	"github.com/mselser95/predict-account/pkg/config"
	"github.com/mselser95/predict-account/pkg/healthprobe"
	"github.com/mselser95/predict-account/pkg/httpserver"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthprobe.New(),
	}
	a.ctx, a.cancel = contextWithCancel()

	marketCache, err := cache.NewRistrettoCache(&cache.Options{
		MaxItems: 1000,
		Logger:   logger,
	})
	if err != nil {
		a.cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}
	a.marketCache = marketCache

	a.client = exchange.New(&exchange.Config{
		BaseURL: cfg.PredictAPIURL,
		APIKey:  cfg.PredictAPIKey,
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
	})

	a.store, err = setupStorage(cfg, logger)
	if err != nil {
		a.cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	a.setupEvents(cfg, logger)

	builder := order.NewBuilder(&order.Config{
		ChainID: cfg.ChainID,
		Contracts: order.Contracts{
			Exchange:             cfg.ExchangeAddress,
			NegRiskExchange:      cfg.NegRiskExchangeAddress,
			YieldBearingExchange: cfg.YieldBearingExchangeAddress,
		},
		ExpiryWindow: cfg.OrderExpiryWindow,
		Logger:       logger,
	})

	a.executor = executor.New(&executor.Config{
		Client:  a.client,
		Builder: builder,
		Store:   a.store,
		Events:  a.publisher,
		Logger:  logger,
	})

	a.lister = markets.NewLister(&markets.Config{
		Client: a.client,
		Cache:  marketCache,
		TTL:    cfg.MarketsCacheTTL,
		Limit:  cfg.MarketsLimit,
		Logger: logger,
	})

	a.portfolio = portfolio.NewService(a.client, logger)

	a.hub = eventbus.NewHub(logger)
	if a.redis != nil {
		a.relay = eventbus.NewRelay(a.redis, a.redis, a.hub, logger)
	}

	a.httpServer = httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: a.healthChecker,
		EventFeed:     a.hub.ServeWS,
		Handlers: &httpserver.Handlers{
			Trades:    a.executor,
			Store:     a.store,
			Markets:   a.lister,
			Portfolio: a.portfolio,
			Events:    a.publisher,
			Logger:    logger,
		},
	})

	a.registerProbes()

	return a, nil
}

// setupEvents connects the event stream. A missing or unreachable Redis
// degrades to a null stream: event delivery is best-effort and must never
// keep the service from trading. The relay only runs when Redis is
// connected, since a null stream can never yield an entry.
func (a *App) setupEvents(cfg *config.Config, logger *zap.Logger) {
	var stream eventbus.Stream = eventbus.NewNullStream()

	if cfg.RedisAddr != "" {
		redis, err := eventbus.NewRedisStream(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis-unavailable-events-disabled",
				zap.String("addr", cfg.RedisAddr),
				zap.Error(err))
		} else {
			a.redis = redis
			stream = redis
		}
	} else {
		logger.Warn("redis-not-configured-events-disabled")
	}

	a.publisher = eventbus.NewPublisher(stream, logger)
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	if cfg.StorageMode == "postgres" {
		store, err := storage.NewPostgresStore(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return store, nil
	}

	return storage.NewMemoryStore(logger), nil
}

func (a *App) registerProbes() {
	a.healthChecker.RegisterProbe("storage", a.store.Ping)
	if a.redis != nil {
		a.healthChecker.RegisterProbe("redis", a.redis.Ping)
	}
}
