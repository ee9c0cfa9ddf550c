// Package app wires the service together and owns its lifecycle. All
// collaborators are constructed once here and passed by reference; no
// component reaches for global state.
package app

import (
	"context"
	"sync"

	"github.com/mselser95/predict-account/internal/eventbus"
	"github.com/mselser95/predict-account/internal/exchange"
	"github.com/mselser95/predict-account/internal/executor"
	"github.com/mselser95/predict-account/internal/markets"
	"github.com/mselser95/predict-account/internal/portfolio"
	"github.com/mselser95/predict-account/internal/storage"
	"github.com/mselser95/predict-account/pkg/cache"
	"github.com/mselser95/predict-account/pkg/config"
	"github.com/mselser95/predict-account/pkg/healthprobe"
	"github.com/mselser95/predict-account/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server

	marketCache cache.Cache
	store       storage.Store
	client      *exchange.Client
	executor    *executor.Executor
	lister      *markets.Lister
	portfolio   *portfolio.Service

	redis     *eventbus.RedisStream
	publisher *eventbus.Publisher
	hub       *eventbus.Hub
	// relay is nil when no Redis is connected; there is nothing to drain.
	relay *eventbus.Relay

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func contextWithCancel() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}
