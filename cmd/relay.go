package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mselser95/predict-account/internal/eventbus"
	"github.com/mselser95/predict-account/pkg/healthprobe"
	"github.com/mselser95/predict-account/pkg/httpserver"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run a standalone event relay",
	Long: `Runs only the event relay: reads trade, account and fill events from
Redis streams and fans them out to websocket subscribers on /ws/events.
Delivery is at-least-once; cursors are durable in Redis, so a restarted
relay resumes from the last delivered batch.

Unlike serve, this command requires Redis.`,
	RunE: runRelay,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(relayCmd)
}

func runRelay(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required for the relay")
	}

	redis, err := eventbus.NewRedisStream(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		_ = redis.Close()
	}()

	hub := eventbus.NewHub(logger)
	relay := eventbus.NewRelay(redis, redis, hub, logger)

	healthChecker := healthprobe.New()
	healthChecker.RegisterProbe("redis", redis.Ping)

	server := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		EventFeed:     hub.ServeWS,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Start()
	}()
	go func() {
		errCh <- relay.Run(ctx)
	}()

	healthChecker.SetReady(true)
	logger.Info("relay-ready",
		zap.String("redis-addr", cfg.RedisAddr),
		zap.String("http-port", cfg.HTTPPort))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("relay-component-failed", zap.Error(err))
		}
	}

	healthChecker.SetReady(false)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http-server-shutdown-failed", zap.Error(err))
	}
	hub.Close()

	return nil
}
