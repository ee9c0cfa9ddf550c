package cmd

import (
	"fmt"

	"github.com/mselser95/predict-account/internal/app"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the trade execution API server",
	Long: `Starts the predict-account service, which will:
1. Expose the REST API for trades, accounts, markets and portfolio queries
2. Relay Redis stream events to websocket subscribers on /ws/events
3. Serve Prometheus metrics on /metrics and health probes on /health and /ready`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
