package cmd

import (
	"context"
	"fmt"

	"github.com/mselser95/predict-account/internal/executor"
	"github.com/mselser95/predict-account/internal/order"
	"github.com/mselser95/predict-account/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Execute a single order on a market outcome",
	Long: `Builds, signs and submits a single limit order for a managed account.

Without --confirm the command runs a dry run: it validates the request,
previews the order against the live orderbook, and makes no mutating
exchange calls. Pass --confirm to authenticate and submit for real.`,
	RunE: runTrade,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.Flags().String("account", "", "Account id or name (required)")
	tradeCmd.Flags().String("market", "", "Market id (required)")
	tradeCmd.Flags().String("side", "yes", "Position side: yes or no")
	tradeCmd.Flags().Float64("price", 0, "Limit price per share, 0 < price < 1 (required)")
	tradeCmd.Flags().Float64("shares", 0, "Number of shares (required)")
	tradeCmd.Flags().Bool("confirm", false, "Actually submit the order instead of a dry run")
	_ = tradeCmd.MarkFlagRequired("account")
	_ = tradeCmd.MarkFlagRequired("market")
	_ = tradeCmd.MarkFlagRequired("price")
	_ = tradeCmd.MarkFlagRequired("shares")
}

func runTrade(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	accountRef, _ := cmd.Flags().GetString("account")
	marketID, _ := cmd.Flags().GetString("market")
	side, _ := cmd.Flags().GetString("side")
	price, _ := cmd.Flags().GetFloat64("price")
	shares, _ := cmd.Flags().GetFloat64("shares")
	confirm, _ := cmd.Flags().GetBool("confirm")

	ctx := context.Background()

	store, err := newStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	acct, err := findAccount(ctx, store, accountRef)
	if err != nil {
		return err
	}

	publisher, closeEvents := newPublisher(cfg, logger)
	defer closeEvents()

	exec := executor.New(&executor.Config{
		Client: newExchangeClient(cfg, logger),
		Builder: order.NewBuilder(&order.Config{
			ChainID: cfg.ChainID,
			Contracts: order.Contracts{
				Exchange:             cfg.ExchangeAddress,
				NegRiskExchange:      cfg.NegRiskExchangeAddress,
				YieldBearingExchange: cfg.YieldBearingExchangeAddress,
			},
			ExpiryWindow: cfg.OrderExpiryWindow,
			Logger:       logger,
		}),
		Store:  store,
		Events: publisher,
		Logger: logger,
	})

	result, err := exec.Execute(ctx, acct, &types.TradeRequest{
		AccountID: acct.ID,
		MarketID:  marketID,
		Side:      side,
		Price:     price,
		Shares:    shares,
		Confirm:   confirm,
	})
	if err != nil {
		return fmt.Errorf("execute trade: %w", err)
	}

	fmt.Printf("Trade %s: %s\n", result.Status, result.TradeID)
	fmt.Printf("  Account: %s (%s)\n", result.AccountName, result.AccountID)
	fmt.Printf("  Market:  %s\n", result.MarketID)
	fmt.Printf("  Order:   %s %.2f shares @ %.4f\n", result.Side, result.Shares, result.Price)
	if result.OrderHash != "" {
		fmt.Printf("  Hash:    %s\n", result.OrderHash)
	}
	if result.Message != "" {
		fmt.Printf("  %s\n", result.Message)
	}

	return nil
}
