package cmd

import (
	"context"
	"fmt"

	"github.com/mselser95/predict-account/internal/portfolio"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var closePositionsCmd = &cobra.Command{
	Use:   "close-positions",
	Short: "Plan market-sell orders for every open position",
	Long: `Fetches all open positions for an account and prints the close plan:
one market sell per position. Position records missing a market id,
outcome id, or a positive share count are skipped.

This command only plans, it does not submit orders. Feed each plan line
to the trade command with --confirm to actually close a position.

Example:
  close-positions --account treasury
`,
	RunE: runClosePositions,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(closePositionsCmd)
	closePositionsCmd.Flags().String("account", "", "Account id or name (required)")
	_ = closePositionsCmd.MarkFlagRequired("account")
}

func runClosePositions(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	accountRef, _ := cmd.Flags().GetString("account")
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

	svc := portfolio.NewService(newExchangeClient(cfg, logger), logger)

	plan, err := svc.ClosePlan(ctx, acct)
	if err != nil {
		return fmt.Errorf("build close plan: %w", err)
	}

	if len(plan) == 0 {
		fmt.Printf("No open positions to close for %s.\n", acct.Name)
		return nil
	}

	fmt.Printf("Close plan for %s (%d positions):\n\n", acct.Name, len(plan))
	fmt.Printf("%-24s %-24s %-6s %12s  %s\n", "MARKET", "OUTCOME", "SIDE", "SHARES", "ACTION")
	for _, item := range plan {
		fmt.Printf("%-24s %-24s %-6s %12.4f  %s\n",
			item.MarketID, item.OutcomeID, item.Side, item.Shares, item.Action)
	}

	return nil
}
