package cmd

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/mselser95/predict-account/internal/portfolio"
	"github.com/mselser95/predict-account/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "List an account's open positions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPortfolioQuery(cmd, func(ctx context.Context, svc *portfolio.Service, acct *types.Account) (any, error) {
			return svc.Positions(ctx, acct)
		})
	},
}

//nolint:gochecknoglobals // Cobra boilerplate
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List an account's open orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPortfolioQuery(cmd, func(ctx context.Context, svc *portfolio.Service, acct *types.Account) (any, error) {
			return svc.Orders(ctx, acct)
		})
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(positionsCmd)
	rootCmd.AddCommand(ordersCmd)
	positionsCmd.Flags().String("account", "", "Account id or name (required)")
	ordersCmd.Flags().String("account", "", "Account id or name (required)")
	_ = positionsCmd.MarkFlagRequired("account")
	_ = ordersCmd.MarkFlagRequired("account")
}

// runPortfolioQuery handles the shared setup for read-only portfolio
// commands and prints the result as indented JSON.
func runPortfolioQuery(cmd *cobra.Command, query func(context.Context, *portfolio.Service, *types.Account) (any, error)) error {
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

	result, err := query(ctx, svc, acct)
	if err != nil {
		return fmt.Errorf("query exchange: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Println(string(out))

	return nil
}
