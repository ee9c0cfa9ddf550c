package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listMarketsCmd = &cobra.Command{
	Use:   "list-markets",
	Short: "List open markets on the exchange",
	RunE:  runListMarkets,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(listMarketsCmd)
	listMarketsCmd.Flags().Int("limit", 0, "Maximum markets to return (default from MARKETS_LIMIT)")
}

func runListMarkets(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.MarketsLimit
	}

	client := newExchangeClient(cfg, logger)

	markets, err := client.GetOpenMarkets(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	fmt.Printf("%d open markets:\n\n", len(markets))
	for _, m := range markets {
		outcomes := make([]string, 0, len(m.Outcomes))
		for _, o := range m.Outcomes {
			outcomes = append(outcomes, o.Name)
		}
		fmt.Printf("%-12s fee=%dbps  %s  [%s]\n", m.ID, m.FeeRateBps, m.Title, strings.Join(outcomes, " / "))
	}

	return nil
}
