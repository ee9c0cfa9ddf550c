// Package closeplan turns raw exchange position records into a list of
// closing actions. The exchange's position schema has drifted over time,
// so every logical field is resolved through an ordered list of accepted
// key aliases. Records that cannot be resolved are skipped, never fatal:
// a partial plan over a valid subset beats failing the whole sweep.
package closeplan

import (
	"strconv"

	"github.com/mselser95/predict-account/pkg/types"
)

// ActionMarketSell closes a held position by selling it at market.
const ActionMarketSell = "market_sell"

// Accepted key aliases per logical field, checked in order. First
// match wins.
var (
	marketIDKeys  = []string{"market_id", "marketId", "market"}
	outcomeIDKeys = []string{"outcome_id", "outcomeId", "tokenId", "token_id"}
	sharesKeys    = []string{"shares", "size", "quantity"}
	sideKeys      = []string{"side", "positionSide"}
)

// BuildPlan maps position records to close actions. Records missing a
// market id, outcome id, or a positive numeric share quantity are
// dropped. Purely a transformation: no network, no side effects.
func BuildPlan(positions []map[string]any) []types.ClosePlanItem {
	plan := make([]types.ClosePlanItem, 0, len(positions))

	for _, pos := range positions {
		marketID := firstString(pos, marketIDKeys)
		outcomeID := firstString(pos, outcomeIDKeys)
		if marketID == "" || outcomeID == "" {
			continue
		}

		shares, ok := firstNumber(pos, sharesKeys)
		if !ok || shares <= 0 {
			continue
		}

		plan = append(plan, types.ClosePlanItem{
			MarketID:  marketID,
			OutcomeID: outcomeID,
			Side:      firstString(pos, sideKeys),
			Shares:    shares,
			Action:    ActionMarketSell,
		})
	}

	return plan
}

// firstString returns the first alias key whose value is a non-empty
// string, or a number rendered as its string form.
func firstString(record map[string]any, keys []string) string {
	for _, key := range keys {
		switch v := record[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// firstNumber resolves a quantity that may arrive as a JSON number or a
// numeric string.
func firstNumber(record map[string]any, keys []string) (float64, bool) {
	for _, key := range keys {
		switch v := record[key].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
