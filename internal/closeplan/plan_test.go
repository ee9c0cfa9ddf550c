package closeplan

import (
	"testing"

	"github.com/mselser95/predict-account/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlan_SkipsMalformedRecords(t *testing.T) {
	positions := []map[string]any{
		{"market_id": "m1", "tokenId": "t1", "shares": "2.5"},
		{"bad": "record"},
	}

	plan := BuildPlan(positions)

	require.Len(t, plan, 1)
	assert.Equal(t, types.ClosePlanItem{
		MarketID:  "m1",
		OutcomeID: "t1",
		Shares:    2.5,
		Action:    ActionMarketSell,
	}, plan[0])
}

func TestBuildPlan_AliasResolutionOrder(t *testing.T) {
	tests := []struct {
		name string
		pos  map[string]any
		want types.ClosePlanItem
	}{
		{
			name: "canonical keys",
			pos:  map[string]any{"market_id": "m1", "outcome_id": "o1", "shares": 1.0},
			want: types.ClosePlanItem{MarketID: "m1", OutcomeID: "o1", Shares: 1, Action: ActionMarketSell},
		},
		{
			name: "camelCase keys",
			pos:  map[string]any{"marketId": "m2", "outcomeId": "o2", "size": 3.0},
			want: types.ClosePlanItem{MarketID: "m2", OutcomeID: "o2", Shares: 3, Action: ActionMarketSell},
		},
		{
			name: "token and quantity aliases",
			pos:  map[string]any{"market": "m3", "token_id": "o3", "quantity": "0.5"},
			want: types.ClosePlanItem{MarketID: "m3", OutcomeID: "o3", Shares: 0.5, Action: ActionMarketSell},
		},
		{
			name: "first alias wins over later ones",
			pos:  map[string]any{"market_id": "first", "marketId": "second", "tokenId": "t1", "shares": 1.0},
			want: types.ClosePlanItem{MarketID: "first", OutcomeID: "t1", Shares: 1, Action: ActionMarketSell},
		},
		{
			name: "side carried through when present",
			pos:  map[string]any{"market_id": "m4", "tokenId": "t4", "shares": 2.0, "side": "yes"},
			want: types.ClosePlanItem{MarketID: "m4", OutcomeID: "t4", Side: "yes", Shares: 2, Action: ActionMarketSell},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := BuildPlan([]map[string]any{tt.pos})
			require.Len(t, plan, 1)
			assert.Equal(t, tt.want, plan[0])
		})
	}
}

func TestBuildPlan_DropConditions(t *testing.T) {
	tests := []struct {
		name string
		pos  map[string]any
	}{
		{name: "missing market", pos: map[string]any{"tokenId": "t1", "shares": 1.0}},
		{name: "missing outcome", pos: map[string]any{"market_id": "m1", "shares": 1.0}},
		{name: "missing shares", pos: map[string]any{"market_id": "m1", "tokenId": "t1"}},
		{name: "non-numeric shares", pos: map[string]any{"market_id": "m1", "tokenId": "t1", "shares": "lots"}},
		{name: "zero shares", pos: map[string]any{"market_id": "m1", "tokenId": "t1", "shares": 0.0}},
		{name: "negative shares", pos: map[string]any{"market_id": "m1", "tokenId": "t1", "shares": -2.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, BuildPlan([]map[string]any{tt.pos}))
		})
	}
}

func TestBuildPlan_NumericMarketID(t *testing.T) {
	plan := BuildPlan([]map[string]any{
		{"market_id": 6714.0, "tokenId": "t1", "shares": 1.0},
	})

	require.Len(t, plan, 1)
	assert.Equal(t, "6714", plan[0].MarketID)
}

func TestBuildPlan_EmptyInput(t *testing.T) {
	assert.Empty(t, BuildPlan(nil))
	assert.Empty(t, BuildPlan([]map[string]any{}))
}
