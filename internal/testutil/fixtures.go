// Package testutil provides fixtures and a mock exchange server shared
// across package tests.
package testutil

import (
	"time"

	"github.com/mselser95/predict-account/pkg/types"
)

// TestPrivateKey is a throwaway secp256k1 key used only in tests.
const TestPrivateKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

// TestAddress is the address derived from TestPrivateKey.
const TestAddress = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"

// CreateTestMarket builds a binary market with Yes and No outcomes.
func CreateTestMarket(id string) *types.Market {
	return &types.Market{
		ID:         id,
		Title:      "Test market " + id,
		Status:     "OPEN",
		FeeRateBps: 200,
		Outcomes: []types.Outcome{
			{ID: id + "-yes", Name: "Yes", TokenID: "111"},
			{ID: id + "-no", Name: "No", TokenID: "222"},
		},
	}
}

// CreateTestAccount builds an active EOA account holding TestPrivateKey.
func CreateTestAccount(id string) *types.Account {
	now := time.Now().UTC()
	return &types.Account{
		ID:         id,
		Name:       "account-" + id,
		Address:    TestAddress,
		PrivateKey: TestPrivateKey,
		Active:     true,
		Tags:       []string{"test"},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CreateTestTradeRequest builds a valid yes-side trade request.
func CreateTestTradeRequest(accountID, marketID string, confirm bool) *types.TradeRequest {
	return &types.TradeRequest{
		AccountID: accountID,
		MarketID:  marketID,
		Side:      types.SideYes,
		Price:     0.5,
		Shares:    2,
		Confirm:   confirm,
	}
}
