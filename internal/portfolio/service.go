// Package portfolio reads account positions and open orders from the
// exchange and derives close plans from them. Every call authenticates
// fresh; tokens are never cached across requests.
package portfolio

import (
	"context"
	"fmt"

	"github.com/mselser95/predict-account/internal/closeplan"
	"github.com/mselser95/predict-account/internal/signing"
	"github.com/mselser95/predict-account/pkg/types"
	"go.uber.org/zap"
)

// ExchangeClient is the exchange surface the service needs.
type ExchangeClient interface {
	Authenticate(ctx context.Context, signer signing.Signer) (string, error)
	GetPositions(ctx context.Context, address, token string) ([]map[string]any, error)
	GetOrders(ctx context.Context, address, token string) ([]map[string]any, error)
}

// Service fetches bearer-authenticated account data.
type Service struct {
	client ExchangeClient
	logger *zap.Logger
}

func NewService(client ExchangeClient, logger *zap.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// Positions returns the account's raw position records.
func (s *Service) Positions(ctx context.Context, acct *types.Account) ([]map[string]any, error) {
	token, signer, err := s.authenticate(ctx, acct)
	if err != nil {
		return nil, err
	}
	return s.client.GetPositions(ctx, signer.Address(), token)
}

// Orders returns the account's open orders.
func (s *Service) Orders(ctx context.Context, acct *types.Account) ([]map[string]any, error) {
	token, signer, err := s.authenticate(ctx, acct)
	if err != nil {
		return nil, err
	}
	return s.client.GetOrders(ctx, signer.Address(), token)
}

// ClosePlan fetches the account's positions and maps them to closing
// actions. Positions the planner cannot resolve are skipped, so the plan
// may cover a subset of what the exchange reports.
func (s *Service) ClosePlan(ctx context.Context, acct *types.Account) ([]types.ClosePlanItem, error) {
	positions, err := s.Positions(ctx, acct)
	if err != nil {
		return nil, err
	}

	plan := closeplan.BuildPlan(positions)
	if len(plan) < len(positions) {
		s.logger.Warn("close-plan-skipped-records",
			zap.String("account", acct.Name),
			zap.Int("positions", len(positions)),
			zap.Int("planned", len(plan)))
	}
	return plan, nil
}

func (s *Service) authenticate(ctx context.Context, acct *types.Account) (string, signing.Signer, error) {
	signer, err := signing.ForAccount(acct)
	if err != nil {
		return "", nil, fmt.Errorf("load signer for %s: %w", acct.Name, err)
	}

	token, err := s.client.Authenticate(ctx, signer)
	if err != nil {
		return "", nil, err
	}
	return token, signer, nil
}
