// Package order converts a trade intent plus market metadata into a
// signed, wire-ready exchange order.
package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/predict-account/internal/fixedpoint"
	"github.com/mselser95/predict-account/internal/signing"
	"github.com/mselser95/predict-account/pkg/types"
	"go.uber.org/zap"
)

// zeroAddress is the taker placeholder for open orders.
const zeroAddress = "0x0000000000000000000000000000000000000000"

// saltBits bounds the random salt. 128 bits keeps collisions out of reach
// while staying well inside uint256.
const saltBits = 128

// Builder assembles and signs exchange orders.
type Builder struct {
	chainID   *big.Int
	contracts Contracts
	expiry    time.Duration
	logger    *zap.Logger
}

// Config holds builder configuration.
type Config struct {
	ChainID   int64
	Contracts Contracts
	// ExpiryWindow is the default order lifetime when the caller does not
	// supply an explicit expiration.
	ExpiryWindow time.Duration
	Logger       *zap.Logger
}

// NewBuilder creates an order builder.
func NewBuilder(cfg *Config) *Builder {
	expiry := cfg.ExpiryWindow
	if expiry <= 0 {
		expiry = 30 * time.Minute
	}

	return &Builder{
		chainID:   big.NewInt(cfg.ChainID),
		contracts: cfg.Contracts,
		expiry:    expiry,
		logger:    cfg.Logger,
	}
}

// Result is a built, signed order plus the integer price the submission
// envelope needs.
type Result struct {
	Order     *types.SignedOrder
	Outcome   types.Outcome
	PriceWei  *big.Int
	SharesWei *big.Int
}

// ResolveOutcome finds the market outcome whose name matches side
// case-insensitively. Selection is always by name, never by payload
// ordering.
func ResolveOutcome(market *types.Market, side string) (types.Outcome, error) {
	for _, o := range market.Outcomes {
		if strings.EqualFold(o.Name, side) && o.TokenID != "" {
			return o, nil
		}
	}
	return types.Outcome{}, &types.UnknownOutcomeError{Side: side, MarketID: market.ID}
}

// SideCode maps the caller's binary side to the wire order side:
// "yes" buys the Yes outcome token, "no" sells the No outcome token.
// This is the single canonical mapping; no caller inverts it.
func SideCode(side string) (int, error) {
	switch strings.ToLower(side) {
	case types.SideYes:
		return types.OrderSideBuy, nil
	case types.SideNo:
		return types.OrderSideSell, nil
	default:
		return 0, &types.ValidationError{Field: "side", Reason: `must be "yes" or "no"`}
	}
}

// Build turns a trade request into a signed order. expiresAt may be zero,
// in which case the builder's default window applies.
func (b *Builder) Build(req *types.TradeRequest, market *types.Market, signer signing.Signer, expiresAt time.Time) (*Result, error) {
	sideCode, err := SideCode(req.Side)
	if err != nil {
		return nil, err
	}

	outcome, err := ResolveOutcome(market, req.Side)
	if err != nil {
		return nil, err
	}

	priceWei, err := fixedpoint.ToBaseUnits(req.Price)
	if err != nil {
		return nil, err
	}

	sharesWei, err := fixedpoint.ToBaseUnits(req.Shares)
	if err != nil {
		return nil, err
	}

	makerAmount, takerAmount := limitAmounts(sideCode, priceWei, sharesWei)

	salt, err := newSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(b.expiry)
	}

	tokenID, ok := new(big.Int).SetString(outcome.TokenID, 10)
	if !ok {
		// Hex-encoded on-chain ids show up on some markets.
		tokenID, ok = new(big.Int).SetString(strings.TrimPrefix(outcome.TokenID, "0x"), 16)
		if !ok {
			return nil, fmt.Errorf("unparseable outcome token id %q", outcome.TokenID)
		}
	}

	unsigned := &unsignedOrder{
		Salt:          salt,
		Maker:         common.HexToAddress(signer.Address()),
		Signer:        common.HexToAddress(signer.Address()),
		Taker:         common.HexToAddress(zeroAddress),
		TokenID:       tokenID,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Expiration:    big.NewInt(expiresAt.Unix()),
		Nonce:         big.NewInt(0),
		FeeRateBps:    big.NewInt(int64(market.FeeRateBps)),
		Side:          sideCode,
		SignatureType: signer.SignatureType(),
	}

	td := b.typedData(unsigned, market.IsNegRisk, market.IsYieldBearing)

	signature, err := signer.SignTypedData(td)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("order-built",
		zap.String("market-id", market.ID),
		zap.String("token-id", outcome.TokenID),
		zap.Int("side", sideCode),
		zap.String("maker-amount", makerAmount.String()),
		zap.String("taker-amount", takerAmount.String()))

	return &Result{
		Order:     unsigned.wire(signature),
		Outcome:   outcome,
		PriceWei:  priceWei,
		SharesWei: sharesWei,
	}, nil
}

// limitAmounts derives the two order legs from (side, price, quantity),
// all in base units. A BUY offers price*quantity currency and expects
// quantity outcome tokens; a SELL is the mirror. Only integer arithmetic:
// both inputs are already base units.
func limitAmounts(side int, priceWei, sharesWei *big.Int) (maker, taker *big.Int) {
	currency := fixedpoint.MulDiv(priceWei, sharesWei)

	if side == types.OrderSideBuy {
		return currency, new(big.Int).Set(sharesWei)
	}
	return new(big.Int).Set(sharesWei), currency
}

// newSalt draws a fresh random nonce. The salt is generated exactly once
// per logical trade; retries reuse the same signed payload.
func newSalt() (*big.Int, error) {
	max := new(big.Int).Lsh(big.NewInt(1), saltBits)
	return rand.Int(rand.Reader, max)
}

// unsignedOrder carries the order fields as native big integers until
// signing; the wire form string-encodes everything.
type unsignedOrder struct {
	Salt          *big.Int
	Maker         common.Address
	Signer        common.Address
	Taker         common.Address
	TokenID       *big.Int
	MakerAmount   *big.Int
	TakerAmount   *big.Int
	Expiration    *big.Int
	Nonce         *big.Int
	FeeRateBps    *big.Int
	Side          int
	SignatureType int
}

func (o *unsignedOrder) wire(signature string) *types.SignedOrder {
	return &types.SignedOrder{
		Salt:          o.Salt.String(),
		Maker:         o.Maker.Hex(),
		Signer:        o.Signer.Hex(),
		Taker:         o.Taker.Hex(),
		TokenID:       o.TokenID.String(),
		MakerAmount:   o.MakerAmount.String(),
		TakerAmount:   o.TakerAmount.String(),
		Expiration:    o.Expiration.String(),
		Nonce:         o.Nonce.String(),
		FeeRateBps:    o.FeeRateBps.String(),
		Side:          o.Side,
		SignatureType: o.SignatureType,
		Signature:     signature,
	}
}
