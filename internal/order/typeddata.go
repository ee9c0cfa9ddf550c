package order

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// EIP-712 domain constants for the exchange's order verifier.
const (
	domainName    = "Predict CTF Exchange"
	domainVersion = "1"
)

// Contracts holds the verifying contract addresses. Neg-risk and
// yield-bearing markets settle through dedicated exchange contracts, so
// the order signature must bind to the right one.
type Contracts struct {
	Exchange             string
	NegRiskExchange      string
	YieldBearingExchange string
}

// Verifier picks the verifying contract for a market's risk flags.
func (c Contracts) Verifier(isNegRisk, isYieldBearing bool) string {
	switch {
	case isYieldBearing && c.YieldBearingExchange != "":
		return c.YieldBearingExchange
	case isNegRisk && c.NegRiskExchange != "":
		return c.NegRiskExchange
	default:
		return c.Exchange
	}
}

// orderTypes is the EIP-712 type set for a signed order.
//
//nolint:gochecknoglobals // Immutable EIP-712 schema
var orderTypes = apitypes.Types{
	"EIP712Domain": []apitypes.Type{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Order": []apitypes.Type{
		{Name: "salt", Type: "uint256"},
		{Name: "maker", Type: "address"},
		{Name: "signer", Type: "address"},
		{Name: "taker", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "makerAmount", Type: "uint256"},
		{Name: "takerAmount", Type: "uint256"},
		{Name: "expiration", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "feeRateBps", Type: "uint256"},
		{Name: "side", Type: "uint8"},
		{Name: "signatureType", Type: "uint8"},
	},
}

// typedData produces the exchange's structured-data encoding of an order.
// The encoding is deterministic: re-encoding identical field values yields
// an identical hash.
func (b *Builder) typedData(o *unsignedOrder, isNegRisk, isYieldBearing bool) apitypes.TypedData {
	verifier := b.contracts.Verifier(isNegRisk, isYieldBearing)

	return apitypes.TypedData{
		Types:       orderTypes,
		PrimaryType: "Order",
		Domain: apitypes.TypedDataDomain{
			Name:              domainName,
			Version:           domainVersion,
			ChainId:           (*math.HexOrDecimal256)(new(big.Int).Set(b.chainID)),
			VerifyingContract: common.HexToAddress(verifier).Hex(),
		},
		Message: map[string]interface{}{
			"salt":          o.Salt.String(),
			"maker":         o.Maker.Hex(),
			"signer":        o.Signer.Hex(),
			"taker":         o.Taker.Hex(),
			"tokenId":       o.TokenID.String(),
			"makerAmount":   o.MakerAmount.String(),
			"takerAmount":   o.TakerAmount.String(),
			"expiration":    o.Expiration.String(),
			"nonce":         o.Nonce.String(),
			"feeRateBps":    o.FeeRateBps.String(),
			"side":          big.NewInt(int64(o.Side)),
			"signatureType": big.NewInt(int64(o.SignatureType)),
		},
	}
}
