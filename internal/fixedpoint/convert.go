// Package fixedpoint converts between decimal price/share amounts and the
// exchange's base-unit integer representation (scale 10^18). No floating
// point value ever crosses the wire boundary; everything downstream of this
// package works on integers.
package fixedpoint

import (
	"math"
	"math/big"

	"github.com/mselser95/predict-account/pkg/types"
)

// Decimals is the exchange's fixed-point scale exponent.
const Decimals = 18

// Scale is 10^18 as a big integer.
//
//nolint:gochecknoglobals // Shared immutable constant
var Scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

// ToBaseUnits converts a decimal amount to base units, truncating toward
// zero. The rounding rule is deterministic: the same input always yields
// the same integer.
func ToBaseUnits(d float64) (*big.Int, error) {
	if math.IsNaN(d) {
		return nil, &types.InvalidAmountError{Value: d, Reason: "not a number"}
	}
	if math.IsInf(d, 0) {
		return nil, &types.InvalidAmountError{Value: d, Reason: "not finite"}
	}
	if d < 0 {
		return nil, &types.InvalidAmountError{Value: d, Reason: "negative"}
	}

	scaled := new(big.Float).SetPrec(256).SetFloat64(d)
	scaled.Mul(scaled, new(big.Float).SetPrec(256).SetInt(Scale))

	// big.Float.Int truncates toward zero.
	units, _ := scaled.Int(nil)

	return units, nil
}

// FromBaseUnits converts base units back to a decimal for display. Lossy
// for very large values; never used to build wire payloads.
func FromBaseUnits(units *big.Int) float64 {
	f := new(big.Float).SetPrec(256).SetInt(units)
	f.Quo(f, new(big.Float).SetPrec(256).SetInt(Scale))

	d, _ := f.Float64()
	return d
}

// MulDiv computes a*b/Scale, truncating toward zero. Used to derive
// the currency leg of an order from price and quantity already expressed
// in base units.
func MulDiv(a, b *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	return p.Quo(p, Scale)
}
