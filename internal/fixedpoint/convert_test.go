package fixedpoint

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/mselser95/predict-account/pkg/types"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{name: "one", input: 1.0, want: "1000000000000000000"},
		{name: "half", input: 0.5, want: "500000000000000000"},
		{name: "zero", input: 0, want: "0"},
		{name: "fractional shares", input: 2.5, want: "2500000000000000000"},
		{name: "small price", input: 0.01, want: "10000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.String())
			}
		})
	}
}

func TestToBaseUnits_Deterministic(t *testing.T) {
	// The same decimal input must always yield the same integer.
	inputs := []float64{0.1, 0.3, 0.7, 1.0 / 3.0, 0.123456789012345678}

	for _, d := range inputs {
		first, err := ToBaseUnits(d)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", d, err)
		}

		for i := 0; i < 10; i++ {
			again, err := ToBaseUnits(d)
			if err != nil {
				t.Fatalf("unexpected error for %v: %v", d, err)
			}
			if first.Cmp(again) != 0 {
				t.Fatalf("non-deterministic conversion for %v: %s vs %s", d, first, again)
			}
		}
	}
}

func TestToBaseUnits_InvalidInput(t *testing.T) {
	for _, d := range []float64{-1, -0.0001, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := ToBaseUnits(d)
		if err == nil {
			t.Errorf("expected error for %v, got nil", d)
			continue
		}

		var invalid *types.InvalidAmountError
		if !errors.As(err, &invalid) {
			t.Errorf("expected InvalidAmountError for %v, got %T", d, err)
		}
	}
}

func TestMulDiv(t *testing.T) {
	// price 0.5, quantity 2 shares -> 1 unit of currency
	price, _ := ToBaseUnits(0.5)
	qty, _ := ToBaseUnits(2)

	got := MulDiv(price, qty)
	want, _ := ToBaseUnits(1)

	if got.Cmp(want) != 0 {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestMulDiv_TruncatesTowardZero(t *testing.T) {
	// 1 wei price times 1 wei quantity is far below one base unit.
	got := MulDiv(big.NewInt(1), big.NewInt(1))
	if got.Sign() != 0 {
		t.Errorf("expected 0, got %s", got)
	}
}

func TestFromBaseUnits(t *testing.T) {
	units, _ := ToBaseUnits(0.25)
	if got := FromBaseUnits(units); got != 0.25 {
		t.Errorf("expected 0.25, got %v", got)
	}
}
