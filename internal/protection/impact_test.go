package protection

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"pgregory.net/rapid"

	"tradeGuard/internal/fixedpoint"
)

func TestCalculatePriceImpact(t *testing.T) {
	got, err := CalculatePriceImpact(e18(10), e18(100), e18(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 909 {
		t.Fatalf("impact %d != 909", got)
	}
}

func TestCalculatePriceImpactZero(t *testing.T) {
	if got, _ := CalculatePriceImpact(u(0), e18(100), e18(100)); got != 0 {
		t.Fatalf("zero amount impact %d", got)
	}
	if got, _ := CalculatePriceImpact(e18(1), u(0), e18(100)); got != 0 {
		t.Fatalf("zero reserve impact %d", got)
	}
}

func TestCalculatePriceImpactOverflow(t *testing.T) {
	if _, err := CalculatePriceImpact(fixedpoint.Max(), u(1), u(1)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestRequirePriceImpactWithinBounds(t *testing.T) {
	err := RequirePriceImpactWithinBounds(e18(10), e18(100), e18(100), 500)
	var impactErr *PriceImpactTooHighError
	if !errors.As(err, &impactErr) {
		t.Fatalf("expected PriceImpactTooHighError, got %v", err)
	}
	if impactErr.ActualBps != 909 || impactErr.MaxBps != 500 {
		t.Fatalf("error context mismatch: %+v", impactErr)
	}

	if err := RequirePriceImpactWithinBounds(e18(10), e18(100), e18(100), 909); err != nil {
		t.Fatalf("impact equal to cap must pass: %v", err)
	}
	if err := RequirePriceImpactWithinBounds(u(0), u(0), u(0), 0); err != nil {
		t.Fatalf("null trade must pass: %v", err)
	}
}

func TestGetMaxTradeSize(t *testing.T) {
	got, err := GetMaxTradeSize(e18(100), 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := new(uint256.Int).Mul(u(300), e18(100))
	want.Div(want, u(9700))
	if !got.Eq(want) {
		t.Fatalf("max trade %s != %s", got, want)
	}

	unbounded, err := GetMaxTradeSize(e18(100), 10_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !unbounded.Eq(fixedpoint.Max()) {
		t.Fatalf("expected saturating max, got %s", unbounded)
	}

	if _, err := GetMaxTradeSize(e18(100), 10_001); err == nil {
		t.Fatalf("expected error for cap above 100%%")
	}

	zero, err := GetMaxTradeSize(u(0), 300)
	if err != nil || !zero.IsZero() {
		t.Fatalf("empty reserve should bound to zero: %s %v", zero, err)
	}
}

func TestMaxTradeSizeRespectsCap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reserve := u(rapid.Uint64Range(1, ^uint64(0)).Draw(t, "reserve"))
		maxImpact := rapid.Uint64Range(1, 9_999).Draw(t, "maxImpact")

		size, err := GetMaxTradeSize(reserve, maxImpact)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		impact, err := CalculatePriceImpact(size, reserve, reserve)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if impact > maxImpact {
			t.Fatalf("max trade %s has impact %d > %d", size, impact, maxImpact)
		}
		if err := RequirePriceImpactWithinBounds(size, reserve, reserve, maxImpact); err != nil {
			t.Fatalf("max trade rejected: %v", err)
		}
	})
}

func TestPriceImpactBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		amount := new(uint256.Int).Lsh(u(rapid.Uint64().Draw(t, "amount")), uint(rapid.IntRange(0, 180).Draw(t, "shiftA")))
		reserve := new(uint256.Int).Lsh(u(rapid.Uint64().Draw(t, "reserve")), uint(rapid.IntRange(0, 180).Draw(t, "shiftR")))

		impact, err := CalculatePriceImpact(amount, reserve, reserve)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if impact > fixedpoint.BpsDenominator {
			t.Fatalf("impact %d exceeds 100%%", impact)
		}
	})
}

func TestClassifyImpact(t *testing.T) {
	cases := map[uint64]ImpactSeverity{
		0:    SeverityNone,
		99:   SeverityNone,
		100:  SeverityLow,
		300:  SeverityModerate,
		909:  SeverityHigh,
		1000: SeverityExtreme,
	}
	for bps, want := range cases {
		if got := ClassifyImpact(bps); got != want {
			t.Fatalf("%d bps: %s != %s", bps, got, want)
		}
	}
}
