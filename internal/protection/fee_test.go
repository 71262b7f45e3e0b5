package protection

import (
	"testing"

	"github.com/holiman/uint256"

	"tradeGuard/internal/fixedpoint"
)

func TestCalculateDynamicFee(t *testing.T) {
	cases := []struct {
		name      string
		liquidity *uint256.Int
		volume    *uint256.Int
		want      uint64
	}{
		{"at threshold", e18(100_000), e18(1000), 30},
		{"above threshold", e18(5_000_000), u(0), 30},
		{"empty pool", u(0), e18(1000), MaxFeeBps},
		{"half threshold", e18(50_000), u(0), 60},
		{"tenth of threshold", e18(10_000), u(0), 300},
		{"fractional multiplier", e18(30_000), u(0), 99},
		{"just below threshold", e18(99_999), u(0), 30},
		{"capped", e18(1_000), u(0), MaxFeeBps},
		{"one wei", u(1), u(0), MaxFeeBps},
	}
	for _, tc := range cases {
		if got := CalculateDynamicFee(tc.liquidity, tc.volume, BaseFeeBps); got != tc.want {
			t.Fatalf("%s: fee %d != %d", tc.name, got, tc.want)
		}
	}
}

func TestCalculateDynamicFeeIgnoresVolume(t *testing.T) {
	a := CalculateDynamicFee(e18(20_000), u(0), BaseFeeBps)
	b := CalculateDynamicFee(e18(20_000), fixedpoint.Max(), BaseFeeBps)
	if a != b {
		t.Fatalf("volume changed the fee: %d != %d", a, b)
	}
}

func TestCalculateDynamicFeeHugeBase(t *testing.T) {
	if got := CalculateDynamicFee(e18(50_000), u(0), ^uint64(0)); got != MaxFeeBps {
		t.Fatalf("expected cap, got %d", got)
	}
	// Above the threshold the base fee passes through untouched.
	if got := CalculateDynamicFee(e18(100_000), u(0), 42); got != 42 {
		t.Fatalf("expected base fee, got %d", got)
	}
}

func TestGetRecommendedFee(t *testing.T) {
	cases := []struct {
		name       string
		stable     bool
		volatility *uint256.Int
		liquidity  *uint256.Int
		want       uint64
	}{
		{"stable ignores volatility", true, e18(10), u(0), 5},
		{"stable zero", true, u(0), e18(1_000_000), 5},
		{"low volatility", false, u(10_000_000_000_000_000), e18(1_000_000), 30},
		{"mid volatility", false, u(30_000_000_000_000_000), u(0), 50},
		{"high volatility", false, u(100_000_000_000_000_000), u(0), 100},
		{"edge 2%", false, u(20_000_000_000_000_000), u(0), 50},
		{"edge 5%", false, u(50_000_000_000_000_000), u(0), 100},
		{"nil volatility", false, nil, nil, 30},
	}
	for _, tc := range cases {
		if got := GetRecommendedFee(tc.stable, tc.volatility, tc.liquidity); got != tc.want {
			t.Fatalf("%s: fee %d != %d", tc.name, got, tc.want)
		}
	}
}
