package protection

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"pgregory.net/rapid"
)

func TestCalculateLiquidityScoreAnchors(t *testing.T) {
	healthy := LiquidityMetrics{
		Reserve0:           e18(5_000_000),
		Reserve1:           e18(5_000_000),
		TotalValueUSD:      e18(10_000_000),
		ConcentrationScore: 80,
		UtilizationRate:    u(50_000_000_000_000_000),
	}
	if got := CalculateLiquidityScore(healthy); got != 94 {
		t.Fatalf("healthy score %d != 94", got)
	}

	thin := LiquidityMetrics{
		Reserve0:           e18(2_500),
		Reserve1:           e18(2_500),
		TotalValueUSD:      e18(5_000),
		ConcentrationScore: 30,
		UtilizationRate:    u(600_000_000_000_000_000),
	}
	if got := CalculateLiquidityScore(thin); got != 9 {
		t.Fatalf("thin score %d != 9", got)
	}
}

func TestLiquidityScoreBands(t *testing.T) {
	policy := DefaultScorePolicy()
	cases := []struct {
		tvl  *uint256.Int
		want uint64
	}{
		{e18(1_000_000), 40},
		{e18(999_999), 30},
		{e18(500_000), 30},
		{e18(100_000), 20},
		{e18(10_000), 10},
		{e18(9_999), 0},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := policy.liquidityPoints(orZero(tc.tvl)); got != tc.want {
			t.Fatalf("tvl %s: points %d != %d", tc.tvl, got, tc.want)
		}
	}

	utilization := []struct {
		rate *uint256.Int
		want uint64
	}{
		{percent(0), 30},
		{percent(10), 20},
		{percent(25), 10},
		{percent(49), 10},
		{percent(50), 0},
		{percent(100), 0},
	}
	for _, tc := range utilization {
		if got := policy.utilizationPoints(tc.rate); got != tc.want {
			t.Fatalf("utilization %s: points %d != %d", tc.rate, got, tc.want)
		}
	}
}

func TestConcentrationPointsCapped(t *testing.T) {
	if got := concentrationPoints(250); got != MaxConcentrationPoints {
		t.Fatalf("concentration points %d", got)
	}
	if got := concentrationPoints(0); got != 0 {
		t.Fatalf("concentration points %d", got)
	}
}

func TestScorePolicyValidate(t *testing.T) {
	if err := DefaultScorePolicy().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}

	unordered := DefaultScorePolicy()
	unordered.LiquidityBands[0], unordered.LiquidityBands[1] = unordered.LiquidityBands[1], unordered.LiquidityBands[0]
	if err := unordered.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}

	tooGenerous := DefaultScorePolicy()
	tooGenerous.UtilizationBands[0].Points = 31
	if err := tooGenerous.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
}

func TestCustomScorePolicy(t *testing.T) {
	policy := ScorePolicy{
		LiquidityBands:   []Band{{Threshold: e18(1), Points: 40}},
		UtilizationBands: []Band{{Threshold: percent(100), Points: 30}},
	}
	metrics := LiquidityMetrics{TotalValueUSD: e18(1), ConcentrationScore: 100, UtilizationRate: percent(99)}
	if got := policy.Score(metrics); got != 100 {
		t.Fatalf("score %d != 100", got)
	}
}

func TestLiquidityScoreBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		metrics := LiquidityMetrics{
			TotalValueUSD:      e18(rapid.Uint64Range(0, 1<<40).Draw(t, "tvl")),
			ConcentrationScore: rapid.Uint64().Draw(t, "concentration"),
			UtilizationRate:    u(rapid.Uint64().Draw(t, "utilization")),
		}
		if got := CalculateLiquidityScore(metrics); got > MaxScore {
			t.Fatalf("score %d exceeds %d", got, MaxScore)
		}
	})
}
