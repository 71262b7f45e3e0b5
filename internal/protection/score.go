package protection

import (
	"fmt"

	"github.com/holiman/uint256"

	"tradeGuard/internal/fixedpoint"
)

const (
	MaxLiquidityPoints     uint64 = 40
	MaxConcentrationPoints uint64 = 30
	MaxUtilizationPoints   uint64 = 30
	MaxScore               uint64 = 100
)

// Band awards Points when a metric crosses Threshold.
type Band struct {
	Threshold *uint256.Int
	Points    uint64
}

// ScorePolicy holds the band tables for the liquidity and utilization
// components. LiquidityBands are ordered by descending threshold and
// match on value >= Threshold. UtilizationBands are ordered by ascending
// threshold and match on value < Threshold. Values matching no band
// score zero.
type ScorePolicy struct {
	LiquidityBands   []Band
	UtilizationBands []Band
}

// DefaultScorePolicy returns the production band tables.
func DefaultScorePolicy() ScorePolicy {
	return ScorePolicy{
		LiquidityBands: []Band{
			{Threshold: fixedpoint.Units(1_000_000), Points: 40},
			{Threshold: fixedpoint.Units(500_000), Points: 30},
			{Threshold: fixedpoint.Units(100_000), Points: 20},
			{Threshold: fixedpoint.Units(10_000), Points: 10},
		},
		UtilizationBands: []Band{
			{Threshold: percent(10), Points: 30},
			{Threshold: percent(25), Points: 20},
			{Threshold: percent(50), Points: 10},
		},
	}
}

func percent(p uint64) *uint256.Int {
	return uint256.NewInt(p * (fixedpoint.One / 100))
}

// Validate checks that both tables are ordered and that points stay
// within their component maxima and never increase with risk.
func (p ScorePolicy) Validate() error {
	for i, band := range p.LiquidityBands {
		if band.Threshold == nil {
			return &InvalidConfigurationError{Field: "liquidity_bands", Value: fmt.Sprintf("band %d has no threshold", i)}
		}
		if band.Points > MaxLiquidityPoints {
			return &InvalidConfigurationError{Field: "liquidity_bands", Value: fmt.Sprintf("band %d awards %d points", i, band.Points)}
		}
		if i > 0 {
			prev := p.LiquidityBands[i-1]
			if !band.Threshold.Lt(prev.Threshold) || band.Points > prev.Points {
				return &InvalidConfigurationError{Field: "liquidity_bands", Value: fmt.Sprintf("band %d out of order", i)}
			}
		}
	}
	for i, band := range p.UtilizationBands {
		if band.Threshold == nil {
			return &InvalidConfigurationError{Field: "utilization_bands", Value: fmt.Sprintf("band %d has no threshold", i)}
		}
		if band.Points > MaxUtilizationPoints {
			return &InvalidConfigurationError{Field: "utilization_bands", Value: fmt.Sprintf("band %d awards %d points", i, band.Points)}
		}
		if i > 0 {
			prev := p.UtilizationBands[i-1]
			if !prev.Threshold.Lt(band.Threshold) || band.Points > prev.Points {
				return &InvalidConfigurationError{Field: "utilization_bands", Value: fmt.Sprintf("band %d out of order", i)}
			}
		}
	}
	return nil
}

// Score returns the composite 0..100 health score for metrics.
func (p ScorePolicy) Score(metrics LiquidityMetrics) uint64 {
	score := p.liquidityPoints(orZero(metrics.TotalValueUSD)) +
		concentrationPoints(metrics.ConcentrationScore) +
		p.utilizationPoints(orZero(metrics.UtilizationRate))
	if score > MaxScore {
		return MaxScore
	}
	return score
}

func (p ScorePolicy) liquidityPoints(totalValueUSD *uint256.Int) uint64 {
	for _, band := range p.LiquidityBands {
		if !totalValueUSD.Lt(band.Threshold) {
			return min(band.Points, MaxLiquidityPoints)
		}
	}
	return 0
}

func concentrationPoints(concentration uint64) uint64 {
	if concentration > 100 {
		concentration = 100
	}
	return concentration * MaxConcentrationPoints / 100
}

func (p ScorePolicy) utilizationPoints(utilization *uint256.Int) uint64 {
	for _, band := range p.UtilizationBands {
		if utilization.Lt(band.Threshold) {
			return min(band.Points, MaxUtilizationPoints)
		}
	}
	return 0
}

// CalculateLiquidityScore scores metrics with DefaultScorePolicy.
func CalculateLiquidityScore(metrics LiquidityMetrics) uint64 {
	return DefaultScorePolicy().Score(metrics)
}
