package protection

import (
	"github.com/holiman/uint256"

	"tradeGuard/internal/fixedpoint"
)

const (
	// BaseFeeBps is the fee charged by a well-capitalized pool.
	BaseFeeBps uint64 = 30

	// MaxFeeBps caps the dynamic fee.
	MaxFeeBps uint64 = 500

	lowLiquidityThresholdUnits = 100_000

	StablePairFeeBps     uint64 = 5
	LowVolatilityFeeBps  uint64 = 30
	MidVolatilityFeeBps  uint64 = 50
	HighVolatilityFeeBps uint64 = 100

	// Volatility bucket edges, 1e18 fixed point (2% and 5%).
	lowVolatilityEdge uint64 = 20_000_000_000_000_000
	midVolatilityEdge uint64 = 50_000_000_000_000_000
)

// LowLiquidityThreshold is the pool value ($100,000) at and above which
// the base fee applies unchanged.
func LowLiquidityThreshold() *uint256.Int {
	return fixedpoint.Units(lowLiquidityThresholdUnits)
}

// CalculateDynamicFee raises baseFeeBps inversely to the liquidity
// shortfall below LowLiquidityThreshold, capped at MaxFeeBps. An empty
// pool pays the cap. volumeUSD is accepted but does not affect the result.
func CalculateDynamicFee(liquidityUSD, volumeUSD *uint256.Int, baseFeeBps uint64) uint64 {
	_ = volumeUSD
	liquidityUSD = orZero(liquidityUSD)

	threshold := LowLiquidityThreshold()
	if !liquidityUSD.Lt(threshold) {
		return baseFeeBps
	}
	if liquidityUSD.IsZero() {
		return MaxFeeBps
	}

	// threshold*1e18 < 2^137 and baseFeeBps < 2^64, neither step overflows.
	multiplier, err := fixedpoint.MulDiv(threshold, fixedpoint.Precision(), liquidityUSD)
	if err != nil {
		return MaxFeeBps
	}
	fee, err := fixedpoint.MulDiv(uint256.NewInt(baseFeeBps), multiplier, fixedpoint.Precision())
	if err != nil || fee.Gt(uint256.NewInt(MaxFeeBps)) {
		return MaxFeeBps
	}
	return fee.Uint64()
}

// GetRecommendedFee returns a baseline fee for a pair. Stable pairs always
// get StablePairFeeBps; other pairs are bucketed by 24h volatility
// (1e18 fixed point). liquidityUSD is accepted but unused.
func GetRecommendedFee(isStablePair bool, volatility24h, liquidityUSD *uint256.Int) uint64 {
	_ = liquidityUSD
	if isStablePair {
		return StablePairFeeBps
	}

	volatility24h = orZero(volatility24h)
	switch {
	case volatility24h.Lt(uint256.NewInt(lowVolatilityEdge)):
		return LowVolatilityFeeBps
	case volatility24h.Lt(uint256.NewInt(midVolatilityEdge)):
		return MidVolatilityFeeBps
	default:
		return HighVolatilityFeeBps
	}
}
