package protection

import "github.com/holiman/uint256"

// LiquidityMetrics is a caller-assembled pool snapshot. All values are
// treated as read-only.
type LiquidityMetrics struct {
	Reserve0           *uint256.Int
	Reserve1           *uint256.Int
	TotalValueUSD      *uint256.Int
	ConcentrationScore uint64
	UtilizationRate    *uint256.Int
}

// Protection is the outcome of ApplyProtections.
type Protection struct {
	FeeBps            uint64
	EffectiveReserve0 *uint256.Int
	EffectiveReserve1 *uint256.Int
}

func orZero(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}
	return x
}
