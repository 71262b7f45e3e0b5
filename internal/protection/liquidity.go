package protection

import (
	"github.com/holiman/uint256"

	"tradeGuard/internal/fixedpoint"
)

const minLiquidityUnits = 10_000

// MinLiquidityUSD is the pool value ($10,000) below which trades are rejected.
func MinLiquidityUSD() *uint256.Int {
	return fixedpoint.Units(minLiquidityUnits)
}

// RequireMinimumLiquidity fails with InsufficientLiquidityError when
// liquidityUSD is below minimumUSD.
func RequireMinimumLiquidity(liquidityUSD, minimumUSD *uint256.Int) error {
	liquidityUSD, minimumUSD = orZero(liquidityUSD), orZero(minimumUSD)
	if liquidityUSD.Lt(minimumUSD) {
		return &InsufficientLiquidityError{
			ActualUSD:  liquidityUSD.Clone(),
			MinimumUSD: minimumUSD.Clone(),
		}
	}
	return nil
}
