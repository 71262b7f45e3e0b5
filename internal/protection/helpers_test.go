package protection

import (
	"github.com/holiman/uint256"

	"tradeGuard/internal/fixedpoint"
)

// e18 returns n * 10^18.
func e18(n uint64) *uint256.Int {
	return fixedpoint.Units(n)
}

func u(n uint64) *uint256.Int {
	return uint256.NewInt(n)
}

func maxU256() *uint256.Int {
	return fixedpoint.Max()
}
