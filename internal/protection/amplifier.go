package protection

import (
	"github.com/holiman/uint256"

	"tradeGuard/internal/fixedpoint"
)

const (
	// MinAmplification disables amplification.
	MinAmplification uint64 = 1
	MaxAmplification uint64 = 1000
)

// CalculateVirtualReserves scales both reserves by amplificationFactor.
// Under constant-product quoting this flattens the curve around the
// current price.
func CalculateVirtualReserves(reserve0, reserve1 *uint256.Int, amplificationFactor uint64) (*uint256.Int, *uint256.Int, error) {
	if amplificationFactor < MinAmplification || amplificationFactor > MaxAmplification {
		return nil, nil, &InvalidAmplificationError{Factor: amplificationFactor}
	}

	factor := uint256.NewInt(amplificationFactor)
	virtual0, err := fixedpoint.Mul(orZero(reserve0), factor)
	if err != nil {
		return nil, nil, err
	}
	virtual1, err := fixedpoint.Mul(orZero(reserve1), factor)
	if err != nil {
		return nil, nil, err
	}
	return virtual0, virtual1, nil
}
