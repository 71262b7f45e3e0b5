package protection

import (
	"github.com/holiman/uint256"

	"tradeGuard/internal/fixedpoint"
)

// GetAmountOutWithVirtualReserves quotes a constant-product swap over
// amplified reserves after deducting feeBps from the input. Division
// floors so rounding always favors the pool. A zero input or an empty
// side returns zero.
func GetAmountOutWithVirtualReserves(amountIn, reserveIn, reserveOut *uint256.Int, amplificationFactor, feeBps uint64) (*uint256.Int, error) {
	amountIn, reserveIn, reserveOut = orZero(amountIn), orZero(reserveIn), orZero(reserveOut)
	if amountIn.IsZero() || reserveIn.IsZero() || reserveOut.IsZero() {
		return new(uint256.Int), nil
	}

	virtualIn, virtualOut, err := CalculateVirtualReserves(reserveIn, reserveOut, amplificationFactor)
	if err != nil {
		return nil, err
	}

	denom := uint256.NewInt(fixedpoint.BpsDenominator)
	feeComplement, err := fixedpoint.Sub(denom, uint256.NewInt(feeBps))
	if err != nil {
		return nil, err
	}
	netIn, err := fixedpoint.MulDiv(amountIn, feeComplement, denom)
	if err != nil {
		return nil, err
	}

	poolIn, err := fixedpoint.Add(virtualIn, netIn)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDiv(netIn, virtualOut, poolIn)
}
