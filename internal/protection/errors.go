package protection

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"tradeGuard/internal/fixedpoint"
)

var (
	ErrInvalidAmplification  = errors.New("invalid amplification")
	ErrPriceImpactTooHigh    = errors.New("price impact too high")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrInvalidConfiguration  = errors.New("invalid configuration")
	// ErrOverflow is returned when a checked intermediate does not fit in 256 bits.
	ErrOverflow = fixedpoint.ErrOverflow
)

// InvalidAmplificationError reports an amplification factor outside [1, MaxAmplification].
type InvalidAmplificationError struct {
	Factor uint64
}

func (e *InvalidAmplificationError) Error() string {
	return fmt.Sprintf("invalid amplification: factor %d", e.Factor)
}

func (e *InvalidAmplificationError) Unwrap() error { return ErrInvalidAmplification }

// PriceImpactTooHighError reports a trade whose impact exceeds the cap.
type PriceImpactTooHighError struct {
	ActualBps uint64
	MaxBps    uint64
}

func (e *PriceImpactTooHighError) Error() string {
	return fmt.Sprintf("price impact too high: %d bps > %d bps", e.ActualBps, e.MaxBps)
}

func (e *PriceImpactTooHighError) Unwrap() error { return ErrPriceImpactTooHigh }

// InsufficientLiquidityError reports a pool valued below the floor.
type InsufficientLiquidityError struct {
	ActualUSD  *uint256.Int
	MinimumUSD *uint256.Int
}

func (e *InsufficientLiquidityError) Error() string {
	return fmt.Sprintf("insufficient liquidity: %s < %s",
		fixedpoint.Format(e.ActualUSD), fixedpoint.Format(e.MinimumUSD))
}

func (e *InsufficientLiquidityError) Unwrap() error { return ErrInsufficientLiquidity }

// InvalidConfigurationError names the offending field.
type InvalidConfigurationError struct {
	Field string
	Value string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%s", e.Field, e.Value)
}

func (e *InvalidConfigurationError) Unwrap() error { return ErrInvalidConfiguration }

// Kind returns a stable short name for a protection error, or "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientLiquidity):
		return "insufficient_liquidity"
	case errors.Is(err, ErrPriceImpactTooHigh):
		return "price_impact_too_high"
	case errors.Is(err, ErrInvalidAmplification):
		return "invalid_amplification"
	case errors.Is(err, ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, fixedpoint.ErrOverflow), errors.Is(err, fixedpoint.ErrUnderflow):
		return "arithmetic"
	default:
		return "internal"
	}
}
