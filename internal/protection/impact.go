package protection

import (
	"github.com/holiman/uint256"

	"tradeGuard/internal/fixedpoint"
)

// MaxConfigurableImpactBps is the absolute ceiling for a configured impact cap (10%).
const MaxConfigurableImpactBps uint64 = 1000

// CalculatePriceImpact returns 10000*amountIn/(reserveIn+amountIn), the
// share of the post-trade input reserve contributed by the trade. It is
// curve independent, so reserveOut does not enter the formula.
func CalculatePriceImpact(amountIn, reserveIn, reserveOut *uint256.Int) (uint64, error) {
	_ = reserveOut
	amountIn, reserveIn = orZero(amountIn), orZero(reserveIn)
	if amountIn.IsZero() || reserveIn.IsZero() {
		return 0, nil
	}

	poolIn, err := fixedpoint.Add(reserveIn, amountIn)
	if err != nil {
		return 0, err
	}
	impact, err := fixedpoint.MulDiv(uint256.NewInt(fixedpoint.BpsDenominator), amountIn, poolIn)
	if err != nil {
		return 0, err
	}
	// amountIn <= poolIn bounds the result by BpsDenominator.
	return impact.Uint64(), nil
}

// RequirePriceImpactWithinBounds fails with PriceImpactTooHighError when
// the trade's impact exceeds maxImpactBps.
func RequirePriceImpactWithinBounds(amountIn, reserveIn, reserveOut *uint256.Int, maxImpactBps uint64) error {
	impact, err := CalculatePriceImpact(amountIn, reserveIn, reserveOut)
	if err != nil {
		return err
	}
	if impact > maxImpactBps {
		return &PriceImpactTooHighError{ActualBps: impact, MaxBps: maxImpactBps}
	}
	return nil
}

// GetMaxTradeSize inverts CalculatePriceImpact: the largest input whose
// impact stays within maxImpactBps. A 100% cap is unbounded and returns
// fixedpoint.Max.
func GetMaxTradeSize(reserveIn *uint256.Int, maxImpactBps uint64) (*uint256.Int, error) {
	denom := uint256.NewInt(fixedpoint.BpsDenominator)
	bound := uint256.NewInt(maxImpactBps)
	if bound.Eq(denom) {
		return fixedpoint.Max(), nil
	}
	headroom, err := fixedpoint.Sub(denom, bound)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDiv(bound, orZero(reserveIn), headroom)
}

// ImpactSeverity buckets a price impact for reporting.
type ImpactSeverity string

const (
	SeverityNone     ImpactSeverity = "none"
	SeverityLow      ImpactSeverity = "low"
	SeverityModerate ImpactSeverity = "moderate"
	SeverityHigh     ImpactSeverity = "high"
	SeverityExtreme  ImpactSeverity = "extreme"
)

// ClassifyImpact maps impactBps onto severity buckets at 1%, 3%, 5% and 10%.
func ClassifyImpact(impactBps uint64) ImpactSeverity {
	switch {
	case impactBps < 100:
		return SeverityNone
	case impactBps < 300:
		return SeverityLow
	case impactBps < 500:
		return SeverityModerate
	case impactBps < 1000:
		return SeverityHigh
	default:
		return SeverityExtreme
	}
}
