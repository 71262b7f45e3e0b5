package protection

import "github.com/holiman/uint256"

// ApplyProtections runs the full pre-swap pipeline: liquidity floor,
// virtual reserves, fee selection and the impact cap. The first failing
// step aborts the call and nothing is returned but the error.
func ApplyProtections(cfg ValidatedConfig, metrics LiquidityMetrics, amountIn, tradeValueUSD *uint256.Int) (Protection, error) {
	if !cfg.IsValid() {
		return Protection{}, &InvalidConfigurationError{Field: "config", Value: "unvalidated"}
	}

	if err := RequireMinimumLiquidity(metrics.TotalValueUSD, MinLiquidityUSD()); err != nil {
		return Protection{}, err
	}

	effective0, effective1 := orZero(metrics.Reserve0).Clone(), orZero(metrics.Reserve1).Clone()
	if cfg.VirtualReservesEnabled() {
		var err error
		effective0, effective1, err = CalculateVirtualReserves(effective0, effective1, cfg.AmplificationFactor())
		if err != nil {
			return Protection{}, err
		}
	}

	feeBps := BaseFeeBps
	if cfg.DynamicFeesEnabled() {
		feeBps = CalculateDynamicFee(metrics.TotalValueUSD, tradeValueUSD, BaseFeeBps)
	}

	if err := RequirePriceImpactWithinBounds(amountIn, effective0, effective1, cfg.MaxPriceImpactBps()); err != nil {
		return Protection{}, err
	}

	return Protection{
		FeeBps:            feeBps,
		EffectiveReserve0: effective0,
		EffectiveReserve1: effective1,
	}, nil
}
