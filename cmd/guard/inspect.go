package main

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"tradeGuard/internal/config"
	"tradeGuard/internal/fixedpoint"
	"tradeGuard/internal/protection"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	cfg, err := loadProtection(cmd)
	if err != nil {
		return err
	}

	amountIn, err := decimalFlag(cmd, "amount-in")
	if err != nil {
		return err
	}
	reserveIn, err := decimalFlag(cmd, "reserve-in")
	if err != nil {
		return err
	}
	reserveOut, err := decimalFlag(cmd, "reserve-out")
	if err != nil {
		return err
	}
	feeBps, _ := cmd.Flags().GetUint64("fee-bps")
	if feeBps > fixedpoint.BpsDenominator {
		return fmt.Errorf("fee-bps must be at most %d", fixedpoint.BpsDenominator)
	}

	amplification := uint64(1)
	if cfg.VirtualReservesEnabled() {
		amplification = cfg.AmplificationFactor()
	}

	amountOut, err := protection.GetAmountOutWithVirtualReserves(amountIn, reserveIn, reserveOut, amplification, feeBps)
	if err != nil {
		return err
	}
	impact, err := protection.CalculatePriceImpact(amountIn, reserveIn, reserveOut)
	if err != nil {
		return err
	}

	return printJSON(cmd, map[string]interface{}{
		"amount_out":      fixedpoint.FormatDecimal(amountOut),
		"amplification":   amplification,
		"fee_bps":         feeBps,
		"impact_bps":      impact,
		"impact_severity": protection.ClassifyImpact(impact),
	})
}

func runScore(cmd *cobra.Command, _ []string) error {
	tvl, err := decimalFlag(cmd, "tvl-usd")
	if err != nil {
		return err
	}
	utilization, err := decimalFlag(cmd, "utilization")
	if err != nil {
		return err
	}
	concentration, _ := cmd.Flags().GetUint64("concentration")
	if concentration > 100 {
		return fmt.Errorf("concentration must be at most 100")
	}

	metrics := protection.LiquidityMetrics{
		TotalValueUSD:      tvl,
		ConcentrationScore: concentration,
		UtilizationRate:    utilization,
	}
	return printJSON(cmd, map[string]interface{}{
		"liquidity_score": protection.CalculateLiquidityScore(metrics),
	})
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	stable, _ := cmd.Flags().GetBool("stable")
	volatility, err := decimalFlag(cmd, "volatility")
	if err != nil {
		return err
	}
	tvl, err := decimalFlag(cmd, "tvl-usd")
	if err != nil {
		return err
	}

	return printJSON(cmd, map[string]interface{}{
		"recommended_fee_bps": protection.GetRecommendedFee(stable, volatility, tvl),
		"dynamic_fee_bps":     protection.CalculateDynamicFee(tvl, new(uint256.Int), protection.BaseFeeBps),
	})
}

func runMaxTrade(cmd *cobra.Command, _ []string) error {
	cfg, err := loadProtection(cmd)
	if err != nil {
		return err
	}
	reserveIn, err := decimalFlag(cmd, "reserve-in")
	if err != nil {
		return err
	}

	maxTrade, err := protection.GetMaxTradeSize(reserveIn, cfg.MaxPriceImpactBps())
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]interface{}{
		"max_impact_bps": cfg.MaxPriceImpactBps(),
		"max_trade_size": fixedpoint.FormatDecimal(maxTrade),
	})
}

func loadProtection(cmd *cobra.Command) (protection.ValidatedConfig, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	settings, err := config.LoadProtection(cfgFile, cmd.Flags())
	if err != nil {
		return protection.ValidatedConfig{}, err
	}
	return settings.Validate()
}

func decimalFlag(cmd *cobra.Command, name string) (*uint256.Int, error) {
	raw, _ := cmd.Flags().GetString(name)
	value, err := fixedpoint.ParseDecimal(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

func printJSON(cmd *cobra.Command, value interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
