package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tradeGuard/internal/config"
	"tradeGuard/internal/protection"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "guard",
		Short:        "AMM trade protection engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	evaluateCmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate trade requests and write decisions",
		RunE:  runEvaluate,
	}

	evaluateCmd.Flags().String("source", config.SourceFile, "request source (file, postgres, chain)")
	evaluateCmd.Flags().String("in", "", "input trade requests JSONL (source=file)")
	evaluateCmd.Flags().String("out", "./data/decisions.jsonl", "output decisions JSONL")
	evaluateCmd.Flags().String("rejections", "./data/rejections.jsonl", "output rejections JSONL")
	evaluateCmd.Flags().String("pg-dsn", "", "Postgres DSN (source=postgres)")
	evaluateCmd.Flags().String("rpc", "", "JSON-RPC URL (source=chain)")
	evaluateCmd.Flags().Uint64("chain-id", 0, "chain id of the pool")
	evaluateCmd.Flags().String("pool", "", "pool address (source=postgres|chain)")
	evaluateCmd.Flags().Uint64("block", 0, "block number for reserves, 0 means latest (source=chain)")
	evaluateCmd.Flags().String("amount-in", "", "trade input amount, decimal")
	evaluateCmd.Flags().String("trade-value-usd", "", "trade value in USD, decimal")
	evaluateCmd.Flags().String("price0-usd", "", "token0 USD price, decimal (source=chain)")
	evaluateCmd.Flags().String("price1-usd", "", "token1 USD price, decimal (source=chain)")
	evaluateCmd.Flags().Uint64("concentration", 0, "concentration score 0-100 (source=chain)")
	evaluateCmd.Flags().String("utilization", "0", "utilization rate, decimal fraction (source=chain)")
	evaluateCmd.Flags().Int("batch-size", 500, "decisions per write batch")
	evaluateCmd.Flags().Duration("volume-window", time.Hour, "rolling volume window")
	evaluateCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	evaluateCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	evaluateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	addProtectionFlags(evaluateCmd.Flags())

	root.AddCommand(evaluateCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap output with virtual reserves",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("amount-in", "", "input amount, decimal")
	quoteCmd.Flags().String("reserve-in", "", "input-side reserve, decimal")
	quoteCmd.Flags().String("reserve-out", "", "output-side reserve, decimal")
	quoteCmd.Flags().Uint64("fee-bps", protection.BaseFeeBps, "swap fee in basis points")
	addProtectionFlags(quoteCmd.Flags())

	root.AddCommand(quoteCmd)

	scoreCmd := &cobra.Command{
		Use:   "score",
		Short: "Compute a pool liquidity score",
		RunE:  runScore,
	}

	scoreCmd.Flags().String("tvl-usd", "", "total value locked in USD, decimal")
	scoreCmd.Flags().Uint64("concentration", 0, "concentration score 0-100")
	scoreCmd.Flags().String("utilization", "0", "utilization rate, decimal fraction")

	root.AddCommand(scoreCmd)

	recommendCmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend a fee tier for a pool",
		RunE:  runRecommend,
	}

	recommendCmd.Flags().Bool("stable", false, "pool is a stable pair")
	recommendCmd.Flags().String("volatility", "0", "24h volatility, decimal fraction")
	recommendCmd.Flags().String("tvl-usd", "", "total value locked in USD, decimal")

	root.AddCommand(recommendCmd)

	maxTradeCmd := &cobra.Command{
		Use:   "max-trade",
		Short: "Largest input that stays within the impact limit",
		RunE:  runMaxTrade,
	}

	maxTradeCmd.Flags().String("reserve-in", "", "input-side reserve, decimal")
	addProtectionFlags(maxTradeCmd.Flags())

	root.AddCommand(maxTradeCmd)

	return root
}

// addProtectionFlags registers the preset and its overrides. Overrides
// carry no default so an unchanged flag leaves the preset value alone.
func addProtectionFlags(flags *pflag.FlagSet) {
	flags.String("preset", protection.PresetDefault, "protection preset (default, stable)")
	flags.Uint64("amplification", 0, "override amplification factor (1-1000)")
	flags.Uint64("max-impact-bps", 0, "override maximum price impact in basis points (1-1000)")
	flags.Bool("virtual-reserves", false, "override virtual reserves toggle")
	flags.Bool("dynamic-fees", false, "override dynamic fees toggle")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
