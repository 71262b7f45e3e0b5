package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tradeGuard/internal/chain"
	"tradeGuard/internal/config"
	"tradeGuard/internal/fixedpoint"
	"tradeGuard/internal/guard"
	"tradeGuard/internal/model"
	"tradeGuard/internal/storage"
	"tradeGuard/internal/storage/postgres"
	"tradeGuard/internal/volume"
)

func runEvaluate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadEvaluate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Rejections == "" {
		return fmt.Errorf("rejections path is required")
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	windowSeconds := uint64(cfg.VolumeWindow.Seconds())
	if windowSeconds == 0 {
		return fmt.Errorf("volume window must be at least 1s")
	}

	protectionCfg, err := cfg.Protection.Validate()
	if err != nil {
		return fmt.Errorf("protection config: %w", err)
	}

	tracker, err := volume.NewTracker(windowSeconds)
	if err != nil {
		return err
	}

	g, err := guard.New(protectionCfg, guard.WithLogger(logger), guard.WithTracker(tracker))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := storage.NewJsonlStorage(cfg.Out, cfg.Rejections)
	if err != nil {
		return err
	}
	defer sink.Close()

	logger.Info("evaluate start",
		zap.String("source", cfg.Source),
		zap.String("preset", cfg.Protection.Preset),
		zap.Uint64("amplification", protectionCfg.AmplificationFactor()),
		zap.Uint64("max_impact_bps", protectionCfg.MaxPriceImpactBps()),
		zap.Bool("virtual_reserves", protectionCfg.VirtualReservesEnabled()),
		zap.Bool("dynamic_fees", protectionCfg.DynamicFeesEnabled()),
		zap.Uint64("volume_window_seconds", windowSeconds),
		zap.String("out", cfg.Out),
		zap.String("rejections", cfg.Rejections),
	)

	run := &evaluateRun{
		guard:     g,
		sink:      sink,
		batchSize: cfg.BatchSize,
	}

	switch cfg.Source {
	case config.SourceFile:
		err = run.evaluateFile(ctx, cfg.In)
	case config.SourcePostgres:
		var req model.TradeRequest
		req, err = postgresRequest(ctx, cfg)
		if err == nil {
			err = run.evaluate(req)
		}
	case config.SourceChain:
		var req model.TradeRequest
		req, err = chainRequest(ctx, cfg, logger)
		if err == nil {
			err = run.evaluate(req)
		}
	default:
		err = fmt.Errorf("unknown source %q", cfg.Source)
	}
	if err != nil {
		return err
	}
	if err := run.flush(); err != nil {
		return err
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	logger.Info("evaluate complete",
		zap.Int("total", run.total),
		zap.Int("accepted", run.accepted),
		zap.Int("rejected", run.rejected),
		zap.Int("malformed", run.malformed),
	)

	return nil
}

type evaluateRun struct {
	guard     *guard.Guard
	sink      storage.Storage
	batchSize int
	batch     []model.Decision

	total     int
	accepted  int
	rejected  int
	malformed int
}

func (r *evaluateRun) evaluateFile(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("input path is required")
	}

	inputFile, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	scanner := bufio.NewScanner(inputFile)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req model.TradeRequest
		if err := json.Unmarshal(line, &req); err != nil {
			r.total++
			r.malformed++
			if err := r.sink.PutRejection(model.Rejection{Reason: "malformed", Error: err.Error()}); err != nil {
				return err
			}
			continue
		}
		if err := r.evaluate(req); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	return nil
}

// evaluate returns an error only for output failures; rejected trades
// go to the sink as rejections.
func (r *evaluateRun) evaluate(req model.TradeRequest) error {
	r.total++

	decision, err := r.guard.Evaluate(req)
	if err != nil {
		r.rejected++
		return r.sink.PutRejection(r.guard.Reject(req, err))
	}

	r.accepted++
	r.batch = append(r.batch, decision)
	if len(r.batch) >= r.batchSize {
		return r.flush()
	}
	return nil
}

func (r *evaluateRun) flush() error {
	if len(r.batch) == 0 {
		return nil
	}
	if err := r.sink.PutDecisionBatch(r.batch); err != nil {
		return err
	}
	r.batch = r.batch[:0]
	return nil
}

func postgresRequest(ctx context.Context, cfg config.EvaluateConfig) (model.TradeRequest, error) {
	if cfg.PGDSN == "" {
		return model.TradeRequest{}, fmt.Errorf("pg dsn is required")
	}
	if cfg.Pool == "" {
		return model.TradeRequest{}, fmt.Errorf("pool address is required")
	}

	amountIn, tradeValue, err := tradeAmounts(cfg)
	if err != nil {
		return model.TradeRequest{}, err
	}

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return model.TradeRequest{}, fmt.Errorf("connect postgres (%s): %w", redactDSN(cfg.PGDSN), err)
	}
	defer store.Close()

	snap, err := store.LatestSnapshot(ctx, cfg.ChainID, cfg.Pool)
	if err != nil {
		return model.TradeRequest{}, err
	}

	req := snap.ToTradeRequest(amountIn, tradeValue)
	req.Preset = cfg.Protection.Preset
	return req, nil
}

func chainRequest(ctx context.Context, cfg config.EvaluateConfig, logger *zap.Logger) (model.TradeRequest, error) {
	if cfg.RPCURL == "" {
		return model.TradeRequest{}, fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.Pool) {
		return model.TradeRequest{}, fmt.Errorf("invalid pool address %q", cfg.Pool)
	}

	amountIn, tradeValue, err := tradeAmounts(cfg)
	if err != nil {
		return model.TradeRequest{}, err
	}
	price0, err := fixedpoint.ParseDecimal(cfg.Price0USD)
	if err != nil {
		return model.TradeRequest{}, fmt.Errorf("price0-usd: %w", err)
	}
	price1, err := fixedpoint.ParseDecimal(cfg.Price1USD)
	if err != nil {
		return model.TradeRequest{}, fmt.Errorf("price1-usd: %w", err)
	}
	utilization, err := fixedpoint.ParseDecimal(cfg.Utilization)
	if err != nil {
		return model.TradeRequest{}, fmt.Errorf("utilization: %w", err)
	}

	client, err := chain.NewClient(ctx, cfg.RPCURL, cfg.MaxRetries, cfg.RetryBackoff)
	if err != nil {
		return model.TradeRequest{}, fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	var blockNumber *big.Int
	if cfg.Block > 0 {
		blockNumber = new(big.Int).SetUint64(cfg.Block)
	}
	reserves, err := client.PairReserves(ctx, common.HexToAddress(cfg.Pool), blockNumber)
	if err != nil {
		return model.TradeRequest{}, fmt.Errorf("read reserves: %w", err)
	}

	value0, err := fixedpoint.ValueUSD(reserves.Reserve0, price0)
	if err != nil {
		return model.TradeRequest{}, fmt.Errorf("token0 value: %w", err)
	}
	value1, err := fixedpoint.ValueUSD(reserves.Reserve1, price1)
	if err != nil {
		return model.TradeRequest{}, fmt.Errorf("token1 value: %w", err)
	}
	tvl, err := fixedpoint.Add(value0, value1)
	if err != nil {
		return model.TradeRequest{}, fmt.Errorf("pool value: %w", err)
	}

	logger.Info("pair reserves",
		zap.String("pair", reserves.Pair.Hex()),
		zap.String("token0", reserves.Tokens.Token0.Hex()),
		zap.String("token1", reserves.Tokens.Token1.Hex()),
		zap.String("reserve0", fixedpoint.Format(reserves.Reserve0)),
		zap.String("reserve1", fixedpoint.Format(reserves.Reserve1)),
		zap.String("tvl_usd", fixedpoint.FormatDecimal(tvl)),
		zap.Uint32("block_timestamp_last", reserves.BlockTimestampLast),
	)

	return model.TradeRequest{
		ChainID:            cfg.ChainID,
		Pool:               reserves.Pair.Hex(),
		Preset:             cfg.Protection.Preset,
		Reserve0:           fixedpoint.Format(reserves.Reserve0),
		Reserve1:           fixedpoint.Format(reserves.Reserve1),
		TotalValueUSD:      fixedpoint.Format(tvl),
		ConcentrationScore: cfg.Concentration,
		UtilizationRate:    fixedpoint.Format(utilization),
		AmountIn:           amountIn,
		TradeValueUSD:      tradeValue,
		Timestamp:          uint64(time.Now().Unix()),
	}, nil
}

// tradeAmounts converts the human decimal trade flags to fixed-point strings.
func tradeAmounts(cfg config.EvaluateConfig) (string, string, error) {
	amountIn, err := fixedpoint.ParseDecimal(cfg.AmountIn)
	if err != nil {
		return "", "", fmt.Errorf("amount-in: %w", err)
	}
	tradeValue, err := fixedpoint.ParseDecimal(cfg.TradeValueUSD)
	if err != nil {
		return "", "", fmt.Errorf("trade-value-usd: %w", err)
	}
	return fixedpoint.Format(amountIn), fixedpoint.Format(tradeValue), nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
