package guard

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"tradeGuard/internal/fixedpoint"
	"tradeGuard/internal/model"
	"tradeGuard/internal/protection"
	"tradeGuard/internal/volume"
)

// DefaultVolumeWindowSeconds is the rolling volume window used when no
// tracker is supplied.
const DefaultVolumeWindowSeconds uint64 = 3600

// Guard evaluates trade requests against a validated protection config.
// It is safe for concurrent use; the only mutable state is the volume
// tracker, which is updated only after every check has passed. Tracker
// failures are logged and never reject a trade.
type Guard struct {
	cfg     protection.ValidatedConfig
	policy  protection.ScorePolicy
	tracker *volume.Tracker
	logger  *zap.Logger
}

// Option customizes a Guard.
type Option func(*Guard)

func WithLogger(logger *zap.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithScorePolicy(policy protection.ScorePolicy) Option {
	return func(g *Guard) { g.policy = policy }
}

func WithTracker(tracker *volume.Tracker) Option {
	return func(g *Guard) {
		if tracker != nil {
			g.tracker = tracker
		}
	}
}

// New builds a Guard. cfg must come from protection.ValidateConfig.
func New(cfg protection.ValidatedConfig, opts ...Option) (*Guard, error) {
	if !cfg.IsValid() {
		return nil, &protection.InvalidConfigurationError{Field: "config", Value: "unvalidated"}
	}

	g := &Guard{
		cfg:    cfg,
		policy: protection.DefaultScorePolicy(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if err := g.policy.Validate(); err != nil {
		return nil, err
	}
	if g.tracker == nil {
		tracker, err := volume.NewTracker(DefaultVolumeWindowSeconds)
		if err != nil {
			return nil, err
		}
		g.tracker = tracker
	}
	return g, nil
}

// Config returns the guard's default configuration.
func (g *Guard) Config() protection.ValidatedConfig {
	return g.cfg
}

// Evaluate runs the protection pipeline for req and, on success, records
// the trade value in the rolling volume window.
func (g *Guard) Evaluate(req model.TradeRequest) (model.Decision, error) {
	parsed, err := parseRequest(req)
	if err != nil {
		return model.Decision{}, err
	}

	cfg, err := g.configFor(req.Preset)
	if err != nil {
		return model.Decision{}, err
	}

	result, err := protection.ApplyProtections(cfg, parsed.metrics, parsed.amountIn, parsed.tradeValueUSD)
	if err != nil {
		return model.Decision{}, err
	}

	impact, err := protection.CalculatePriceImpact(parsed.amountIn, result.EffectiveReserve0, result.EffectiveReserve1)
	if err != nil {
		return model.Decision{}, err
	}
	maxTrade, err := protection.GetMaxTradeSize(result.EffectiveReserve0, cfg.MaxPriceImpactBps())
	if err != nil {
		return model.Decision{}, err
	}

	amplification := uint64(1)
	if cfg.VirtualReservesEnabled() {
		amplification = cfg.AmplificationFactor()
	}
	amountOut, err := protection.GetAmountOutWithVirtualReserves(
		parsed.amountIn, parsed.metrics.Reserve0, parsed.metrics.Reserve1, amplification, result.FeeBps)
	if err != nil {
		return model.Decision{}, err
	}

	score := g.policy.Score(parsed.metrics)
	recommended := protection.GetRecommendedFee(req.StablePair, parsed.volatility, parsed.metrics.TotalValueUSD)

	pool := parsed.pool.Hex()
	windowVolume, err := g.tracker.Record(pool, req.Timestamp, parsed.tradeValueUSD)
	if err != nil {
		// Volume bookkeeping never decides acceptance.
		g.logger.Warn("volume not recorded",
			zap.String("pool", pool),
			zap.Uint64("timestamp", req.Timestamp),
			zap.Error(err),
		)
		windowVolume = new(uint256.Int)
	}

	g.logger.Debug("trade accepted",
		zap.String("pool", pool),
		zap.Uint64("fee_bps", result.FeeBps),
		zap.Uint64("impact_bps", impact),
		zap.Uint64("score", score),
	)

	return model.Decision{
		ID:                req.ID,
		ChainID:           req.ChainID,
		Pool:              pool,
		Timestamp:         req.Timestamp,
		FeeBps:            result.FeeBps,
		EffectiveReserve0: fixedpoint.Format(result.EffectiveReserve0),
		EffectiveReserve1: fixedpoint.Format(result.EffectiveReserve1),
		ImpactBps:         impact,
		ImpactSeverity:    string(protection.ClassifyImpact(impact)),
		LiquidityScore:    score,
		MaxTradeSize:      fixedpoint.Format(maxTrade),
		AmountOut:         fixedpoint.Format(amountOut),
		WindowVolumeUSD:   fixedpoint.Format(windowVolume),
		RecommendedFeeBps: recommended,
	}, nil
}

// Reject builds the Rejection record for a failed request.
func (g *Guard) Reject(req model.TradeRequest, err error) model.Rejection {
	rejection := model.Rejection{
		ID:        req.ID,
		ChainID:   req.ChainID,
		Pool:      normalizePool(req.Pool),
		Timestamp: req.Timestamp,
		Reason:    Reason(err),
	}
	if err != nil {
		rejection.Error = err.Error()
	}
	g.logger.Debug("trade rejected",
		zap.String("pool", rejection.Pool),
		zap.String("reason", rejection.Reason),
		zap.Error(err),
	)
	return rejection
}

func (g *Guard) configFor(preset string) (protection.ValidatedConfig, error) {
	if preset == "" {
		return g.cfg, nil
	}
	raw, err := protection.PresetByName(preset)
	if err != nil {
		return protection.ValidatedConfig{}, err
	}
	return protection.ValidateConfig(raw)
}

// normalizePool checksums valid addresses so decisions and rejections key
// a pool identically. Anything else is returned as given.
func normalizePool(pool string) string {
	if !common.IsHexAddress(pool) {
		return pool
	}
	return common.HexToAddress(pool).Hex()
}
