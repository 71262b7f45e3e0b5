package model

// Decision is the outcome of an accepted trade request.
type Decision struct {
	ID                string `json:"id,omitempty"`
	ChainID           uint64 `json:"chain_id"`
	Pool              string `json:"pool"`
	Timestamp         uint64 `json:"timestamp"`
	FeeBps            uint64 `json:"fee_bps"`
	EffectiveReserve0 string `json:"effective_reserve0"`
	EffectiveReserve1 string `json:"effective_reserve1"`
	ImpactBps         uint64 `json:"impact_bps"`
	ImpactSeverity    string `json:"impact_severity"`
	LiquidityScore    uint64 `json:"liquidity_score"`
	MaxTradeSize      string `json:"max_trade_size"`
	AmountOut         string `json:"amount_out"`
	WindowVolumeUSD   string `json:"window_volume_usd"`
	RecommendedFeeBps uint64 `json:"recommended_fee_bps"`
}

// Rejection records a trade request that failed a protection check.
type Rejection struct {
	ID        string `json:"id,omitempty"`
	ChainID   uint64 `json:"chain_id"`
	Pool      string `json:"pool"`
	Timestamp uint64 `json:"timestamp"`
	Reason    string `json:"reason"`
	Error     string `json:"error"`
}
