package model

// TradeRequest is the JSON form of a pre-swap protection request. Token,
// USD and ratio quantities are base-10 integer strings in 1e18 fixed point.
type TradeRequest struct {
	ID                 string `json:"id,omitempty"`
	ChainID            uint64 `json:"chain_id"`
	Pool               string `json:"pool"`
	Preset             string `json:"preset,omitempty"`
	Reserve0           string `json:"reserve0"`
	Reserve1           string `json:"reserve1"`
	TotalValueUSD      string `json:"total_value_usd"`
	ConcentrationScore uint64 `json:"concentration_score"`
	UtilizationRate    string `json:"utilization_rate"`
	AmountIn           string `json:"amount_in"`
	TradeValueUSD      string `json:"trade_value_usd"`
	Volatility24h      string `json:"volatility_24h,omitempty"`
	StablePair         bool   `json:"stable_pair,omitempty"`
	Timestamp          uint64 `json:"timestamp"`
}
