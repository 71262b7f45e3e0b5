package model

import "time"

// LiquiditySnapshot is a stored pool snapshot used to assemble a
// TradeRequest. Numeric columns are NUMERIC(78,0) rendered as strings.
type LiquiditySnapshot struct {
	ChainID            uint64
	PoolAddress        string
	Reserve0           string
	Reserve1           string
	TotalValueUSD      string
	ConcentrationScore uint64
	UtilizationRate    string
	SnapshotAt         time.Time
}

// ToTradeRequest fills the pool fields of a request from the snapshot.
func (s LiquiditySnapshot) ToTradeRequest(amountIn, tradeValueUSD string) TradeRequest {
	return TradeRequest{
		ChainID:            s.ChainID,
		Pool:               s.PoolAddress,
		Reserve0:           s.Reserve0,
		Reserve1:           s.Reserve1,
		TotalValueUSD:      s.TotalValueUSD,
		ConcentrationScore: s.ConcentrationScore,
		UtilizationRate:    s.UtilizationRate,
		AmountIn:           amountIn,
		TradeValueUSD:      tradeValueUSD,
		Timestamp:          uint64(s.SnapshotAt.Unix()),
	}
}
