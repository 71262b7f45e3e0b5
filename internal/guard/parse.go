package guard

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"tradeGuard/internal/fixedpoint"
	"tradeGuard/internal/model"
	"tradeGuard/internal/protection"
)

// ErrInvalidRequest marks malformed trade requests.
var ErrInvalidRequest = errors.New("invalid request")

type parsedRequest struct {
	pool          common.Address
	metrics       protection.LiquidityMetrics
	amountIn      *uint256.Int
	tradeValueUSD *uint256.Int
	volatility    *uint256.Int
}

func parseRequest(req model.TradeRequest) (parsedRequest, error) {
	if !common.IsHexAddress(req.Pool) {
		return parsedRequest{}, fmt.Errorf("%w: pool address %q", ErrInvalidRequest, req.Pool)
	}
	if req.ConcentrationScore > 100 {
		return parsedRequest{}, fmt.Errorf("%w: concentration_score %d > 100", ErrInvalidRequest, req.ConcentrationScore)
	}

	out := parsedRequest{
		pool: common.HexToAddress(req.Pool),
		metrics: protection.LiquidityMetrics{
			ConcentrationScore: req.ConcentrationScore,
		},
	}

	fields := []struct {
		name  string
		value string
		dst   **uint256.Int
	}{
		{"reserve0", req.Reserve0, &out.metrics.Reserve0},
		{"reserve1", req.Reserve1, &out.metrics.Reserve1},
		{"total_value_usd", req.TotalValueUSD, &out.metrics.TotalValueUSD},
		{"utilization_rate", req.UtilizationRate, &out.metrics.UtilizationRate},
		{"amount_in", req.AmountIn, &out.amountIn},
		{"trade_value_usd", req.TradeValueUSD, &out.tradeValueUSD},
		{"volatility_24h", req.Volatility24h, &out.volatility},
	}
	for _, field := range fields {
		v, err := fixedpoint.Parse(field.value)
		if err != nil {
			return parsedRequest{}, fmt.Errorf("%w: %s: %v", ErrInvalidRequest, field.name, err)
		}
		*field.dst = v
	}

	if out.metrics.UtilizationRate.Gt(fixedpoint.Precision()) {
		return parsedRequest{}, fmt.Errorf("%w: utilization_rate %s > 1e18", ErrInvalidRequest, req.UtilizationRate)
	}
	return out, nil
}

// Reason classifies an evaluation error for a Rejection record.
func Reason(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return protection.Kind(err)
}
