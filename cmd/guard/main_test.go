package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tradeGuard/internal/model"
)

func execute(t *testing.T, args ...string) map[string]interface{} {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	return result
}

func TestScoreCommand(t *testing.T) {
	result := execute(t, "score", "--tvl-usd", "1000000", "--concentration", "50", "--utilization", "0.05")
	require.Equal(t, float64(85), result["liquidity_score"])
}

func TestRecommendCommand(t *testing.T) {
	result := execute(t, "recommend", "--stable", "--tvl-usd", "50000")
	require.Equal(t, float64(5), result["recommended_fee_bps"])

	result = execute(t, "recommend", "--volatility", "0.06", "--tvl-usd", "50000")
	require.Equal(t, float64(100), result["recommended_fee_bps"])
	require.Equal(t, float64(60), result["dynamic_fee_bps"])
}

func TestQuoteCommandWithoutVirtualReserves(t *testing.T) {
	result := execute(t, "quote",
		"--amount-in", "10", "--reserve-in", "100", "--reserve-out", "100",
		"--fee-bps", "0", "--virtual-reserves=false")
	require.Equal(t, float64(1), result["amplification"])
	require.Equal(t, "9.090909090909090909", result["amount_out"])
	require.Equal(t, float64(909), result["impact_bps"])
}

func TestQuoteCommandRejectsBadDecimal(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"quote", "--amount-in", "-1", "--reserve-in", "1", "--reserve-out", "1"})
	require.Error(t, root.Execute())
}

func TestEvaluateFromFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "requests.jsonl")
	out := filepath.Join(dir, "decisions.jsonl")
	rejections := filepath.Join(dir, "rejections.jsonl")

	accepted := model.TradeRequest{
		ID:                 "ok",
		ChainID:            1,
		Pool:               "0x0000000000000000000000000000000000000001",
		Reserve0:           "1000000000000000000000000",
		Reserve1:           "1000000000000000000000000",
		TotalValueUSD:      "1000000000000000000000000",
		ConcentrationScore: 50,
		UtilizationRate:    "50000000000000000",
		AmountIn:           "1000000000000000000",
		TradeValueUSD:      "1000000000000000000",
		Timestamp:          1700000000,
	}
	thin := accepted
	thin.ID = "thin"
	thin.TotalValueUSD = "2000000000000000000000"
	thin.Timestamp++

	var lines []string
	for _, req := range []model.TradeRequest{accepted, thin} {
		line, err := json.Marshal(req)
		require.NoError(t, err)
		lines = append(lines, string(line))
	}
	lines = append(lines, "{not json")
	require.NoError(t, os.WriteFile(in, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	root := newRootCmd()
	root.SetArgs([]string{"evaluate",
		"--in", in, "--out", out, "--rejections", rejections,
		"--config", filepath.Join(dir, "missing.yaml"),
	})
	require.Error(t, root.Execute())

	root = newRootCmd()
	root.SetArgs([]string{"evaluate", "--in", in, "--out", out, "--rejections", rejections, "--log-level", "error"})
	require.NoError(t, root.Execute())

	decisions := readLines(t, out)
	require.Len(t, decisions, 1)
	var decision model.Decision
	require.NoError(t, json.Unmarshal([]byte(decisions[0]), &decision))
	require.Equal(t, "ok", decision.ID)
	require.Equal(t, uint64(85), decision.LiquidityScore)

	rejected := readLines(t, rejections)
	require.Len(t, rejected, 2)
	var rejection model.Rejection
	require.NoError(t, json.Unmarshal([]byte(rejected[0]), &rejection))
	require.Equal(t, "thin", rejection.ID)
	require.Equal(t, "insufficient_liquidity", rejection.Reason)
	require.NoError(t, json.Unmarshal([]byte(rejected[1]), &rejection))
	require.Equal(t, "malformed", rejection.Reason)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
