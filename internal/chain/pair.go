package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const pairABIJSON = `[
  {"inputs": [], "name": "getReserves", "outputs": [{"internalType": "uint112", "name": "_reserve0", "type": "uint112"}, {"internalType": "uint112", "name": "_reserve1", "type": "uint112"}, {"internalType": "uint32", "name": "_blockTimestampLast", "type": "uint32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token0", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token1", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

var (
	pairABI     abi.ABI
	pairABIOnce sync.Once
	pairABIErr  error
)

// PairABI returns the parsed UniswapV2-style pair ABI.
func PairABI() (abi.ABI, error) {
	pairABIOnce.Do(func() {
		pairABI, pairABIErr = abi.JSON(strings.NewReader(pairABIJSON))
	})
	return pairABI, pairABIErr
}

// PairTokens are the immutable token addresses of a pair.
type PairTokens struct {
	Token0 common.Address
	Token1 common.Address
}

// PairReserves is a reserves reading at a block.
type PairReserves struct {
	Pair               common.Address
	Tokens             PairTokens
	Reserve0           *uint256.Int
	Reserve1           *uint256.Int
	BlockTimestampLast uint32
}

// PairReserves reads getReserves and the pair tokens. A nil blockNumber
// reads the latest state.
func (c *Client) PairReserves(ctx context.Context, pair common.Address, blockNumber *big.Int) (PairReserves, error) {
	tokens, err := c.PairTokens(ctx, pair)
	if err != nil {
		return PairReserves{}, err
	}

	values, err := c.call(ctx, pair, "getReserves", blockNumber)
	if err != nil {
		return PairReserves{}, err
	}
	if len(values) != 3 {
		return PairReserves{}, fmt.Errorf("getReserves return size %d", len(values))
	}

	reserve0, err := toUint256(values[0])
	if err != nil {
		return PairReserves{}, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := toUint256(values[1])
	if err != nil {
		return PairReserves{}, fmt.Errorf("reserve1: %w", err)
	}
	ts, ok := values[2].(uint32)
	if !ok {
		return PairReserves{}, fmt.Errorf("blockTimestampLast unexpected type %T", values[2])
	}

	return PairReserves{
		Pair:               pair,
		Tokens:             tokens,
		Reserve0:           reserve0,
		Reserve1:           reserve1,
		BlockTimestampLast: ts,
	}, nil
}

// PairTokens returns token0/token1 of a pair, cached per pair address.
func (c *Client) PairTokens(ctx context.Context, pair common.Address) (PairTokens, error) {
	if tokens, ok := c.pairs.Get(pair); ok {
		return tokens, nil
	}

	token0, err := c.callAddress(ctx, pair, "token0")
	if err != nil {
		return PairTokens{}, err
	}
	token1, err := c.callAddress(ctx, pair, "token1")
	if err != nil {
		return PairTokens{}, err
	}

	tokens := PairTokens{Token0: token0, Token1: token1}
	c.pairs.Add(pair, tokens)
	return tokens, nil
}

func (c *Client) callAddress(ctx context.Context, pair common.Address, method string) (common.Address, error) {
	values, err := c.call(ctx, pair, method, nil)
	if err != nil {
		return common.Address{}, err
	}
	if len(values) != 1 {
		return common.Address{}, fmt.Errorf("%s return size %d", method, len(values))
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s unexpected type %T", method, values[0])
	}
	return addr, nil
}

func (c *Client) call(ctx context.Context, to common.Address, method string, blockNumber *big.Int) ([]interface{}, error) {
	parsed, err := PairABI()
	if err != nil {
		return nil, err
	}

	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := c.CallContract(ctx, msg, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func toUint256(value interface{}) (*uint256.Int, error) {
	b, ok := value.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected type %T", value)
	}
	if b.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s", b)
	}
	out, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("value %s overflows uint256", b)
	}
	return out, nil
}
