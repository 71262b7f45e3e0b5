package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	lru "github.com/hashicorp/golang-lru/v2"
)

const pairCacheSize = 1024

// Caller is the subset of ethclient used for contract reads.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client wraps go-ethereum RPC and provides pool read helpers.
type Client struct {
	rpcClient *rpc.Client
	caller    Caller

	maxRetries   int
	retryBackoff time.Duration

	pairs *lru.Cache[common.Address, PairTokens]
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string, maxRetries int, retryBackoff time.Duration) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ethclient.NewClient(rpcClient), maxRetries, retryBackoff)
	if err != nil {
		rpcClient.Close()
		return nil, err
	}
	client.rpcClient = rpcClient
	return client, nil
}

// NewClientWithCaller builds a Client over an existing contract caller.
func NewClientWithCaller(caller Caller, maxRetries int, retryBackoff time.Duration) (*Client, error) {
	if caller == nil {
		return nil, fmt.Errorf("caller is nil")
	}
	return newClient(caller, maxRetries, retryBackoff)
}

func newClient(caller Caller, maxRetries int, retryBackoff time.Duration) (*Client, error) {
	pairs, err := lru.New[common.Address, PairTokens](pairCacheSize)
	if err != nil {
		return nil, fmt.Errorf("pair cache: %w", err)
	}
	return &Client{
		caller:       caller,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		pairs:        pairs,
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// CallContract performs an eth_call with retry.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var resp []byte
	err := withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
		var err error
		resp, err = c.caller.CallContract(ctx, msg, blockNumber)
		return err
	})
	return resp, err
}
