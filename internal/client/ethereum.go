package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
)

// RPCError is an error object returned by the node. Anything else coming out of
// EthereumClient is a transport failure.
type RPCError struct {
	Code    int
	Message string
	Data    any
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// CallMsg is the argument of eth_call
type CallMsg struct {
	From common.Address
	To   *common.Address
	Data []byte
}

// EthereumClient is a client for an Ethereum JSON-RPC node
type EthereumClient struct {
	rpcClient *rpc.Client
	log       log.Logger
}

// DialEthereum connects to the node at rawURL (http, ws or ipc)
func DialEthereum(ctx context.Context, rawURL string) (*EthereumClient, error) {
	c, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rawURL, err)
	}
	return NewEthereumClient(c), nil
}

// NewEthereumClient wraps an existing rpc client
func NewEthereumClient(c *rpc.Client) *EthereumClient {
	return &EthereumClient{
		rpcClient: c,
		log:       log.New("module", "client"),
	}
}

// Close closes the underlying connection
func (c *EthereumClient) Close() {
	c.rpcClient.Close()
}

// Coinbase returns the node's etherbase
func (c *EthereumClient) Coinbase(ctx context.Context) (common.Address, error) {
	var addr common.Address
	if err := c.call(ctx, &addr, "eth_coinbase"); err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

// SendEther asks the node to send value wei from an account it manages
func (c *EthereumClient) SendEther(ctx context.Context, from, to common.Address, value *big.Int) (common.Hash, error) {
	args := map[string]any{
		"from":  from,
		"to":    to,
		"value": (*hexutil.Big)(value),
	}
	var hash common.Hash
	if err := c.call(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// GasPrice gets the node's suggested gas price in wei
func (c *EthereumClient) GasPrice(ctx context.Context) (*big.Int, error) {
	var price hexutil.Big
	if err := c.call(ctx, &price, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return price.ToInt(), nil
}

// TxCount gets the transaction count of address including pending transactions
func (c *EthereumClient) TxCount(ctx context.Context, address common.Address) (uint64, error) {
	var count hexutil.Uint64
	if err := c.call(ctx, &count, "eth_getTransactionCount", address, "pending"); err != nil {
		return 0, err
	}
	return uint64(count), nil
}

// SendRawTx broadcasts a signed, 0x-hex encoded transaction. A node that
// answers null yields the zero hash and no error.
func (c *EthereumClient) SendRawTx(ctx context.Context, rawTx string) (common.Hash, error) {
	var hash *common.Hash
	if err := c.call(ctx, &hash, "eth_sendRawTransaction", rawTx); err != nil {
		return common.Hash{}, err
	}
	if hash == nil {
		return common.Hash{}, nil
	}
	return *hash, nil
}

// Call executes a read-only message call against the latest block
func (c *EthereumClient) Call(ctx context.Context, msg CallMsg) ([]byte, error) {
	args := map[string]any{
		"from": msg.From,
		"data": hexutil.Bytes(msg.Data),
	}
	if msg.To != nil {
		args["to"] = msg.To
	}
	var out hexutil.Bytes
	if err := c.call(ctx, &out, "eth_call", args, "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// Balance gets the balance of address in wei
func (c *EthereumClient) Balance(ctx context.Context, address common.Address) (*big.Int, error) {
	var balance hexutil.Big
	if err := c.call(ctx, &balance, "eth_getBalance", address, "latest"); err != nil {
		return nil, err
	}
	return balance.ToInt(), nil
}

func (c *EthereumClient) call(ctx context.Context, result any, method string, args ...any) error {
	err := c.rpcClient.CallContext(ctx, result, method, args...)
	if err == nil {
		return nil
	}
	c.log.Debug("RPC call failed", "method", method, "err", err)

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		out := &RPCError{Code: rpcErr.ErrorCode(), Message: rpcErr.Error()}
		var dataErr rpc.DataError
		if errors.As(err, &dataErr) {
			out.Data = dataErr.ErrorData()
		}
		return out
	}
	return fmt.Errorf("failed to call %s: %w", method, err)
}
