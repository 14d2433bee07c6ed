package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	coinbase = common.HexToAddress("0xc0ffee0000000000000000000000000000000001")
	acct     = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

type nodeError struct {
	code int
	msg  string
}

func (e *nodeError) Error() string  { return e.msg }
func (e *nodeError) ErrorCode() int { return e.code }

// ethService is served under the eth namespace by an in-process rpc server
type ethService struct {
	raw      []string
	rawReply *common.Hash
	rawErr   error
	sent     map[string]any
}

func (s *ethService) Coinbase() common.Address { return coinbase }

func (s *ethService) GasPrice() *hexutil.Big { return (*hexutil.Big)(big.NewInt(20_000_000_000)) }

func (s *ethService) GetTransactionCount(addr common.Address, block string) (hexutil.Uint64, error) {
	if block != "pending" {
		return 0, fmt.Errorf("unexpected block %q", block)
	}
	return 42, nil
}

func (s *ethService) GetBalance(addr common.Address, block string) *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(1_500_000_000_000_000_000))
}

func (s *ethService) SendRawTransaction(raw string) (*common.Hash, error) {
	s.raw = append(s.raw, raw)
	return s.rawReply, s.rawErr
}

func (s *ethService) SendTransaction(args map[string]any) (common.Hash, error) {
	s.sent = args
	return common.HexToHash("0xfeed"), nil
}

func (s *ethService) Call(args map[string]any, block string) (hexutil.Bytes, error) {
	return hexutil.Bytes{0x01, 0x02}, nil
}

func newTestClient(t *testing.T, svc *ethService) *EthereumClient {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", svc))
	t.Cleanup(server.Stop)
	c := NewEthereumClient(rpc.DialInProc(server))
	t.Cleanup(c.Close)
	return c
}

func TestEthereumClientQueries(t *testing.T) {
	c := newTestClient(t, &ethService{})
	ctx := context.Background()

	cb, err := c.Coinbase(ctx)
	require.NoError(t, err)
	assert.Equal(t, coinbase, cb)

	price, err := c.GasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20_000_000_000), price.Int64())

	count, err := c.TxCount(ctx, acct)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), count)

	balance, err := c.Balance(ctx, acct)
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", balance.String())

	out, err := c.Call(ctx, CallMsg{From: acct, To: &acct, Data: []byte{0xab}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, out)
}

func TestEthereumClientSendEther(t *testing.T) {
	svc := &ethService{}
	c := newTestClient(t, svc)

	hash, err := c.SendEther(context.Background(), coinbase, acct, big.NewInt(255))
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xfeed"), hash)
	assert.Equal(t, "0xff", svc.sent["value"])
}

func TestEthereumClientSendRawTx(t *testing.T) {
	accepted := common.HexToHash("0xbeef")
	svc := &ethService{rawReply: &accepted}
	c := newTestClient(t, svc)

	hash, err := c.SendRawTx(context.Background(), "0x01")
	require.NoError(t, err)
	assert.Equal(t, accepted, hash)
	assert.Equal(t, []string{"0x01"}, svc.raw)

	svc.rawReply = nil
	hash, err = c.SendRawTx(context.Background(), "0x02")
	require.NoError(t, err)
	assert.Equal(t, common.Hash{}, hash)

	svc.rawErr = &nodeError{code: -32603, msg: "nonce too low"}
	_, err = c.SendRawTx(context.Background(), "0x03")
	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32603, rpcErr.Code)
	assert.Equal(t, "nonce too low", rpcErr.Message)
}

func TestEthereumClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := DialEthereum(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.SendRawTx(context.Background(), "0x01")
	require.Error(t, err)
	var rpcErr *RPCError
	assert.False(t, errors.As(err, &rpcErr))
}

func TestCoinGeckoRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ethereum", r.URL.Query().Get("ids"))
		fmt.Fprint(w, `{"ethereum":{"usd":3012.456}}`)
	}))
	defer srv.Close()

	rate, err := NewCoinGeckoClientWithURL(srv.URL).GetETHtoUSDrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3012.46", rate)
}

func TestCoinGeckoRateStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewCoinGeckoClientWithURL(srv.URL).GetETHtoUSDrate(context.Background())
	assert.Error(t, err)
}
