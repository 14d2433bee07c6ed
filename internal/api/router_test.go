package api

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AlexZinkM/eth-wallet/internal/client"
	"github.com/AlexZinkM/eth-wallet/internal/store"
	"github.com/AlexZinkM/eth-wallet/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// idleLedger is never reached by these requests
type idleLedger struct{}

func (idleLedger) Coinbase(context.Context) (common.Address, error) { return common.Address{}, nil }
func (idleLedger) SendEther(context.Context, common.Address, common.Address, *big.Int) (common.Hash, error) {
	return common.Hash{}, nil
}
func (idleLedger) GasPrice(context.Context) (*big.Int, error)                { return big.NewInt(1), nil }
func (idleLedger) TxCount(context.Context, common.Address) (uint64, error)   { return 0, nil }
func (idleLedger) SendRawTx(context.Context, string) (common.Hash, error)    { return common.Hash{}, nil }
func (idleLedger) Call(context.Context, client.CallMsg) ([]byte, error)      { return nil, nil }
func (idleLedger) Balance(context.Context, common.Address) (*big.Int, error) { return new(big.Int), nil }

func TestRouter(t *testing.T) {
	st, err := store.OpenMemory()
	require.NoError(t, err)
	defer st.Close()

	srv := httptest.NewServer(SetupRouter(wallet.New(wallet.Config{}, st, idleLedger{}, nil)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/swagger/doc.json")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/account/export")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/account/login", "application/json", strings.NewReader(`{"handle":"x","password":"y"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
