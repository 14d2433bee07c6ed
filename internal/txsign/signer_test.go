package txsign

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packaged(t *testing.T) (*Packaged, *common.Address) {
	t.Helper()
	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	return &Packaged{
		To:       &to,
		Nonce:    7,
		Gas:      21000,
		GasPrice: big.NewInt(20_000_000_000),
		Value:    big.NewInt(1),
		Data:     []byte{0xde, 0xad},
	}, &to
}

func TestSignValidateSerialize(t *testing.T) {
	for _, chainID := range []*big.Int{nil, big.NewInt(1337)} {
		key, err := ethcrypto.GenerateKey()
		require.NoError(t, err)
		from := ethcrypto.PubkeyToAddress(key.PublicKey)
		p, to := packaged(t)
		p.From = from

		s := New(chainID)
		tx, err := s.Sign(p, key)
		require.NoError(t, err)
		require.NoError(t, s.Validate(tx, from))
		assert.ErrorIs(t, s.Validate(tx, *to), ErrSenderMismatch)

		raw, err := Serialize(tx)
		require.NoError(t, err)
		b, err := hexutil.Decode(raw)
		require.NoError(t, err)

		var decoded types.Transaction
		require.NoError(t, decoded.UnmarshalBinary(b))
		assert.Equal(t, uint64(7), decoded.Nonce())
		assert.Equal(t, tx.Hash(), decoded.Hash())
		assert.Equal(t, *to, *decoded.To())
	}
}

func TestValidateRejectsUnsigned(t *testing.T) {
	p, _ := packaged(t)
	tx := types.NewTx(&types.LegacyTx{Nonce: p.Nonce, GasPrice: p.GasPrice, Gas: p.Gas, To: p.To, Value: p.Value})
	assert.Error(t, New(nil).Validate(tx, common.Address{}))
}

func TestSignRequiresKeyAndGasPrice(t *testing.T) {
	p, _ := packaged(t)
	_, err := New(nil).Sign(p, nil)
	assert.Error(t, err)

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	p.GasPrice = nil
	_, err = New(nil).Sign(p, key)
	assert.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	p, _ := packaged(t)
	c := p.Clone()
	c.Nonce = 9
	c.GasPrice.SetInt64(1)
	c.Data[0] = 0
	c.To[0] = 0xff

	assert.Equal(t, uint64(7), p.Nonce)
	assert.Equal(t, int64(20_000_000_000), p.GasPrice.Int64())
	assert.Equal(t, byte(0xde), p.Data[0])
	assert.Equal(t, byte(0), p.To[0])
}
