// Package txsign turns packaged transactions into signed, serialized legacy transactions.
package txsign

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ErrSenderMismatch means the recovered signer is not the packaged sender
var ErrSenderMismatch = errors.New("recovered sender does not match from address")

// Packaged is a transaction description before signing. Nonce is rewritten by
// the submission pipeline on every attempt.
type Packaged struct {
	From     common.Address
	To       *common.Address // nil creates a contract
	Nonce    uint64
	Gas      uint64
	GasPrice *big.Int
	Value    *big.Int
	Data     []byte
	Timeout  int // seconds, hint for the broadcast call
}

// Clone returns a deep copy so a retry can rewrite the nonce without touching the caller's value
func (p *Packaged) Clone() *Packaged {
	c := *p
	if p.To != nil {
		to := *p.To
		c.To = &to
	}
	if p.GasPrice != nil {
		c.GasPrice = new(big.Int).Set(p.GasPrice)
	}
	if p.Value != nil {
		c.Value = new(big.Int).Set(p.Value)
	}
	if p.Data != nil {
		c.Data = append([]byte(nil), p.Data...)
	}
	return &c
}

// Signer signs packaged transactions for one chain
type Signer struct {
	signer  types.Signer
	chainID *big.Int
}

// New returns a Signer. chainID 0 (or nil) selects the pre-EIP-155 Homestead scheme.
func New(chainID *big.Int) *Signer {
	if chainID == nil || chainID.Sign() == 0 {
		return &Signer{signer: types.HomesteadSigner{}, chainID: new(big.Int)}
	}
	return &Signer{signer: types.NewEIP155Signer(chainID), chainID: new(big.Int).Set(chainID)}
}

// ChainID returns the chain the signer was created for, 0 for Homestead
func (s *Signer) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// Sign builds a legacy transaction from p and signs it with key
func (s *Signer) Sign(p *Packaged, key *ecdsa.PrivateKey) (*types.Transaction, error) {
	if key == nil {
		return nil, errors.New("no signing key")
	}
	if p.GasPrice == nil {
		return nil, errors.New("gas price not set")
	}
	value := p.Value
	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    p.Nonce,
		GasPrice: p.GasPrice,
		Gas:      p.Gas,
		To:       p.To,
		Value:    value,
		Data:     p.Data,
	})
	signed, err := types.SignTx(tx, s.signer, key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// Validate recovers the sender of tx and checks it is from. Signature values
// outside the secp256k1 range fail recovery.
func (s *Signer) Validate(tx *types.Transaction, from common.Address) error {
	v, r, sv := tx.RawSignatureValues()
	if r == nil || sv == nil || r.Sign() == 0 || sv.Sign() == 0 {
		return errors.New("transaction is not signed")
	}
	if !ethcrypto.ValidateSignatureValues(byte(recoveryID(v, s.chainID)), r, sv, true) {
		return errors.New("invalid signature values")
	}
	sender, err := types.Sender(s.signer, tx)
	if err != nil {
		return fmt.Errorf("failed to recover sender: %w", err)
	}
	if sender != from {
		return ErrSenderMismatch
	}
	return nil
}

// Serialize returns the RLP encoding of tx as 0x-prefixed hex
func Serialize(tx *types.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to encode transaction: %w", err)
	}
	return hexutil.Encode(raw), nil
}

// recoveryID maps a legacy v value back to 0 or 1
func recoveryID(v, chainID *big.Int) uint64 {
	if chainID.Sign() == 0 {
		return v.Uint64() - 27
	}
	// v = chainID*2 + 35 + id
	id := new(big.Int).Sub(v, new(big.Int).Mul(chainID, big.NewInt(2)))
	return id.Uint64() - 35
}
