// Package wallet submits transactions for the active account and serves
// the account's balance and pending transactions.
package wallet

import (
	"context"
	"math/big"

	"github.com/AlexZinkM/eth-wallet/internal/client"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// Ledger is the remote node. Errors of type *client.RPCError are node
// responses; any other error is a transport failure.
type Ledger interface {
	Coinbase(ctx context.Context) (common.Address, error)
	SendEther(ctx context.Context, from, to common.Address, value *big.Int) (common.Hash, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	TxCount(ctx context.Context, address common.Address) (uint64, error)
	SendRawTx(ctx context.Context, rawTx string) (common.Hash, error)
	Call(ctx context.Context, msg client.CallMsg) ([]byte, error)
	Balance(ctx context.Context, address common.Address) (*big.Int, error)
}

// RateSource quotes ether in USD
type RateSource interface {
	GetETHtoUSDrate(ctx context.Context) (string, error)
}

// LedgerFunder sends a fixed amount from the node's coinbase to new accounts
type LedgerFunder struct {
	ledger Ledger
	amount *big.Int
	log    log.Logger
}

// NewLedgerFunder returns a funder sending amount wei per account
func NewLedgerFunder(ledger Ledger, amount *big.Int) *LedgerFunder {
	return &LedgerFunder{
		ledger: ledger,
		amount: amount,
		log:    log.New("module", "funder"),
	}
}

// Fund sends the configured amount to address
func (f *LedgerFunder) Fund(ctx context.Context, address common.Address) error {
	if f.amount == nil || f.amount.Sign() <= 0 {
		return nil
	}
	coinbase, err := f.ledger.Coinbase(ctx)
	if err != nil {
		return err
	}
	hash, err := f.ledger.SendEther(ctx, coinbase, address, f.amount)
	if err != nil {
		return err
	}
	f.log.Info("Funded account", "address", address, "wei", f.amount, "tx", hash)
	return nil
}
