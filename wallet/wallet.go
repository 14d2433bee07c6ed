package wallet

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/AlexZinkM/eth-wallet/internal/account"
	wcommon "github.com/AlexZinkM/eth-wallet/internal/common"
	"github.com/AlexZinkM/eth-wallet/internal/crypto"
	"github.com/AlexZinkM/eth-wallet/internal/model"
	"github.com/AlexZinkM/eth-wallet/internal/nonce"
	"github.com/AlexZinkM/eth-wallet/internal/session"
	"github.com/AlexZinkM/eth-wallet/internal/txsign"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"
)

// Config wires a Wallet
type Config struct {
	ChainID         *big.Int
	Crypto          crypto.Options
	DefaultGas      uint64
	MaxNonceRetries int
	NonceErrorCode  int
	Freebie         *big.Int // wei sent to new accounts, nil disables funding
}

// Wallet ties the keystore manager and the submission pipeline to one session
type Wallet struct {
	accounts  *account.Manager
	pipeline  *Pipeline
	allocator *nonce.Allocator
	ledger    Ledger
	rates     RateSource
	log       log.Logger
}

// New creates a Wallet. rates may be nil.
func New(cfg Config, st account.Store, ledger Ledger, rates RateSource) *Wallet {
	sess := session.New()
	allocator := nonce.NewAllocator()

	accounts := account.NewManager(st, sess, NewLedgerFunder(ledger, cfg.Freebie), cfg.Crypto)
	// pending transactions belong to the session that sent them
	accounts.OnLogout(allocator.Reset)

	pipeline := NewPipeline(ledger, sess, allocator, txsign.New(cfg.ChainID), PipelineConfig{
		DefaultGas:      cfg.DefaultGas,
		MaxNonceRetries: cfg.MaxNonceRetries,
		NonceErrorCode:  cfg.NonceErrorCode,
	})

	return &Wallet{
		accounts:  accounts,
		pipeline:  pipeline,
		allocator: allocator,
		ledger:    ledger,
		rates:     rates,
		log:       log.New("module", "wallet"),
	}
}

// Accounts returns the keystore manager
func (w *Wallet) Accounts() *account.Manager {
	return w.accounts
}

// Pipeline returns the submission pipeline
func (w *Wallet) Pipeline() *Pipeline {
	return w.pipeline
}

// Invoke runs intent through the pipeline
func (w *Wallet) Invoke(ctx context.Context, intent Intent) (*Result, error) {
	return w.pipeline.Invoke(ctx, intent)
}

// InvokeAll submits intents concurrently. Results keep the order of intents;
// the first error cancels the rest.
func (w *Wallet) InvokeAll(ctx context.Context, intents []Intent) ([]*Result, error) {
	results := make([]*Result, len(intents))
	g, ctx := errgroup.WithContext(ctx)
	for i, intent := range intents {
		g.Go(func() error {
			res, err := w.pipeline.Invoke(ctx, intent)
			if err != nil {
				return fmt.Errorf("intent %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Balance gets the active account's balance. The USD value is left empty when
// no rate is available.
func (w *Wallet) Balance(ctx context.Context) (*model.BalanceResponse, error) {
	acc, ok := w.accounts.Session().Account()
	if !ok {
		return nil, account.ErrNotLoggedIn
	}

	wei, err := w.ledger.Balance(ctx, acc.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	ether := wcommon.WeiToEther(wei)
	resp := &model.BalanceResponse{
		Address: acc.Address.Hex(),
		Wei:     wei.String(),
		Ether:   ether,
	}

	if w.rates == nil {
		return resp, nil
	}
	rate, err := w.rates.GetETHtoUSDrate(ctx)
	if err != nil {
		w.log.Warn("Failed to get rate", "err", err)
		return resp, nil
	}

	// Calculate USD (use float only for display, not for critical operations)
	etherFloat, _ := strconv.ParseFloat(ether, 64)
	rateFloat, _ := strconv.ParseFloat(rate, 64)
	resp.Rate = rate
	resp.USD = fmt.Sprintf("%.2f", etherFloat*rateFloat)
	return resp, nil
}

// PendingTransactions lists the active account's pending transactions with filtering
func (w *Wallet) PendingTransactions(req *model.PendingRequest) (*model.PendingResponse, error) {
	acc, ok := w.accounts.Session().Account()
	if !ok {
		return nil, account.ErrNotLoggedIn
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var hash common.Hash
	if req.Hash != nil {
		hash = common.HexToHash(*req.Hash)
	}

	pending := w.allocator.Pending(acc.Address)
	out := make([]model.PendingTransaction, 0, len(pending))
	for _, p := range pending {
		// Filter by hash
		if req.Hash != nil && p.Hash != hash {
			continue
		}

		// Filter by nonce
		if req.MinNonce != nil && p.Nonce < *req.MinNonce {
			continue
		}
		if req.MaxNonce != nil && p.Nonce > *req.MaxNonce {
			continue
		}

		// Filter by dates
		if req.From != nil && p.SubmittedAt.Before(*req.From) {
			continue
		}
		if req.To != nil && p.SubmittedAt.After(*req.To) {
			continue
		}

		out = append(out, toModel(p))
	}

	return &model.PendingResponse{
		Address:      acc.Address.Hex(),
		Transactions: out,
	}, nil
}

func toModel(p nonce.PendingTransaction) model.PendingTransaction {
	tx := model.PendingTransaction{
		Hash:        p.Hash.Hex(),
		Nonce:       p.Nonce,
		SubmittedAt: p.SubmittedAt,
	}
	if pkg := p.Packaged; pkg != nil {
		tx.From = pkg.From.Hex()
		if pkg.To != nil {
			tx.To = pkg.To.Hex()
		}
		if pkg.Value != nil {
			tx.Value = pkg.Value.String()
		}
		if pkg.GasPrice != nil {
			tx.GasPrice = pkg.GasPrice.String()
		}
		tx.Gas = pkg.Gas
		tx.Data = wcommon.EncodeHex(pkg.Data)
	}
	return tx
}
