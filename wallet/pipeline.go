package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/account"
	"github.com/AlexZinkM/eth-wallet/internal/client"
	"github.com/AlexZinkM/eth-wallet/internal/metrics"
	"github.com/AlexZinkM/eth-wallet/internal/nonce"
	"github.com/AlexZinkM/eth-wallet/internal/session"
	"github.com/AlexZinkM/eth-wallet/internal/txsign"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

const (
	// DefaultNonceErrorCode is the node error code for "nonce too low" and
	// "already known" and also for raw transactions it cannot decode
	DefaultNonceErrorCode = -32603
	// DefaultGas is the gas limit used when an intent names none
	DefaultGas = 3135000
)

// Intent describes a contract call or transfer requested by a caller.
// Without Send it is executed as a read-only call.
type Intent struct {
	To       string
	Method   string
	ABI      []byte // JSON ABI; with Method it encodes Params
	Params   []any
	Data     []byte // raw call data, used when Method is empty
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
	Send     bool
	Timeout  int // seconds, applied to the broadcast
}

// Result is the outcome of Invoke: a hash for sent transactions, the return
// data for read-only calls
type Result struct {
	Hash    common.Hash
	Output  []byte
	Decoded []any
}

// RetryEvent reports one resubmission after a nonce collision
type RetryEvent struct {
	Attempt  int
	Nonce    uint64
	Response *client.RPCError
}

// PipelineConfig tunes the pipeline
type PipelineConfig struct {
	DefaultGas      uint64
	MaxNonceRetries int // 0 retries until accepted
	NonceErrorCode  int
}

// Pipeline packages, prices, signs and broadcasts transactions for the
// session's active account.
type Pipeline struct {
	ledger    Ledger
	session   *session.Session
	allocator *nonce.Allocator
	signer    *txsign.Signer
	cfg       PipelineConfig
	onRetry   func(RetryEvent)
	log       log.Logger
}

// NewPipeline creates a Pipeline
func NewPipeline(ledger Ledger, sess *session.Session, allocator *nonce.Allocator, signer *txsign.Signer, cfg PipelineConfig) *Pipeline {
	if cfg.DefaultGas == 0 {
		cfg.DefaultGas = DefaultGas
	}
	if cfg.NonceErrorCode == 0 {
		cfg.NonceErrorCode = DefaultNonceErrorCode
	}
	return &Pipeline{
		ledger:    ledger,
		session:   sess,
		allocator: allocator,
		signer:    signer,
		cfg:       cfg,
		log:       log.New("module", "pipeline"),
	}
}

// OnRetry sets a callback run before every resubmission. Set it before
// submitting.
func (p *Pipeline) OnRetry(fn func(RetryEvent)) {
	p.onRetry = fn
}

// Invoke runs a read-only call, or packages and submits a transaction when intent.Send is set
func (p *Pipeline) Invoke(ctx context.Context, intent Intent) (*Result, error) {
	acc, ok := p.session.Account()
	if intent.Send && !ok {
		metrics.TxFailed.WithLabelValues(metrics.ReasonSession).Inc()
		return nil, account.ErrNotLoggedIn
	}

	to, data, err := p.prepare(intent)
	if err != nil {
		metrics.TxFailed.WithLabelValues(metrics.ReasonInvalid).Inc()
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	if !intent.Send {
		return p.call(ctx, intent, to, data)
	}

	gas := intent.Gas
	if gas == 0 {
		gas = p.cfg.DefaultGas
	}
	gasPrice := intent.GasPrice
	if gasPrice == nil || gasPrice.Sign() <= 0 {
		gasPrice, err = p.ledger.GasPrice(ctx)
		if err != nil || gasPrice == nil {
			metrics.TxFailed.WithLabelValues(metrics.ReasonGasPrice).Inc()
			return nil, fmt.Errorf("%w: no gas price: %v", ErrTransactionFailed, err)
		}
	}
	value := intent.Value
	if value == nil {
		value = new(big.Int)
	}

	hash, err := p.SubmitTx(ctx, &txsign.Packaged{
		From:     acc.Address,
		To:       to,
		Gas:      gas,
		GasPrice: gasPrice,
		Value:    value,
		Data:     data,
		Timeout:  intent.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Hash: hash}, nil
}

func (p *Pipeline) prepare(intent Intent) (*common.Address, []byte, error) {
	var to *common.Address
	if intent.To != "" {
		if !common.IsHexAddress(intent.To) {
			return nil, nil, fmt.Errorf("invalid destination %q", intent.To)
		}
		addr := common.HexToAddress(intent.To)
		to = &addr
	}

	data := intent.Data
	if intent.Method != "" {
		if len(intent.ABI) == 0 {
			return nil, nil, errors.New("method given without abi")
		}
		var err error
		data, err = encodeCall(intent.ABI, intent.Method, intent.Params)
		if err != nil {
			return nil, nil, err
		}
	}
	if to == nil && len(data) == 0 {
		return nil, nil, errors.New("intent has neither destination nor data")
	}
	if intent.Value != nil && intent.Value.Sign() < 0 {
		return nil, nil, errors.New("negative value")
	}
	return to, data, nil
}

func (p *Pipeline) call(ctx context.Context, intent Intent, to *common.Address, data []byte) (*Result, error) {
	msg := client.CallMsg{To: to, Data: data}
	if acc, ok := p.session.Account(); ok {
		msg.From = acc.Address
	}
	out, err := p.ledger.Call(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: call: %v", ErrTransactionFailed, err)
	}
	res := &Result{Output: out}
	if intent.Method != "" {
		res.Decoded, err = decodeOutput(intent.ABI, intent.Method, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}
	}
	return res, nil
}

// SubmitTx allocates a nonce, signs and broadcasts packaged for the active
// account. Nonce collisions reported by the node are retried with a higher
// nonce; every other failure is returned. packaged is not modified.
func (p *Pipeline) SubmitTx(ctx context.Context, packaged *txsign.Packaged) (common.Hash, error) {
	acc, ok := p.session.Account()
	if !ok {
		metrics.TxFailed.WithLabelValues(metrics.ReasonSession).Inc()
		return common.Hash{}, account.ErrNotLoggedIn
	}
	epoch := p.session.Epoch()

	tx := packaged.Clone()
	if tx.From == (common.Address{}) {
		tx.From = acc.Address
	}
	if tx.From != acc.Address {
		metrics.TxFailed.WithLabelValues(metrics.ReasonSession).Inc()
		return common.Hash{}, fmt.Errorf("%w: %s is not the active account", account.ErrNotLoggedIn, tx.From)
	}

	candidate, err := p.ledger.TxCount(ctx, tx.From)
	if err != nil {
		metrics.TxFailed.WithLabelValues(metrics.ReasonTransport).Inc()
		return common.Hash{}, fmt.Errorf("%w: transaction count: %v", ErrTransactionFailed, err)
	}

	for attempt := 0; ; attempt++ {
		// Allocating
		tx.Nonce = p.allocator.Allocate(tx.From, candidate)
		if !p.sameAccount(acc, epoch) {
			p.allocator.Release(tx.From, tx.Nonce)
			metrics.TxFailed.WithLabelValues(metrics.ReasonSession).Inc()
			return common.Hash{}, account.ErrNotLoggedIn
		}

		// Signing
		raw, err := p.sign(tx, acc)
		if err != nil {
			p.allocator.Release(tx.From, tx.Nonce)
			metrics.TxFailed.WithLabelValues(metrics.ReasonInvalid).Inc()
			return common.Hash{}, fmt.Errorf("%w: %v", ErrTransactionInvalid, err)
		}

		// Sending
		hash, err := p.broadcast(ctx, tx, raw)
		if err == nil {
			if hash == (common.Hash{}) {
				p.allocator.Release(tx.From, tx.Nonce)
				metrics.TxFailed.WithLabelValues(metrics.ReasonTransport).Inc()
				return common.Hash{}, fmt.Errorf("%w: empty response", ErrTransactionFailed)
			}
			p.accept(acc, epoch, tx, hash)
			return hash, nil
		}

		var rpcErr *client.RPCError
		if !errors.As(err, &rpcErr) {
			p.allocator.Release(tx.From, tx.Nonce)
			metrics.TxFailed.WithLabelValues(metrics.ReasonTransport).Inc()
			return common.Hash{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}
		if rpcErr.Code != p.cfg.NonceErrorCode {
			p.allocator.Release(tx.From, tx.Nonce)
			metrics.TxFailed.WithLabelValues(metrics.ReasonRaw).Inc()
			return common.Hash{}, &RawTxError{Kind: ErrRawTransaction, Response: rpcErr, Packaged: tx}
		}
		if strings.Contains(strings.ToLower(rpcErr.Message), "rlp") {
			p.allocator.Release(tx.From, tx.Nonce)
			metrics.TxFailed.WithLabelValues(metrics.ReasonRLP).Inc()
			return common.Hash{}, &RawTxError{Kind: ErrRLPEncoding, Response: rpcErr, Packaged: tx}
		}

		// RetryWithNewNonce
		p.allocator.Release(tx.From, tx.Nonce)
		if p.cfg.MaxNonceRetries > 0 && attempt+1 >= p.cfg.MaxNonceRetries {
			metrics.TxFailed.WithLabelValues(metrics.ReasonRetryBudget).Inc()
			p.log.Warn("Giving up after repeated nonce collisions", "from", tx.From, "attempts", attempt+1)
			return common.Hash{}, &RawTxError{Kind: ErrNonceRetriesExhausted, Response: rpcErr, Packaged: tx}
		}
		metrics.TxNonceRetries.Inc()
		p.log.Debug("Nonce collision, resubmitting", "from", tx.From, "nonce", tx.Nonce, "attempt", attempt+1, "err", rpcErr.Message)
		if p.onRetry != nil {
			p.onRetry(RetryEvent{Attempt: attempt + 1, Nonce: tx.Nonce, Response: rpcErr})
		}
		candidate = tx.Nonce + 1

		if err := ctx.Err(); err != nil {
			return common.Hash{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}
	}
}

func (p *Pipeline) sign(tx *txsign.Packaged, acc *session.Account) (string, error) {
	signed, err := p.signer.Sign(tx, acc.PrivateKey)
	if err != nil {
		return "", err
	}
	if err := p.signer.Validate(signed, tx.From); err != nil {
		return "", err
	}
	return txsign.Serialize(signed)
}

func (p *Pipeline) broadcast(ctx context.Context, tx *txsign.Packaged, raw string) (common.Hash, error) {
	if tx.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(tx.Timeout)*time.Second)
		defer cancel()
	}
	return p.ledger.SendRawTx(ctx, raw)
}

// accept indexes an accepted transaction. The node has it regardless, so a
// session that ended during the broadcast only skips the bookkeeping.
func (p *Pipeline) accept(acc *session.Account, epoch uint64, tx *txsign.Packaged, hash common.Hash) {
	metrics.TxSubmitted.Inc()
	if !p.sameAccount(acc, epoch) {
		p.allocator.Release(tx.From, tx.Nonce)
		p.log.Warn("Session ended during broadcast, not indexing", "hash", hash, "nonce", tx.Nonce)
		return
	}
	p.allocator.Accept(tx.From, tx.Nonce, hash, tx.Clone())
	p.log.Info("Transaction accepted", "from", tx.From, "nonce", tx.Nonce, "hash", hash)
}

// sameAccount reports whether acc is still the active account
func (p *Pipeline) sameAccount(acc *session.Account, epoch uint64) bool {
	if p.session.Epoch() == epoch {
		return true
	}
	cur, ok := p.session.Account()
	return ok && cur.Address == acc.Address
}
