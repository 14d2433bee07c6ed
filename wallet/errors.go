package wallet

import (
	"errors"
	"fmt"

	"github.com/AlexZinkM/eth-wallet/internal/client"
	"github.com/AlexZinkM/eth-wallet/internal/txsign"
)

var (
	// ErrTransactionFailed covers a malformed intent, an unavailable gas price
	// and a broadcast that got no usable answer
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrTransactionInvalid means the signed transaction failed local validation
	ErrTransactionInvalid = errors.New("transaction invalid")
	// ErrRLPEncoding means the node could not decode the raw transaction
	ErrRLPEncoding = errors.New("rlp encoding error")
	// ErrRawTransaction is any other error the node reported for a raw transaction
	ErrRawTransaction = errors.New("raw transaction error")
	// ErrNonceRetriesExhausted means the node kept reporting nonce collisions
	ErrNonceRetriesExhausted = errors.New("nonce retries exhausted")
)

// RawTxError is a fatal node response to a broadcast. It unwraps to
// ErrRLPEncoding, ErrRawTransaction or ErrNonceRetriesExhausted.
type RawTxError struct {
	Kind     error
	Response *client.RPCError
	Packaged *txsign.Packaged
}

func (e *RawTxError) Error() string {
	return fmt.Sprintf("%v (nonce %d): %v", e.Kind, e.Packaged.Nonce, e.Response)
}

func (e *RawTxError) Unwrap() error {
	return e.Kind
}
