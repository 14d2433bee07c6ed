package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/common"
)

// InvokeRequest represents request for POST /tx/invoke.
// Numeric fields accept decimal or 0x-prefixed hex strings.
type InvokeRequest struct {
	To       string            `json:"to" binding:"required"`
	Method   string            `json:"method"`
	ABI      json.RawMessage   `json:"abi"`
	Params   []json.RawMessage `json:"params"`
	Data     string            `json:"data"`
	Value    string            `json:"value"`
	Gas      string            `json:"gas"`
	GasPrice string            `json:"gasPrice"`
	Send     bool              `json:"send"`
	Timeout  int               `json:"timeout"` // seconds, passed to the broadcast call
}

// InvokeResponse represents response for POST /tx/invoke
type InvokeResponse struct {
	TxHash string `json:"txHash,omitempty"`
	Result string `json:"result,omitempty"`
}

// PendingTransaction represents a submitted, not yet confirmed transaction
type PendingTransaction struct {
	Hash        string    `json:"hash"`
	Nonce       uint64    `json:"nonce"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Value       string    `json:"value"`
	Gas         uint64    `json:"gas"`
	GasPrice    string    `json:"gasPrice"`
	Data        string    `json:"data"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// PendingResponse represents response for GET /tx/pending
type PendingResponse struct {
	Address      string               `json:"address"`
	Transactions []PendingTransaction `json:"transactions"`
}

// PendingRequest represents request parameters for GET /tx/pending
type PendingRequest struct {
	Hash     *string    `form:"hash"`
	MinNonce *uint64    `form:"minNonce"`
	MaxNonce *uint64    `form:"maxNonce"`
	From     *time.Time `form:"from"`
	To       *time.Time `form:"to"`
}

// Validate validates PendingRequest filter parameters.
func (r *PendingRequest) Validate() error {
	if r.Hash != nil {
		b, err := common.DecodeHex(*r.Hash)
		if err != nil || len(b) != 32 {
			return fmt.Errorf("hash must be 32 bytes of hex")
		}
	}
	if r.MinNonce != nil && r.MaxNonce != nil && *r.MaxNonce < *r.MinNonce {
		return fmt.Errorf("minNonce must be less than or equal to maxNonce")
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return fmt.Errorf("to date must be after or equal to from date")
	}
	return nil
}
