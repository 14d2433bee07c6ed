// Package session holds the single active account of a wallet process.
package session

import (
	"crypto/ecdsa"
	"sync"

	"github.com/AlexZinkM/eth-wallet/internal/model"

	"github.com/ethereum/go-ethereum/common"
)

// State is the lifecycle state of a Session
type State int

const (
	StateNone State = iota
	StateActive
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	default:
		return "none"
	}
}

// Account is the authenticated identity. PrivateKey lives only in memory.
type Account struct {
	Handle     string
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey
	Keystore   model.KeystoreRecord
}

// Session tracks the active account. Register, login and logout write it;
// every submission reads it.
type Session struct {
	mu      sync.RWMutex
	account *Account
	epoch   uint64
}

// New returns a session in StateNone
func New() *Session {
	return &Session{}
}

// Activate moves the session to StateActive with acc, replacing any previous account
func (s *Session) Activate(acc *Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = acc
	s.epoch++
}

// Deactivate moves the session back to StateNone
func (s *Session) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = nil
	s.epoch++
}

// Account returns the active account, if any
func (s *Session) Account() (*Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account, s.account != nil
}

// Epoch changes on every transition. Callers compare epochs across a
// suspension point to detect a logout or re-login in between.
func (s *Session) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// State returns the lifecycle state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return StateNone
	}
	return StateActive
}
