// Package nonce hands out per-account nonces that never collide with a
// transaction still in flight.
package nonce

import (
	"sort"
	"sync"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/txsign"

	"github.com/ethereum/go-ethereum/common"
)

// PendingTransaction is a signed transaction accepted by the network but not yet confirmed
type PendingTransaction struct {
	Nonce       uint64
	Hash        common.Hash
	Packaged    *txsign.Packaged
	SubmittedAt time.Time
}

type account struct {
	reserved map[uint64]struct{}
	// hash-keyed; superseded entries stay for bookkeeping
	pending map[common.Hash]*PendingTransaction
}

// Allocator tracks in-flight nonces. All reads and writes of the index happen
// under one mutex, so two allocations never observe the same state.
type Allocator struct {
	mu       sync.Mutex
	accounts map[common.Address]*account
	now      func() time.Time
}

// NewAllocator returns an empty allocator
func NewAllocator() *Allocator {
	return &Allocator{
		accounts: make(map[common.Address]*account),
		now:      time.Now,
	}
}

func (a *Allocator) get(addr common.Address) *account {
	acc, ok := a.accounts[addr]
	if !ok {
		acc = &account{
			reserved: make(map[uint64]struct{}),
			pending:  make(map[common.Hash]*PendingTransaction),
		}
		a.accounts[addr] = acc
	}
	return acc
}

// Allocate returns candidate if no in-flight transaction of addr uses it, otherwise
// one past the highest in-flight nonce. The returned nonce stays reserved until
// Accept or Release.
func (a *Allocator) Allocate(addr common.Address, candidate uint64) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	acc := a.get(addr)
	collides := false
	var highest uint64
	seen := false
	track := func(n uint64) {
		if n == candidate {
			collides = true
		}
		if !seen || n > highest {
			highest, seen = n, true
		}
	}
	for n := range acc.reserved {
		track(n)
	}
	for _, p := range acc.pending {
		track(p.Nonce)
	}

	if collides {
		candidate = highest + 1
	}
	acc.reserved[candidate] = struct{}{}
	return candidate
}

// Accept records an accepted transaction and clears its reservation
func (a *Allocator) Accept(addr common.Address, nonce uint64, hash common.Hash, packaged *txsign.Packaged) *PendingTransaction {
	a.mu.Lock()
	defer a.mu.Unlock()

	acc := a.get(addr)
	delete(acc.reserved, nonce)
	p := &PendingTransaction{
		Nonce:       nonce,
		Hash:        hash,
		Packaged:    packaged,
		SubmittedAt: a.now(),
	}
	acc.pending[hash] = p
	return p
}

// Release drops a reservation that will not be broadcast
func (a *Allocator) Release(addr common.Address, nonce uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if acc, ok := a.accounts[addr]; ok {
		delete(acc.reserved, nonce)
	}
}

// Pending lists accepted transactions of addr ordered by nonce, then submission time
func (a *Allocator) Pending(addr common.Address) []PendingTransaction {
	a.mu.Lock()
	defer a.mu.Unlock()

	acc, ok := a.accounts[addr]
	if !ok {
		return nil
	}
	out := make([]PendingTransaction, 0, len(acc.pending))
	for _, p := range acc.pending {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nonce != out[j].Nonce {
			return out[i].Nonce < out[j].Nonce
		}
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out
}

// Lookup returns the pending transaction with hash
func (a *Allocator) Lookup(addr common.Address, hash common.Hash) (PendingTransaction, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if acc, ok := a.accounts[addr]; ok {
		if p, ok := acc.pending[hash]; ok {
			return *p, true
		}
	}
	return PendingTransaction{}, false
}

// Reset forgets every account. Called when the session ends.
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts = make(map[common.Address]*account)
}
