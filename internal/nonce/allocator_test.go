package nonce

import (
	"sort"
	"sync"
	"testing"

	"github.com/AlexZinkM/eth-wallet/internal/txsign"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x1000000000000000000000000000000000000001")
	bob   = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

func TestAllocateWithoutCollision(t *testing.T) {
	a := NewAllocator()
	assert.Equal(t, uint64(5), a.Allocate(alice, 5))
	// other accounts are independent
	assert.Equal(t, uint64(5), a.Allocate(bob, 5))
}

func TestAllocateBumpsPastHighestInFlight(t *testing.T) {
	a := NewAllocator()
	n := a.Allocate(alice, 3)
	a.Accept(alice, n, common.HexToHash("0x01"), &txsign.Packaged{Nonce: n})
	n = a.Allocate(alice, 4)
	a.Accept(alice, n, common.HexToHash("0x02"), &txsign.Packaged{Nonce: n})

	// candidate 3 collides, highest in flight is 4
	assert.Equal(t, uint64(5), a.Allocate(alice, 3))
	// 5 is reserved now
	assert.Equal(t, uint64(6), a.Allocate(alice, 5))
	// 10 is free
	assert.Equal(t, uint64(10), a.Allocate(alice, 10))
}

func TestConcurrentAllocationsAreDistinct(t *testing.T) {
	a := NewAllocator()
	const workers = 32

	var wg sync.WaitGroup
	got := make([]uint64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = a.Allocate(alice, 100)
		}(i)
	}
	wg.Wait()

	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, n := range got {
		assert.Equal(t, uint64(100+i), n)
	}
}

func TestReleaseFreesReservation(t *testing.T) {
	a := NewAllocator()
	n := a.Allocate(alice, 1)
	a.Release(alice, n)
	assert.Equal(t, uint64(1), a.Allocate(alice, 1))
	a.Release(bob, 1)
}

func TestPendingOrderingAndLookup(t *testing.T) {
	a := NewAllocator()
	assert.Nil(t, a.Pending(alice))

	h1, h2, h3 := common.HexToHash("0x0a"), common.HexToHash("0x0b"), common.HexToHash("0x0c")
	a.Accept(alice, 2, h2, &txsign.Packaged{Nonce: 2})
	a.Accept(alice, 1, h1, &txsign.Packaged{Nonce: 1})
	// a resubmission with a newer nonce leaves the older entry in place
	a.Accept(alice, 3, h3, &txsign.Packaged{Nonce: 3})

	pending := a.Pending(alice)
	require.Len(t, pending, 3)
	assert.Equal(t, []common.Hash{h1, h2, h3}, []common.Hash{pending[0].Hash, pending[1].Hash, pending[2].Hash})
	assert.False(t, pending[0].SubmittedAt.IsZero())

	p, ok := a.Lookup(alice, h2)
	require.True(t, ok)
	assert.Equal(t, uint64(2), p.Nonce)
	_, ok = a.Lookup(bob, h2)
	assert.False(t, ok)

	a.Reset()
	assert.Empty(t, a.Pending(alice))
	assert.Equal(t, uint64(1), a.Allocate(alice, 1))
}
