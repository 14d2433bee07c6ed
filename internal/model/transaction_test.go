package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPendingRequestValidate(t *testing.T) {
	u := func(v uint64) *uint64 { return &v }
	s := func(v string) *string { return &v }
	now := time.Now()
	earlier := now.Add(-time.Hour)

	assert.NoError(t, (&PendingRequest{}).Validate())
	assert.NoError(t, (&PendingRequest{MinNonce: u(1), MaxNonce: u(1)}).Validate())
	assert.NoError(t, (&PendingRequest{Hash: s("0x" + strings.Repeat("ab", 32))}).Validate())

	assert.Error(t, (&PendingRequest{MinNonce: u(2), MaxNonce: u(1)}).Validate())
	assert.Error(t, (&PendingRequest{Hash: s("0x1234")}).Validate())
	assert.Error(t, (&PendingRequest{Hash: s("nothex")}).Validate())
	assert.Error(t, (&PendingRequest{From: &now, To: &earlier}).Validate())
}
