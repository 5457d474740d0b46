package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	open := map[Operation]bool{
		OpImportWallet:     true,
		OpInitializeWallet: true,
		OpFetchWallets:     true,
		OpBalance:          true,
		OpTransfer:         true,
	}
	for _, op := range Operations() {
		assert.Equal(t, open[op], p.FailOpen(op), op)
	}
}

func TestStrictPolicy(t *testing.T) {
	p := StrictPolicy()
	for _, op := range Operations() {
		assert.False(t, p.FailOpen(op), op)
	}
	assert.Empty(t, p.FailOpenOperations())
}

func TestPolicyWithCopies(t *testing.T) {
	base := DefaultPolicy()
	next := base.With(OpTransfer, false).With(OpInitialize, true)

	assert.True(t, base.FailOpen(OpTransfer))
	assert.False(t, base.FailOpen(OpInitialize))
	assert.False(t, next.FailOpen(OpTransfer))
	assert.True(t, next.FailOpen(OpInitialize))

	strict := StrictPolicy().With(OpBalance, true)
	assert.Equal(t, []Operation{OpBalance}, strict.FailOpenOperations())
}
