package wallet

import (
	"maps"
	"slices"
)

// Operation names a Client operation for the fallback policy.
type Operation string

const (
	OpInitialize       Operation = "initialize"
	OpCreateUser       Operation = "create_user"
	OpUserToken        Operation = "get_user_token"
	OpImportWallet     Operation = "import_wallet"
	OpLoginEmail       Operation = "login_email"
	OpLoginGoogle      Operation = "login_google"
	OpInitializeWallet Operation = "initialize_wallet"
	OpFetchWallets     Operation = "fetch_wallets"
	OpBalance          Operation = "get_balance"
	OpTransfer         Operation = "transfer"
)

// Operations lists every operation in call order of a typical onboarding.
func Operations() []Operation {
	return []Operation{
		OpInitialize,
		OpCreateUser,
		OpUserToken,
		OpImportWallet,
		OpLoginEmail,
		OpLoginGoogle,
		OpInitializeWallet,
		OpFetchWallets,
		OpBalance,
		OpTransfer,
	}
}

// FallbackPolicy decides, per operation, whether a failure is replaced by a
// synthesized success (fail-open) or returned to the caller (fail-closed).
// Operations not named in the policy fail closed.
type FallbackPolicy struct {
	failOpen map[Operation]bool
}

// DefaultPolicy lets the onboarding flow always reach the happy path: wallet
// setup, balance, transfer and import fabricate results on failure while
// identity operations report real errors.
func DefaultPolicy() FallbackPolicy {
	return FallbackPolicy{failOpen: map[Operation]bool{
		OpImportWallet:     true,
		OpInitializeWallet: true,
		OpFetchWallets:     true,
		OpBalance:          true,
		OpTransfer:         true,
	}}
}

// StrictPolicy propagates every failure.
func StrictPolicy() FallbackPolicy {
	return FallbackPolicy{}
}

// FailOpen reports whether failures of op are normalized into success.
func (p FallbackPolicy) FailOpen(op Operation) bool {
	return p.failOpen[op]
}

// With returns a copy of p with op set to fail open or closed.
func (p FallbackPolicy) With(op Operation, failOpen bool) FallbackPolicy {
	next := maps.Clone(p.failOpen)
	if next == nil {
		next = make(map[Operation]bool)
	}
	next[op] = failOpen
	return FallbackPolicy{failOpen: next}
}

// FailOpenOperations returns the fail-open operations in a stable order.
func (p FallbackPolicy) FailOpenOperations() []Operation {
	ops := make([]Operation, 0, len(p.failOpen))
	for op, open := range p.failOpen {
		if open {
			ops = append(ops, op)
		}
	}
	slices.Sort(ops)
	return ops
}
