package wallet

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	mockWalletDescription = "Mock Wallet for Prototype"
	importWalletDesc      = "User Wallet"
	walletTypeEndUser     = "enduser"
)

// randomAddress returns a lowercase 0x-prefixed 20-byte address.
func randomAddress() string {
	var b [common.AddressLength]byte
	_, _ = rand.Read(b[:])
	return strings.ToLower(common.BytesToAddress(b[:]).Hex())
}

// IsAddress reports whether s is a 0x-prefixed 40-hex-digit address.
func IsAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

func mockWallet(now time.Time, description string) WalletInfo {
	return WalletInfo{
		ID:          fmt.Sprintf("wallet_%d", now.UnixMilli()),
		Address:     randomAddress(),
		Type:        walletTypeEndUser,
		Description: description,
	}
}

func mockBalances() []TokenBalance {
	return []TokenBalance{{
		Token: Token{
			Symbol:   "USDC",
			Name:     "USD Coin",
			Decimals: 6,
		},
		Amount: "1000000",
		Type:   "fungible",
	}}
}
