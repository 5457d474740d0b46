package wallet

// WalletInfo describes one custodial wallet owned by the user.
type WalletInfo struct {
	ID          string `json:"id"`
	Address     string `json:"address"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Session is the credential set the Client holds for the current user. The
// Client mutates its own Session in place; callers only ever see copies.
type Session struct {
	UserID        string       `json:"userId,omitempty"`
	UserToken     string       `json:"userToken,omitempty"`
	EncryptionKey string       `json:"encryptionKey,omitempty"`
	Wallets       []WalletInfo `json:"wallets,omitempty"`
}

// Authenticated reports whether both the user token and the encryption key
// are present.
func (s Session) Authenticated() bool {
	return s.UserToken != "" && s.EncryptionKey != ""
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	out := s
	if s.Wallets != nil {
		out.Wallets = append([]WalletInfo(nil), s.Wallets...)
	}
	return out
}

// Token identifies a fungible token.
type Token struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int32  `json:"decimals"`
}

// TokenBalance is a token amount expressed in base units.
type TokenBalance struct {
	Token  Token  `json:"token"`
	Amount string `json:"amount"`
	Type   string `json:"type"`
}

// Display renders the balance in whole tokens, e.g. "1 USDC".
func (b TokenBalance) Display() string {
	return FormatBaseUnits(b.Amount, b.Token.Decimals) + " " + b.Token.Symbol
}

// GoogleUser is the profile returned by Google's userinfo endpoint.
type GoogleUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// InitResult is returned by Initialize.
type InitResult struct {
	AppID    string `json:"appId"`
	Fallback bool   `json:"fallback,omitempty"`
}

// TokenResult is returned by UserToken.
type TokenResult struct {
	UserID        string `json:"userId"`
	UserToken     string `json:"userToken"`
	EncryptionKey string `json:"encryptionKey"`
	Fallback      bool   `json:"fallback,omitempty"`
}

// UserResult is returned by CreateUser.
type UserResult struct {
	UserID            string `json:"userId"`
	UserToken         string `json:"userToken"`
	EncryptionKey     string `json:"encryptionKey"`
	WalletInitialized bool   `json:"walletInitialized"`
	Fallback          bool   `json:"fallback,omitempty"`
}

// ImportResult is returned by ImportWallet.
type ImportResult struct {
	UserID        string       `json:"userId"`
	UserToken     string       `json:"userToken"`
	EncryptionKey string       `json:"encryptionKey"`
	Wallets       []WalletInfo `json:"wallets"`
	Fallback      bool         `json:"fallback,omitempty"`
	Message       string       `json:"message,omitempty"`
}

// LoginResult is returned by LoginWithEmail and LoginWithGoogle.
type LoginResult struct {
	UserID        string      `json:"userId,omitempty"`
	UserToken     string      `json:"userToken"`
	EncryptionKey string      `json:"encryptionKey"`
	Google        *GoogleUser `json:"googleUserInfo,omitempty"`
	Fallback      bool        `json:"fallback,omitempty"`
}

// MessageResult is returned by InitializeWallet and Transfer.
type MessageResult struct {
	Message       string `json:"message"`
	TransactionID string `json:"transactionId,omitempty"`
	Fallback      bool   `json:"fallback,omitempty"`
}

// WalletsResult is returned by FetchWallets.
type WalletsResult struct {
	UserID   string       `json:"userId"`
	Wallets  []WalletInfo `json:"wallets"`
	Fallback bool         `json:"fallback,omitempty"`
}

// BalanceResult is returned by Balance.
type BalanceResult struct {
	WalletID string         `json:"walletId,omitempty"`
	Balances []TokenBalance `json:"balance"`
	Fallback bool           `json:"fallback,omitempty"`
}

// CurrentUser summarises the held session.
type CurrentUser struct {
	UserID      string `json:"userId"`
	HasWallet   bool   `json:"hasWallet"`
	WalletCount int    `json:"walletCount"`
}
