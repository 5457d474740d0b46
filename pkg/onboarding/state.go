package onboarding

import (
	"github.com/pkg/errors"

	"tableflip.dev/focussync/pkg/wallet"
)

var (
	// ErrInvalidStep is returned when an action is not valid in the current
	// step.
	ErrInvalidStep = errors.New("action not valid in current step")
	// ErrBusy is returned while another action is in flight.
	ErrBusy = errors.New("onboarding action already in progress")
	// ErrClosed is returned when the workflow was closed or reopened while an
	// action was running; its results were discarded.
	ErrClosed = errors.New("onboarding closed")
)

// Step is a stage of the onboarding state machine.
type Step int

const (
	StepLogin Step = iota
	StepAuthenticate
	StepTransfer
	StepSuccess
)

func (s Step) String() string {
	switch s {
	case StepLogin:
		return "login"
	case StepAuthenticate:
		return "authenticate"
	case StepTransfer:
		return "transfer"
	case StepSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalText renders the step name.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LoginMethod records how the user signed in.
type LoginMethod string

const (
	MethodNone   LoginMethod = ""
	MethodEmail  LoginMethod = "email"
	MethodGoogle LoginMethod = "google"
	MethodNew    LoginMethod = "new"
	MethodImport LoginMethod = "import"
)

// UserInfo is the credential snapshot taken after login.
type UserInfo struct {
	UserID        string `json:"userId,omitempty"`
	UserToken     string `json:"userToken,omitempty"`
	EncryptionKey string `json:"encryptionKey,omitempty"`
}

// WalletInfo is the wallet snapshot taken after each refresh.
type WalletInfo struct {
	UserID  string              `json:"userId"`
	Wallets []wallet.WalletInfo `json:"wallets"`
}

// State is a snapshot of the workflow. Values handed out by the Workflow
// are copies; mutating them has no effect.
type State struct {
	Visible        bool                  `json:"visible"`
	Step           Step                  `json:"step"`
	LoginMethod    LoginMethod           `json:"loginMethod,omitempty"`
	Error          string                `json:"error,omitempty"`
	Loading        bool                  `json:"loading"`
	Amount         string                `json:"amount"`
	UserInfo       *UserInfo             `json:"userInfo,omitempty"`
	WalletInfo     *WalletInfo           `json:"walletInfo,omitempty"`
	Balances       []wallet.TokenBalance `json:"balances,omitempty"`
	TransferStatus string                `json:"transferStatus,omitempty"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	if s.UserInfo != nil {
		u := *s.UserInfo
		out.UserInfo = &u
	}
	if s.WalletInfo != nil {
		w := WalletInfo{UserID: s.WalletInfo.UserID}
		if s.WalletInfo.Wallets != nil {
			w.Wallets = append([]wallet.WalletInfo(nil), s.WalletInfo.Wallets...)
		}
		out.WalletInfo = &w
	}
	if s.Balances != nil {
		out.Balances = append([]wallet.TokenBalance(nil), s.Balances...)
	}
	return out
}
