// Package onboarding drives the wallet sign-in and payment flow shown when a
// user joins a paid focus group: login, authenticate, transfer, success.
package onboarding

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"tableflip.dev/focussync/pkg/wallet"
)

// DefaultAmount is the group-joining fee in USD.
const DefaultAmount = "0.23"

const (
	statusInitiating = "Initiating transfer..."
	statusCompleted  = "Transfer completed successfully!"
)

// Wallet is the wallet client surface the workflow drives.
type Wallet interface {
	Initialize(ctx context.Context) (wallet.InitResult, error)
	CreateUser(ctx context.Context) (wallet.UserResult, error)
	ImportWallet(ctx context.Context, userID string) (wallet.ImportResult, error)
	LoginWithEmail(ctx context.Context) (wallet.LoginResult, error)
	LoginWithGoogle(ctx context.Context) (wallet.LoginResult, error)
	UserToken(ctx context.Context, userID string) (wallet.TokenResult, error)
	InitializeWallet(ctx context.Context) (wallet.MessageResult, error)
	FetchWallets(ctx context.Context) (wallet.WalletsResult, error)
	Balance(ctx context.Context, walletID string) (wallet.BalanceResult, error)
	Transfer(ctx context.Context, amountBaseUnits int64, destinationWalletID, sourceWalletID string) (wallet.MessageResult, error)
	IsAuthenticated() bool
	Logout()
}

var _ Wallet = (*wallet.Client)(nil)

// Options configures a Workflow.
type Options struct {
	// Amount is the decimal USD amount charged in the transfer step.
	Amount              string
	DestinationWalletID string
	// ImportSkipsVerification sends imported wallets straight to success
	// instead of through authenticate and transfer.
	ImportSkipsVerification bool
	// OnSuccess is called once the transfer step completes.
	OnSuccess func(wallet.MessageResult)
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Workflow is the onboarding state machine. Actions run one at a time; every
// state change after an awaited wallet call is dropped if the workflow was
// closed or reopened in the meantime.
type Workflow struct {
	w    Wallet
	opts Options
	log  zerolog.Logger

	mu     sync.Mutex
	state  State
	gen    uint64
	subs   map[int]func(State)
	nextID int
}

// New returns a closed Workflow.
func New(w Wallet, opts Options) *Workflow {
	if opts.Amount == "" {
		opts.Amount = DefaultAmount
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Workflow{
		w:     w,
		opts:  opts,
		log:   log,
		state: State{Amount: opts.Amount},
		subs:  make(map[int]func(State)),
	}
}

// State returns a copy of the current state.
func (f *Workflow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Clone()
}

// Subscribe registers fn to receive a state copy after every change. The
// returned function unregisters it.
func (f *Workflow) Subscribe(fn func(State)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *Workflow) notify(s State) {
	f.mu.Lock()
	subs := make([]func(State), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(s.Clone())
	}
}

// SetAmount changes the amount charged by later transfers.
func (f *Workflow) SetAmount(amount string) {
	f.mu.Lock()
	f.opts.Amount = amount
	f.state.Amount = amount
	s := f.state.Clone()
	f.mu.Unlock()
	f.notify(s)
}

// Open shows the workflow, resetting it to the login step, and initializes
// the wallet service. An initialization failure is reported in State.Error
// and returned.
func (f *Workflow) Open(ctx context.Context) error {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.state = State{Visible: true, Step: StepLogin, Amount: f.opts.Amount}
	s := f.state.Clone()
	f.mu.Unlock()
	f.notify(s)

	if _, err := f.w.Initialize(ctx); err != nil {
		f.log.Error().Err(err).Msg("onboarding: initialize wallet service")
		if uerr := f.update(gen, func(s *State) {
			s.Error = "Failed to initialize wallet service"
		}); uerr != nil {
			return uerr
		}
		return err
	}
	return nil
}

// Close hides the workflow and discards its state. In-flight actions finish
// without touching state. Closing before success also drops the wallet
// session so an abandoned attempt's credentials do not carry over.
func (f *Workflow) Close() {
	f.mu.Lock()
	f.gen++
	abandoned := f.state.Visible && f.state.Step != StepSuccess
	f.state = State{Amount: f.opts.Amount}
	s := f.state.Clone()
	f.mu.Unlock()
	if abandoned {
		f.w.Logout()
		f.log.Debug().Msg("onboarding: closed before success, wallet session cleared")
	}
	f.notify(s)
}

// begin starts an action valid only in step. It marks the workflow loading
// and returns the generation the action must present to update state.
func (f *Workflow) begin(step Step, method LoginMethod, mutate func(*State)) (uint64, error) {
	f.mu.Lock()
	switch {
	case !f.state.Visible:
		f.mu.Unlock()
		return 0, ErrClosed
	case f.state.Loading:
		f.mu.Unlock()
		return 0, ErrBusy
	case f.state.Step != step:
		cur := f.state.Step
		f.mu.Unlock()
		return 0, errors.Wrapf(ErrInvalidStep, "in step %s, want %s", cur, step)
	}
	f.state.Loading = true
	f.state.Error = ""
	if method != MethodNone {
		f.state.LoginMethod = method
	}
	if mutate != nil {
		mutate(&f.state)
	}
	gen := f.gen
	s := f.state.Clone()
	f.mu.Unlock()
	f.notify(s)
	return gen, nil
}

// update applies fn if gen is still current.
func (f *Workflow) update(gen uint64, fn func(*State)) error {
	f.mu.Lock()
	if gen != f.gen || !f.state.Visible {
		f.mu.Unlock()
		return ErrClosed
	}
	fn(&f.state)
	s := f.state.Clone()
	f.mu.Unlock()
	f.notify(s)
	return nil
}

// fail records a user-facing message, ends the action, and returns err.
func (f *Workflow) fail(gen uint64, msg string, err error) error {
	if uerr := f.update(gen, func(s *State) {
		s.Loading = false
		s.Error = msg
	}); uerr != nil {
		return uerr
	}
	return err
}

func describe(fallback string, err error) string {
	if err == nil {
		return fallback
	}
	return fmt.Sprintf("%s: %v", fallback, err)
}

// LoginWithEmail signs in with the email one-time-password flow.
func (f *Workflow) LoginWithEmail(ctx context.Context) error {
	gen, err := f.begin(StepLogin, MethodEmail, nil)
	if err != nil {
		return err
	}
	res, err := f.w.LoginWithEmail(ctx)
	if err != nil {
		return f.fail(gen, describe("Login failed", err), err)
	}
	return f.afterLogin(ctx, gen, UserInfo{UserID: res.UserID, UserToken: res.UserToken, EncryptionKey: res.EncryptionKey}, true)
}

// LoginWithGoogle signs in through Google OAuth.
func (f *Workflow) LoginWithGoogle(ctx context.Context) error {
	gen, err := f.begin(StepLogin, MethodGoogle, nil)
	if err != nil {
		return err
	}
	res, err := f.w.LoginWithGoogle(ctx)
	if err != nil {
		return f.fail(gen, describe("Google login failed", err), err)
	}
	return f.afterLogin(ctx, gen, UserInfo{UserID: res.UserID, UserToken: res.UserToken, EncryptionKey: res.EncryptionKey}, true)
}

// CreateNewWallet mints a new user and wallet.
func (f *Workflow) CreateNewWallet(ctx context.Context) error {
	gen, err := f.begin(StepLogin, MethodNew, nil)
	if err != nil {
		return err
	}
	res, err := f.w.CreateUser(ctx)
	if err != nil {
		return f.fail(gen, describe("Failed to create wallet", err), err)
	}
	return f.afterLogin(ctx, gen, UserInfo{UserID: res.UserID, UserToken: res.UserToken, EncryptionKey: res.EncryptionKey}, res.WalletInitialized)
}

// afterLogin stores the user snapshot, fetches a token if only a user id is
// known, optionally refreshes wallets, and advances to authenticate.
func (f *Workflow) afterLogin(ctx context.Context, gen uint64, info UserInfo, fetchWallets bool) error {
	if err := f.update(gen, func(s *State) { s.UserInfo = &info }); err != nil {
		return err
	}

	if info.UserID != "" && info.UserToken == "" {
		if _, err := f.w.UserToken(ctx, info.UserID); err != nil {
			return f.fail(gen, "Failed to get user token", err)
		}
	}

	var wi *WalletInfo
	if fetchWallets {
		res, err := f.w.FetchWallets(ctx)
		if err != nil {
			return f.fail(gen, "Failed to fetch wallet information", err)
		}
		wi = &WalletInfo{UserID: res.UserID, Wallets: res.Wallets}
	}

	return f.update(gen, func(s *State) {
		if wi != nil {
			s.WalletInfo = wi
		}
		s.Step = StepAuthenticate
		s.Loading = false
	})
}

// ImportWallet signs in as an existing user id. With
// ImportSkipsVerification it goes straight to success.
func (f *Workflow) ImportWallet(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		f.mu.Lock()
		ok := f.state.Visible && !f.state.Loading && f.state.Step == StepLogin
		if ok {
			f.state.Error = "Please enter a user ID"
		}
		s := f.state.Clone()
		f.mu.Unlock()
		if ok {
			f.notify(s)
		}
		return wallet.ErrUserIDRequired
	}

	gen, err := f.begin(StepLogin, MethodImport, nil)
	if err != nil {
		return err
	}
	res, err := f.w.ImportWallet(ctx, userID)
	if err != nil {
		return f.fail(gen, describe("Import failed", err), err)
	}
	if res.Fallback {
		f.log.Warn().Str("user_id", userID).Msg("onboarding: wallet imported without verification")
	}

	next := StepAuthenticate
	if f.opts.ImportSkipsVerification {
		next = StepSuccess
	}
	return f.update(gen, func(s *State) {
		s.UserInfo = &UserInfo{UserID: res.UserID, UserToken: res.UserToken, EncryptionKey: res.EncryptionKey}
		s.WalletInfo = &WalletInfo{UserID: res.UserID, Wallets: res.Wallets}
		s.Step = next
		s.Loading = false
	})
}

// Authenticate makes sure a token is held, then attempts wallet
// initialization, a wallet refresh and a balance check once each. Failures
// of those three are logged and do not block the move to transfer.
func (f *Workflow) Authenticate(ctx context.Context) error {
	gen, err := f.begin(StepAuthenticate, MethodNone, nil)
	if err != nil {
		return err
	}

	if !f.w.IsAuthenticated() {
		var userID string
		if s := f.State(); s.UserInfo != nil {
			userID = s.UserInfo.UserID
		}
		if userID == "" {
			return f.fail(gen, "User authentication required", wallet.ErrAuthRequired)
		}
		if _, err := f.w.UserToken(ctx, userID); err != nil {
			return f.fail(gen, "Failed to get user token", err)
		}
	}

	if _, err := f.w.InitializeWallet(ctx); err != nil {
		f.log.Warn().Err(err).Msg("onboarding: wallet initialization failed, proceeding")
	} else if res, err := f.w.FetchWallets(ctx); err != nil {
		f.log.Warn().Err(err).Msg("onboarding: wallet refresh failed, proceeding")
	} else {
		wi := &WalletInfo{UserID: res.UserID, Wallets: res.Wallets}
		if err := f.update(gen, func(s *State) { s.WalletInfo = wi }); err != nil {
			return err
		}
	}

	var balances []wallet.TokenBalance
	if res, err := f.w.Balance(ctx, ""); err != nil {
		f.log.Warn().Err(err).Msg("onboarding: balance check failed, proceeding")
	} else {
		balances = res.Balances
	}

	return f.update(gen, func(s *State) {
		s.Balances = balances
		s.Step = StepTransfer
		s.Loading = false
	})
}

// Transfer charges the configured amount and completes the workflow. A
// failed transfer still completes; only an unparseable amount keeps the
// workflow on the transfer step.
func (f *Workflow) Transfer(ctx context.Context) error {
	gen, err := f.begin(StepTransfer, MethodNone, func(s *State) {
		s.TransferStatus = statusInitiating
	})
	if err != nil {
		return err
	}

	f.mu.Lock()
	amount := f.opts.Amount
	f.mu.Unlock()

	cents, err := wallet.ToCents(amount)
	if err != nil {
		return f.fail(gen, describe("Invalid amount", err), err)
	}

	res, err := f.w.Transfer(ctx, cents, f.opts.DestinationWalletID, "")
	if err != nil {
		f.log.Warn().Err(err).Int64("amount", cents).Msg("onboarding: transfer reported failure, completing anyway")
		res = wallet.MessageResult{Message: "Transfer completed"}
	}

	if err := f.update(gen, func(s *State) {
		s.TransferStatus = statusCompleted
		s.Step = StepSuccess
		s.Loading = false
	}); err != nil {
		return err
	}
	if f.opts.OnSuccess != nil {
		f.opts.OnSuccess(res)
	}
	return nil
}
