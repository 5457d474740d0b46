package onboarding

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/focussync/pkg/wallet"
)

var errOffline = errors.New("offline")

// fakeWallet succeeds by default; set the func fields to change behaviour.
type fakeWallet struct {
	mu            sync.Mutex
	calls         map[string]int
	authenticated bool
	transferred   []int64
	destinations  []string

	initialize     func(context.Context) (wallet.InitResult, error)
	loginEmail     func(context.Context) (wallet.LoginResult, error)
	createUser     func(context.Context) (wallet.UserResult, error)
	importWallet   func(context.Context, string) (wallet.ImportResult, error)
	initWallet     func(context.Context) (wallet.MessageResult, error)
	balance        func(context.Context, string) (wallet.BalanceResult, error)
	transfer       func(context.Context, int64) (wallet.MessageResult, error)
	userTokenError error
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{calls: map[string]int{}}
}

func (f *fakeWallet) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeWallet) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeWallet) setAuthenticated(v bool) {
	f.mu.Lock()
	f.authenticated = v
	f.mu.Unlock()
}

var testWallets = []wallet.WalletInfo{{ID: "w-1", Address: "0xabc", Type: "enduser"}}

func (f *fakeWallet) Initialize(ctx context.Context) (wallet.InitResult, error) {
	f.record("Initialize")
	if f.initialize != nil {
		return f.initialize(ctx)
	}
	return wallet.InitResult{AppID: "app"}, nil
}

func (f *fakeWallet) CreateUser(ctx context.Context) (wallet.UserResult, error) {
	f.record("CreateUser")
	if f.createUser != nil {
		return f.createUser(ctx)
	}
	f.setAuthenticated(true)
	return wallet.UserResult{UserID: "u-new", UserToken: "t", EncryptionKey: "k", WalletInitialized: true}, nil
}

func (f *fakeWallet) ImportWallet(ctx context.Context, userID string) (wallet.ImportResult, error) {
	f.record("ImportWallet")
	if f.importWallet != nil {
		return f.importWallet(ctx, userID)
	}
	f.setAuthenticated(true)
	return wallet.ImportResult{UserID: userID, UserToken: "t", EncryptionKey: "k", Wallets: testWallets, Fallback: true}, nil
}

func (f *fakeWallet) LoginWithEmail(ctx context.Context) (wallet.LoginResult, error) {
	f.record("LoginWithEmail")
	if f.loginEmail != nil {
		return f.loginEmail(ctx)
	}
	f.setAuthenticated(true)
	return wallet.LoginResult{UserToken: "t", EncryptionKey: "k"}, nil
}

func (f *fakeWallet) LoginWithGoogle(context.Context) (wallet.LoginResult, error) {
	f.record("LoginWithGoogle")
	f.setAuthenticated(true)
	return wallet.LoginResult{UserID: "google_1", UserToken: "t", EncryptionKey: "k"}, nil
}

func (f *fakeWallet) UserToken(_ context.Context, userID string) (wallet.TokenResult, error) {
	f.record("UserToken")
	if f.userTokenError != nil {
		return wallet.TokenResult{}, f.userTokenError
	}
	f.setAuthenticated(true)
	return wallet.TokenResult{UserID: userID, UserToken: "t", EncryptionKey: "k"}, nil
}

func (f *fakeWallet) InitializeWallet(ctx context.Context) (wallet.MessageResult, error) {
	f.record("InitializeWallet")
	if f.initWallet != nil {
		return f.initWallet(ctx)
	}
	return wallet.MessageResult{Message: "ok"}, nil
}

func (f *fakeWallet) FetchWallets(context.Context) (wallet.WalletsResult, error) {
	f.record("FetchWallets")
	return wallet.WalletsResult{UserID: "u-1", Wallets: append([]wallet.WalletInfo{}, testWallets...)}, nil
}

func (f *fakeWallet) Balance(ctx context.Context, walletID string) (wallet.BalanceResult, error) {
	f.record("Balance")
	if f.balance != nil {
		return f.balance(ctx, walletID)
	}
	return wallet.BalanceResult{Balances: []wallet.TokenBalance{{Token: wallet.Token{Symbol: "USDC", Decimals: 6}, Amount: "5000000"}}}, nil
}

func (f *fakeWallet) Transfer(ctx context.Context, amount int64, dest, _ string) (wallet.MessageResult, error) {
	f.record("Transfer")
	f.mu.Lock()
	f.transferred = append(f.transferred, amount)
	f.destinations = append(f.destinations, dest)
	f.mu.Unlock()
	if f.transfer != nil {
		return f.transfer(ctx, amount)
	}
	return wallet.MessageResult{Message: "Transfer completed successfully!"}, nil
}

func (f *fakeWallet) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

func (f *fakeWallet) Logout() {
	f.record("Logout")
	f.setAuthenticated(false)
}

func openWorkflow(t *testing.T, fw *fakeWallet, opts Options) *Workflow {
	t.Helper()
	wf := New(fw, opts)
	require.NoError(t, wf.Open(context.Background()))
	return wf
}

func TestOpenStartsAtLogin(t *testing.T) {
	fw := newFakeWallet()
	wf := New(fw, Options{})
	assert.False(t, wf.State().Visible)

	require.NoError(t, wf.Open(context.Background()))
	s := wf.State()
	assert.True(t, s.Visible)
	assert.Equal(t, StepLogin, s.Step)
	assert.Equal(t, DefaultAmount, s.Amount)
	assert.Equal(t, 1, fw.count("Initialize"))
}

func TestOpenReportsInitializeFailure(t *testing.T) {
	fw := newFakeWallet()
	fw.initialize = func(context.Context) (wallet.InitResult, error) { return wallet.InitResult{}, errOffline }
	wf := New(fw, Options{})

	err := wf.Open(context.Background())
	assert.ErrorIs(t, err, errOffline)
	s := wf.State()
	assert.True(t, s.Visible)
	assert.Equal(t, StepLogin, s.Step)
	assert.NotEmpty(t, s.Error)
}

func TestFullEmailFlow(t *testing.T) {
	ctx := context.Background()
	fw := newFakeWallet()
	var got []wallet.MessageResult
	wf := openWorkflow(t, fw, Options{
		Amount:              "0.235",
		DestinationWalletID: "dest",
		OnSuccess:           func(r wallet.MessageResult) { got = append(got, r) },
	})

	require.NoError(t, wf.LoginWithEmail(ctx))
	s := wf.State()
	assert.Equal(t, StepAuthenticate, s.Step)
	assert.Equal(t, MethodEmail, s.LoginMethod)
	require.NotNil(t, s.WalletInfo)
	assert.Equal(t, "u-1", s.WalletInfo.UserID)

	require.NoError(t, wf.Authenticate(ctx))
	s = wf.State()
	assert.Equal(t, StepTransfer, s.Step)
	require.Len(t, s.Balances, 1)

	require.NoError(t, wf.Transfer(ctx))
	s = wf.State()
	assert.Equal(t, StepSuccess, s.Step)
	assert.Equal(t, statusCompleted, s.TransferStatus)
	assert.False(t, s.Loading)
	assert.Equal(t, []int64{24}, fw.transferred)
	assert.Equal(t, []string{"dest"}, fw.destinations)
	require.Len(t, got, 1)
	assert.Equal(t, "Transfer completed successfully!", got[0].Message)
}

func TestLoginFailureStaysOnLogin(t *testing.T) {
	fw := newFakeWallet()
	fw.loginEmail = func(context.Context) (wallet.LoginResult, error) {
		return wallet.LoginResult{}, errors.Wrap(wallet.ErrUserCancelled, "otp")
	}
	wf := openWorkflow(t, fw, Options{})

	err := wf.LoginWithEmail(context.Background())
	assert.ErrorIs(t, err, wallet.ErrUserCancelled)
	s := wf.State()
	assert.Equal(t, StepLogin, s.Step)
	assert.Contains(t, s.Error, "Login failed")
	assert.False(t, s.Loading)

	// retry from the same step
	fw.loginEmail = nil
	require.NoError(t, wf.LoginWithEmail(context.Background()))
	assert.Equal(t, StepAuthenticate, wf.State().Step)
	assert.Empty(t, wf.State().Error)
}

func TestCreateNewWallet(t *testing.T) {
	fw := newFakeWallet()
	wf := openWorkflow(t, fw, Options{})
	require.NoError(t, wf.CreateNewWallet(context.Background()))
	s := wf.State()
	assert.Equal(t, StepAuthenticate, s.Step)
	assert.Equal(t, MethodNew, s.LoginMethod)
	require.NotNil(t, s.UserInfo)
	assert.Equal(t, "u-new", s.UserInfo.UserID)
	assert.Equal(t, 1, fw.count("FetchWallets"))

	fw2 := newFakeWallet()
	fw2.createUser = func(context.Context) (wallet.UserResult, error) {
		return wallet.UserResult{UserID: "u-2", UserToken: "t", EncryptionKey: "k"}, nil
	}
	wf2 := openWorkflow(t, fw2, Options{})
	require.NoError(t, wf2.CreateNewWallet(context.Background()))
	assert.Equal(t, StepAuthenticate, wf2.State().Step)
	assert.Nil(t, wf2.State().WalletInfo)
	assert.Equal(t, 0, fw2.count("FetchWallets"))
}

func TestImportSkipsVerification(t *testing.T) {
	fw := newFakeWallet()
	called := false
	wf := openWorkflow(t, fw, Options{
		ImportSkipsVerification: true,
		OnSuccess:               func(wallet.MessageResult) { called = true },
	})

	require.NoError(t, wf.ImportWallet(context.Background(), "user123"))
	s := wf.State()
	assert.Equal(t, StepSuccess, s.Step)
	assert.Equal(t, MethodImport, s.LoginMethod)
	require.NotNil(t, s.UserInfo)
	assert.Equal(t, "user123", s.UserInfo.UserID)
	require.NotNil(t, s.WalletInfo)
	assert.Len(t, s.WalletInfo.Wallets, 1)
	assert.False(t, called)
	assert.Equal(t, 0, fw.count("Transfer"))
}

func TestImportWithVerification(t *testing.T) {
	fw := newFakeWallet()
	wf := openWorkflow(t, fw, Options{})
	require.NoError(t, wf.ImportWallet(context.Background(), "user123"))
	assert.Equal(t, StepAuthenticate, wf.State().Step)
}

func TestImportRequiresUserID(t *testing.T) {
	fw := newFakeWallet()
	wf := openWorkflow(t, fw, Options{ImportSkipsVerification: true})
	err := wf.ImportWallet(context.Background(), "   ")
	assert.ErrorIs(t, err, wallet.ErrUserIDRequired)
	s := wf.State()
	assert.Equal(t, StepLogin, s.Step)
	assert.Equal(t, "Please enter a user ID", s.Error)
	assert.Equal(t, 0, fw.count("ImportWallet"))
}

func TestAuthenticateRequiresUser(t *testing.T) {
	fw := newFakeWallet()
	fw.createUser = func(context.Context) (wallet.UserResult, error) {
		return wallet.UserResult{}, nil
	}
	wf := openWorkflow(t, fw, Options{})
	require.NoError(t, wf.CreateNewWallet(context.Background()))

	err := wf.Authenticate(context.Background())
	assert.ErrorIs(t, err, wallet.ErrAuthRequired)
	s := wf.State()
	assert.Equal(t, StepAuthenticate, s.Step)
	assert.Equal(t, "User authentication required", s.Error)
	assert.False(t, s.Loading)
	assert.Equal(t, 0, fw.count("InitializeWallet"))
}

func TestAuthenticateFetchesTokenForKnownUser(t *testing.T) {
	fw := newFakeWallet()
	fw.createUser = func(context.Context) (wallet.UserResult, error) {
		return wallet.UserResult{UserID: "u-9", UserToken: "t", EncryptionKey: "k"}, nil
	}
	wf := openWorkflow(t, fw, Options{})
	require.NoError(t, wf.CreateNewWallet(context.Background()))

	require.NoError(t, wf.Authenticate(context.Background()))
	assert.Equal(t, 1, fw.count("UserToken"))
	assert.Equal(t, StepTransfer, wf.State().Step)
}

func TestAuthenticateSubStepFailuresDoNotBlock(t *testing.T) {
	fw := newFakeWallet()
	fw.initWallet = func(context.Context) (wallet.MessageResult, error) { return wallet.MessageResult{}, errOffline }
	fw.balance = func(context.Context, string) (wallet.BalanceResult, error) { return wallet.BalanceResult{}, errOffline }
	wf := openWorkflow(t, fw, Options{})
	require.NoError(t, wf.LoginWithEmail(context.Background()))

	require.NoError(t, wf.Authenticate(context.Background()))
	s := wf.State()
	assert.Equal(t, StepTransfer, s.Step)
	assert.Empty(t, s.Error)
	assert.Empty(t, s.Balances)
	assert.Equal(t, 1, fw.count("InitializeWallet"))
	assert.Equal(t, 1, fw.count("Balance"))
	// the wallet refresh is skipped when initialization fails
	assert.Equal(t, 1, fw.count("FetchWallets"))
}

func TestTransferFailureStillSucceeds(t *testing.T) {
	fw := newFakeWallet()
	fw.transfer = func(context.Context, int64) (wallet.MessageResult, error) {
		return wallet.MessageResult{}, errOffline
	}
	var got wallet.MessageResult
	wf := openWorkflow(t, fw, Options{OnSuccess: func(r wallet.MessageResult) { got = r }})
	require.NoError(t, wf.LoginWithEmail(context.Background()))
	require.NoError(t, wf.Authenticate(context.Background()))

	require.NoError(t, wf.Transfer(context.Background()))
	assert.Equal(t, StepSuccess, wf.State().Step)
	assert.Equal(t, "Transfer completed", got.Message)
	assert.Equal(t, []int64{23}, fw.transferred)
}

func TestTransferInvalidAmount(t *testing.T) {
	fw := newFakeWallet()
	wf := openWorkflow(t, fw, Options{Amount: "free"})
	require.NoError(t, wf.LoginWithEmail(context.Background()))
	require.NoError(t, wf.Authenticate(context.Background()))

	err := wf.Transfer(context.Background())
	assert.ErrorIs(t, err, wallet.ErrInvalidAmount)
	s := wf.State()
	assert.Equal(t, StepTransfer, s.Step)
	assert.Contains(t, s.Error, "Invalid amount")
	assert.Equal(t, 0, fw.count("Transfer"))

	wf.SetAmount("1.00")
	require.NoError(t, wf.Transfer(context.Background()))
	assert.Equal(t, []int64{100}, fw.transferred)
}

func TestActionsRequireTheirStep(t *testing.T) {
	fw := newFakeWallet()
	wf := New(fw, Options{})
	assert.ErrorIs(t, wf.LoginWithEmail(context.Background()), ErrClosed)

	require.NoError(t, wf.Open(context.Background()))
	assert.ErrorIs(t, wf.Transfer(context.Background()), ErrInvalidStep)
	assert.ErrorIs(t, wf.Authenticate(context.Background()), ErrInvalidStep)

	require.NoError(t, wf.LoginWithEmail(context.Background()))
	assert.ErrorIs(t, wf.LoginWithGoogle(context.Background()), ErrInvalidStep)
	assert.Equal(t, 0, fw.count("LoginWithGoogle"))
}

func TestReopenResetsState(t *testing.T) {
	ctx := context.Background()
	fw := newFakeWallet()
	wf := openWorkflow(t, fw, Options{ImportSkipsVerification: true})
	require.NoError(t, wf.ImportWallet(ctx, "user123"))
	require.Equal(t, StepSuccess, wf.State().Step)

	wf.Close()
	assert.False(t, wf.State().Visible)

	require.NoError(t, wf.Open(ctx))
	s := wf.State()
	assert.Equal(t, StepLogin, s.Step)
	assert.Empty(t, s.Error)
	assert.Nil(t, s.UserInfo)
	assert.Nil(t, s.WalletInfo)
	assert.Equal(t, MethodNone, s.LoginMethod)
}

func TestSecondActionWhileLoadingIsBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fw := newFakeWallet()
	fw.loginEmail = func(context.Context) (wallet.LoginResult, error) {
		close(started)
		<-release
		return wallet.LoginResult{UserToken: "t", EncryptionKey: "k"}, nil
	}
	wf := openWorkflow(t, fw, Options{})

	done := make(chan error, 1)
	go func() { done <- wf.LoginWithEmail(context.Background()) }()
	<-started

	assert.True(t, wf.State().Loading)
	assert.ErrorIs(t, wf.CreateNewWallet(context.Background()), ErrBusy)
	assert.ErrorIs(t, wf.LoginWithEmail(context.Background()), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, fw.count("LoginWithEmail"))
	assert.Equal(t, 0, fw.count("CreateUser"))
}

func TestCloseDiscardsLateResults(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	fw := newFakeWallet()
	fw.loginEmail = func(context.Context) (wallet.LoginResult, error) {
		close(started)
		<-release
		return wallet.LoginResult{UserToken: "t", EncryptionKey: "k"}, nil
	}
	wf := openWorkflow(t, fw, Options{})

	var mu sync.Mutex
	var seen []State
	wf.Subscribe(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	done := make(chan error, 1)
	go func() { done <- wf.LoginWithEmail(context.Background()) }()
	<-started
	wf.Close()

	mu.Lock()
	n := len(seen)
	mu.Unlock()

	close(release)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("login did not return")
	}

	s := wf.State()
	assert.False(t, s.Visible)
	assert.Nil(t, s.UserInfo)
	assert.Nil(t, s.WalletInfo)
	assert.Equal(t, 0, fw.count("FetchWallets"))

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, n, "no notifications after close")
}

func TestStateIsCopied(t *testing.T) {
	fw := newFakeWallet()
	wf := openWorkflow(t, fw, Options{})
	require.NoError(t, wf.LoginWithEmail(context.Background()))

	s := wf.State()
	s.WalletInfo.Wallets[0].ID = "mutated"
	s.UserInfo.UserToken = "mutated"
	assert.Equal(t, "w-1", wf.State().WalletInfo.Wallets[0].ID)
	assert.Equal(t, "t", wf.State().UserInfo.UserToken)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	fw := newFakeWallet()
	wf := New(fw, Options{})
	var steps []Step
	cancel := wf.Subscribe(func(s State) { steps = append(steps, s.Step) })

	require.NoError(t, wf.Open(context.Background()))
	require.NoError(t, wf.LoginWithEmail(context.Background()))
	require.NotEmpty(t, steps)
	assert.Equal(t, StepAuthenticate, steps[len(steps)-1])

	cancel()
	n := len(steps)
	wf.Close()
	assert.Len(t, steps, n)
}

func TestCloseBeforeSuccessClearsSession(t *testing.T) {
	fw := newFakeWallet()
	wf := openWorkflow(t, fw, Options{})
	ctx := context.Background()

	require.NoError(t, wf.CreateNewWallet(ctx))
	require.True(t, fw.IsAuthenticated())

	wf.Close()
	assert.Equal(t, 1, fw.count("Logout"))
	assert.False(t, fw.IsAuthenticated())

	fw.loginEmail = func(context.Context) (wallet.LoginResult, error) {
		return wallet.LoginResult{}, errors.Wrap(wallet.ErrUserCancelled, "login error")
	}
	require.NoError(t, wf.Open(ctx))
	require.Error(t, wf.LoginWithEmail(ctx))
	assert.Equal(t, StepLogin, wf.State().Step)
	assert.False(t, fw.IsAuthenticated())
}

func TestCloseAfterSuccessKeepsSession(t *testing.T) {
	fw := newFakeWallet()
	wf := openWorkflow(t, fw, Options{ImportSkipsVerification: true})

	require.NoError(t, wf.ImportWallet(context.Background(), "u-1"))
	require.Equal(t, StepSuccess, wf.State().Step)

	wf.Close()
	assert.Zero(t, fw.count("Logout"))
	assert.True(t, fw.IsAuthenticated())
}

func TestCloseWhenHiddenDoesNotLogout(t *testing.T) {
	fw := newFakeWallet()
	wf := New(fw, Options{})
	wf.Close()
	assert.Zero(t, fw.count("Logout"))
}
