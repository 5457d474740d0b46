// Package wallet is a client for a custodial wallet: an application server
// that mints users and tokens, plus the custodial SDK that runs verification
// challenges. Which failures are hidden behind synthesized results is decided
// by a FallbackPolicy.
package wallet

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	msgWalletInitialized = "Wallet initialized successfully!"
	msgTransferCompleted = "Transfer completed successfully!"
	msgMockWallet        = "Mock wallet initialized for prototype"
	msgMockTransfer      = "Mock transfer completed for prototype"
	msgImportUnverified  = "Wallet imported without verification"
)

// Client talks to the application server and the custodial SDK on behalf of
// one user. It is safe for concurrent use; the held Session is only exposed
// as a copy.
type Client struct {
	server     *appServer
	newSDK     SDKFactory
	responder  ChallengeResponder
	authCodes  AuthCodeProvider
	google     GoogleConfig
	policy     FallbackPolicy
	log        zerolog.Logger
	now        func() time.Time
	httpClient *http.Client

	mu      sync.Mutex
	appID   string
	sdk     SDK
	session Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for the application server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSDK sets the factory that binds an SDK to the application id returned
// by Initialize. The default is NewSimulator.
func WithSDK(f SDKFactory) Option {
	return func(c *Client) {
		c.newSDK = f
	}
}

// WithResponder sets the source of challenge answers.
func WithResponder(r ChallengeResponder) Option {
	return func(c *Client) {
		c.responder = r
	}
}

// WithAuthCodeProvider sets the source of Google authorization codes.
func WithAuthCodeProvider(p AuthCodeProvider) Option {
	return func(c *Client) {
		c.authCodes = p
	}
}

func WithGoogle(cfg GoogleConfig) Option {
	return func(c *Client) {
		c.google = cfg
	}
}

func WithPolicy(p FallbackPolicy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithClock overrides the time source used for fabricated ids.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient returns a Client for the application server at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		newSDK: func(appID string) SDK { return NewSimulator(appID) },
		policy: DefaultPolicy(),
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.server = newAppServer(strings.TrimRight(baseURL, "/"), c.httpClient)
	return c
}

// Policy returns the fallback policy in effect.
func (c *Client) Policy() FallbackPolicy { return c.policy }

// recoverWith applies the fallback policy to the outcome of op. Fail-open
// operations log a warning and return the fallback result; fail-closed ones
// log an error and return err.
func recoverWith[T any](c *Client, op Operation, res T, err error, fallback func(error) T) (T, error) {
	if err == nil {
		return res, nil
	}
	if !c.policy.FailOpen(op) {
		c.log.Error().Stack().Err(err).Str("operation", string(op)).Str("kind", string(KindOf(err))).Msg("wallet operation failed")
		return res, err
	}
	c.log.Warn().Err(err).Str("operation", string(op)).Str("kind", string(KindOf(err))).Msg("wallet operation failed, using fallback")
	return fallback(err), nil
}

// Initialize fetches the application id and binds a fresh SDK to it.
func (c *Client) Initialize(ctx context.Context) (InitResult, error) {
	appID, err := c.server.appID(ctx)
	if err == nil {
		c.bind(appID)
		c.log.Debug().Str("app_id", appID).Msg("wallet initialized")
		return InitResult{AppID: appID}, nil
	}
	return recoverWith(c, OpInitialize, InitResult{}, errors.Wrap(err, "initialize"), func(error) InitResult {
		id := fmt.Sprintf("offline_%d", c.now().UnixMilli())
		c.bind(id)
		return InitResult{AppID: id, Fallback: true}
	})
}

func (c *Client) bind(appID string) {
	sdk := c.newSDK(appID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appID = appID
	c.sdk = sdk
	if c.session.UserToken != "" || c.session.EncryptionKey != "" {
		sdk.SetAuthentication(Credentials{UserToken: c.session.UserToken, EncryptionKey: c.session.EncryptionKey})
	}
}

// AppID returns the bound application id, empty before Initialize.
func (c *Client) AppID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appID
}

func (c *Client) currentSDK() SDK {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sdk
}

func (c *Client) ensureSDK(ctx context.Context) (SDK, error) {
	if sdk := c.currentSDK(); sdk != nil {
		return sdk, nil
	}
	if _, err := c.Initialize(ctx); err != nil {
		return nil, err
	}
	return c.currentSDK(), nil
}

// setAuthentication stores credentials on the session and the SDK. An empty
// userID keeps the current one.
func (c *Client) setAuthentication(userToken, encryptionKey, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.UserToken = userToken
	c.session.EncryptionKey = encryptionKey
	if userID != "" {
		c.session.UserID = userID
	}
	if c.sdk != nil {
		c.sdk.SetAuthentication(Credentials{UserToken: userToken, EncryptionKey: encryptionKey})
	}
}

func (c *Client) fabricatedCredentials() (string, string) {
	ms := c.now().UnixMilli()
	return fmt.Sprintf("token_%d", ms), fmt.Sprintf("key_%d", ms)
}

// UserToken obtains a token and encryption key for userID and holds them.
func (c *Client) UserToken(ctx context.Context, userID string) (TokenResult, error) {
	if strings.TrimSpace(userID) == "" {
		return TokenResult{}, ErrUserIDRequired
	}
	tok, err := c.server.userToken(ctx, userID)
	if err == nil {
		c.setAuthentication(tok.UserToken, tok.EncryptionKey, userID)
		return TokenResult{UserID: userID, UserToken: tok.UserToken, EncryptionKey: tok.EncryptionKey}, nil
	}
	return recoverWith(c, OpUserToken, TokenResult{UserID: userID}, errors.Wrap(err, "get user token"), func(error) TokenResult {
		token, key := c.fabricatedCredentials()
		c.setAuthentication(token, key, userID)
		return TokenResult{UserID: userID, UserToken: token, EncryptionKey: key, Fallback: true}
	})
}

// CreateUser mints a user, fetches its token, and makes a best-effort
// attempt to initialize its wallet.
func (c *Client) CreateUser(ctx context.Context) (UserResult, error) {
	userID, err := c.server.createUser(ctx)
	fallback := false
	if err != nil {
		res, rerr := recoverWith(c, OpCreateUser, UserResult{}, errors.Wrap(err, "create user"), func(error) UserResult {
			return UserResult{UserID: fmt.Sprintf("user_%d", c.now().UnixMilli()), Fallback: true}
		})
		if rerr != nil {
			return res, rerr
		}
		userID, fallback = res.UserID, true
	}

	tok, err := c.UserToken(ctx, userID)
	if err != nil {
		return UserResult{UserID: userID}, err
	}

	initialized := false
	if w, err := c.InitializeWallet(ctx); err == nil {
		initialized = !w.Fallback
	}

	return UserResult{
		UserID:            userID,
		UserToken:         tok.UserToken,
		EncryptionKey:     tok.EncryptionKey,
		WalletInitialized: initialized,
		Fallback:          fallback || tok.Fallback,
	}, nil
}

// ImportWallet signs in as an existing user and loads their wallets. Under
// the default policy it always succeeds for a non-empty userID, fabricating
// credentials and a wallet when the server cannot be reached.
func (c *Client) ImportWallet(ctx context.Context, userID string) (ImportResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ImportResult{}, ErrUserIDRequired
	}

	res, err := c.importWallet(ctx, userID)
	return recoverWith(c, OpImportWallet, res, err, func(error) ImportResult {
		token, key := c.fabricatedCredentials()
		w := mockWallet(c.now(), importWalletDesc)
		c.setAuthentication(token, key, userID)
		c.setWallets([]WalletInfo{w})
		return ImportResult{
			UserID:        userID,
			UserToken:     token,
			EncryptionKey: key,
			Wallets:       []WalletInfo{w},
			Fallback:      true,
			Message:       msgImportUnverified,
		}
	})
}

func (c *Client) importWallet(ctx context.Context, userID string) (ImportResult, error) {
	tok, err := c.server.userToken(ctx, userID)
	if err != nil {
		return ImportResult{UserID: userID}, errors.Wrap(err, "import wallet")
	}
	c.setAuthentication(tok.UserToken, tok.EncryptionKey, userID)

	ws, err := c.FetchWallets(ctx)
	if err != nil {
		return ImportResult{UserID: userID}, errors.Wrap(err, "import wallet")
	}
	return ImportResult{
		UserID:        userID,
		UserToken:     tok.UserToken,
		EncryptionKey: tok.EncryptionKey,
		Wallets:       ws.Wallets,
		Fallback:      ws.Fallback,
	}, nil
}

// LoginWithEmail runs the device and one-time-password flow. The responder
// is asked for the email address and then the code.
func (c *Client) LoginWithEmail(ctx context.Context) (LoginResult, error) {
	res, err := c.loginWithEmail(ctx)
	return recoverWith(c, OpLoginEmail, res, err, c.fabricatedLogin)
}

func (c *Client) loginWithEmail(ctx context.Context) (LoginResult, error) {
	// Every email login starts from a freshly fetched app id.
	if _, err := c.Initialize(ctx); err != nil {
		return LoginResult{}, errors.Wrap(err, "login with email")
	}
	sdk := c.currentSDK()
	deviceID, err := sdk.DeviceID(ctx)
	if err != nil {
		return LoginResult{}, errors.Wrap(tag(ErrSDK, err), "get device id")
	}
	otp, err := c.server.otpTokens(ctx, deviceID)
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "login with email")
	}
	sdk.SetAuthentication(Credentials{UserToken: otp.DeviceToken, EncryptionKey: otp.EncryptionKey})

	userToken, err := sdk.VerifyOTP(ctx, otp.OTPToken, c.responder)
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "login error")
	}
	c.setAuthentication(userToken, otp.EncryptionKey, "")
	return LoginResult{UserToken: userToken, EncryptionKey: otp.EncryptionKey}, nil
}

// LoginWithGoogle signs in through Google OAuth and exchanges the Google
// identity for wallet credentials.
func (c *Client) LoginWithGoogle(ctx context.Context) (LoginResult, error) {
	res, err := c.loginWithGoogle(ctx)
	return recoverWith(c, OpLoginGoogle, res, err, c.fabricatedLogin)
}

func (c *Client) loginWithGoogle(ctx context.Context) (LoginResult, error) {
	if c.google.ClientID == "" {
		return LoginResult{}, tag(ErrConfig, errors.New("google client id not configured"))
	}
	if _, err := c.ensureSDK(ctx); err != nil {
		return LoginResult{}, errors.Wrap(err, "login with google")
	}
	user, token, err := googleSignIn(ctx, c.google, c.authCodes)
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "login with google")
	}
	auth, err := c.server.authenticateGoogle(ctx, googleAuthRequest{
		GoogleID:          user.ID,
		Email:             user.Email,
		Name:              user.Name,
		Picture:           user.Picture,
		GoogleAccessToken: token.AccessToken,
	})
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "authenticate google user")
	}
	c.setAuthentication(auth.UserToken, auth.EncryptionKey, auth.UserID)
	return LoginResult{
		UserID:        auth.UserID,
		UserToken:     auth.UserToken,
		EncryptionKey: auth.EncryptionKey,
		Google:        &user,
	}, nil
}

func (c *Client) fabricatedLogin(error) LoginResult {
	token, key := c.fabricatedCredentials()
	c.setAuthentication(token, key, "")
	return LoginResult{UserToken: token, EncryptionKey: key, Fallback: true}
}

// InitializeWallet asks the server for a wallet-creation challenge and runs
// it through the SDK.
func (c *Client) InitializeWallet(ctx context.Context) (MessageResult, error) {
	res, err := c.initializeWallet(ctx)
	return recoverWith(c, OpInitializeWallet, res, err, func(error) MessageResult {
		return MessageResult{Message: msgMockWallet, Fallback: true}
	})
}

func (c *Client) initializeWallet(ctx context.Context) (MessageResult, error) {
	token := c.Session().UserToken
	if token == "" {
		return MessageResult{}, errors.Wrap(ErrAuthRequired, "user token is required to initialize wallet")
	}
	challengeID, err := c.server.initializeWallet(ctx, token)
	if err != nil {
		return MessageResult{}, errors.Wrap(err, "initialize wallet")
	}
	if err := c.execute(ctx, challengeID); err != nil {
		return MessageResult{}, errors.Wrap(err, "initialize wallet")
	}
	return MessageResult{Message: msgWalletInitialized}, nil
}

func (c *Client) execute(ctx context.Context, challengeID string) error {
	sdk := c.currentSDK()
	if sdk == nil {
		return tag(ErrSDK, errors.New("sdk not initialized"))
	}
	if err := sdk.Execute(ctx, challengeID, c.responder); err != nil {
		return errors.Wrap(err, "challenge execution error")
	}
	return nil
}

// FetchWallets refreshes the user id from the SDK and the wallet list from
// the server.
func (c *Client) FetchWallets(ctx context.Context) (WalletsResult, error) {
	res, err := c.fetchWallets(ctx)
	return recoverWith(c, OpFetchWallets, res, err, func(error) WalletsResult {
		userID := c.ensureUserID()
		wallets := []WalletInfo{mockWallet(c.now(), mockWalletDescription)}
		c.setWallets(wallets)
		return WalletsResult{UserID: userID, Wallets: wallets, Fallback: true}
	})
}

func (c *Client) fetchWallets(ctx context.Context) (WalletsResult, error) {
	sess := c.Session()
	if sess.UserToken == "" {
		return WalletsResult{}, errors.Wrap(ErrAuthRequired, "fetch wallets")
	}

	if sdk := c.currentSDK(); sdk != nil {
		status, err := sdk.UserStatus(ctx, sess.UserToken)
		switch {
		case err != nil:
			c.log.Warn().Err(err).Msg("sdk user status failed, keeping current user id")
		case status.ID != "":
			c.mu.Lock()
			c.session.UserID = status.ID
			c.mu.Unlock()
		}
	}
	userID := c.ensureUserID()

	wallets, err := c.server.wallets(ctx, userID)
	if err != nil {
		return WalletsResult{UserID: userID}, errors.Wrap(err, "fetch wallets")
	}
	c.setWallets(wallets)
	return WalletsResult{UserID: userID, Wallets: append([]WalletInfo{}, wallets...)}, nil
}

func (c *Client) ensureUserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.UserID == "" {
		c.session.UserID = fmt.Sprintf("user_%d", c.now().UnixMilli())
	}
	return c.session.UserID
}

func (c *Client) setWallets(ws []WalletInfo) {
	c.mu.Lock()
	c.session.Wallets = append([]WalletInfo{}, ws...)
	c.mu.Unlock()
}

func (c *Client) firstWalletID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.session.Wallets) == 0 {
		return ""
	}
	return c.session.Wallets[0].ID
}

// Balance returns token balances for walletID, or for the first held wallet
// when walletID is empty.
func (c *Client) Balance(ctx context.Context, walletID string) (BalanceResult, error) {
	res, err := c.balance(ctx, walletID)
	return recoverWith(c, OpBalance, res, err, func(error) BalanceResult {
		return BalanceResult{WalletID: res.WalletID, Balances: mockBalances(), Fallback: true}
	})
}

func (c *Client) balance(ctx context.Context, walletID string) (BalanceResult, error) {
	if walletID == "" {
		walletID = c.firstWalletID()
	}
	if walletID == "" {
		return BalanceResult{}, errors.Wrap(ErrNoWallet, "get balance")
	}
	balances, err := c.server.balance(ctx, walletID)
	if err != nil {
		return BalanceResult{WalletID: walletID}, errors.Wrap(err, "get balance")
	}
	return BalanceResult{WalletID: walletID, Balances: balances}, nil
}

// Transfer sends amountBaseUnits from sourceWalletID (or the first held
// wallet) to destinationWalletID, confirming with a PIN challenge.
func (c *Client) Transfer(ctx context.Context, amountBaseUnits int64, destinationWalletID, sourceWalletID string) (MessageResult, error) {
	res, err := c.transfer(ctx, amountBaseUnits, destinationWalletID, sourceWalletID)
	return recoverWith(c, OpTransfer, res, err, func(error) MessageResult {
		return MessageResult{Message: msgMockTransfer, Fallback: true}
	})
}

func (c *Client) transfer(ctx context.Context, amount int64, dest, src string) (MessageResult, error) {
	if src == "" {
		src = c.firstWalletID()
	}
	if src == "" {
		return MessageResult{}, errors.Wrap(ErrNoWallet, "no source wallet available")
	}
	resp, err := c.server.createTransfer(ctx, transferRequest{
		UserToken:           c.Session().UserToken,
		WalletID:            src,
		Amount:              strconv.FormatInt(amount, 10),
		DestinationWalletID: dest,
	})
	if err != nil {
		return MessageResult{}, errors.Wrap(err, "create transfer")
	}
	if err := c.execute(ctx, resp.ChallengeID); err != nil {
		return MessageResult{}, errors.Wrap(err, "create transfer")
	}
	return MessageResult{Message: msgTransferCompleted, TransactionID: resp.TransactionID}, nil
}

// IsAuthenticated reports whether a user token and encryption key are held.
func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Authenticated()
}

// Session returns a copy of the held session.
func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

// Wallets returns a copy of the held wallet list.
func (c *Client) Wallets() []WalletInfo {
	return c.Session().Wallets
}

func (c *Client) CurrentUser() CurrentUser {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CurrentUser{
		UserID:      c.session.UserID,
		HasWallet:   len(c.session.Wallets) > 0,
		WalletCount: len(c.session.Wallets),
	}
}

// Logout clears the held session.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = Session{}
	if c.sdk != nil {
		c.sdk.SetAuthentication(Credentials{})
	}
}
