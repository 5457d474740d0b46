package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"tableflip.dev/focussync/pkg/mockserver"
)

var fixedNow = time.UnixMilli(1_700_000_000_000)

var pinResponder = StaticResponder{
	ChallengeEmail: "focus@example.com",
	ChallengeOTP:   "424242",
	ChallengePIN:   "123456",
}

func newTestServer(t *testing.T, opts ...mockserver.Option) (*mockserver.Server, string) {
	t.Helper()
	s := mockserver.New(opts...)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv.URL
}

// offlineURL returns the address of a server that is no longer listening.
func offlineURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func newTestClient(url string, opts ...Option) *Client {
	base := []Option{
		WithResponder(pinResponder),
		WithClock(func() time.Time { return fixedNow }),
	}
	return NewClient(url, append(base, opts...)...)
}

func TestNotAuthenticatedInitially(t *testing.T) {
	_, url := newTestServer(t)
	c := newTestClient(url)
	assert.False(t, c.IsAuthenticated())
	assert.Equal(t, CurrentUser{}, c.CurrentUser())
}

func TestInitialize(t *testing.T) {
	_, url := newTestServer(t, mockserver.WithAppID("app-1"))
	c := newTestClient(url)

	res, err := c.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "app-1", res.AppID)
	assert.Equal(t, "app-1", c.AppID())
}

func TestInitializeFailsClosed(t *testing.T) {
	c := newTestClient(offlineURL(t))
	_, err := c.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Empty(t, c.AppID())
}

func TestCreateUserAndPay(t *testing.T) {
	ctx := context.Background()
	s, url := newTestServer(t)
	c := newTestClient(url)

	_, err := c.Initialize(ctx)
	require.NoError(t, err)

	user, err := c.CreateUser(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, user.UserID)
	assert.True(t, user.WalletInitialized)
	assert.False(t, user.Fallback)
	assert.True(t, c.IsAuthenticated())

	ws, err := c.FetchWallets(ctx)
	require.NoError(t, err)
	require.False(t, ws.Fallback)
	require.Len(t, ws.Wallets, 1)
	assert.Equal(t, user.UserID, ws.UserID)

	bal, err := c.Balance(ctx, "")
	require.NoError(t, err)
	assert.False(t, bal.Fallback)
	assert.Equal(t, ws.Wallets[0].ID, bal.WalletID)
	require.Len(t, bal.Balances, 1)
	assert.Equal(t, "1000000", bal.Balances[0].Amount)

	cents, err := ToCents("0.235")
	require.NoError(t, err)
	tr, err := c.Transfer(ctx, cents, "dest-wallet", "")
	require.NoError(t, err)
	assert.False(t, tr.Fallback)
	assert.Equal(t, msgTransferCompleted, tr.Message)
	assert.NotEmpty(t, tr.TransactionID)

	transfers := s.Transfers()
	require.Len(t, transfers, 1)
	assert.Equal(t, int64(24), transfers[0].Amount)
	assert.Equal(t, "dest-wallet", transfers[0].DestinationWalletID)
	assert.Equal(t, ws.Wallets[0].ID, transfers[0].WalletID)
}

func TestImportWalletAlwaysSucceedsOffline(t *testing.T) {
	c := newTestClient(offlineURL(t))

	res, err := c.ImportWallet(context.Background(), "user123")
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, "user123", res.UserID)
	assert.Equal(t, "token_1700000000000", res.UserToken)
	assert.Equal(t, "key_1700000000000", res.EncryptionKey)
	require.Len(t, res.Wallets, 1)
	assert.True(t, IsAddress(res.Wallets[0].Address), res.Wallets[0].Address)
	assert.Equal(t, importWalletDesc, res.Wallets[0].Description)
	assert.True(t, c.IsAuthenticated())
	assert.Equal(t, CurrentUser{UserID: "user123", HasWallet: true, WalletCount: 1}, c.CurrentUser())
}

func TestImportWalletKnownUser(t *testing.T) {
	ctx := context.Background()
	_, url := newTestServer(t, mockserver.WithUser("user123"))
	c := newTestClient(url)
	_, err := c.Initialize(ctx)
	require.NoError(t, err)

	res, err := c.ImportWallet(ctx, "user123")
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.NotEmpty(t, res.UserToken)
	assert.NotNil(t, res.Wallets)
	assert.True(t, c.IsAuthenticated())
}

func TestImportWalletRequiresUserID(t *testing.T) {
	c := newTestClient(offlineURL(t))
	_, err := c.ImportWallet(context.Background(), "  ")
	assert.True(t, errors.Is(err, ErrUserIDRequired))
	assert.False(t, c.IsAuthenticated())
}

func TestFailOpenOperationsOffline(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(offlineURL(t))

	init, err := c.InitializeWallet(ctx)
	require.NoError(t, err)
	assert.True(t, init.Fallback)
	assert.Equal(t, msgMockWallet, init.Message)

	ws, err := c.FetchWallets(ctx)
	require.NoError(t, err)
	assert.True(t, ws.Fallback)
	assert.Equal(t, "user_1700000000000", ws.UserID)
	require.Len(t, ws.Wallets, 1)
	assert.Equal(t, "wallet_1700000000000", ws.Wallets[0].ID)
	assert.Equal(t, mockWalletDescription, ws.Wallets[0].Description)
	assert.Equal(t, walletTypeEndUser, ws.Wallets[0].Type)

	bal, err := c.Balance(ctx, "")
	require.NoError(t, err)
	assert.True(t, bal.Fallback)
	assert.Equal(t, mockBalances(), bal.Balances)

	tr, err := c.Transfer(ctx, 23, "dest", "")
	require.NoError(t, err)
	assert.True(t, tr.Fallback)
	assert.Equal(t, msgMockTransfer, tr.Message)
}

func TestStrictPolicyPropagates(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(offlineURL(t), WithPolicy(StrictPolicy()))

	_, err := c.ImportWallet(ctx, "user123")
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.False(t, c.IsAuthenticated())

	_, err = c.Transfer(ctx, 23, "dest", "wallet-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))

	_, err = c.Balance(ctx, "")
	assert.True(t, errors.Is(err, ErrNoWallet))

	_, err = c.InitializeWallet(ctx)
	assert.True(t, errors.Is(err, ErrAuthRequired))
}

func TestTransferDeclinedPINFallsBack(t *testing.T) {
	ctx := context.Background()
	s, url := newTestServer(t)
	declined := StaticResponder{ChallengePIN: ""}
	c := newTestClient(url, WithResponder(declined))
	_, err := c.Initialize(ctx)
	require.NoError(t, err)

	user, err := c.CreateUser(ctx)
	require.NoError(t, err)
	assert.False(t, user.WalletInitialized)
	require.Len(t, s.Wallets(user.UserID), 1)

	_, err = c.FetchWallets(ctx)
	require.NoError(t, err)
	tr, err := c.Transfer(ctx, 23, "dest", "")
	require.NoError(t, err)
	assert.True(t, tr.Fallback)

	strict := newTestClient(url, WithResponder(declined), WithPolicy(StrictPolicy()))
	_, err = strict.Initialize(ctx)
	require.NoError(t, err)
	_, err = strict.ImportWallet(ctx, user.UserID)
	require.NoError(t, err)
	_, err = strict.Transfer(ctx, 23, "dest", "")
	require.Error(t, err)
	assert.Equal(t, KindUserCancelled, KindOf(err))
}

func TestLoginWithEmail(t *testing.T) {
	ctx := context.Background()
	_, url := newTestServer(t)
	c := newTestClient(url)

	res, err := c.LoginWithEmail(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, res.UserToken)
	assert.NotEmpty(t, res.EncryptionKey)
	assert.True(t, c.IsAuthenticated())

	init, err := c.InitializeWallet(ctx)
	require.NoError(t, err)
	assert.False(t, init.Fallback)
}

func TestLoginWithEmailFetchesAppIDEveryTime(t *testing.T) {
	ctx := context.Background()
	s := mockserver.New(mockserver.WithAppID("app-fresh"))
	var mu sync.Mutex
	hits := 0
	h := s.Handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/app_id" {
			mu.Lock()
			hits++
			mu.Unlock()
		}
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(srv.URL)
	_, err := c.Initialize(ctx)
	require.NoError(t, err)

	_, err = c.LoginWithEmail(ctx)
	require.NoError(t, err)
	_, err = c.LoginWithEmail(ctx)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, hits)
	assert.Equal(t, "app-fresh", c.AppID())
}

func TestLoginWithEmailCancelled(t *testing.T) {
	_, url := newTestServer(t)
	var asked []ChallengeKind
	c := newTestClient(url, WithResponder(ResponderFunc(func(_ context.Context, kind ChallengeKind) (string, error) {
		asked = append(asked, kind)
		if kind == ChallengeEmail {
			return "focus@example.com", nil
		}
		return "", nil
	})))

	_, err := c.LoginWithEmail(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindUserCancelled, KindOf(err))
	assert.Equal(t, []ChallengeKind{ChallengeEmail, ChallengeOTP}, asked)
	assert.False(t, c.IsAuthenticated())
}

func TestLoginWithEmailOffline(t *testing.T) {
	c := newTestClient(offlineURL(t))
	_, err := c.LoginWithEmail(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.False(t, c.IsAuthenticated())
}

func TestLoginWithGoogleRequiresClientID(t *testing.T) {
	_, url := newTestServer(t)
	c := newTestClient(url)
	_, err := c.LoginWithGoogle(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindConfig, KindOf(err))
	assert.False(t, c.IsAuthenticated())
}

func newGoogleServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "code-1" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-1",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(GoogleUser{ID: "g-1", Email: "focus@example.com", Name: "Focus"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginWithGoogle(t *testing.T) {
	ctx := context.Background()
	_, url := newTestServer(t)
	g := newGoogleServer(t)

	var consentURL string
	c := newTestClient(url,
		WithGoogle(GoogleConfig{
			ClientID:     "client-1",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost:5173/auth/google/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:   g.URL + "/auth",
				TokenURL:  g.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
			UserInfoURL: g.URL + "/userinfo",
		}),
		WithAuthCodeProvider(AuthCodeFunc(func(_ context.Context, authURL string) (string, error) {
			consentURL = authURL
			return "code-1", nil
		})),
	)

	res, err := c.LoginWithGoogle(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Google)
	assert.Equal(t, "focus@example.com", res.Google.Email)
	assert.Equal(t, "google_g-1", res.UserID)
	assert.True(t, c.IsAuthenticated())

	assert.True(t, strings.HasPrefix(consentURL, g.URL+"/auth?"))
	assert.Contains(t, consentURL, "access_type=offline")
	assert.Contains(t, consentURL, "prompt=consent")
	assert.Contains(t, consentURL, "client_id=client-1")
}

func TestLoginWithGoogleCancelled(t *testing.T) {
	_, url := newTestServer(t)
	c := newTestClient(url,
		WithGoogle(GoogleConfig{ClientID: "client-1"}),
		WithAuthCodeProvider(AuthCodeFunc(func(context.Context, string) (string, error) {
			return "", nil
		})),
	)
	_, err := c.LoginWithGoogle(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindUserCancelled, KindOf(err))
}

func TestSessionCopyOut(t *testing.T) {
	c := newTestClient(offlineURL(t))
	_, err := c.ImportWallet(context.Background(), "user123")
	require.NoError(t, err)

	snapshot := c.Session()
	snapshot.Wallets[0].ID = "mutated"
	assert.NotEqual(t, "mutated", c.Wallets()[0].ID)

	before := c.Session()
	c.Logout()
	assert.False(t, c.IsAuthenticated())
	assert.Equal(t, Session{}, c.Session())
	assert.Equal(t, "user123", before.UserID)
	assert.Len(t, before.Wallets, 1)
	assert.True(t, before.Authenticated())
}
