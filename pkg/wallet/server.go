package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultTimeout bounds each application server request.
const DefaultTimeout = 30 * time.Second

// appServer calls the application server that brokers custodial wallet API
// access.
type appServer struct {
	http *resty.Client
}

func newAppServer(baseURL string, hc *http.Client) *appServer {
	c := resty.New()
	if hc != nil {
		c = resty.NewWithClient(hc)
	} else {
		c.SetTimeout(DefaultTimeout)
	}
	c.SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &appServer{http: c}
}

type tokenResponse struct {
	UserID        string `json:"userId"`
	UserToken     string `json:"userToken"`
	EncryptionKey string `json:"encryptionKey"`
}

type otpResponse struct {
	DeviceToken   string `json:"deviceToken"`
	EncryptionKey string `json:"encryptionKey"`
	OTPToken      string `json:"otpToken"`
}

type challengeResponse struct {
	ChallengeID   string `json:"challengeId"`
	TransactionID string `json:"transactionId,omitempty"`
}

type transferRequest struct {
	UserToken           string `json:"userToken"`
	WalletID            string `json:"walletId"`
	Amount              string `json:"amount"`
	DestinationWalletID string `json:"destinationWalletId"`
}

type googleAuthRequest struct {
	GoogleID          string `json:"googleId"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	Picture           string `json:"picture"`
	GoogleAccessToken string `json:"googleAccessToken"`
}

func (s *appServer) appID(ctx context.Context) (string, error) {
	var out struct {
		AppID string `json:"appId"`
	}
	if err := s.do(ctx, http.MethodGet, "/app_id", nil, &out); err != nil {
		return "", err
	}
	if out.AppID == "" {
		return "", tag(ErrConfig, errors.New("application server returned no app id"))
	}
	return out.AppID, nil
}

func (s *appServer) createUser(ctx context.Context) (string, error) {
	var out struct {
		UserID string `json:"userId"`
	}
	if err := s.do(ctx, http.MethodPost, "/create_user", nil, &out); err != nil {
		return "", err
	}
	if out.UserID == "" {
		return "", tag(ErrNetwork, errors.New("create_user: empty user id"))
	}
	return out.UserID, nil
}

func (s *appServer) userToken(ctx context.Context, userID string) (tokenResponse, error) {
	var out tokenResponse
	body := map[string]string{"userId": userID}
	if err := s.do(ctx, http.MethodPost, "/get_user_token", body, &out); err != nil {
		return tokenResponse{}, err
	}
	if out.UserToken == "" || out.EncryptionKey == "" {
		return tokenResponse{}, tag(ErrNetwork, errors.New("get_user_token: incomplete credentials"))
	}
	out.UserID = userID
	return out, nil
}

func (s *appServer) otpTokens(ctx context.Context, deviceID string) (otpResponse, error) {
	var out otpResponse
	body := map[string]string{"deviceId": deviceID}
	if err := s.do(ctx, http.MethodPost, "/get_otp_tokens", body, &out); err != nil {
		return otpResponse{}, err
	}
	return out, nil
}

func (s *appServer) initializeWallet(ctx context.Context, userToken string) (string, error) {
	var out challengeResponse
	body := map[string]string{"userToken": userToken}
	if err := s.do(ctx, http.MethodPost, "/initialize_wallet", body, &out); err != nil {
		return "", err
	}
	return out.ChallengeID, nil
}

func (s *appServer) wallets(ctx context.Context, userID string) ([]WalletInfo, error) {
	var out struct {
		Wallets []WalletInfo `json:"wallets"`
	}
	body := map[string]string{"userId": userID}
	if err := s.do(ctx, http.MethodPost, "/get_wallets", body, &out); err != nil {
		return nil, err
	}
	if out.Wallets == nil {
		out.Wallets = []WalletInfo{}
	}
	return out.Wallets, nil
}

func (s *appServer) balance(ctx context.Context, walletID string) ([]TokenBalance, error) {
	var out struct {
		TokenBalances []TokenBalance `json:"tokenBalances"`
	}
	if err := s.do(ctx, http.MethodGet, "/get_balance/"+url.PathEscape(walletID), nil, &out); err != nil {
		return nil, err
	}
	if out.TokenBalances == nil {
		out.TokenBalances = []TokenBalance{}
	}
	return out.TokenBalances, nil
}

func (s *appServer) createTransfer(ctx context.Context, req transferRequest) (challengeResponse, error) {
	var out challengeResponse
	if err := s.do(ctx, http.MethodPost, "/create_transfer", req, &out); err != nil {
		return challengeResponse{}, err
	}
	return out, nil
}

func (s *appServer) authenticateGoogle(ctx context.Context, req googleAuthRequest) (tokenResponse, error) {
	var out tokenResponse
	if err := s.do(ctx, http.MethodPost, "/authenticate_google", req, &out); err != nil {
		return tokenResponse{}, err
	}
	if out.UserToken == "" {
		return tokenResponse{}, tag(ErrNetwork, errors.New("authenticate_google: missing user token"))
	}
	return out, nil
}

// do performs one request. Transport failures and non-2xx responses are
// classified as ErrNetwork.
func (s *appServer) do(ctx context.Context, method, path string, body, out any) error {
	req := s.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return tag(ErrNetwork, errors.Wrapf(err, "%s %s", method, path))
	}
	if resp.IsError() {
		return errors.Wrapf(parseError(resp.StatusCode(), resp.Body()), "%s %s", method, path)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return tag(ErrNetwork, errors.Wrapf(err, "decode %s response", path))
	}
	return nil
}
