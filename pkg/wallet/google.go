package wallet

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// GoogleUserInfoURL is Google's OAuth2 v2 profile endpoint.
	GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	// AuthCodeTimeout bounds how long LoginWithGoogle waits for the user to
	// complete the consent screen.
	AuthCodeTimeout = 5 * time.Minute
)

// AuthCodeProvider obtains an OAuth authorization code for the given consent
// URL, typically by showing it to the user and reading back the code.
type AuthCodeProvider interface {
	AuthCode(ctx context.Context, authURL string) (string, error)
}

// AuthCodeFunc adapts a function to AuthCodeProvider.
type AuthCodeFunc func(ctx context.Context, authURL string) (string, error)

func (f AuthCodeFunc) AuthCode(ctx context.Context, authURL string) (string, error) {
	return f(ctx, authURL)
}

// GoogleConfig configures Google sign-in. Endpoint and UserInfoURL default to
// Google's production endpoints.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
}

func (g GoogleConfig) oauth() *oauth2.Config {
	endpoint := g.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  g.RedirectURL,
		Scopes:       []string{"email", "profile"},
	}
}

// AuthURL returns the consent URL for state.
func (g GoogleConfig) AuthURL(state string) string {
	return g.oauth().AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// googleSignIn runs the authorization code flow and fetches the user's
// profile.
func googleSignIn(ctx context.Context, cfg GoogleConfig, codes AuthCodeProvider) (GoogleUser, *oauth2.Token, error) {
	if cfg.ClientID == "" {
		return GoogleUser{}, nil, tag(ErrConfig, errors.New("google client id not configured"))
	}
	if codes == nil {
		return GoogleUser{}, nil, tag(ErrConfig, errors.New("no authorization code provider configured"))
	}

	waitCtx, cancel := context.WithTimeout(ctx, AuthCodeTimeout)
	defer cancel()

	code, err := codes.AuthCode(waitCtx, cfg.AuthURL(uuid.NewString()))
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(waitCtx.Err(), context.DeadlineExceeded):
		return GoogleUser{}, nil, tag(ErrUserCancelled, errors.New("authentication timeout"))
	case err != nil:
		return GoogleUser{}, nil, tag(ErrUserCancelled, errors.Wrap(err, "google authentication was cancelled or failed"))
	case code == "":
		return GoogleUser{}, nil, tag(ErrUserCancelled, errors.New("google authentication was cancelled or failed"))
	}

	token, err := cfg.oauth().Exchange(ctx, code)
	if err != nil {
		return GoogleUser{}, nil, tag(ErrNetwork, errors.Wrap(err, "exchange authorization code"))
	}

	infoURL := cfg.UserInfoURL
	if infoURL == "" {
		infoURL = GoogleUserInfoURL
	}
	var user GoogleUser
	resp, err := resty.NewWithClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))).R().
		SetContext(ctx).
		SetResult(&user).
		Get(infoURL)
	if err != nil {
		return GoogleUser{}, nil, tag(ErrNetwork, errors.Wrap(err, "get google user info"))
	}
	if resp.IsError() {
		return GoogleUser{}, nil, errors.Wrap(parseError(resp.StatusCode(), resp.Body()), "get google user info")
	}
	return user, token, nil
}
