package wallet

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Simulator is a local stand-in for the custodial wallet SDK. It asks the
// same challenges the hosted SDK would and validates their shape, but keeps
// no keys.
type Simulator struct {
	appID    string
	deviceID string

	mu    sync.Mutex
	creds Credentials
}

var _ SDK = (*Simulator)(nil)

// NewSimulator returns a Simulator bound to appID with a fresh device id.
func NewSimulator(appID string) *Simulator {
	return &Simulator{
		appID:    appID,
		deviceID: uuid.NewString(),
	}
}

func (s *Simulator) AppID() string { return s.appID }

func (s *Simulator) DeviceID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", tag(ErrSDK, err)
	}
	return s.deviceID, nil
}

func (s *Simulator) SetAuthentication(creds Credentials) {
	s.mu.Lock()
	s.creds = creds
	s.mu.Unlock()
}

// VerifyOTP asks for the email and the one-time password. On success the
// device token becomes the user token.
func (s *Simulator) VerifyOTP(ctx context.Context, otpToken string, r ChallengeResponder) (string, error) {
	if otpToken == "" {
		return "", tag(ErrSDK, errors.New("missing otp token"))
	}
	s.mu.Lock()
	token := s.creds.UserToken
	s.mu.Unlock()
	if token == "" {
		return "", tag(ErrSDK, errors.New("device is not authenticated"))
	}

	email, err := ask(ctx, r, ChallengeEmail)
	if err != nil {
		return "", err
	}
	if !strings.Contains(email, "@") {
		return "", tag(ErrChallengeFailed, errors.Errorf("invalid email %q", email))
	}
	if _, err := ask(ctx, r, ChallengeOTP); err != nil {
		return "", err
	}
	return token, nil
}

// Execute asks for a PIN of at least six digits.
func (s *Simulator) Execute(ctx context.Context, challengeID string, r ChallengeResponder) error {
	if challengeID == "" {
		return tag(ErrSDK, errors.New("missing challenge id"))
	}
	pin, err := ask(ctx, r, ChallengePIN)
	if err != nil {
		return err
	}
	if len(pin) < 6 || strings.IndexFunc(pin, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		return tag(ErrChallengeFailed, errors.New("pin must be at least six digits"))
	}
	return nil
}

// UserStatus cannot resolve user ids offline; it only checks that a token is
// present.
func (s *Simulator) UserStatus(ctx context.Context, userToken string) (UserStatus, error) {
	if err := ctx.Err(); err != nil {
		return UserStatus{}, tag(ErrSDK, err)
	}
	if userToken == "" {
		return UserStatus{}, ErrAuthRequired
	}
	return UserStatus{Status: "ENABLED"}, nil
}
