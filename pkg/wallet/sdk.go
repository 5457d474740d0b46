package wallet

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// ChallengeKind names the value a verification challenge asks for.
type ChallengeKind string

const (
	ChallengeEmail ChallengeKind = "EMAIL"
	ChallengeOTP   ChallengeKind = "OTP"
	ChallengePIN   ChallengeKind = "PIN"
)

// Prompt is the human-readable question for the challenge kind.
func (k ChallengeKind) Prompt() string {
	switch k {
	case ChallengeEmail:
		return "Enter your email"
	case ChallengeOTP:
		return "Enter the OTP sent to your email"
	default:
		return "Enter your " + string(k)
	}
}

// ChallengeResponder supplies answers to SDK verification challenges. An
// empty answer means the user declined.
type ChallengeResponder interface {
	Answer(ctx context.Context, kind ChallengeKind) (string, error)
}

// ResponderFunc adapts a function to ChallengeResponder.
type ResponderFunc func(ctx context.Context, kind ChallengeKind) (string, error)

func (f ResponderFunc) Answer(ctx context.Context, kind ChallengeKind) (string, error) {
	return f(ctx, kind)
}

// StaticResponder answers every challenge kind from a fixed map.
type StaticResponder map[ChallengeKind]string

func (r StaticResponder) Answer(_ context.Context, kind ChallengeKind) (string, error) {
	return r[kind], nil
}

// Credentials authenticate SDK calls on behalf of a user.
type Credentials struct {
	UserToken     string
	EncryptionKey string
}

// UserStatus is the SDK's view of the authenticated user.
type UserStatus struct {
	ID     string
	Status string
}

// SDK is the custodial wallet SDK surface the Client consumes.
type SDK interface {
	DeviceID(ctx context.Context) (string, error)
	SetAuthentication(creds Credentials)
	// VerifyOTP runs the email one-time-password flow and returns the
	// resulting user token.
	VerifyOTP(ctx context.Context, otpToken string, r ChallengeResponder) (string, error)
	// Execute completes a server-issued challenge such as a PIN
	// confirmation.
	Execute(ctx context.Context, challengeID string, r ChallengeResponder) error
	UserStatus(ctx context.Context, userToken string) (UserStatus, error)
}

// SDKFactory binds an SDK to an application id.
type SDKFactory func(appID string) SDK

// ask obtains one challenge answer, mapping an empty answer to
// ErrUserCancelled and responder failures to ErrChallengeFailed.
func ask(ctx context.Context, r ChallengeResponder, kind ChallengeKind) (string, error) {
	if r == nil {
		return "", tag(ErrConfig, errors.New("no challenge responder configured"))
	}
	answer, err := r.Answer(ctx, kind)
	if err != nil {
		if errors.Is(err, ErrUserCancelled) || errors.Is(err, context.Canceled) {
			return "", tag(ErrUserCancelled, errors.Wrapf(err, "%s challenge", kind))
		}
		return "", tag(ErrChallengeFailed, errors.Wrapf(err, "%s challenge", kind))
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", tag(ErrUserCancelled, errors.Errorf("%s challenge declined", kind))
	}
	return answer, nil
}
