package wallet

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrConfig marks missing external configuration, such as an OAuth
	// client id.
	ErrConfig = errors.New("configuration error")
	// ErrNetwork marks transport failures and non-2xx application server
	// responses.
	ErrNetwork = errors.New("network error")
	// ErrSDK marks failures reported by the custodial wallet SDK.
	ErrSDK = errors.New("wallet sdk error")
	// ErrAuthRequired is returned when an operation needs a user token and
	// none is held.
	ErrAuthRequired = errors.New("user authentication required")
	// ErrChallengeFailed is returned when a verification challenge is
	// rejected.
	ErrChallengeFailed = errors.New("challenge failed")
	// ErrUserCancelled is returned when the user declines a challenge or
	// abandons an OAuth login.
	ErrUserCancelled = errors.New("cancelled by user")
	ErrUserIDRequired = errors.New("user id required")
	ErrNoWallet       = errors.New("no wallet available")
)

// Kind names an error class for display.
type Kind string

const (
	KindNone            Kind = ""
	KindConfig          Kind = "ConfigError"
	KindNetwork         Kind = "NetworkError"
	KindSDK             Kind = "SdkError"
	KindAuthRequired    Kind = "AuthRequired"
	KindChallengeFailed Kind = "ChallengeFailed"
	KindUserCancelled   Kind = "UserCancelled"
	KindInvalidInput    Kind = "InvalidInput"
	KindUnknown         Kind = "Unknown"
)

// KindOf classifies err into one of the wallet error kinds.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrConfig):
		return KindConfig
	case errors.Is(err, ErrUserCancelled):
		return KindUserCancelled
	case errors.Is(err, ErrChallengeFailed):
		return KindChallengeFailed
	case errors.Is(err, ErrAuthRequired):
		return KindAuthRequired
	case errors.Is(err, ErrSDK):
		return KindSDK
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrUserIDRequired), errors.Is(err, ErrNoWallet), errors.Is(err, ErrInvalidAmount):
		return KindInvalidInput
	default:
		return KindUnknown
	}
}

// tagged attaches a sentinel class to an underlying error while keeping the
// underlying message.
type tagged struct {
	kind error
	err  error
}

func (t *tagged) Error() string   { return t.err.Error() }
func (t *tagged) Unwrap() []error { return []error{t.kind, t.err} }

func tag(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return &tagged{kind: kind, err: err}
}

// APIError is a non-2xx response from the application server.
type APIError struct {
	StatusCode int            `json:"-"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap classifies every API error as a network error.
func (e *APIError) Unwrap() error { return ErrNetwork }

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.Code == "not_found"
}

func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.Code == "unauthorized"
}

// parseError decodes an error body from the application server. Both the
// nested {"error":{...}} and flat {"code","message"} shapes are accepted, as
// is FastAPI's {"detail": "..."}.
func parseError(statusCode int, body []byte) error {
	var nested struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details,omitempty"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Code != "" {
		return &APIError{
			StatusCode: statusCode,
			Code:       nested.Error.Code,
			Message:    nested.Error.Message,
			Details:    nested.Error.Details,
		}
	}

	var flat struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Detail  string         `json:"detail"`
		Details map[string]any `json:"details,omitempty"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && (flat.Message != "" || flat.Detail != "") {
		msg := flat.Message
		if msg == "" {
			msg = flat.Detail
		}
		return &APIError{
			StatusCode: statusCode,
			Code:       flat.Code,
			Message:    msg,
			Details:    flat.Details,
		}
	}

	return &APIError{
		StatusCode: statusCode,
		Code:       http.StatusText(statusCode),
		Message:    string(body),
	}
}

// AsAPIError extracts an APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
