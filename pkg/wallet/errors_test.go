package wallet

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	err := parseError(http.StatusNotFound, []byte(`{"error":{"code":"not_found","message":"user not found"}}`))
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "not_found: user not found", apiErr.Error())

	err = parseError(http.StatusUnauthorized, []byte(`{"code":"unauthorized","message":"bad token"}`))
	apiErr, ok = AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsUnauthorized())

	err = parseError(http.StatusBadGateway, []byte(`{"detail":"upstream said no"}`))
	apiErr, _ = AsAPIError(err)
	assert.Equal(t, "upstream said no", apiErr.Message)

	err = parseError(http.StatusInternalServerError, []byte("boom"))
	apiErr, _ = AsAPIError(err)
	assert.Equal(t, "Internal Server Error", apiErr.Code)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestAPIErrorIsNetwork(t *testing.T) {
	err := errors.Wrap(parseError(http.StatusNotFound, nil), "get user token")
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{tag(ErrConfig, errors.New("x")), KindConfig},
		{errors.Wrap(ErrAuthRequired, "init"), KindAuthRequired},
		{tag(ErrUserCancelled, errors.New("declined")), KindUserCancelled},
		{tag(ErrChallengeFailed, errors.New("bad pin")), KindChallengeFailed},
		{tag(ErrSDK, errors.New("sdk")), KindSDK},
		{ErrNoWallet, KindInvalidInput},
		{errors.New("other"), KindUnknown},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, KindOf(tc.err))
	}
}

func TestTagKeepsMessage(t *testing.T) {
	err := tag(ErrNetwork, errors.New("dial tcp: refused"))
	assert.Equal(t, "dial tcp: refused", err.Error())
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Nil(t, tag(ErrNetwork, nil))
}
