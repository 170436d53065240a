package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindMalformedInput:      http.StatusBadRequest,
		KindInvalidSignature:    http.StatusUnauthorized,
		KindUnauthorized:        http.StatusUnauthorized,
		KindNotFound:            http.StatusNotFound,
		KindForbidden:           http.StatusForbidden,
		KindInvalidTier:         http.StatusBadRequest,
		KindQuotaExceeded:       http.StatusRequestEntityTooLarge,
		KindConflict:            http.StatusConflict,
		KindUpstreamUnavailable: http.StatusServiceUnavailable,
		KindTimedOut:            http.StatusGatewayTimeout,
		KindRateLimited:         http.StatusTooManyRequests,
		KindFailed:              http.StatusPaymentRequired,
		KindInternal:            http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus(), kind)
	}
}

func TestKindOfWrapped(t *testing.T) {
	base := TimedOut("confirmation budget elapsed")
	wrapped := fmt.Errorf("confirm: %w", base)

	assert.Equal(t, KindTimedOut, KindOf(wrapped))
	assert.Equal(t, "confirmation budget elapsed", DetailOf(wrapped))
	assert.True(t, errors.Is(wrapped, TimedOut("")))
	assert.False(t, errors.Is(wrapped, Failed("")))
	assert.True(t, KindOf(wrapped).Retryable())
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "boom", DetailOf(err))
	assert.False(t, KindOf(err).Retryable())
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := UpstreamUnavailable("ledger rpc", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "UpstreamUnavailable: ledger rpc is unavailable: dial tcp: refused", err.Error())
}
