package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOfAndStatus(t *testing.T) {
	tests := []struct {
		err    error
		kind   Kind
		status int
	}{
		{Validation("bad input"), KindValidation, http.StatusBadRequest},
		{Permission("denied"), KindPermission, http.StatusForbidden},
		{NotFound("missing"), KindNotFound, http.StatusNotFound},
		{Conflict("duplicate"), KindConflict, http.StatusConflict},
		{LimitExceeded("full"), KindLimitExceeded, http.StatusUnprocessableEntity},
		{Timeout("slow"), KindTimeout, http.StatusGatewayTimeout},
		{Transport("down"), KindTransport, http.StatusBadGateway},
		{errors.New("plain"), KindUnknown, http.StatusInternalServerError},
		{nil, KindUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		require.Equal(t, tt.kind, KindOf(tt.err))
		require.Equal(t, tt.status, Status(tt.err))
	}
}

func TestWrapKeepsKindThroughChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, KindTransport, "query failed")

	require.True(t, Is(err, KindTransport))
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "query failed")
	require.Contains(t, err.Error(), "connection reset")

	// wrapping with fmt keeps the kind reachable
	outer := fmt.Errorf("handler: %w", err)
	require.True(t, Is(outer, KindTransport))
	require.Equal(t, http.StatusBadGateway, Status(outer))
}

func TestConstructorFormats(t *testing.T) {
	err := NotFound("animal %d not found", 42)
	require.Equal(t, "animal 42 not found", err.Error())
}
