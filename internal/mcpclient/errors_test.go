package mcpclient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportErrorMessageAndUnwrap(t *testing.T) {
	wrapped := errors.New("connection refused")
	err := &TransportError{Reason: "dial backend", Err: wrapped}

	assert.Contains(t, err.Error(), "dial backend")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, wrapped)
}

func TestTransportErrorWithoutWrappedErr(t *testing.T) {
	err := &TransportError{Reason: "stdio pool exhausted"}
	assert.Equal(t, "transport error: stdio pool exhausted", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestProtocolErrorMessageAndUnwrap(t *testing.T) {
	wrapped := errors.New("unexpected EOF")
	err := &ProtocolError{Reason: "malformed response", Err: wrapped}

	assert.Contains(t, err.Error(), "malformed response")
	assert.ErrorIs(t, err, wrapped)
}

func TestIsDeadConnectionOnlyTrueForTransportErrors(t *testing.T) {
	assert.True(t, isDeadConnection(&TransportError{Reason: "boom"}))
	assert.False(t, isDeadConnection(&ProtocolError{Reason: "boom"}))
	assert.False(t, isDeadConnection(nil))
	assert.False(t, isDeadConnection(errors.New("plain error")))
}

func TestEnvSliceFormatsKeyValuePairs(t *testing.T) {
	out := envSlice(map[string]string{"FOO": "bar"})
	assert.Equal(t, []string{"FOO=bar"}, out)
}

func TestEnvSliceEmptyMapYieldsEmptySlice(t *testing.T) {
	out := envSlice(nil)
	assert.Empty(t, out)
}
