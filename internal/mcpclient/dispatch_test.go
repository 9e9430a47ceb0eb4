package mcpclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchUnsupportedMethodReturnsProtocolError(t *testing.T) {
	_, err := dispatch(context.Background(), nil, "prompts/list", nil)
	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
	assert.Contains(t, protoErr.Error(), "prompts/list")
}
