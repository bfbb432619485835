package schema

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindMatching(t *testing.T) {
	err := newError(KindDuplicateAttributeName, "attribute %q already exists", "v")

	assert.Equal(t, KindDuplicateAttributeName, KindOf(err))
	assert.True(t, IsKind(err, KindDuplicateAttributeName))
	assert.False(t, IsKind(err, KindMissingDomain))
	assert.Contains(t, err.Error(), `"v"`)
}

func TestErrorKindMatchesThroughWrapping(t *testing.T) {
	inner := newError(KindInvalidDimension, "bad bounds")
	wrapped := fmt.Errorf("building schema: %w", inner)

	assert.True(t, IsKind(wrapped, KindInvalidDimension))
	assert.Equal(t, KindInvalidDimension, KindOf(wrapped))
}

func TestEngineErrorPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := wrapEngineError("create arrays/x", cause)

	assert.True(t, IsKind(err, KindEngine))
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "create arrays/x")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}
