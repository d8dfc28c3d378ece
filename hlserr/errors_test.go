package hlserr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := New(NoNetwork, "no network connectivity", cause)
	assert.Contains(t, err.Error(), "NO_NETWORK")
	assert.Contains(t, err.Error(), "no network connectivity")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := New(InvalidConfig, "maxThreads must be positive", nil)
	assert.Equal(t, "INVALID_CONFIG: maxThreads must be positive", err.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := New(BuildFailed, "concat failed", cause)
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestIs(t *testing.T) {
	err := New(VariantNotFound, "no match", nil)
	assert.True(t, Is(err, VariantNotFound))
	assert.False(t, Is(err, VariantAmbiguous))
	assert.False(t, Is(errors.New("plain"), VariantNotFound))
}

func TestWithFields(t *testing.T) {
	err := WithFields(SegmentFetchFailed, "segment 3 exhausted retries", nil,
		map[string]any{"index": 3, "uri": "http://example.com/seg3.ts"})
	require.NotNil(t, err.Fields)
	assert.Equal(t, 3, err.Fields["index"])
}
