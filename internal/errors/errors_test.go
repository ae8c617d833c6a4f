package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := NewAdapterError("torrentio", cause)

	assert.Equal(t, "ADAPTER_FAILED: adapter torrentio failed (caused by: dial tcp: refused)", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsType(fmt.Errorf("outer: %w", err), ErrorTypeAdapterFailed))
	assert.False(t, IsType(cause, ErrorTypeAdapterFailed))
}

func TestErrNoSourcesAvailableMatchesByType(t *testing.T) {
	err := fmt.Errorf("aggregate: %w", NewStreamError(ErrorTypeNoSourcesAvailable, "all 3 adapters failed", nil))
	assert.True(t, stderrors.Is(err, ErrNoSourcesAvailable))
	assert.False(t, stderrors.Is(NewTimeoutError("x"), ErrNoSourcesAvailable))
}
