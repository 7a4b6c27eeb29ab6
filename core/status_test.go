package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOK(t *testing.T) {
	s := OK()
	assert.True(t, s.IsOK())
	assert.Equal(t, "SUCCEEDED", s.Code.String())
}

func TestStatusFromGenericError(t *testing.T) {
	s := StatusFromError(errors.New("boom"))
	assert.Equal(t, EXECUTION_ERROR, s.Code)
	assert.Contains(t, s.Error(), "boom")
}

func TestStatusFromNilError(t *testing.T) {
	s := StatusFromError(nil)
	assert.True(t, s.IsOK())
}

func TestCodeRetryable(t *testing.T) {
	assert.True(t, LEADER_CHANGED.Retryable())
	assert.False(t, SEMANTIC_ERROR.Retryable())
}
