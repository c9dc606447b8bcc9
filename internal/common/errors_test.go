package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := NewUserError("Export failed. Please try again later.", cause)

	assert.Equal(t, "Export failed. Please try again later.: quota exceeded", err.Error())
	assert.True(t, errors.Is(err, cause))

	var userErr *UserError
	require.True(t, errors.As(err, &userErr))
	assert.Equal(t, "Export failed. Please try again later.", userErr.UserMessage)

	// The user message survives further wrapping.
	wrapped := fmt.Errorf("render: %w", err)
	userErr = nil
	require.True(t, errors.As(wrapped, &userErr))
	assert.Equal(t, "Export failed. Please try again later.", userErr.UserMessage)
}

func TestUserErrorWithoutCause(t *testing.T) {
	err := NewUserError("Nothing to export.", nil)
	assert.Equal(t, "Nothing to export.", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
