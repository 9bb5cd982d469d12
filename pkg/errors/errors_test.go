package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	clone := Clone(ErrNotaLimit, "remaining allowance is 1.5")

	assert.Equal(t, "remaining allowance is 1.5", clone.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, clone.Status)
	assert.True(t, errors.Is(clone, ErrNotaLimit))
	assert.False(t, errors.Is(clone, ErrValidation))
	assert.Equal(t, "grade exceeds the maximum total", ErrNotaLimit.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	plain := fmt.Errorf("boom")
	appErr := FromError(plain)

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, plain)
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("context: %w", Clone(ErrForbidden, "nope"))
	assert.Equal(t, ErrForbidden.Code, FromError(wrapped).Code)
}
