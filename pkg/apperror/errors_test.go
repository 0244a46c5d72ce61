package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAppError(t *testing.T) {
	wrapped := fmt.Errorf("add line: %w", NewUnprocessableError("insufficient stock"))

	appErr := GetAppError(wrapped)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	assert.Equal(t, "insufficient stock", appErr.Message)

	plain := errors.New("connection reset")
	appErr = GetAppError(plain)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.ErrorIs(t, appErr, plain)
	assert.False(t, IsAppError(plain))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("timeout")
	err := Wrap(cause, http.StatusServiceUnavailable, "backend unavailable")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "backend unavailable: timeout", err.Error())
}
