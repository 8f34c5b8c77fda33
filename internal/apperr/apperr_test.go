package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpers(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		status int
	}{
		{"bad request", BadRequest("nope"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("nope"), http.StatusUnauthorized},
		{"forbidden", Forbidden("nope"), http.StatusForbidden},
		{"not found", NotFound("nope"), http.StatusNotFound},
		{"custom", New(http.StatusTooManyRequests, "nope"), http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, "nope", tt.err.Error())
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	err := NotFound("Resource not found with id of %d", 7)
	assert.Equal(t, "Resource not found with id of 7", err.Error())
}

func TestErrorSurvivesWrapping(t *testing.T) {
	inner := Forbidden("no entry")
	wrapped := fmt.Errorf("handler: %w", inner)

	var appErr *Error
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, http.StatusForbidden, appErr.Status)
}

func TestFields(t *testing.T) {
	v := Fields{}
	assert.True(t, v.Ok())
	assert.NoError(t, v.Err())

	v.Add("name", "Please add a name")
	v.Add("email", "Please add a valid email")
	assert.False(t, v.Ok())

	err := v.Err()
	require.Error(t, err)

	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	// Field order is alphabetical, so the message is stable.
	assert.Equal(t, "Please add a valid email, Please add a name", appErr.Message)
}
