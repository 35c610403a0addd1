package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		status   int
	}{
		{
			name:     "validation",
			err:      Validation("username is required"),
			sentinel: ErrValidation,
			status:   http.StatusBadRequest,
		},
		{
			name:     "conflict",
			err:      Conflict("user with this username or email already exists"),
			sentinel: ErrConflict,
			status:   http.StatusConflict,
		},
		{
			name:     "not found",
			err:      NotFound("user does not exist"),
			sentinel: ErrNotFound,
			status:   http.StatusNotFound,
		},
		{
			name:     "unauthorized",
			err:      Unauthorized("invalid user credentials"),
			sentinel: ErrUnauthorized,
			status:   http.StatusUnauthorized,
		},
		{
			name:     "internal",
			err:      Internal("something went wrong"),
			sentinel: ErrInternal,
			status:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))

			for _, other := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrUnauthorized, ErrInternal} {
				if other == tt.sentinel {
					continue
				}
				assert.False(t, errors.Is(tt.err, other))
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Unauthorized("refresh token is expired or used")
	assert.Equal(t, "refresh token is expired or used", err.Error())
}

func TestHTTPStatus_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFound("channel does not exist"))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
}

func TestHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("driver: bad connection")))
}
