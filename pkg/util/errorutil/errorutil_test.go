package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorKeepsClassifiedErrors(t *testing.T) {
	wrapped := fmt.Errorf("loading ticket: %w", NewForbidden("access denied"))

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, CodeForbidden, de.Code)
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	assert.True(t, HasCode(wrapped, CodeForbidden))
}

func TestToDomainErrorHidesUnknownErrors(t *testing.T) {
	cause := errors.New("pq: connection reset")

	de := ToDomainError(cause)
	require.NotNil(t, de)
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorIs(t, de, cause)
}

func TestNilStaysNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))
}

func TestNotFoundMessage(t *testing.T) {
	err := NewNotFound("ticket", map[string]any{"ticket_id": int64(7)})
	de := ToDomainError(err)
	assert.Equal(t, "ticket not found", de.Message)
	assert.Equal(t, int64(7), de.Details["ticket_id"])
}
