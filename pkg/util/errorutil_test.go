package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindConflict:        http.StatusBadRequest,
		KindAuthFailed:      http.StatusBadRequest,
		KindNotFound:        http.StatusNotFound,
		KindUnauthenticated: http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusFor(kind), "kind %d", kind)
	}
}

func TestLegacyStatusFromMessage(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, LegacyStatusFromMessage("User Not Found"))
	assert.Equal(t, http.StatusForbidden, LegacyStatusFromMessage("you don't have permission"))
	assert.Equal(t, http.StatusBadRequest, LegacyStatusFromMessage("Email already exists"))

	assert.Equal(t, http.StatusNotFound, ToDomainError(NewLegacy("User not found")).HTTPStatus())
}

func TestConstructorsCarryKind(t *testing.T) {
	assert.True(t, Is(NewPermissionDenied(), KindForbidden))
	assert.Equal(t, MsgNoPermission, NewPermissionDenied().Error())
	assert.Equal(t, "User not found", NewNotFound("User", nil).Error())
	assert.Equal(t, MsgBadCredentials, NewAuthFailed().Error())
	assert.False(t, Is(errors.New("plain"), KindForbidden))
}

func TestToDomainErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("update: %w", NewConflict(MsgEmailExists, nil))
	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, KindConflict, de.Kind)
	assert.Equal(t, "CONFLICT", de.Code)
}

func TestToDomainErrorFromFiberError(t *testing.T) {
	de := ToDomainError(fiber.NewError(http.StatusMethodNotAllowed, "Method Not Allowed"))
	assert.Equal(t, http.StatusMethodNotAllowed, de.HTTPStatus())

	de = ToDomainError(fiber.ErrNotFound)
	assert.Equal(t, KindNotFound, de.Kind)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus())
}

func TestToDomainErrorHidesInternalCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	de := ToDomainError(cause)
	assert.Equal(t, KindInternal, de.Kind)
	assert.Equal(t, MsgInternal, de.Message)
	assert.ErrorIs(t, de, cause)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus())

	assert.Nil(t, ToDomainError(nil))
}
