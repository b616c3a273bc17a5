package apperr

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOfWrappedError(t *testing.T) {
	cause := errors.New("connection refused")
	err := Db(cause, "failed to list photos")

	wrapped := fmt.Errorf("feed: %w", err)

	assert.Equal(t, KindDb, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindDb))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, "failed to list photos", Message(wrapped))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, KindUnknown, KindOf(err))
	assert.False(t, Is(nil, KindUnknown))
	assert.Equal(t, "an unexpected error occurred", Message(err))
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "ValidationError", KindValidation.String())
	assert.Equal(t, "StorageError", KindStorage.String())
	assert.Equal(t, "DbError", KindDb.String())
	assert.Equal(t, "NotAuthenticatedError", KindNotAuthenticated.String())
	assert.Equal(t, "NotFoundError", KindNotFound.String())
}

func TestValidationHasNoCause(t *testing.T) {
	err := Validationf("latitude %v out of range", 91)

	assert.Equal(t, "latitude 91 out of range", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
