package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	assert.ErrorIs(t, Validation("Invalid category"), ErrValidation)
	assert.ErrorIs(t, NotFound("order not found"), ErrNotFound)
	assert.ErrorIs(t, Conflict("cannot modify a completed order"), ErrConflict)
	assert.NotErrorIs(t, Conflict("x"), ErrNotFound)
}

func TestDatabase_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Database(cause)

	assert.ErrorIs(t, err, ErrDatabase)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "db error", Message(err))
	assert.Nil(t, Database(nil))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "price must be > 0", Message(Validation("price must be > 0")))

	wrapped := fmt.Errorf("create product: %w", NotFound("product not found"))
	assert.Equal(t, "product not found", Message(wrapped))
	assert.ErrorIs(t, wrapped, ErrNotFound)

	assert.Equal(t, "internal error", Message(errors.New("boom")))
}
