package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsErrorType_WrappedChain(t *testing.T) {
	nf := NewNotFound("user", "42")
	wrapped := fmt.Errorf("resolve user: %w", nf)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConstraintViolation(wrapped))

	var target *ErrNotFound
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "42", target.ID)
}

func TestConstraintViolation_UnwrapsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := NewConstraintViolation("subscription", "unique pair", cause)

	assert.True(t, IsConstraintViolation(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "subscription violates unique pair")
}

func TestIsErrorType_Nil(t *testing.T) {
	assert.False(t, IsErrorType(nil, ErrorTypeStore))
	assert.False(t, IsInvalidInput(errors.New("plain")))
}
