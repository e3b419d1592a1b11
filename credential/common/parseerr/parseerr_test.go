package parseerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("message and kind", func(t *testing.T) {
		err := New(ErrMissingField, "missing required '%s'", "id")

		assert.EqualError(t, err, "missing required 'id'")
		assert.True(t, errors.Is(err, ErrMissingField))
		assert.False(t, errors.Is(err, ErrInvalidShape))
	})

	t.Run("wrapped cause", func(t *testing.T) {
		cause := errors.New("unexpected end of input")
		err := Wrap(ErrMalformedJSON, cause, "invalid JSON format for DID document")

		assert.EqualError(t, err, "invalid JSON format for DID document: unexpected end of input")
		assert.True(t, errors.Is(err, ErrMalformedJSON))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("kind survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("invalid verifiableCredential at index 0: %w", New(ErrMissingField, "missing required 'type'"))

		assert.True(t, errors.Is(err, ErrMissingField))
		assert.Equal(t, ErrMissingField, KindOf(err))
	})

	t.Run("kind of foreign error", func(t *testing.T) {
		assert.Nil(t, KindOf(errors.New("other")))
	})
}
