package apperr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		err := Validationf("score %v out of range", 150)
		assert.Equal(t, Validation, KindOf(err))
		assert.Equal(t, "score 150 out of range", Message(err))
	})

	t.Run("wrapped twice keeps kind", func(t *testing.T) {
		err := errors.Wrap(NotFoundf("no student %s", "006547"), "lookup")
		assert.True(t, Is(err, NotFound))
	})

	t.Run("transport hides cause", func(t *testing.T) {
		err := Wrap(errors.New("connection refused"), "begin transaction")
		assert.Equal(t, Transport, KindOf(err))
		assert.Equal(t, "internal failure", Message(err))
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("plain error is transport", func(t *testing.T) {
		assert.Equal(t, Transport, KindOf(errors.New("boom")))
		assert.Nil(t, Wrap(nil, "noop"))
	})
}
