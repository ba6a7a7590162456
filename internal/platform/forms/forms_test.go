package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleForm struct {
	Town     string `validate:"required,max=5"`
	Kind     string `validate:"required,oneof=S O"`
	Optional string `validate:"omitempty,min=2"`
}

func TestValidate(t *testing.T) {
	t.Run("valid form returns nil", func(t *testing.T) {
		errs := Validate(sampleForm{Town: "Leeds", Kind: "S"})
		assert.Nil(t, errs)
	})

	t.Run("messages are keyed by lower-cased field name", func(t *testing.T) {
		errs := Validate(sampleForm{Kind: "S"})
		assert.Equal(t, "is required", errs.Get("town"))
	})

	t.Run("oneof lists the options", func(t *testing.T) {
		errs := Validate(sampleForm{Town: "Leeds", Kind: "X"})
		assert.Equal(t, "must be one of S, O", errs.Get("kind"))
	})

	t.Run("max reports the bound", func(t *testing.T) {
		errs := Validate(sampleForm{Town: "Sheffield", Kind: "S"})
		assert.Equal(t, "must be at most 5", errs.Get("town"))
	})

	t.Run("omitempty skips empty optional fields", func(t *testing.T) {
		errs := Validate(sampleForm{Town: "Leeds", Kind: "S", Optional: ""})
		assert.Nil(t, errs)

		errs = Validate(sampleForm{Town: "Leeds", Kind: "S", Optional: "x"})
		assert.Equal(t, "must be at least 2", errs.Get("optional"))
	})

	t.Run("multiple failures are all reported", func(t *testing.T) {
		errs := Validate(sampleForm{})
		assert.Len(t, errs, 2)
	})
}
