// Package forms is the validation collaborator for step submissions. Each
// step defines a form struct with validate tags; the journey core only sees
// success or a field-keyed set of messages.
package forms

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a form struct and returns field-keyed error messages, or
// nil when the form is valid.
func Validate(form any) url.Values {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return url.Values{"form": {"is invalid"}}
	}

	messages := url.Values{}
	for _, fieldError := range fieldErrors {
		field := lowerFirst(fieldError.Field())
		messages.Add(field, message(fieldError))
	}
	return messages
}

func message(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fieldError.Param(), " ", ", ")
	case "min":
		return "must be at least " + fieldError.Param()
	case "max":
		return "must be at most " + fieldError.Param()
	default:
		return "is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
