package journey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextURL(t *testing.T) {
	urls := StepURLs{
		Next:         "/next",
		CheckAnswers: "/check-answers",
		Dependent:    "/dependent",
	}

	tests := []struct {
		name              string
		isCheckingAnswers bool
		changed           bool
		hasDependent      bool
		want              string
	}{
		{"linear mode unchanged", false, false, false, "/next"},
		{"linear mode changed", false, true, false, "/next"},
		{"linear mode changed with dependent", false, true, true, "/next"},
		{"checking unchanged", true, false, false, "/check-answers"},
		{"checking unchanged with dependent", true, false, true, "/check-answers"},
		{"checking changed no dependent", true, true, false, "/check-answers"},
		{"checking changed with dependent", true, true, true, "/dependent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextURL(tt.isCheckingAnswers, tt.changed, tt.hasDependent, urls)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextURLWithoutDependentURL(t *testing.T) {
	urls := StepURLs{Next: "/next", CheckAnswers: "/check-answers"}
	assert.Equal(t, "/check-answers", NextURL(true, true, true, urls))
}
