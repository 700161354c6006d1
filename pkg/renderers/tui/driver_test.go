package tui

import (
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/stretchr/testify/require"
)

func TestStringValidator(t *testing.T) {
	var validator survey.Validator = stringValidator(validateParamName)

	require.NoError(t, validator("id"))
	require.EqualError(t, validator("a.b"), "name must not contain dots or spaces")
	require.EqualError(t, validator(""), "name is required")
	require.ErrorContains(t, validator(42), "expected string answer")
}
