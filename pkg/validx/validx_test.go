package validx

import (
	"testing"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUp struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Provider string `json:"provider" validate:"required"`
	Password string `json:"password" validate:"required_if=Provider email"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(&signUp{Email: "nope", Provider: "email"})
	require.Error(t, err)

	assert.True(t, errx.IsType(err, errx.TypeValidation))
	e := errx.From(err)
	fields, ok := e.Details["fields"].([]FieldError)
	require.True(t, ok)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	assert.ElementsMatch(t, []string{"name", "email", "password"}, names)
}

func TestStruct_SocialProviderNeedsNoPassword(t *testing.T) {
	err := Struct(&signUp{Name: "Bob", Email: "bob@example.com", Provider: "google"})
	assert.NoError(t, err)
}
