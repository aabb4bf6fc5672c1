package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawdesk-api/internal/core/domain"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Level int    `json:"level" validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(sample{Name: "Ana"}))

	err := Struct(sample{Email: "nope", Level: -1})
	require.ErrorIs(t, err, domain.ErrValidation)

	e := domain.AsError(err)
	require.NotNil(t, e)

	got := map[string]string{}
	for _, f := range e.Fields {
		got[f.Field] = f.Message
	}
	assert.Equal(t, "is required", got["name"])
	assert.Equal(t, "must be a valid email", got["email"])
	assert.Contains(t, got, "level")
}
