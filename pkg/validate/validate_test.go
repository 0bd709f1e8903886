package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required,nospace"`
	Phone string `json:"phone" validate:"required,phone8"`
	Note  string `json:"note" validate:"notblank"`
}

var sampleMessages = Messages{
	"name.required":  "Username is required",
	"name.nospace":   "Username cannot contain spaces",
	"phone.phone8":   "Contact number must be exactly 8 digits",
	"phone.required": "Contact number is required",
}

func TestStruct(t *testing.T) {
	fields, err := Struct(sample{Name: "jo", Phone: "91234567", Note: "hi"}, sampleMessages)
	require.NoError(t, err)
	assert.Nil(t, fields)

	fields, err = Struct(sample{Name: "j o", Phone: "123", Note: "  "}, sampleMessages)
	require.NoError(t, err)
	assert.Equal(t, "Username cannot contain spaces", fields["name"])
	assert.Equal(t, "Contact number must be exactly 8 digits", fields["phone"])
	assert.Equal(t, "note is invalid", fields["note"])

	fields, err = Struct(sample{Note: "x"}, sampleMessages)
	require.NoError(t, err)
	assert.Equal(t, "Username is required", fields["name"])
	assert.Equal(t, "Contact number is required", fields["phone"])
}

func TestStruct_NotAStruct(t *testing.T) {
	_, err := Struct(42, nil)
	assert.Error(t, err)
}
