package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name", "count"],
	"properties": {
		"name":  {"type": "string"},
		"count": {"type": "integer", "minimum": 0}
	}
}`

func TestCompileInvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 42}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateBytesValid(t *testing.T) {
	schema, err := Compile(testSchema)
	require.NoError(t, err)

	assert.NoError(t, ValidateBytes(schema, []byte(`{"name": "a", "count": 3}`)))
}

func TestValidateBytesReportsFieldErrors(t *testing.T) {
	schema, err := Compile(testSchema)
	require.NoError(t, err)

	err = ValidateBytes(schema, []byte(`{"name": 7}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, err.Error(), "name")
}

func TestValidateBytesMalformedDocument(t *testing.T) {
	schema, err := Compile(testSchema)
	require.NoError(t, err)

	err = ValidateBytes(schema, []byte(`{`))
	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}
