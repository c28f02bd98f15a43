package infer

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/siegeai/uimeta/apispec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) any {
	v, err := apispec.ParseJSONBytes([]byte(src))
	require.Nil(t, err)
	return v
}

func TestFromExampleScalars(t *testing.T) {
	assert.Equal(t, openapi3.TypeBoolean, FromExample(true).Type)
	assert.Equal(t, openapi3.TypeInteger, FromExample(int64(3)).Type)
	assert.Equal(t, openapi3.TypeNumber, FromExample(3.5).Type)
	assert.Equal(t, openapi3.TypeString, FromExample("x").Type)
	assert.Nil(t, FromExample(nil))
}

func TestFromExampleCollections(t *testing.T) {
	obj := FromExample(parse(t, `{"id": 1, "tags": ["a"]}`))
	assert.Equal(t, openapi3.TypeObject, obj.Type)
	assert.Empty(t, obj.Properties)

	list := FromExample(parse(t, `[{"id": 1}]`))
	assert.Equal(t, openapi3.TypeArray, list.Type)
	assert.Nil(t, list.Items)

	assert.Equal(t, openapi3.TypeArray, FromExample([]any{}).Type)
}

func TestFromExampleFloat(t *testing.T) {
	assert.Equal(t, openapi3.TypeNumber, FromExample(parse(t, `3.0`)).Type)
	assert.Equal(t, openapi3.TypeInteger, FromExample(parse(t, `3`)).Type)
}

func TestSchemaTypeDeclaredWins(t *testing.T) {
	schema := parse(t, `{"type": "string"}`).(*apispec.Map)
	assert.Equal(t, "string", SchemaType(schema, int64(5)))
}

func TestSchemaTypeTypeList(t *testing.T) {
	schema := parse(t, `{"type": ["null", "integer"]}`).(*apispec.Map)
	assert.Equal(t, "integer", SchemaType(schema, nil))
}

func TestSchemaTypeFallbackOrder(t *testing.T) {
	empty := apispec.NewMap()

	assert.Equal(t, "boolean", SchemaType(empty, false))
	assert.Equal(t, "integer", SchemaType(empty, int64(0)))
	assert.Equal(t, "number", SchemaType(empty, 0.5))
	assert.Equal(t, "array", SchemaType(empty, []any{}))
	assert.Equal(t, "object", SchemaType(empty, apispec.NewMap()))
	assert.Equal(t, "string", SchemaType(empty, "x"))
	assert.Equal(t, "string", SchemaType(empty, nil))
	assert.Equal(t, "string", SchemaType(nil, nil))
}

func TestFilterType(t *testing.T) {
	assert.Equal(t, TypeBetweenDateTime, FilterType("created_between", int64(1)))
	assert.Equal(t, "boolean", FilterType("active", true))
	assert.Equal(t, "integer", FilterType("id", int64(12)))
	assert.Equal(t, "number", FilterType("total", 9.99))
	assert.Equal(t, "string", FilterType("ids", []any{int64(1)}))
	assert.Equal(t, "string", FilterType("name", nil))
}
