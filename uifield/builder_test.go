package uifield

import (
	"encoding/json"
	"testing"

	"github.com/siegeai/uimeta/apispec"
	"github.com/siegeai/uimeta/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const components = `{
  "components": {
    "schemas": {
      "Address": {
        "type": "object",
        "required": ["city"],
        "properties": {
          "city": {"type": "string"},
          "zip": {"type": "string", "nullable": true}
        }
      }
    },
    "requestBodies": {
      "Upload": {
        "content": {
          "multipart/form-data": {
            "schema": {
              "type": "object",
              "required": ["file"],
              "properties": {
                "title": {"type": "string"},
                "file": {"type": "string", "format": "binary"},
                "thumb": {"type": "string", "format": "binary"}
              }
            }
          }
        }
      }
    }
  }
}`

func newBuilder(t *testing.T) *Builder {
	root, err := apispec.ParseJSONBytes([]byte(components))
	require.Nil(t, err)
	doc, err := apispec.NewDocument(root)
	require.Nil(t, err)
	return NewBuilder(resolve.NewResolver(doc))
}

func parse(t *testing.T, src string) *apispec.Map {
	v, err := apispec.ParseJSONBytes([]byte(src))
	require.Nil(t, err)
	return v.(*apispec.Map)
}

func TestBuildPrimitive(t *testing.T) {
	b := newBuilder(t)

	f, err := b.Build("status", parse(t, `{"type": "string", "format": "slug", "enum": ["new", "done", 3], "example": "new", "default": "done", "description": " The\n status "}`), true, "")
	require.Nil(t, err)
	require.Equal(t, KindPrimitive, f.Kind())

	p := f.AsPrimitive()
	assert.Equal(t, KindPrimitive, p.FieldKind)
	assert.Equal(t, "status", p.APIKey)
	assert.Equal(t, "status", p.APIPath)
	assert.Equal(t, "Status", p.Label)
	assert.Equal(t, "The status", p.Description)
	assert.True(t, p.Required)
	assert.Equal(t, "string", p.SchemaType)
	require.NotNil(t, p.Format)
	assert.Equal(t, "slug", *p.Format)
	assert.Equal(t, []string{"new", "done", "3"}, p.EnumValues)
	assert.Equal(t, "new", p.Example)
	assert.Equal(t, "done", p.Default)
}

func TestBuildPrimitiveInfersTypeFromExample(t *testing.T) {
	b := newBuilder(t)

	f, err := b.Build("count", parse(t, `{"example": 3}`), false, "")
	require.Nil(t, err)
	assert.Equal(t, "integer", f.AsPrimitive().SchemaType)
	assert.Nil(t, f.AsPrimitive().Format)
	assert.Equal(t, []string{}, f.AsPrimitive().EnumValues)
}

func TestBuildBetweenOverridesDeclaredType(t *testing.T) {
	b := newBuilder(t)

	f, err := b.Build("created_between", parse(t, `{"type": "string"}`), false, "")
	require.Nil(t, err)
	require.Equal(t, KindPrimitive, f.Kind())
	assert.Equal(t, "betweenDateTime", f.AsPrimitive().SchemaType)
}

func TestBuildBetweenInsideObject(t *testing.T) {
	b := newBuilder(t)

	f, err := b.Build("filter", parse(t, `{"type": "object", "properties": {"created_between": {"type": "string"}}}`), false, "")
	require.Nil(t, err)

	child := f.AsObject().Children[0]
	assert.Equal(t, "filter.created_between", child.Common().APIPath)
	assert.Equal(t, "betweenDateTime", child.AsPrimitive().SchemaType)
}

func TestBuildArray(t *testing.T) {
	b := newBuilder(t)

	f, err := b.Build("ids", parse(t, `{"type": "array", "items": {"type": "integer"}}`), false, "")
	require.Nil(t, err)
	require.Equal(t, KindArray, f.Kind())

	arr := f.AsArray()
	assert.Equal(t, "ids", arr.APIPath)

	item := arr.ItemField
	require.Equal(t, KindPrimitive, item.Kind())
	assert.Equal(t, "ids[].value", item.Common().APIPath)
	assert.Equal(t, "value", item.Common().APIKey)
	assert.True(t, item.Common().Required)
	assert.Equal(t, "integer", item.AsPrimitive().SchemaType)
}

func TestBuildArrayWithoutItems(t *testing.T) {
	b := newBuilder(t)

	f, err := b.Build("tags", parse(t, `{"type": "array"}`), false, "")
	require.Nil(t, err)
	assert.Equal(t, "string", f.AsArray().ItemField.AsPrimitive().SchemaType)
}

func TestBuildObjectWithReferences(t *testing.T) {
	b := newBuilder(t)

	f, err := b.Build("customer", parse(t, `{
	  "properties": {
	    "name": {"type": "string"},
	    "addresses": {"type": "array", "items": {"$ref": "#/components/schemas/Address"}},
	    "billing": {"$ref": "#/components/schemas/Address", "description": "billing address"}
	  },
	  "required": ["name"]
	}`), true, "order")
	require.Nil(t, err)
	require.Equal(t, KindObject, f.Kind())

	obj := f.AsObject()
	assert.Equal(t, "order.customer", obj.APIPath)
	require.Len(t, obj.Children, 3)

	name := obj.Children[0]
	assert.Equal(t, "order.customer.name", name.Common().APIPath)
	assert.True(t, name.Common().Required)

	addresses := obj.Children[1].AsArray()
	assert.False(t, addresses.Required)
	item := addresses.ItemField.AsObject()
	assert.Equal(t, "order.customer.addresses[].value", item.APIPath)
	assert.Equal(t, "order.customer.addresses[].value.city", item.Children[0].Common().APIPath)
	assert.True(t, item.Children[0].Common().Required)
	assert.True(t, item.Children[1].Common().Nullable)
	assert.False(t, item.Children[1].Common().Required)

	billing := obj.Children[2].AsObject()
	assert.Equal(t, "billing address", billing.Description)
	assert.Len(t, billing.Children, 2)
}

func TestBuildAccessPathsUnique(t *testing.T) {
	b := newBuilder(t)

	f, err := b.Build("root", parse(t, `{
	  "type": "object",
	  "properties": {
	    "a": {"type": "object", "properties": {"b": {"type": "string"}}},
	    "c": {"type": "array", "items": {"type": "array", "items": {"type": "string"}}}
	  }
	}`), true, "")
	require.Nil(t, err)

	seen := map[string]bool{}
	Walk(f, func(field Field) {
		path := field.Common().APIPath
		assert.False(t, seen[path], path)
		seen[path] = true
	})
	assert.True(t, seen["root.a.b"])
	assert.True(t, seen["root.c[].value[].value"])
}

func TestBuildUnresolvableReference(t *testing.T) {
	b := newBuilder(t)

	_, err := b.Build("x", parse(t, `{"$ref": "#/components/schemas/Nope"}`), true, "")
	assert.ErrorIs(t, err, resolve.ErrDanglingReference)
}

func TestBuildBodyNone(t *testing.T) {
	b := newBuilder(t)

	for _, op := range []string{
		`{}`,
		`{"requestBody": "text"}`,
		`{"requestBody": {}}`,
		`{"requestBody": {"content": {}}}`,
		`{"requestBody": {"content": {"application/json": "x"}}}`,
		`{"requestBody": {"content": {"application/json": {}}}}`,
	} {
		body, err := b.BuildBody(parse(t, op))
		assert.Nil(t, err, op)
		assert.Nil(t, body, op)
	}
}

func TestBuildBodySplitsRequired(t *testing.T) {
	b := newBuilder(t)

	body, err := b.BuildBody(parse(t, `{"requestBody": {"content": {
	  "text/plain": {"schema": {"type": "string"}},
	  "application/json": {"schema": {
	    "type": "object",
	    "required": ["title"],
	    "properties": {"title": {"type": "string"}, "notes": {"type": "string"}, "bad": "x"}
	  }}
	}}}`))
	require.Nil(t, err)
	require.NotNil(t, body)

	assert.Equal(t, "application/json", body.ContentType)
	assert.Nil(t, body.BinaryProperty)
	require.Len(t, body.RequiredFields, 1)
	assert.Equal(t, "title", body.RequiredFields[0].Common().APIKey)
	// a malformed property normalizes to an empty schema and is kept
	require.Len(t, body.OptionalFields, 2)
	assert.Equal(t, "notes", body.OptionalFields[0].Common().APIKey)
	assert.Equal(t, "string", body.OptionalFields[1].AsPrimitive().SchemaType)
}

func TestBuildBodyContentTypePriority(t *testing.T) {
	b := newBuilder(t)

	body, err := b.BuildBody(parse(t, `{"requestBody": {"content": {
	  "application/x-www-form-urlencoded": {"schema": {"type": "object", "properties": {"a": {}}}},
	  "multipart/form-data": {"schema": {"type": "object", "properties": {"a": {}}}}
	}}}`))
	require.Nil(t, err)
	assert.Equal(t, "multipart/form-data", body.ContentType)

	body, err = b.BuildBody(parse(t, `{"requestBody": {"content": {
	  "text/csv": {"schema": {"type": "string"}},
	  "text/plain": {"schema": {"type": "string"}}
	}}}`))
	require.Nil(t, err)
	assert.Equal(t, "text/csv", body.ContentType)
}

func TestBuildBodyNonObjectRoot(t *testing.T) {
	b := newBuilder(t)

	body, err := b.BuildBody(parse(t, `{"requestBody": {"content": {"application/json": {"schema": {"type": "array", "items": {"type": "string"}}}}}}`))
	require.Nil(t, err)

	require.Len(t, body.RequiredFields, 1)
	assert.Empty(t, body.OptionalFields)
	f := body.RequiredFields[0]
	assert.Equal(t, KindArray, f.Kind())
	assert.Equal(t, "value", f.Common().APIPath)
	assert.Equal(t, "value[].value", f.AsArray().ItemField.Common().APIPath)
}

func TestBuildBodyMultipartBinary(t *testing.T) {
	b := newBuilder(t)

	body, err := b.BuildBody(parse(t, `{"requestBody": {"$ref": "#/components/requestBodies/Upload"}}`))
	require.Nil(t, err)

	require.NotNil(t, body.BinaryProperty)
	assert.Equal(t, "file", *body.BinaryProperty)
}

func TestBuildBodyMultipartWithoutBinary(t *testing.T) {
	b := newBuilder(t)

	body, err := b.BuildBody(parse(t, `{"requestBody": {"content": {"multipart/form-data": {"schema": {"type": "object", "properties": {"title": {"type": "string"}}}}}}}`))
	require.Nil(t, err)
	assert.Nil(t, body.BinaryProperty)
}

func TestBuildBodyBinaryIgnoredOutsideMultipart(t *testing.T) {
	b := newBuilder(t)

	body, err := b.BuildBody(parse(t, `{"requestBody": {"content": {"application/json": {"schema": {"type": "object", "properties": {"file": {"type": "string", "format": "binary"}}}}}}}`))
	require.Nil(t, err)
	assert.Nil(t, body.BinaryProperty)
}

func TestFieldJSONShape(t *testing.T) {
	b := newBuilder(t)

	f, err := b.Build("ids", parse(t, `{"type": "array", "items": {"type": "integer"}}`), false, "")
	require.Nil(t, err)

	bs, err := json.Marshal(f)
	require.Nil(t, err)
	assert.JSONEq(t, `{
	  "kind": "array", "apiKey": "ids", "apiPath": "ids", "label": "Ids", "description": "",
	  "required": false, "nullable": false,
	  "itemField": {
	    "kind": "primitive", "apiKey": "value", "apiPath": "ids[].value", "label": "Value", "description": "",
	    "required": true, "nullable": false,
	    "schemaType": "integer", "format": null, "enumValues": [], "example": null, "default": null
	  }
	}`, string(bs))
}

func TestFieldKindMismatchPanics(t *testing.T) {
	var f Field = &Primitive{}
	assert.Panics(t, func() { f.AsObject() })
	assert.Panics(t, func() { f.AsArray() })
}
