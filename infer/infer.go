// Package infer guesses schema types from example values.
package infer

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/siegeai/uimeta/apispec"
)

const (
	// TypeBetweenDateTime marks date range filters, a convention of the
	// source API where such fields are named with a _between suffix.
	TypeBetweenDateTime = "betweenDateTime"
	BetweenSuffix       = "_between"

	typeNull = "null"
)

// FromExample builds a schema carrying the type of an example value. Only
// the top level is described; callers never look past the type. A nil example
// yields nil.
func FromExample(v any) *openapi3.Schema {
	switch apispec.KindOf(v) {
	case apispec.KindBool:
		return openapi3.NewBoolSchema()
	case apispec.KindInt:
		return openapi3.NewIntegerSchema()
	case apispec.KindFloat:
		return openapi3.NewFloat64Schema()
	case apispec.KindString:
		return openapi3.NewStringSchema()
	case apispec.KindList:
		return openapi3.NewArraySchema()
	case apispec.KindMap:
		return openapi3.NewObjectSchema()
	}
	return nil
}

// SchemaType returns the declared type of schema, or a type inferred from
// example when none is declared: boolean, integer, number, array, object and
// finally string.
func SchemaType(schema *apispec.Map, example any) string {
	switch t := schema.Value("type").(type) {
	case string:
		return t
	case []any:
		// 3.1 style type lists, e.g. ["string", "null"]
		for _, e := range t {
			if s, ok := e.(string); ok && s != typeNull {
				return s
			}
		}
	}
	if s := FromExample(example); s != nil {
		return s.Type
	}
	return openapi3.TypeString
}

// FilterType guesses the type of one deep object filter key from an example
// value. Only scalar types survive; anything else is edited as a string.
func FilterType(key string, example any) string {
	if strings.HasSuffix(key, BetweenSuffix) {
		return TypeBetweenDateTime
	}
	if s := FromExample(example); s != nil {
		switch s.Type {
		case openapi3.TypeBoolean, openapi3.TypeInteger, openapi3.TypeNumber:
			return s.Type
		}
	}
	return openapi3.TypeString
}
