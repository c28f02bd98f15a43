// Package uifield builds typed form field trees from resolved request body
// schemas.
package uifield

type Kind string

const (
	KindPrimitive Kind = "primitive"
	KindObject    Kind = "object"
	KindArray     Kind = "array"
)

// Field is one node of a body field tree. Use Kind to pick the concrete shape.
type Field interface {
	Kind() Kind
	Common() *Base
	AsPrimitive() *Primitive
	AsObject() *Object
	AsArray() *Array
}

// Base holds what every field kind carries.
type Base struct {
	FieldKind   Kind   `json:"kind"`
	APIKey      string `json:"apiKey"`
	APIPath     string `json:"apiPath"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Nullable    bool   `json:"nullable"`
}

type Primitive struct {
	Base
	SchemaType string   `json:"schemaType"`
	Format     *string  `json:"format"`
	EnumValues []string `json:"enumValues"`
	Example    any      `json:"example"`
	Default    any      `json:"default"`
}

func (p *Primitive) Kind() Kind {
	return KindPrimitive
}

func (p *Primitive) Common() *Base {
	return &p.Base
}

func (p *Primitive) AsPrimitive() *Primitive {
	return p
}

func (p *Primitive) AsObject() *Object {
	panic("primitive is not an object")
}

func (p *Primitive) AsArray() *Array {
	panic("primitive is not an array")
}

type Object struct {
	Base
	Children []Field `json:"children"`
}

func (o *Object) Kind() Kind {
	return KindObject
}

func (o *Object) Common() *Base {
	return &o.Base
}

func (o *Object) AsPrimitive() *Primitive {
	panic("object is not a primitive")
}

func (o *Object) AsObject() *Object {
	return o
}

func (o *Object) AsArray() *Array {
	panic("object is not an array")
}

// Array describes a sequence; ItemField describes one element.
type Array struct {
	Base
	ItemField Field `json:"itemField"`
}

func (a *Array) Kind() Kind {
	return KindArray
}

func (a *Array) Common() *Base {
	return &a.Base
}

func (a *Array) AsPrimitive() *Primitive {
	panic("array is not a primitive")
}

func (a *Array) AsObject() *Object {
	panic("array is not an object")
}

func (a *Array) AsArray() *Array {
	return a
}

// Walk calls fn for f and every field below it, depth first.
func Walk(f Field, fn func(Field)) {
	if f == nil {
		return
	}
	fn(f)
	switch f.Kind() {
	case KindObject:
		for _, c := range f.AsObject().Children {
			Walk(c, fn)
		}
	case KindArray:
		Walk(f.AsArray().ItemField, fn)
	}
}
