package uifield

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/siegeai/uimeta/apispec"
	"github.com/siegeai/uimeta/infer"
	"github.com/siegeai/uimeta/naming"
)

const (
	ContentTypeJSON      = "application/json"
	ContentTypeMultipart = "multipart/form-data"
	ContentTypeForm      = "application/x-www-form-urlencoded"

	// itemName names the synthetic field describing an array element, and
	// the single field wrapping a non-object body.
	itemName     = "value"
	binaryFormat = "binary"
)

var preferredContentTypes = []string{ContentTypeJSON, ContentTypeMultipart, ContentTypeForm}

// SchemaResolver is what the builder needs from the reference resolver.
type SchemaResolver interface {
	ResolveValue(v any) (any, error)
	ResolveSchema(schema any) (*apispec.Map, error)
}

type Builder struct {
	resolver SchemaResolver
}

func NewBuilder(resolver SchemaResolver) *Builder {
	return &Builder{resolver: resolver}
}

// Body is the form description of an operation's request body.
type Body struct {
	ContentType    string  `json:"contentType"`
	BinaryProperty *string `json:"binaryProperty"`
	RequiredFields []Field `json:"requiredFields"`
	OptionalFields []Field `json:"optionalFields"`
}

// Build turns one schema into a field named name. parentPath is the access
// path of the enclosing field, empty at the body root.
func (b *Builder) Build(name string, schema any, required bool, parentPath string) (Field, error) {
	resolved, err := b.resolver.ResolveSchema(schema)
	if err != nil {
		return nil, err
	}

	apiPath := name
	if parentPath != "" {
		apiPath = parentPath + "." + name
	}
	base := Base{
		APIKey:      name,
		APIPath:     apiPath,
		Label:       naming.Humanize(name),
		Description: naming.NormalizeSpace(resolved.String("description")),
		Required:    required,
		Nullable:    resolved.Bool("nullable"),
	}

	schemaType := infer.SchemaType(resolved, resolved.Value("example"))
	if strings.HasSuffix(name, infer.BetweenSuffix) {
		return newPrimitive(base, infer.TypeBetweenDateTime, resolved), nil
	}

	if schemaType == openapi3.TypeObject || resolved.Map("properties") != nil {
		return b.buildObject(base, resolved)
	}

	if schemaType == openapi3.TypeArray {
		base.FieldKind = KindArray
		item, err := b.Build(itemName, resolved.Map("items"), true, apiPath+"[]")
		if err != nil {
			return nil, err
		}
		return &Array{Base: base, ItemField: item}, nil
	}

	return newPrimitive(base, schemaType, resolved), nil
}

func (b *Builder) buildObject(base Base, resolved *apispec.Map) (Field, error) {
	base.FieldKind = KindObject
	required := requiredSet(resolved)
	children := make([]Field, 0)

	props := resolved.Map("properties")
	for _, name := range props.Keys() {
		child, ok := props.Value(name).(*apispec.Map)
		if !ok {
			continue
		}
		f, err := b.Build(name, child, required[name], base.APIPath)
		if err != nil {
			return nil, err
		}
		children = append(children, f)
	}

	return &Object{Base: base, Children: children}, nil
}

func newPrimitive(base Base, schemaType string, resolved *apispec.Map) *Primitive {
	base.FieldKind = KindPrimitive
	return &Primitive{
		Base:       base,
		SchemaType: schemaType,
		Format:     stringOrNil(resolved.Value("format")),
		EnumValues: EnumValues(resolved),
		Example:    resolved.Value("example"),
		Default:    resolved.Value("default"),
	}
}

// BuildBody describes the request body of operation, or returns nil when the
// operation has none.
func (b *Builder) BuildBody(operation *apispec.Map) (*Body, error) {
	rb, err := b.resolver.ResolveValue(operation.Value("requestBody"))
	if err != nil {
		return nil, err
	}
	requestBody, ok := rb.(*apispec.Map)
	if !ok {
		return nil, nil
	}

	content := requestBody.Map("content")
	if content.Len() == 0 {
		return nil, nil
	}
	contentType := pickContentType(content)
	mediaType := content.Map(contentType)
	if mediaType == nil {
		return nil, nil
	}

	schema, err := b.resolver.ResolveSchema(mediaType.Value("schema"))
	if err != nil {
		return nil, err
	}
	if schema.Len() == 0 {
		return nil, nil
	}

	body := &Body{
		ContentType:    contentType,
		RequiredFields: make([]Field, 0),
		OptionalFields: make([]Field, 0),
	}

	if props := schema.Map("properties"); props != nil {
		required := requiredSet(schema)
		for _, name := range props.Keys() {
			child, ok := props.Value(name).(*apispec.Map)
			if !ok {
				continue
			}
			f, err := b.Build(name, child, required[name], "")
			if err != nil {
				return nil, err
			}
			if required[name] {
				body.RequiredFields = append(body.RequiredFields, f)
			} else {
				body.OptionalFields = append(body.OptionalFields, f)
			}
		}
	} else {
		f, err := b.Build(itemName, schema, true, "")
		if err != nil {
			return nil, err
		}
		body.RequiredFields = append(body.RequiredFields, f)
	}

	if contentType == ContentTypeMultipart {
		body.BinaryProperty = binaryProperty(body)
	}
	return body, nil
}

func pickContentType(content *apispec.Map) string {
	for _, ct := range preferredContentTypes {
		if content.Has(ct) {
			return ct
		}
	}
	return content.Keys()[0]
}

// binaryProperty finds the first top level primitive field holding a file.
func binaryProperty(body *Body) *string {
	fields := append(append([]Field(nil), body.RequiredFields...), body.OptionalFields...)
	for _, f := range fields {
		if f.Kind() != KindPrimitive {
			continue
		}
		p := f.AsPrimitive()
		if p.Format != nil && *p.Format == binaryFormat {
			key := p.APIKey
			return &key
		}
	}
	return nil
}

func requiredSet(schema *apispec.Map) map[string]bool {
	names := schema.List("required")
	res := make(map[string]bool, len(names))
	for _, n := range names {
		res[apispec.Stringify(n)] = true
	}
	return res
}

// EnumValues renders the enum of schema as strings; it is never nil.
func EnumValues(schema *apispec.Map) []string {
	vs := schema.List("enum")
	res := make([]string, 0, len(vs))
	for _, v := range vs {
		res = append(res, apispec.Stringify(v))
	}
	return res
}

func stringOrNil(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
