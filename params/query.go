package params

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/siegeai/uimeta/apispec"
	"github.com/siegeai/uimeta/infer"
	"github.com/siegeai/uimeta/naming"
)

const (
	IncludeParameter = "include"
	SortParameter    = "sort"
	FilterParameter  = "filter"
)

type QueryField struct {
	Name        string   `json:"name"`
	APIPath     string   `json:"apiPath"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	SchemaType  string   `json:"schemaType"`
	Format      any      `json:"format"`
	EnumValues  []string `json:"enumValues"`
	Minimum     any      `json:"minimum"`
	Maximum     any      `json:"maximum"`
	Default     any      `json:"default"`
	Example     any      `json:"example"`
}

// ChoiceField is a query parameter picked from a fixed list of options.
type ChoiceField struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Options     []Option `json:"options"`
}

type QueryUI struct {
	Simple  []QueryField  `json:"simple"`
	Include *ChoiceField  `json:"include"`
	Sort    *ChoiceField  `json:"sort"`
	Filters []FilterField `json:"filters"`
}

// BuildQueryUI classifies the query parameters among parameters.
func BuildQueryUI(r SchemaResolver, parameters []*apispec.Map) (*QueryUI, error) {
	ui := &QueryUI{
		Simple:  make([]QueryField, 0),
		Filters: make([]FilterField, 0),
	}

	for _, p := range parameters {
		if p.String("in") != openapi3.ParameterInQuery {
			continue
		}
		name := p.String("name")
		if name == "" {
			continue
		}

		switch {
		case name == IncludeParameter:
			ui.Include = newChoiceField(p, IncludeOptions(p))
		case name == SortParameter:
			ui.Sort = newChoiceField(p, SortOptions(p))
		case name == FilterParameter && p.String("style") == openapi3.SerializationDeepObject:
			filters, err := filterFields(r, p)
			if err != nil {
				return nil, err
			}
			ui.Filters = filters
		default:
			f, err := simpleField(r, p)
			if err != nil {
				return nil, err
			}
			ui.Simple = append(ui.Simple, f)
		}
	}

	sort.SliceStable(ui.Simple, func(i, j int) bool {
		return ui.Simple[i].Label < ui.Simple[j].Label
	})
	return ui, nil
}

func newChoiceField(p *apispec.Map, options []Option) *ChoiceField {
	name := p.String("name")
	return &ChoiceField{
		Name:        name,
		Label:       naming.Humanize(name),
		Description: naming.NormalizeSpace(p.String("description")),
		Options:     options,
	}
}

func simpleField(r SchemaResolver, p *apispec.Map) (QueryField, error) {
	schema, err := r.ResolveSchema(p.Value("schema"))
	if err != nil {
		return QueryField{}, err
	}

	example := schema.Value("example")
	if example == nil {
		example = p.Value("example")
	}

	name := p.String("name")
	return QueryField{
		Name:        name,
		APIPath:     name,
		Label:       naming.Humanize(name),
		Description: naming.NormalizeSpace(p.String("description")),
		Required:    p.Bool("required"),
		SchemaType:  infer.SchemaType(schema, p.Value("example")),
		Format:      schema.Value("format"),
		EnumValues:  enumValues(schema),
		Minimum:     schema.Value("minimum"),
		Maximum:     schema.Value("maximum"),
		Default:     schema.Value("default"),
		Example:     example,
	}, nil
}

// filterFields prefers the keys shown in examples and falls back to the
// declared schema properties.
func filterFields(r SchemaResolver, p *apispec.Map) ([]FilterField, error) {
	if fields := FilterFieldsFromExamples(p); len(fields) > 0 {
		return fields, nil
	}

	schema, err := r.ResolveSchema(p.Value("schema"))
	if err != nil {
		return nil, err
	}

	fields := make(map[string]*FilterField)
	props := schema.Map("properties")
	for _, key := range props.Keys() {
		if _, ok := props.Value(key).(*apispec.Map); !ok {
			continue
		}
		prop, err := r.ResolveSchema(props.Value(key))
		if err != nil {
			return nil, err
		}

		fieldType := infer.SchemaType(prop, prop.Value("example"))
		if strings.HasSuffix(key, infer.BetweenSuffix) {
			fieldType = infer.TypeBetweenDateTime
		}
		fields[key] = &FilterField{
			Name:        key,
			Label:       naming.Humanize(key),
			Description: naming.NormalizeSpace(prop.String("description")),
			FieldType:   fieldType,
			Example:     prop.Value("example"),
		}
	}
	return sortedFilterFields(fields), nil
}

func enumValues(schema *apispec.Map) []string {
	vs := schema.List("enum")
	res := make([]string, 0, len(vs))
	for _, v := range vs {
		res = append(res, apispec.Stringify(v))
	}
	return res
}
