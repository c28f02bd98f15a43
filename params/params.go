// Package params classifies operation parameters into path fields, plain
// query fields and the include, sort and filter query controls.
package params

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/siegeai/uimeta/apispec"
	"github.com/siegeai/uimeta/naming"
)

// SchemaResolver is what the classifiers need from the reference resolver.
type SchemaResolver interface {
	ResolveValue(v any) (any, error)
	ResolveSchema(schema any) (*apispec.Map, error)
}

type PathField struct {
	Name        string `json:"name"`
	APIPath     string `json:"apiPath"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Example     any    `json:"example"`
}

const (
	SkipNotMapping = "not a mapping"
	SkipNoName     = "no name"
)

// SkipFunc is told about every parameter Merge leaves out. It may be nil.
type SkipFunc func(reason string)

// Merge returns the resolved parameters of operation. Parameters declared on
// the path item come first unless the operation declares one with the same
// name and location, which then replaces it. Entries that are not mappings or
// have no name are dropped and reported to skip.
func Merge(r SchemaResolver, pathItem, operation *apispec.Map, skip SkipFunc) ([]*apispec.Map, error) {
	if skip == nil {
		skip = func(string) {}
	}
	shared, err := resolveList(r, pathItem.List("parameters"), skip)
	if err != nil {
		return nil, err
	}
	own, err := resolveList(r, operation.List("parameters"), skip)
	if err != nil {
		return nil, err
	}

	overridden := make(map[string]struct{}, len(own))
	for _, p := range own {
		overridden[key(p)] = struct{}{}
	}

	res := make([]*apispec.Map, 0, len(shared)+len(own))
	for _, p := range shared {
		if _, ok := overridden[key(p)]; ok {
			continue
		}
		res = append(res, p)
	}
	return append(res, own...), nil
}

func resolveList(r SchemaResolver, vs []any, skip SkipFunc) ([]*apispec.Map, error) {
	res := make([]*apispec.Map, 0, len(vs))
	for _, v := range vs {
		resolved, err := r.ResolveValue(v)
		if err != nil {
			return nil, err
		}
		m, ok := resolved.(*apispec.Map)
		switch {
		case !ok:
			skip(SkipNotMapping)
		case m.String("name") == "":
			skip(SkipNoName)
		default:
			res = append(res, m)
		}
	}
	return res, nil
}

func key(p *apispec.Map) string {
	return p.String("in") + "\x00" + p.String("name")
}

// BuildPathUI describes the path parameters, sorted by label.
func BuildPathUI(parameters []*apispec.Map) []PathField {
	res := make([]PathField, 0)
	for _, p := range parameters {
		if p.String("in") != openapi3.ParameterInPath {
			continue
		}
		name := p.String("name")
		if name == "" {
			continue
		}
		res = append(res, PathField{
			Name:        name,
			APIPath:     name,
			Label:       naming.Humanize(name),
			Description: naming.NormalizeSpace(p.String("description")),
			Required:    p.Bool("required"),
			Example:     p.Value("example"),
		})
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Label < res[j].Label
	})
	return res
}
