// Package merge flattens allOf composition into a single schema.
package merge

import (
	"sort"

	"github.com/siegeai/uimeta/apispec"
)

const (
	keyAllOf      = "allOf"
	keyRequired   = "required"
	keyProperties = "properties"
)

// Normalizer turns one composed member into a resolved schema.
type Normalizer func(member any) (*apispec.Map, error)

// AllOf normalizes each member and folds them left to right. Scalar keys are
// last writer wins, required names are unioned and properties are unioned with
// later members overriding earlier ones.
func AllOf(members []any, normalize Normalizer) (*apispec.Map, error) {
	merged := apispec.NewMap()
	var required []string
	properties := apispec.NewMap()

	for _, member := range members {
		schema, err := normalize(member)
		if err != nil {
			return nil, err
		}
		if schema.Len() == 0 {
			continue
		}
		schema.Range(func(key string, v any) bool {
			if vs, ok := v.([]any); ok && key == keyRequired {
				required = append(required, requiredNames(vs)...)
			} else if vm, ok := v.(*apispec.Map); ok && key == keyProperties {
				Properties(properties, vm)
			} else {
				merged.Set(key, v)
			}
			return true
		})
	}

	if len(required) > 0 {
		merged.Set(keyRequired, toList(Required(nil, required)))
	}
	if properties.Len() > 0 {
		merged.Set(keyProperties, properties)
	}
	return merged, nil
}

// Overlay applies the keys declared next to an allOf list on top of the merged
// members. The overlay wins on scalar keys; required and properties are unioned.
func Overlay(base, overlay *apispec.Map) *apispec.Map {
	overlay.Range(func(key string, v any) bool {
		if key == keyAllOf {
			return true
		}
		if vs, ok := v.([]any); ok && key == keyRequired {
			existing := requiredNames(base.List(keyRequired))
			base.Set(keyRequired, toList(Required(existing, requiredNames(vs))))
		} else if vm, ok := v.(*apispec.Map); ok && key == keyProperties {
			properties := base.Map(keyProperties)
			if properties == nil {
				properties = apispec.NewMap()
				base.Set(keyProperties, properties)
			}
			Properties(properties, vm)
		} else {
			base.Set(key, v)
		}
		return true
	})
	return base
}

// Required returns the sorted union of two required lists.
func Required(a, b []string) []string {
	keep := make(map[string]struct{}, len(a)+len(b))
	for _, r := range a {
		keep[r] = struct{}{}
	}
	for _, r := range b {
		keep[r] = struct{}{}
	}

	res := make([]string, 0, len(keep))
	for k := range keep {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// Properties copies every entry of src into dst, overriding on collision.
func Properties(dst, src *apispec.Map) {
	src.Range(func(key string, v any) bool {
		dst.Set(key, v)
		return true
	})
}

func requiredNames(vs []any) []string {
	res := make([]string, 0, len(vs))
	for _, v := range vs {
		res = append(res, apispec.Stringify(v))
	}
	return res
}

func toList(ss []string) []any {
	res := make([]any, len(ss))
	for i, s := range ss {
		res[i] = s
	}
	return res
}
