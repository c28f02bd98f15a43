package params

import (
	"sort"
	"strings"

	"github.com/grafana/regexp"
	"github.com/siegeai/uimeta/apispec"
	"github.com/siegeai/uimeta/infer"
	"github.com/siegeai/uimeta/naming"
)

// Option lists are recovered from free text written for humans, so nothing
// here returns an error. Text that does not follow the conventions below just
// yields fewer options.
//
// Grammar:
//
//	backtick span   `token`                     -> token
//	emphasis list   <strong>a, b</strong>       -> a, b (tag name is case insensitive)
//	example split   examples.*.value = "a,b"    -> a, b
//
// Every token is whitespace normalized; empty tokens are dropped.

var (
	backtickSpan = regexp.MustCompile("`([^`]+)`")
	emphasisSpan = regexp.MustCompile(`(?i)<strong>([^<]+)</strong>`)
)

type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type FilterField struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
	FieldType   string `json:"fieldType"`
	Example     any    `json:"example"`
}

// BacktickTokens returns the contents of every backtick span in text.
func BacktickTokens(text string) []string {
	var res []string
	for _, m := range backtickSpan.FindAllStringSubmatch(text, -1) {
		if tok := naming.NormalizeSpace(m[1]); tok != "" {
			res = append(res, tok)
		}
	}
	return res
}

// EmphasisTokens returns the comma separated items of every <strong> span.
func EmphasisTokens(text string) []string {
	var res []string
	for _, m := range emphasisSpan.FindAllStringSubmatch(text, -1) {
		res = append(res, splitList(m[1])...)
	}
	return res
}

// ExampleTokens returns the comma separated items of every string example
// value.
func ExampleTokens(examples *apispec.Map) []string {
	var res []string
	examples.Range(func(_ string, v any) bool {
		if s, ok := exampleValue(v).(string); ok {
			res = append(res, splitList(s)...)
		}
		return true
	})
	return res
}

// IncludeOptions mines the relations an include parameter accepts from its
// description and examples. Order is first seen.
func IncludeOptions(parameter *apispec.Map) []Option {
	description := parameter.String("description")

	var tokens []string
	tokens = append(tokens, BacktickTokens(description)...)
	tokens = append(tokens, EmphasisTokens(description)...)
	tokens = append(tokens, ExampleTokens(parameter.Map("examples"))...)

	values := dedupe(tokens)
	res := make([]Option, 0, len(values))
	for _, v := range values {
		res = append(res, Option{Name: naming.Humanize(v), Value: v})
	}
	return res
}

// SortOptions lists the orderings a sort parameter accepts: one per named
// example, then every schema enum value not already listed.
func SortOptions(parameter *apispec.Map) []Option {
	res := make([]Option, 0)
	seen := make(map[string]struct{})

	parameter.Map("examples").Range(func(key string, v any) bool {
		example, ok := v.(*apispec.Map)
		if !ok {
			return true
		}
		raw, ok := example.Get("value")
		if !ok || raw == nil {
			return true
		}
		value := apispec.Stringify(raw)
		name := example.String("summary")
		if name == "" {
			name = naming.Humanize(value)
		}
		if name == "" {
			name = key
		}
		res = append(res, Option{Name: naming.NormalizeSpace(name), Value: value})
		seen[value] = struct{}{}
		return true
	})

	for _, e := range parameter.Map("schema").List("enum") {
		value := apispec.Stringify(e)
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		res = append(res, Option{Name: naming.Humanize(value), Value: value})
	}
	return res
}

// FilterFieldsFromExamples infers deep object filter keys from the shapes of
// the parameter's named examples. The first example mentioning a key decides
// its type; the first non-empty summary becomes its description.
func FilterFieldsFromExamples(parameter *apispec.Map) []FilterField {
	fields := make(map[string]*FilterField)

	parameter.Map("examples").Range(func(_ string, v any) bool {
		example, ok := v.(*apispec.Map)
		if !ok {
			return true
		}
		value, ok := example.Value("value").(*apispec.Map)
		if !ok {
			return true
		}
		summary := naming.NormalizeSpace(example.String("summary"))
		value.Range(func(key string, fieldExample any) bool {
			if f, ok := fields[key]; ok {
				if f.Description == "" {
					f.Description = summary
				}
				return true
			}
			fields[key] = &FilterField{
				Name:        key,
				Label:       naming.Humanize(key),
				Description: summary,
				FieldType:   infer.FilterType(key, fieldExample),
				Example:     fieldExample,
			}
			return true
		})
		return true
	})

	return sortedFilterFields(fields)
}

func sortedFilterFields(fields map[string]*FilterField) []FilterField {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	res := make([]FilterField, 0, len(names))
	for _, name := range names {
		res = append(res, *fields[name])
	}
	return res
}

func exampleValue(v any) any {
	example, ok := v.(*apispec.Map)
	if !ok {
		return nil
	}
	return example.Value("value")
}

func splitList(s string) []string {
	var res []string
	for _, part := range strings.Split(s, ",") {
		if tok := naming.NormalizeSpace(part); tok != "" {
			res = append(res, tok)
		}
	}
	return res
}

func dedupe(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	res := make([]string, 0, len(ss))
	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		res = append(res, s)
	}
	return res
}
