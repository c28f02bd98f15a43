// Package resolve replaces internal $ref pointers with the nodes they point to
// and flattens allOf composition into concrete, reference free schemas.
package resolve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"github.com/siegeai/uimeta/apispec"
	"github.com/siegeai/uimeta/merge"
)

const (
	refKey     = "$ref"
	allOfKey   = "allOf"
	localRoot  = "#"
	localRefPx = "#/"
)

var (
	ErrUnsupportedReference = errors.New("unsupported reference")
	ErrDanglingReference    = errors.New("dangling reference")
	ErrCyclicReference      = errors.New("cyclic reference")
)

// Resolver resolves references against one document. It never modifies the
// document and keeps no state between calls.
type Resolver struct {
	doc *apispec.Document
}

func NewResolver(doc *apispec.Document) *Resolver {
	return &Resolver{doc: doc}
}

// trail lists the pointers being expanded on the current resolution path.
type trail []string

func (t trail) contains(ref string) bool {
	for _, r := range t {
		if r == ref {
			return true
		}
	}
	return false
}

func (t trail) push(ref string) trail {
	next := make(trail, len(t), len(t)+1)
	copy(next, t)
	return append(next, ref)
}

// ResolveRef returns a deep copy of the node ref points to, itself fully
// resolved.
func (r *Resolver) ResolveRef(ref string) (any, error) {
	return r.resolveRef(ref, nil)
}

// ResolveValue returns a copy of v with every $ref replaced by its target.
// Keys written next to a $ref are laid over a mapping target.
func (r *Resolver) ResolveValue(v any) (any, error) {
	return r.resolveValue(v, nil)
}

func (r *Resolver) resolveRef(ref string, t trail) (any, error) {
	if ref != localRoot && !strings.HasPrefix(ref, localRefPx) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedReference, ref)
	}
	if t.contains(ref) {
		chain := append(append([]string(nil), t...), ref)
		return nil, fmt.Errorf("%w: %s", ErrCyclicReference, strings.Join(chain, " -> "))
	}

	target, err := r.lookup(ref)
	if err != nil {
		return nil, err
	}
	return r.resolveValue(apispec.Clone(target), t.push(ref))
}

func (r *Resolver) lookup(ref string) (any, error) {
	p, err := jsonpointer.New(strings.TrimPrefix(ref, localRoot))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnsupportedReference, ref, err)
	}

	var node any = r.doc.Root()
	for _, token := range p.DecodedTokens() {
		switch n := node.(type) {
		case *apispec.Map:
			v, ok := n.Get(token)
			if !ok {
				return nil, fmt.Errorf("%w: %q: no %q", ErrDanglingReference, ref, token)
			}
			node = v
		case []any:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= len(n) {
				return nil, fmt.Errorf("%w: %q: bad index %q", ErrDanglingReference, ref, token)
			}
			node = n[i]
		default:
			return nil, fmt.Errorf("%w: %q: cannot descend into %q", ErrDanglingReference, ref, token)
		}
	}
	return node, nil
}

func (r *Resolver) resolveValue(v any, t trail) (any, error) {
	switch val := v.(type) {
	case *apispec.Map:
		if ref, ok := val.Value(refKey).(string); ok {
			return r.resolveRefSite(ref, val, t)
		}
		out := apispec.NewMap()
		var err error
		val.Range(func(key string, child any) bool {
			var resolved any
			resolved, err = r.resolveValue(child, t)
			if err != nil {
				return false
			}
			out.Set(key, resolved)
			return true
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			resolved, err := r.resolveValue(child, t)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	}
	return v, nil
}

func (r *Resolver) resolveRefSite(ref string, site *apispec.Map, t trail) (any, error) {
	target, err := r.resolveRef(ref, t)
	if err != nil {
		return nil, err
	}

	overlay := apispec.NewMap()
	for _, key := range site.Keys() {
		if key == refKey {
			continue
		}
		resolved, err := r.resolveValue(site.Value(key), t)
		if err != nil {
			return nil, err
		}
		overlay.Set(key, resolved)
	}

	if tm, ok := target.(*apispec.Map); ok {
		merge.Properties(tm, overlay)
		return tm, nil
	}
	if overlay.Len() > 0 {
		return overlay, nil
	}
	return target, nil
}

// ResolveSchema returns the concrete form of schema: references resolved,
// allOf flattened, nested properties and items normalized. Absent, empty or
// non-mapping input yields an empty schema.
func (r *Resolver) ResolveSchema(schema any) (*apispec.Map, error) {
	m, ok := schema.(*apispec.Map)
	if !ok || m.Len() == 0 {
		return apispec.NewMap(), nil
	}

	resolved, err := r.ResolveValue(m)
	if err != nil {
		return nil, err
	}
	rm, ok := resolved.(*apispec.Map)
	if !ok {
		return apispec.NewMap(), nil
	}
	return normalize(rm)
}

// normalize works on a reference free copy owned by the caller.
func normalize(m *apispec.Map) (*apispec.Map, error) {
	if members, ok := m.Value(allOfKey).([]any); ok {
		merged, err := merge.AllOf(members, normalizeMember)
		if err != nil {
			return nil, err
		}
		m = merge.Overlay(merged, m)
	}

	if props := m.Map("properties"); props != nil {
		out := apispec.NewMap()
		for _, name := range props.Keys() {
			child, err := normalizeMember(props.Value(name))
			if err != nil {
				return nil, err
			}
			out.Set(name, child)
		}
		m.Set("properties", out)
	}

	if items := m.Map("items"); items != nil {
		child, err := normalize(items)
		if err != nil {
			return nil, err
		}
		m.Set("items", child)
	}

	return m, nil
}

func normalizeMember(member any) (*apispec.Map, error) {
	m, ok := member.(*apispec.Map)
	if !ok || m.Len() == 0 {
		return apispec.NewMap(), nil
	}
	return normalize(m)
}
