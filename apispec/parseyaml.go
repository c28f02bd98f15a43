package apispec

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	yamlMergeTag = "!!merge"

	// maxYAMLAliases bounds how many alias expansions one document may do.
	maxYAMLAliases = 1 << 16
)

var (
	ErrCyclicAlias    = errors.New("cyclic yaml alias")
	ErrTooManyAliases = errors.New("too many yaml alias expansions")
)

func ParseYAMLBytes(b []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, err
	}
	p := &yamlParser{expanding: make(map[*yaml.Node]bool)}
	return p.node(&root)
}

// yamlParser tracks the anchors being expanded so an alias that points
// back into its own anchor fails instead of recursing forever.
type yamlParser struct {
	expanding map[*yaml.Node]bool
	aliases   int
}

func (p *yamlParser) node(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		// empty input
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return p.node(n.Content[0])
	case yaml.MappingNode:
		return p.mapping(n)
	case yaml.SequenceNode:
		res := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			e, err := p.node(c)
			if err != nil {
				return nil, err
			}
			res = append(res, e)
		}
		return res, nil
	case yaml.ScalarNode:
		return parseYAMLScalar(n)
	case yaml.AliasNode:
		return p.alias(n)
	}
	return nil, fmt.Errorf("unexpected yaml node kind %d at line %d", n.Kind, n.Line)
}

func (p *yamlParser) alias(n *yaml.Node) (any, error) {
	if n.Alias == nil {
		return nil, fmt.Errorf("unknown yaml anchor %q at line %d", n.Value, n.Line)
	}
	if p.expanding[n.Alias] {
		return nil, fmt.Errorf("%w: *%s at line %d", ErrCyclicAlias, n.Value, n.Line)
	}
	p.aliases++
	if p.aliases > maxYAMLAliases {
		return nil, fmt.Errorf("%w: more than %d", ErrTooManyAliases, maxYAMLAliases)
	}

	p.expanding[n.Alias] = true
	defer delete(p.expanding, n.Alias)
	return p.node(n.Alias)
}

func (p *yamlParser) mapping(n *yaml.Node) (*Map, error) {
	m := NewMap()
	var merged []*Map

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if isYAMLMergeKey(k) {
			ms, err := p.mergeSource(v)
			if err != nil {
				return nil, err
			}
			merged = append(merged, ms...)
			continue
		}
		child, err := p.node(v)
		if err != nil {
			return nil, err
		}
		m.Set(k.Value, child)
	}

	// keys written in the mapping itself win over merged ones
	for _, src := range merged {
		src.Range(func(key string, v any) bool {
			if !m.Has(key) {
				m.Set(key, v)
			}
			return true
		})
	}

	return m, nil
}

func isYAMLMergeKey(k *yaml.Node) bool {
	return k.Tag == yamlMergeTag || (k.Kind == yaml.ScalarNode && k.Style == 0 && k.Value == "<<")
}

func (p *yamlParser) mergeSource(v *yaml.Node) ([]*Map, error) {
	parsed, err := p.node(v)
	if err != nil {
		return nil, err
	}
	switch t := parsed.(type) {
	case *Map:
		return []*Map{t}, nil
	case []any:
		res := make([]*Map, 0, len(t))
		for _, e := range t {
			if em, ok := e.(*Map); ok {
				res = append(res, em)
			}
		}
		return res, nil
	}
	return nil, fmt.Errorf("yaml merge key at line %d does not reference a mapping", v.Line)
}

func parseYAMLScalar(n *yaml.Node) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case uint64:
		return Float(t), nil
	case float64:
		return Float(t), nil
	case bool, string, nil:
		return t, nil
	}
	// timestamps and other exotic scalars keep their source text
	return n.Value, nil
}
