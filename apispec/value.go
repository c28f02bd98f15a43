package apispec

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind classifies a decoded document value.
type Kind int

const (
	KindNull   Kind = 0
	KindMap    Kind = 1
	KindList   Kind = 2
	KindString Kind = 3
	KindBool   Kind = 4
	KindInt    Kind = 5
	KindFloat  Kind = 6
)

// KindOf reports the kind of a value produced by the decoders in this package.
// Anything the decoders never produce is reported as KindNull.
func KindOf(v any) Kind {
	switch t := v.(type) {
	case *Map:
		if t == nil {
			return KindNull
		}
		return KindMap
	case []any:
		return KindList
	case string:
		return KindString
	case bool:
		return KindBool
	case int64:
		return KindInt
	case Float, float64:
		return KindFloat
	}
	return KindNull
}

// Float is a number that was written with a fraction or an exponent. It
// renders with a fraction even when integral, so 3.0 stays 3.0.
type Float float64

func (f Float) String() string {
	return formatFloat(float64(f))
}

func (f Float) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
		return json.Marshal(float64(f))
	}
	return []byte(f.String()), nil
}

// formatFloat uses the same exponent cutoffs as encoding/json.
func formatFloat(f float64) string {
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if format == 'f' && !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Map is a string keyed mapping that remembers insertion order. Documents are
// decoded into Maps so that properties, examples and paths come out in the
// order they were declared.
type Map struct {
	keys   []string
	values map[string]any
}

func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Value returns the value stored under key, or nil.
func (m *Map) Value(key string) any {
	v, _ := m.Get(key)
	return v
}

// Set stores v under key. An existing key keeps its position.
func (m *Map) Set(key string, v any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, v any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// String returns the string stored under key, or "" when absent or not a string.
func (m *Map) String(key string) string {
	s, _ := m.Value(key).(string)
	return s
}

// Map returns the mapping stored under key, or nil.
func (m *Map) Map(key string) *Map {
	v, _ := m.Value(key).(*Map)
	return v
}

// List returns the sequence stored under key, or nil.
func (m *Map) List(key string) []any {
	v, _ := m.Value(key).([]any)
	return v
}

// Bool reports whether key holds the boolean true.
func (m *Map) Bool(key string) bool {
	v, _ := m.Value(key).(bool)
	return v
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	c := &Map{
		keys:   append([]string(nil), m.keys...),
		values: make(map[string]any, len(m.values)),
	}
	for k, v := range m.values {
		c.values[k] = Clone(v)
	}
	return c
}

// Clone deep copies a document value.
func Clone(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Clone()
	case []any:
		c := make([]any, len(t))
		for i, e := range t {
			c[i] = Clone(e)
		}
		return c
	}
	return v
}

func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalNoEscape(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Stringify renders a scalar document value as text. Collections are rendered
// as compact JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case Float:
		return t.String()
	case float64:
		return formatFloat(t)
	case nil:
		return "null"
	}
	bs, err := marshalNoEscape(v)
	if err != nil {
		return ""
	}
	return string(bs)
}
