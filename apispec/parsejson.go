package apispec

import (
	"bytes"

	"github.com/valyala/fastjson"
)

func ParseJSONBytes(b []byte) (any, error) {
	v, err := fastjson.ParseBytes(b)
	if err != nil {
		return nil, err
	}
	return ParseFastJson(v)
}

func ParseFastJson(v *fastjson.Value) (any, error) {
	return parseFastJsonValue(v)
}

func parseFastJsonValue(v *fastjson.Value) (any, error) {
	switch v.Type() {
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return nil, err
		}
		return parseFastJsonObject(o)
	case fastjson.TypeArray:
		a, err := v.Array()
		if err != nil {
			return nil, err
		}
		return parseFastJsonArray(a)
	case fastjson.TypeString:
		s, err := v.StringBytes()
		if err != nil {
			return nil, err
		}
		return string(s), nil
	case fastjson.TypeNumber:
		return parseFastJsonNumber(v)
	case fastjson.TypeTrue:
		return true, nil
	case fastjson.TypeFalse:
		return false, nil
	case fastjson.TypeNull:
		return nil, nil
	}

	panic("should be unreachable")
}

func parseFastJsonObject(o *fastjson.Object) (*Map, error) {
	m := NewMap()

	var visitErr error
	o.Visit(func(key []byte, v *fastjson.Value) {
		if visitErr != nil {
			return
		}
		child, childErr := parseFastJsonValue(v)
		if childErr != nil {
			visitErr = childErr
			return
		}
		m.Set(string(key), child)
	})

	return m, visitErr
}

func parseFastJsonArray(vs []*fastjson.Value) ([]any, error) {
	res := make([]any, 0, len(vs))
	for _, v := range vs {
		e, err := parseFastJsonValue(v)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

// Numbers written with a fraction or exponent stay floats, everything else is
// an integer unless it overflows int64.
func parseFastJsonNumber(v *fastjson.Value) (any, error) {
	raw := v.MarshalTo(nil)
	if !bytes.ContainsAny(raw, ".eE") {
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
	}
	f, err := v.Float64()
	if err != nil {
		return nil, err
	}
	return Float(f), nil
}
