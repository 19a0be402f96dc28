package value

import (
	"bytes"
	"encoding/json"

	"github.com/dacite-io/dacite/errors"
)

// FromJSON converts a UTF-8 JSON document into the value model:
//
//	object -> Map with string keys
//	array  -> Vector
//	string -> String
//	number -> I64 when written as an integer (no fraction or exponent)
//	          that fits in int64, otherwise F64
//	bool   -> Bool
//	null   -> Null
//
// The document must contain exactly one top-level value.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode JSON")
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}
	return fromRaw(raw)
}

func fromRaw(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(v)
	case string:
		return NewString(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return I64(i)
		}
		f, err := v.Float64()
		if err != nil {
			return nil, errors.Wrapf(err, "number %q", v.String())
		}
		return F64(f)
	case []interface{}:
		elems := make([]Value, len(v))
		for i, e := range v {
			elem, err := fromRaw(e)
			if err != nil {
				return nil, err
			}
			elems[i] = elem
		}
		return NewVector(elems...)
	case map[string]interface{}:
		entries := make([]Entry, 0, len(v))
		for k, e := range v {
			key, err := NewString(k)
			if err != nil {
				return nil, err
			}
			val, err := fromRaw(e)
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Key: key, Val: val})
		}
		return NewMap(entries...)
	default:
		return nil, errors.Newf("unsupported JSON value of type %T", raw)
	}
}
