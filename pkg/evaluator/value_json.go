package evaluator

import (
	"encoding/json"
	"math"
)

// ValueToJSON marshals a value to JSON bytes. Integral numbers are written
// without a decimal point; infinities and NaN, which JSON cannot carry, are
// written as strings.
func ValueToJSON(v Value) ([]byte, error) {
	return json.Marshal(valueToRaw(v))
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func valueToRaw(v Value) any {
	switch val := v.(type) {
	case BoolValue:
		return val.Value
	case NumberValue:
		n := val.Value
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return FormatNumber(n)
		}
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n)
		}
		return n
	case StringValue:
		return val.Value
	}
	return nil
}

// EnvToJSON renders the bindings of a single scope as a JSON object with
// keys in sorted order.
func EnvToJSON(env *Env) ([]byte, error) {
	names := env.Names()
	if len(names) == 0 {
		return []byte("{}"), nil
	}

	buf := []byte{'{'}
	for i, name := range names {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyBytes, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf = append(buf, keyBytes...)
		buf = append(buf, ':')

		val, _ := env.Get(name)
		valBytes, err := ValueToJSON(val)
		if err != nil {
			return nil, err
		}
		buf = append(buf, valBytes...)
	}
	buf = append(buf, '}')
	return buf, nil
}
