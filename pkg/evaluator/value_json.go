package evaluator

import "encoding/json"

// ValueToJSON marshals a Value to JSON bytes. Integers marshal as JSON
// numbers, strings as JSON strings.
func ValueToJSON(v Value) ([]byte, error) {
	return json.Marshal(valueToRaw(v))
}

func valueToRaw(v Value) any {
	switch val := v.(type) {
	case IntValue:
		return val.Value
	case StrValue:
		return val.Value
	}
	return nil
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
