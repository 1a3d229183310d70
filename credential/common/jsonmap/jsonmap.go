package jsonmap

import (
	"encoding/json"
	"fmt"
)

// JSONMap represents a JSON object as a map.
type JSONMap map[string]interface{}

// ToJSON serializes the JSONMap to JSON.
func (m JSONMap) ToJSON() ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("JSONMap is nil")
	}

	data, err := json.Marshal(map[string]interface{}(m))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSONMap: %w", err)
	}
	return data, nil
}

// Parse decodes a JSON object.
func Parse(raw []byte) (JSONMap, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("JSON string is empty")
	}

	var m JSONMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON object: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("JSON value is not an object")
	}
	return m, nil
}

// Clone returns a deep copy of the JSONMap. Nested values come back as the plain
// map[string]interface{} / []interface{} shapes that JSON-LD processors expect.
func (m JSONMap) Clone() (JSONMap, error) {
	if m == nil {
		return nil, nil
	}

	data, err := json.Marshal(map[string]interface{}(m))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSONMap copy: %w", err)
	}

	var out JSONMap
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSONMap copy: %w", err)
	}
	return out, nil
}

// MustClone is Clone for documents that are known to be JSON-serializable.
func (m JSONMap) MustClone() JSONMap {
	out, err := m.Clone()
	if err != nil {
		panic(err)
	}
	return out
}

// Without returns a shallow copy of the JSONMap without the given keys.
func (m JSONMap) Without(keys ...string) JSONMap {
	out := make(JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// GetString returns the string value stored under key, or "".
func (m JSONMap) GetString(key string) string {
	s, _ := m[key].(string)
	return s
}

// Plain returns the JSONMap as an unnamed map, which is what json-gold type-switches on.
func (m JSONMap) Plain() map[string]interface{} {
	return map[string]interface{}(m)
}

// AsObject converts a decoded JSON value into a JSONMap when it is an object.
func AsObject(v interface{}) (JSONMap, bool) {
	switch o := v.(type) {
	case JSONMap:
		return o, true
	case map[string]interface{}:
		return JSONMap(o), true
	default:
		return nil, false
	}
}

// AsArray normalizes a JSON value that may be a single item or an array into a slice.
func AsArray(v interface{}) []interface{} {
	switch a := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return a
	case []string:
		out := make([]interface{}, len(a))
		for i := range a {
			out[i] = a[i]
		}
		return out
	case []JSONMap:
		out := make([]interface{}, len(a))
		for i := range a {
			out[i] = map[string]interface{}(a[i])
		}
		return out
	default:
		return []interface{}{a}
	}
}
