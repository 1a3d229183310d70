package util

import (
	"github.com/pkg/errors"
)

// JSONMap represents a JSON object as a map.
type JSONMap = map[string]interface{}

// SerializeTypes renders types the JSON-LD way: a single type as a string, several as an array.
func SerializeTypes(types []string) interface{} {
	return OneOrMany(types, func(t string) interface{} { return t })
}

// MapSlice transforms a slice of type T to a slice of type U using a mapping function.
func MapSlice[T any, U any](slice []T, mapFn func(T) U) []U {
	result := make([]U, 0, len(slice))
	for _, v := range slice {
		result = append(result, mapFn(v))
	}
	return result
}

// OneOrMany returns the single element of a one-element slice, or the slice as []interface{}.
func OneOrMany[T any](items []T, mapFn func(T) interface{}) interface{} {
	switch len(items) {
	case 0:
		return nil
	case 1:
		return mapFn(items[0])
	default:
		return MapSlice(items, mapFn)
	}
}

// SerializeContexts checks that every @context entry is a non-empty URL or an inline context
// definition and returns them in order.
func SerializeContexts(contexts []interface{}) ([]interface{}, error) {
	out := make([]interface{}, 0, len(contexts))
	for i, entry := range contexts {
		if err := checkContextEntry(entry); err != nil {
			return nil, errors.Wrapf(err, "invalid context at index %d", i)
		}
		out = append(out, entry)
	}
	return out, nil
}

func checkContextEntry(entry interface{}) error {
	switch v := entry.(type) {
	case string:
		if v == "" {
			return errors.New("empty context URL")
		}
	case JSONMap:
		if _, nested := v["@context"]; nested {
			return errors.New("inline context must not contain @context")
		}
		if _, empty := v[""]; empty {
			return errors.New("inline context has an empty term")
		}
	default:
		return errors.Errorf("context must be a string or an object, got %T", entry)
	}
	return nil
}

// ShallowCopyObj copies the top level of a JSON object.
func ShallowCopyObj(obj JSONMap) JSONMap {
	out := make(JSONMap, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	return out
}

// SplitJSONObj separates the given keys from the rest of a JSON object.
func SplitJSONObj(obj JSONMap, keys ...string) (JSONMap, JSONMap) {
	picked := make(JSONMap, len(keys))
	rest := ShallowCopyObj(obj)
	for _, k := range keys {
		if v, ok := rest[k]; ok {
			picked[k] = v
			delete(rest, k)
		}
	}
	return picked, rest
}
