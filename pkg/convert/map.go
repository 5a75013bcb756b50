package convert

import "reflect"

// ToStringMap converts any map with string keys to map[string]interface{}.
// Returns (map, true) on success, (nil, false) when v is not such a map.
//
// Named string key types are accepted and converted to plain strings.
//
// Example:
//
//	m, ok := ToStringMap(map[string]int{"a": 1})   // Returns ({"a": 1}, true)
//	m, ok := ToStringMap(map[int]string{1: "a"})   // Returns (nil, false)
func ToStringMap(v interface{}) (map[string]interface{}, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case map[string]interface{}:
		return val, true
	case map[string]string:
		result := make(map[string]interface{}, len(val))
		for k, s := range val {
			result[k] = s
		}
		return result, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	result := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		result[iter.Key().String()] = iter.Value().Interface()
	}
	return result, true
}
