package convert

import "reflect"

// ToSlice converts any slice or array to []interface{}.
// Returns (slice, true) on success, (nil, false) when v is not a list.
//
// []byte is not treated as a list; callers handle it as text.
//
// Supported types:
//   - []interface{} (returned as-is)
//   - []string, []int64, []float64, []bool (fast paths)
//   - any other slice or array kind (via reflection)
//
// Example:
//
//	s, ok := ToSlice([]int32{1, 2})         // Returns ([int32(1), int32(2)], true)
//	s, ok := ToSlice([2]string{"a", "b"})   // Returns (["a", "b"], true)
//	s, ok := ToSlice("abc")                 // Returns (nil, false)
//
// ELI12:
//
// Go has a different list type for every kind of thing inside it. This turns
// all of them into one general "list of anything" so the rest of the code only
// has to know about one kind of list.
func ToSlice(v interface{}) ([]interface{}, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case []interface{}:
		return val, true
	case []byte:
		return nil, false
	case []string:
		result := make([]interface{}, len(val))
		for i, s := range val {
			result[i] = s
		}
		return result, true
	case []int64:
		result := make([]interface{}, len(val))
		for i, n := range val {
			result[i] = n
		}
		return result, true
	case []float64:
		result := make([]interface{}, len(val))
		for i, f := range val {
			result[i] = f
		}
		return result, true
	case []bool:
		result := make([]interface{}, len(val))
		for i, b := range val {
			result[i] = b
		}
		return result, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		result := make([]interface{}, rv.Len())
		for i := range result {
			result[i] = rv.Index(i).Interface()
		}
		return result, true
	}
	return nil, false
}
