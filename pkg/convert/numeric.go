// Package convert provides type conversion utilities for rgraph.
//
// This package consolidates the conversions shared by the query builder and
// the result decoder: numeric normalisation of caller-supplied parameters,
// parsing of server-reported statistics, and reflection-based flattening of
// typed slices into the generic []interface{} form.
//
// Key Functions:
//   - ToFloat64: Convert various types to float64
//   - ToInt64: Convert various types to int64 (lossy for floats)
//   - ToExactInt64: Convert integer kinds only, rejecting overflow
//   - ToSlice: Convert any slice or array to []interface{}
//
// All conversion functions return a success boolean to allow callers to handle
// conversion failures gracefully.
//
// Example:
//
//	// Statistics arrive as text
//	if n, ok := convert.ToInt64("3"); ok {
//		// Use n
//	}
//
//	// Typed parameter slices become generic lists
//	items, ok := convert.ToSlice([]int32{1, 2, 3})
//
// ELI12:
//
// This package is like a universal translator for numbers and lists. You give
// it any kind of number (whole number, decimal, even text that looks like a
// number), and it converts it to the type you need. If it can't convert
// something (like "hello"), it tells you by returning false.
package convert

import (
	"math"
	"strconv"
)

// ToFloat64 converts various numeric types to float64.
// Returns (value, true) on success, (0, false) on failure.
//
// Supported types:
//   - float64 (returned as-is)
//   - float32 (converted)
//   - all signed and unsigned integer kinds
//   - string and []byte (parsed as decimal, supports scientific notation)
//
// Example:
//
//	f, ok := ToFloat64(42)          // Returns (42.0, true)
//	f, ok := ToFloat64("0.452")     // Returns (0.452, true)
//	f, ok := ToFloat64("invalid")   // Returns (0, false)
func ToFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case string:
		// Use strconv.ParseFloat - handles scientific notation, NaN, Inf
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f, true
		}
		return 0, false
	case []byte:
		return ToFloat64(string(val))
	}
	if i, ok := ToExactInt64(v); ok {
		return float64(i), true
	}
	if u, ok := v.(uint64); ok {
		return float64(u), true
	}
	return 0, false
}

// ToInt64 converts various numeric types to int64.
// Returns (value, true) on success, (0, false) on failure.
//
// Supported types:
//   - all integer kinds (uint64 above MaxInt64 fails)
//   - float64, float32 (truncated toward zero)
//   - string and []byte (parsed as integer, then as float)
//
// Example:
//
//	i, ok := ToInt64(42)        // Returns (42, true)
//	i, ok := ToInt64(3.7)       // Returns (3, true) - truncated
//	i, ok := ToInt64("123")     // Returns (123, true)
//	i, ok := ToInt64("invalid") // Returns (0, false)
//
// ELI12:
//
// This converts numbers to whole numbers (integers). If you give it
// a decimal like 3.7, it chops off the .7 part and gives you 3.
func ToInt64(v interface{}) (int64, bool) {
	if i, ok := ToExactInt64(v); ok {
		return i, true
	}
	switch val := v.(type) {
	case float64:
		return int64(val), true
	case float32:
		return int64(val), true
	case string:
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i, true
		}
		// Try parsing as float then converting
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return int64(f), true
		}
	case []byte:
		return ToInt64(string(val))
	}
	return 0, false
}

// ToExactInt64 converts Go integer kinds to int64 without loss.
//
// Floats, strings and uint64 values above math.MaxInt64 are rejected, so a
// true result always means the value is an integer the server can represent.
func ToExactInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case int16:
		return int64(val), true
	case int8:
		return int64(val), true
	case uint:
		if uint64(val) > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint8:
		return int64(val), true
	}
	return 0, false
}
