package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected float64
		ok       bool
	}{
		// Direct numeric types
		{"float64", 3.14, 3.14, true},
		{"float32", float32(2.5), 2.5, true},
		{"int", 42, 42.0, true},
		{"int64", int64(99), 99.0, true},
		{"int32", int32(50), 50.0, true},
		{"int8", int8(-3), -3.0, true},
		{"uint", uint(10), 10.0, true},
		{"uint64", uint64(100), 100.0, true},
		{"uint64 huge", uint64(math.MaxUint64), float64(math.MaxUint64), true},
		{"uint32", uint32(25), 25.0, true},

		// String parsing
		{"string decimal", "3.14", 3.14, true},
		{"string negative", "-2.5", -2.5, true},
		{"string scientific", "1.5e-3", 0.0015, true},
		{"string integer", "42", 42.0, true},
		{"bytes", []byte("0.452"), 0.452, true},

		// Error cases
		{"string invalid", "hello", 0, false},
		{"string empty", "", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
		{"slice", []int{1, 2}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.input)
			assert.Equal(t, tt.ok, ok, "ok mismatch")
			if ok {
				assert.InDelta(t, tt.expected, got, 0.0001, "value mismatch")
			}
		})
	}

	// Special case: NaN
	t.Run("string NaN", func(t *testing.T) {
		got, ok := ToFloat64("NaN")
		assert.True(t, ok)
		assert.True(t, math.IsNaN(got))
	})

	// Special case: Inf
	t.Run("string Inf", func(t *testing.T) {
		got, ok := ToFloat64("Inf")
		assert.True(t, ok)
		assert.True(t, math.IsInf(got, 1))
	})
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected int64
		ok       bool
	}{
		// Direct integer types
		{"int64", int64(99), 99, true},
		{"int", 42, 42, true},
		{"int32", int32(50), 50, true},
		{"uint", uint(10), 10, true},
		{"uint32", uint32(25), 25, true},
		{"uint64", uint64(100), 100, true},

		// Float conversion (truncation)
		{"float64", 3.7, 3, true},
		{"float64 negative", -3.7, -3, true},
		{"float32", float32(2.9), 2, true},

		// String parsing
		{"string integer", "42", 42, true},
		{"string negative", "-10", -10, true},
		{"string float", "3.7", 3, true},
		{"bytes", []byte("12"), 12, true},

		// Error cases
		{"string invalid", "hello", 0, false},
		{"string empty", "", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
		{"uint64 overflow", uint64(math.MaxUint64), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToInt64(tt.input)
			assert.Equal(t, tt.ok, ok, "ok mismatch")
			if ok {
				assert.Equal(t, tt.expected, got, "value mismatch")
			}
		})
	}
}

func TestToExactInt64(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected int64
		ok       bool
	}{
		{"int8", int8(-8), -8, true},
		{"int16", int16(300), 300, true},
		{"uint8", uint8(255), 255, true},
		{"uint16", uint16(65535), 65535, true},
		{"large int64", int64(1) << 40, 1 << 40, true},
		{"max uint64 within range", uint64(math.MaxInt64), math.MaxInt64, true},

		{"uint64 overflow", uint64(math.MaxInt64) + 1, 0, false},
		{"float64", 1.0, 0, false},
		{"string", "1", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToExactInt64(tt.input)
			assert.Equal(t, tt.ok, ok, "ok mismatch")
			if ok {
				assert.Equal(t, tt.expected, got, "value mismatch")
			}
		})
	}
}

func TestToSlice(t *testing.T) {
	t.Run("[]interface{}", func(t *testing.T) {
		input := []interface{}{1, "a"}
		got, ok := ToSlice(input)
		assert.True(t, ok)
		assert.Equal(t, input, got)
	})

	t.Run("[]string", func(t *testing.T) {
		got, ok := ToSlice([]string{"a", "b"})
		assert.True(t, ok)
		assert.Equal(t, []interface{}{"a", "b"}, got)
	})

	t.Run("[]int64", func(t *testing.T) {
		got, ok := ToSlice([]int64{1, 2})
		assert.True(t, ok)
		assert.Equal(t, []interface{}{int64(1), int64(2)}, got)
	})

	t.Run("[]float64", func(t *testing.T) {
		got, ok := ToSlice([]float64{1.5})
		assert.True(t, ok)
		assert.Equal(t, []interface{}{1.5}, got)
	})

	t.Run("[]bool", func(t *testing.T) {
		got, ok := ToSlice([]bool{true, false})
		assert.True(t, ok)
		assert.Equal(t, []interface{}{true, false}, got)
	})

	t.Run("reflected slice", func(t *testing.T) {
		got, ok := ToSlice([]int32{1, 2})
		assert.True(t, ok)
		assert.Equal(t, []interface{}{int32(1), int32(2)}, got)
	})

	t.Run("array", func(t *testing.T) {
		got, ok := ToSlice([2]string{"x", "y"})
		assert.True(t, ok)
		assert.Equal(t, []interface{}{"x", "y"}, got)
	})

	t.Run("empty slice", func(t *testing.T) {
		got, ok := ToSlice([]string{})
		assert.True(t, ok)
		assert.Empty(t, got)
	})

	t.Run("not a list", func(t *testing.T) {
		for _, v := range []interface{}{nil, "abc", 1, []byte("abc"), map[string]interface{}{}} {
			_, ok := ToSlice(v)
			assert.False(t, ok, "%T", v)
		}
	})
}

type keyName string

func TestToStringMap(t *testing.T) {
	t.Run("map[string]interface{}", func(t *testing.T) {
		input := map[string]interface{}{"a": 1}
		got, ok := ToStringMap(input)
		assert.True(t, ok)
		assert.Equal(t, input, got)
	})

	t.Run("map[string]string", func(t *testing.T) {
		got, ok := ToStringMap(map[string]string{"a": "x"})
		assert.True(t, ok)
		assert.Equal(t, map[string]interface{}{"a": "x"}, got)
	})

	t.Run("reflected map", func(t *testing.T) {
		got, ok := ToStringMap(map[string]int32{"a": 1, "b": 2})
		assert.True(t, ok)
		assert.Equal(t, map[string]interface{}{"a": int32(1), "b": int32(2)}, got)
	})

	t.Run("named key type", func(t *testing.T) {
		got, ok := ToStringMap(map[keyName]bool{"on": true})
		assert.True(t, ok)
		assert.Equal(t, map[string]interface{}{"on": true}, got)
	})

	t.Run("not a string keyed map", func(t *testing.T) {
		for _, v := range []interface{}{nil, "abc", []string{"a"}, map[int]string{1: "a"}} {
			_, ok := ToStringMap(v)
			assert.False(t, ok, "%T", v)
		}
	})
}

func BenchmarkToFloat64_Int(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ToFloat64(42)
	}
}

func BenchmarkToFloat64_String(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ToFloat64("3.14159")
	}
}

func BenchmarkToSlice_Reflect(b *testing.B) {
	data := make([]int32, 64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ToSlice(data)
	}
}
