// Package cypher renders Go values into Cypher query text for RedisGraph.
//
// RedisGraph has no out-of-band parameter channel. Parameters travel inside
// the query string as a prefix:
//
//	CYPHER age=32 name='roi' MATCH (p:person {name: $name}) RETURN p
//
// This package turns a parameter map into that prefix, renders individual
// values as literals and quotes strings for printf-style query templates.
//
// # Usage Example
//
//	params := map[string]interface{}{
//	    "name": "roi",
//	    "age":  32,
//	}
//	text, err := cypher.BuildQuery("MATCH (p:person {name: $name, age: $age}) RETURN p", params)
//	// text = "CYPHER age=32 name='roi' MATCH (p:person {name: $name, age: $age}) RETURN p"
//
// # Supported Types
//
//	- nil: null
//	- string, []byte: Escaped and quoted ('value')
//	- Char: One-character string ('a')
//	- int, int64, uint8, etc.: Integer literals (42)
//	- float32, float64: Float literals, always with a fraction (3.0)
//	- bool: true/false
//	- slices and arrays of the above: List literals ([1, 2, 3])
//	- maps with string keys: Map literals ({key: value})
//
// Anything else is rejected with ErrUnsupportedParameter before a command is
// sent.
//
// # ELI12
//
// Parameters are like fill-in-the-blanks in a story:
//
//	"Hello, my name is _____" + {name: "roi"} = "Hello, my name is roi"
//
// RedisGraph wants the answers written at the top of the page, before the
// story starts. This package writes them there, in a form the server can read
// back exactly.
package cypher

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/orneryd/rgraph/pkg/convert"
	"github.com/orneryd/rgraph/pkg/pool"
)

// ErrUnsupportedParameter is returned for values that have no Cypher literal form.
var ErrUnsupportedParameter = errors.New("unsupported parameter value")

// Char is a single character parameter. It renders as a one-character string,
// unlike a bare rune, which is an integer.
type Char rune

// QuoteString returns s as a double-quoted Cypher string literal.
//
// Backslashes and double quotes are escaped; single quotes are kept verbatim,
// so text such as S"' round-trips unchanged.
//
// # Example
//
//	cypher.QuoteString(`S"'`) // "S\"'"
func QuoteString(s string) string {
	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)
	sb.WriteByte('"')
	writeEscaped(sb, s, '"')
	sb.WriteByte('"')
	return sb.String()
}

func writeEscaped(sb *pool.PooledStringBuilder, s string, quote byte) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || c == quote {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
}

// Literal converts a Go value to its Cypher literal text.
//
// # Type Conversions
//
//	nil           → "null"
//	"hello"       → "'hello'"
//	Char('a')     → "'a'"
//	42            → "42"
//	3.0           → "3.0"
//	true          → "true"
//	[]int{1, 2}   → "[1, 2]"
//	{a: 1}        → "{a: 1}"
func Literal(v interface{}) (string, error) {
	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)
	if err := writeLiteral(sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeLiteral(sb *pool.PooledStringBuilder, v interface{}) error {
	if v == nil {
		sb.WriteString("null")
		return nil
	}

	switch val := v.(type) {
	case string:
		writeString(sb, val)
		return nil

	case []byte:
		writeString(sb, string(val))
		return nil

	case Char:
		writeString(sb, string(rune(val)))
		return nil

	case bool:
		sb.WriteString(strconv.FormatBool(val))
		return nil

	case float32:
		return writeFloat(sb, float64(val), 32)

	case float64:
		return writeFloat(sb, val, 64)

	}

	if i, ok := convert.ToExactInt64(v); ok {
		sb.WriteString(strconv.FormatInt(i, 10))
		return nil
	}

	if m, ok := convert.ToStringMap(v); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeIdentifier(sb, k)
			sb.WriteString(": ")
			if err := writeLiteral(sb, m[k]); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
		}
		sb.WriteByte('}')
		return nil
	}

	if items, ok := convert.ToSlice(v); ok {
		sb.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := writeLiteral(sb, item); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		sb.WriteByte(']')
		return nil
	}

	return fmt.Errorf("%w: %T", ErrUnsupportedParameter, v)
}

func writeString(sb *pool.PooledStringBuilder, s string) {
	sb.WriteByte('\'')
	writeEscaped(sb, s, '\'')
	sb.WriteByte('\'')
}

// writeFloat always emits a fraction or exponent so the server parses the
// value back as a double.
func writeFloat(sb *pool.PooledStringBuilder, f float64, bits int) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %v", ErrUnsupportedParameter, f)
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	sb.WriteString(s)
	if !strings.ContainsAny(s, ".eE") {
		sb.WriteString(".0")
	}
	return nil
}

// writeIdentifier writes name as is when it is a plain identifier and
// backtick-quoted otherwise.
func writeIdentifier(sb *pool.PooledStringBuilder, name string) {
	if isIdentifier(name) {
		sb.WriteString(name)
		return
	}
	sb.WriteByte('`')
	sb.WriteString(strings.ReplaceAll(name, "`", "``"))
	sb.WriteByte('`')
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// BuildQuery prepends the CYPHER parameter header to query.
//
// Parameter names are emitted in sorted order so the same call always yields
// the same text. With no parameters the query is returned unchanged.
//
// # Example
//
//	BuildQuery("RETURN $x", map[string]interface{}{"x": []int{1, 2}})
//	// "CYPHER x=[1, 2] RETURN $x"
func BuildQuery(query string, params map[string]interface{}) (string, error) {
	if len(params) == 0 {
		return query, nil
	}

	names := pool.GetStringSlice()
	defer func() { pool.PutStringSlice(names) }()
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)

	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)
	sb.WriteString("CYPHER")
	for _, name := range names {
		if !isIdentifier(name) {
			return "", fmt.Errorf("%w: parameter name %q", ErrUnsupportedParameter, name)
		}
		sb.WriteByte(' ')
		sb.WriteString(name)
		sb.WriteByte('=')
		if err := writeLiteral(sb, params[name]); err != nil {
			return "", fmt.Errorf("parameter %q: %w", name, err)
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(query)
	return sb.String(), nil
}
