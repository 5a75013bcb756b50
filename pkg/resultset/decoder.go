package resultset

import (
	"context"
	"fmt"

	"github.com/gomodule/redigo/redis"

	"github.com/orneryd/rgraph/pkg/cache"
	"github.com/orneryd/rgraph/pkg/convert"
)

// Resolver maps metadata ids to names. cache.Resolver implements it.
type Resolver interface {
	Resolve(ctx context.Context, category cache.Category, id int64) (string, error)
}

// decoder turns compact-format cells into Go values.
//
// It is single-use and not safe for concurrent use; Parse creates one per reply.
// Apart from metadata reloads performed by the Resolver it never blocks.
type decoder struct {
	ctx  context.Context
	meta Resolver

	// set while decoding a property value; entities are illegal at any depth
	inProperty bool
}

func newDecoder(ctx context.Context, meta Resolver) *decoder {
	return &decoder{ctx: ctx, meta: meta}
}

func decodeErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

// cell decodes a tagged [type, payload] pair.
func (d *decoder) cell(v interface{}) (interface{}, error) {
	pair, err := d.list(v, "cell")
	if err != nil {
		return nil, err
	}
	if len(pair) != 2 {
		return nil, decodeErrorf("cell has %d elements, want 2", len(pair))
	}
	t, err := d.integer(pair[0], "cell type")
	if err != nil {
		return nil, err
	}
	return d.value(ValueType(t), pair[1])
}

// value decodes a payload of a known type.
func (d *decoder) value(t ValueType, v interface{}) (interface{}, error) {
	if d.inProperty {
		switch t {
		case ValueNode, ValueEdge, ValuePath:
			return nil, decodeErrorf("%s is not a legal property value", t)
		}
	}

	switch t {
	case ValueNull:
		return nil, nil

	case ValueString:
		s, err := redis.String(v, nil)
		if err != nil {
			return nil, decodeErrorf("string payload: %v", err)
		}
		return s, nil

	case ValueInteger:
		return d.integer(v, "integer payload")

	case ValueBoolean:
		s, err := redis.String(v, nil)
		if err != nil {
			return nil, decodeErrorf("boolean payload: %v", err)
		}
		switch s {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, decodeErrorf("boolean payload %q", s)

	case ValueDouble:
		return d.double(v, "double payload")

	case ValueArray:
		return d.array(v)

	case ValueEdge:
		return d.edge(v)

	case ValueNode:
		return d.node(v)

	case ValuePath:
		return d.path(v)

	case ValueMap:
		return d.mapValue(v)

	case ValuePoint:
		return d.point(v)

	default:
		return nil, decodeErrorf("unknown value type %s", t)
	}
}

func (d *decoder) list(v interface{}, what string) ([]interface{}, error) {
	values, err := redis.Values(v, nil)
	if err != nil {
		return nil, decodeErrorf("%s: %v", what, err)
	}
	return values, nil
}

func (d *decoder) integer(v interface{}, what string) (int64, error) {
	n, err := redis.Int64(v, nil)
	if err != nil {
		return 0, decodeErrorf("%s: %v", what, err)
	}
	return n, nil
}

// double parses a float payload. The server sends doubles as bulk strings.
func (d *decoder) double(v interface{}, what string) (float64, error) {
	f, ok := convert.ToFloat64(v)
	if !ok {
		if b, isBytes := v.([]byte); isBytes {
			return 0, decodeErrorf("%s %q: not a number", what, b)
		}
		return 0, decodeErrorf("%s: unexpected %T", what, v)
	}
	return f, nil
}

func (d *decoder) array(v interface{}) ([]interface{}, error) {
	cells, err := d.list(v, "array payload")
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		val, err := d.cell(c)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		out[i] = val
	}
	return out, nil
}

// mapValue decodes a flat [key, cell, key, cell, ...] list. Duplicate keys are
// not expected from the server; if one appears the last value wins.
func (d *decoder) mapValue(v interface{}) (map[string]interface{}, error) {
	flat, err := d.list(v, "map payload")
	if err != nil {
		return nil, err
	}
	if len(flat)%2 != 0 {
		return nil, decodeErrorf("map payload has odd length %d", len(flat))
	}
	out := make(map[string]interface{}, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		key, err := redis.String(flat[i], nil)
		if err != nil {
			return nil, decodeErrorf("map key %d: %v", i/2, err)
		}
		val, err := d.cell(flat[i+1])
		if err != nil {
			return nil, fmt.Errorf("map key %q: %w", key, err)
		}
		out[key] = val
	}
	return out, nil
}
