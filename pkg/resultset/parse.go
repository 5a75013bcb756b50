package resultset

import (
	"context"
	"errors"
	"fmt"

	"github.com/gomodule/redigo/redis"
)

// Parse decodes a complete compact reply.
//
// Labels, relationship types and property keys are resolved through meta,
// which may reload metadata from the server on a miss. A server error that is
// embedded in the reply is returned unchanged as a redis.Error.
func Parse(ctx context.Context, reply interface{}, meta Resolver) (*ResultSet, error) {
	sections, err := redis.Values(reply, nil)
	if err != nil {
		var serverErr redis.Error
		if errors.As(err, &serverErr) {
			return nil, serverErr
		}
		return nil, fmt.Errorf("%w: reply: %v", ErrProtocol, err)
	}
	for _, s := range sections {
		if serverErr, ok := s.(redis.Error); ok {
			return nil, serverErr
		}
	}

	switch len(sections) {
	case 1:
		stats, err := parseStatistics(sections[0])
		if err != nil {
			return nil, err
		}
		return &ResultSet{stats: stats}, nil

	case 3:
		header, err := parseHeader(sections[0])
		if err != nil {
			return nil, err
		}
		records, err := parseRows(newDecoder(ctx, meta), header, sections[1])
		if err != nil {
			return nil, err
		}
		stats, err := parseStatistics(sections[2])
		if err != nil {
			return nil, err
		}
		return &ResultSet{header: header, records: records, stats: stats}, nil

	default:
		return nil, fmt.Errorf("%w: reply has %d sections, want 1 or 3", ErrProtocol, len(sections))
	}
}

func parseHeader(v interface{}) (Header, error) {
	entries, err := redis.Values(v, nil)
	if err != nil {
		return Header{}, fmt.Errorf("%w: header: %v", ErrProtocol, err)
	}
	names := make([]string, len(entries))
	types := make([]ColumnType, len(entries))
	for i, e := range entries {
		pair, err := redis.Values(e, nil)
		if err != nil {
			return Header{}, fmt.Errorf("%w: header column %d: %v", ErrProtocol, i, err)
		}
		if len(pair) != 2 {
			return Header{}, fmt.Errorf("%w: header column %d has %d fields, want 2", ErrProtocol, i, len(pair))
		}
		t, err := redis.Int64(pair[0], nil)
		if err != nil {
			return Header{}, fmt.Errorf("%w: header column %d type: %v", ErrProtocol, i, err)
		}
		name, err := redis.String(pair[1], nil)
		if err != nil {
			return Header{}, fmt.Errorf("%w: header column %d name: %v", ErrProtocol, i, err)
		}
		names[i], types[i] = name, ColumnType(t)
	}
	return Header{names: names, types: types}, nil
}

func parseRows(d *decoder, header Header, v interface{}) ([]Record, error) {
	rows, err := redis.Values(v, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrProtocol, err)
	}
	records := make([]Record, 0, len(rows))
	for r, raw := range rows {
		cells, err := redis.Values(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrProtocol, r, err)
		}
		if len(cells) != header.Len() {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d columns",
				ErrProtocol, r, len(cells), header.Len())
		}
		values := make([]interface{}, len(cells))
		for c, cell := range cells {
			val, err := d.column(header.types[c], cell)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", r, header.names[c], err)
			}
			values[c] = val
		}
		records = append(records, newRecord(header.names, values))
	}
	return records, nil
}

// column decodes one cell according to its column type. A nil cell means the
// column has no value in this row.
func (d *decoder) column(t ColumnType, cell interface{}) (interface{}, error) {
	if cell == nil {
		return nil, nil
	}
	switch t {
	case ColumnScalar:
		return d.cell(cell)
	case ColumnNode:
		return d.node(cell)
	case ColumnRelation:
		return d.edge(cell)
	default:
		return nil, decodeErrorf("unknown column type %s", t)
	}
}
