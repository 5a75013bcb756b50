package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/gomodule/redigo/redis"

	"github.com/orneryd/rgraph/pkg/cache"
	"github.com/orneryd/rgraph/pkg/resultset"
)

// errNestedMetadata is returned if a metadata listing contains graph entities.
var errNestedMetadata = errors.New("metadata listing references graph entities")

// connFetcher reloads metadata over the connection that received the reply
// being decoded, so a reload never waits for a second pooled connection.
type connFetcher struct {
	client *Client
	conn   redis.Conn
}

// Fetch runs CALL <procedure>() and returns the first column of every row.
// Row i holds the name of id i.
func (f *connFetcher) Fetch(ctx context.Context, graph string, category cache.Category) ([]string, error) {
	query := "CALL " + category.Procedure() + "()"
	reply, err := redis.DoContext(f.conn, ctx, CmdQuery, graph, query, compactFlag)
	if err != nil {
		return nil, classify(CmdQuery, graph, err)
	}

	rs, err := resultset.Parse(ctx, reply, noEntities{})
	if err != nil {
		return nil, classify(CmdQuery, graph, err)
	}

	names := make([]string, 0, rs.Size())
	for rs.HasNext() {
		rec, err := rs.Next()
		if err != nil {
			return nil, err
		}
		if rec.Size() == 0 {
			return nil, fmt.Errorf("%w: %s row %d is empty", resultset.ErrProtocol, category.Procedure(), len(names))
		}
		name, ok := rec.GetByIndex(0).(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s row %d is %T, want string",
				resultset.ErrProtocol, category.Procedure(), len(names), rec.GetByIndex(0))
		}
		names = append(names, name)
	}

	f.client.metrics.ObserveRefresh(category.String())
	f.client.log.Debug().
		Str("graph", graph).
		Stringer("category", category).
		Int("names", len(names)).
		Msg("metadata reloaded")
	return names, nil
}

// noEntities rejects any lookup. Metadata listings hold only strings.
type noEntities struct{}

func (noEntities) Resolve(context.Context, cache.Category, int64) (string, error) {
	return "", errNestedMetadata
}
