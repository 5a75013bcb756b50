package client

import (
	"context"
	"sync"

	"github.com/gomodule/redigo/redis"

	"github.com/orneryd/rgraph/pkg/cypher"
	"github.com/orneryd/rgraph/pkg/resultset"
)

// Session pins one pooled connection for a sequence of queries.
//
// A Session is meant for a single goroutine at a time; queries are serialized
// on its connection. Close returns the connection to the pool.
//
// Example:
//
//	s, err := c.Session(ctx)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//	s.Query(ctx, "social", "CREATE (:person {name: 'roi'})", nil)
//	s.Query(ctx, "social", "MATCH (p:person) RETURN p", nil)
type Session struct {
	client *Client

	mu     sync.Mutex
	conn   redis.Conn
	closed bool
}

// Session borrows a connection and returns a Session bound to it.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	ctx, cancel := c.deadline(ctx)
	defer cancel()

	conn, err := c.borrow(ctx, "SESSION", "")
	if err != nil {
		return nil, err
	}
	return &Session{client: c, conn: conn}, nil
}

// Query runs a read-write query on the session connection.
func (s *Session) Query(ctx context.Context, graph, query string, params map[string]interface{}, opts ...QueryOption) (*resultset.ResultSet, error) {
	return s.run(ctx, CmdQuery, graph, query, params, opts)
}

// ReadOnlyQuery runs a GRAPH.RO_QUERY on the session connection.
func (s *Session) ReadOnlyQuery(ctx context.Context, graph, query string, params map[string]interface{}, opts ...QueryOption) (*resultset.ResultSet, error) {
	return s.run(ctx, CmdROQuery, graph, query, params, opts)
}

// Queryf formats a query with cypher.Format and runs it.
func (s *Session) Queryf(ctx context.Context, graph, format string, args ...interface{}) (*resultset.ResultSet, error) {
	return s.run(ctx, CmdQuery, graph, cypher.Format(format, args...), nil, nil)
}

// Close returns the connection to the pool. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.release(s.conn)
	return nil
}

func (s *Session) run(ctx context.Context, command, graph, query string, params map[string]interface{}, opts []QueryOption) (*resultset.ResultSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	ctx, cancel := s.client.deadline(ctx)
	defer cancel()
	rs, err := s.client.execute(ctx, s.conn, command, graph, query, params, opts)
	if err != nil && s.conn.Err() != nil {
		// The connection is broken; give it back so the pool drops it.
		s.closed = true
		s.client.release(s.conn)
		s.client.log.Debug().Str("graph", graph).Msg("session connection lost")
	}
	return rs, err
}
