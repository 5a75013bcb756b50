package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/orneryd/rgraph/pkg/config"
	"github.com/orneryd/rgraph/pkg/graph"
	"github.com/orneryd/rgraph/pkg/metrics"
	"github.com/orneryd/rgraph/pkg/resultset"
)

// ============================================================================
// Fake server
// ============================================================================

type call struct {
	conn int
	cmd  string
	args []interface{}
}

type handlerFunc func(ctx context.Context, cmd string, args []interface{}) (interface{}, error)

// fakeServer answers graph commands for every connection it dials. Metadata
// procedures are served from its lists; everything else goes to handle.
type fakeServer struct {
	mu     sync.Mutex
	calls  []call
	dials  int
	handle handlerFunc

	labels   []string
	relTypes []string
	propKeys []string

	// runs before a metadata procedure is answered
	beforeMetadata func(ctx context.Context) error
}

func newFakeServer(handle handlerFunc) *fakeServer {
	return &fakeServer{
		handle:   handle,
		labels:   []string{"person", "country"},
		relTypes: []string{"knows", "visited"},
		propKeys: []string{"name", "age"},
	}
}

func (s *fakeServer) dial(context.Context) (redis.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dials++
	return &fakeConn{srv: s, id: s.dials}, nil
}

func (s *fakeServer) serve(ctx context.Context, c *fakeConn, cmd string, args []interface{}) (interface{}, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call{conn: c.id, cmd: cmd, args: args})
	handle := s.handle
	beforeMetadata := s.beforeMetadata
	s.mu.Unlock()

	if cmd == "PING" {
		return "PONG", nil
	}
	if cmd == CmdQuery && len(args) >= 2 {
		if q, ok := args[1].(string); ok && strings.HasPrefix(q, "CALL db.") && beforeMetadata != nil {
			if err := beforeMetadata(ctx); err != nil {
				return nil, err
			}
		}
		switch args[1] {
		case "CALL db.labels()":
			return metadataReply("label", s.labels), nil
		case "CALL db.relationshipTypes()":
			return metadataReply("relationshipType", s.relTypes), nil
		case "CALL db.propertyKeys()":
			return metadataReply("propertyKey", s.propKeys), nil
		}
	}
	if handle == nil {
		return nil, redis.Error("ERR unknown command '" + cmd + "'")
	}
	return handle(ctx, cmd, args)
}

// commands returns the recorded calls, optionally filtered by command name.
func (s *fakeServer) commands(cmd string) []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []call
	for _, c := range s.calls {
		if cmd == "" || c.cmd == cmd {
			out = append(out, c)
		}
	}
	return out
}

func (s *fakeServer) metadataCalls() []call {
	var out []call
	for _, c := range s.commands(CmdQuery) {
		if q, ok := c.args[1].(string); ok && len(q) > 8 && q[:8] == "CALL db." {
			out = append(out, c)
		}
	}
	return out
}

type fakeConn struct {
	srv *fakeServer
	id  int

	mu  sync.Mutex
	err error
}

var _ redis.ConnWithContext = (*fakeConn)(nil)

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = errors.New("fake connection closed")
	}
	return nil
}

func (c *fakeConn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *fakeConn) Do(cmd string, args ...interface{}) (interface{}, error) {
	return c.DoContext(context.Background(), cmd, args...)
}

func (c *fakeConn) DoContext(ctx context.Context, cmd string, args ...interface{}) (interface{}, error) {
	if cmd == "" {
		return nil, nil
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	reply, err := c.srv.serve(ctx, c, cmd, args)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
	}
	return reply, err
}

func (c *fakeConn) Send(string, ...interface{}) error { return errors.New("not supported") }
func (c *fakeConn) Flush() error                      { return errors.New("not supported") }
func (c *fakeConn) Receive() (interface{}, error)     { return nil, errors.New("not supported") }

func (c *fakeConn) ReceiveContext(context.Context) (interface{}, error) {
	return nil, errors.New("not supported")
}

// ============================================================================
// Reply helpers
// ============================================================================

func bulk(s string) []byte { return []byte(s) }

func list(v ...interface{}) []interface{} { return v }

func cell(t resultset.ValueType, payload interface{}) []interface{} {
	return list(int64(t), payload)
}

func header(names ...string) []interface{} {
	h := make([]interface{}, len(names))
	for i, n := range names {
		h[i] = list(int64(resultset.ColumnScalar), bulk(n))
	}
	return h
}

func stats(lines ...string) []interface{} {
	out := make([]interface{}, 0, len(lines)+1)
	for _, l := range lines {
		out = append(out, bulk(l))
	}
	return append(out, bulk("Query internal execution time: 0.25 milliseconds"))
}

func metadataReply(column string, names []string) []interface{} {
	rows := make([]interface{}, len(names))
	for i, n := range names {
		rows[i] = list(cell(resultset.ValueString, bulk(n)))
	}
	return list(header(column), rows, stats())
}

// personReply returns one row holding (:person {name: 'roi', age: 32}).
func personReply() []interface{} {
	node := list(int64(0), list(int64(0)), list(
		list(int64(0), int64(resultset.ValueString), bulk("roi")),
		list(int64(1), int64(resultset.ValueInteger), int64(32)),
	))
	return list(header("p"), list(list(cell(resultset.ValueNode, node))), stats())
}

func replyWith(reply interface{}) handlerFunc {
	return func(context.Context, string, []interface{}) (interface{}, error) {
		return reply, nil
	}
}

func newTestClient(t *testing.T, srv *fakeServer, opts ...Option) *Client {
	t.Helper()
	cfg := config.DefaultConfig()
	c, err := New(cfg, append([]Option{WithDial(srv.dial)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// ============================================================================
// Construction
// ============================================================================

func TestNew(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		c, err := New(nil)
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, "localhost:6379", c.cfg.Redis.Addr)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Redis.Addr = ""
		_, err := New(cfg)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("config is copied", func(t *testing.T) {
		cfg := config.DefaultConfig()
		c, err := New(cfg)
		require.NoError(t, err)
		defer c.Close()
		cfg.Redis.Addr = "elsewhere:1"
		assert.Equal(t, "localhost:6379", c.cfg.Redis.Addr)
	})
}

// ============================================================================
// Query dispatch
// ============================================================================

func TestQueryCommand(t *testing.T) {
	tests := []struct {
		name   string
		run    func(c *Client) error
		cmd    string
		expect []interface{}
	}{
		{
			name: "plain query",
			run: func(c *Client) error {
				_, err := c.Query(context.Background(), "social", "MATCH (n) RETURN n", nil)
				return err
			},
			cmd:    CmdQuery,
			expect: []interface{}{"social", "MATCH (n) RETURN n", "--compact"},
		},
		{
			name: "parameters sorted into prefix",
			run: func(c *Client) error {
				_, err := c.Query(context.Background(), "social", "MATCH (p:person {name: $name}) RETURN p",
					map[string]interface{}{"name": "roi", "age": 32})
				return err
			},
			cmd:    CmdQuery,
			expect: []interface{}{"social", "CYPHER age=32 name='roi' MATCH (p:person {name: $name}) RETURN p", "--compact"},
		},
		{
			name: "server timeout argument",
			run: func(c *Client) error {
				_, err := c.Query(context.Background(), "social", "MATCH (n) RETURN n", nil, WithTimeout(1500*time.Millisecond))
				return err
			},
			cmd:    CmdQuery,
			expect: []interface{}{"social", "MATCH (n) RETURN n", "--compact", "timeout", int64(1500)},
		},
		{
			name: "timeout rounds up to a millisecond",
			run: func(c *Client) error {
				_, err := c.Query(context.Background(), "social", "RETURN 1", nil, WithTimeout(time.Millisecond+time.Nanosecond))
				return err
			},
			cmd:    CmdQuery,
			expect: []interface{}{"social", "RETURN 1", "--compact", "timeout", int64(2)},
		},
		{
			name: "read-only query",
			run: func(c *Client) error {
				_, err := c.ReadOnlyQuery(context.Background(), "social", "MATCH (n) RETURN count(n)", nil)
				return err
			},
			cmd:    CmdROQuery,
			expect: []interface{}{"social", "MATCH (n) RETURN count(n)", "--compact"},
		},
		{
			name: "queryf quotes strings",
			run: func(c *Client) error {
				_, err := c.Queryf(context.Background(), "social", "MATCH (n) WHERE n.s1=%s RETURN n", `S"'`)
				return err
			},
			cmd:    CmdQuery,
			expect: []interface{}{"social", `MATCH (n) WHERE n.s1="S\"'" RETURN n`, "--compact"},
		},
		{
			name: "procedure call",
			run: func(c *Client) error {
				_, err := c.CallProcedure(context.Background(), "social", "db.idx.fulltext.queryNodes",
					[]interface{}{"person", "roi"}, []string{"node"})
				return err
			},
			cmd:    CmdQuery,
			expect: []interface{}{"social", "CALL db.idx.fulltext.queryNodes('person','roi') YIELD node", "--compact"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeServer(replyWith(list(stats())))
			c := newTestClient(t, srv)

			require.NoError(t, tt.run(c))
			calls := srv.commands(tt.cmd)
			require.Len(t, calls, 1)
			assert.Equal(t, tt.expect, calls[0].args)
		})
	}
}

func TestQueryConfiguredServerTimeout(t *testing.T) {
	srv := newFakeServer(replyWith(list(stats())))
	cfg := config.DefaultConfig()
	cfg.Query.ServerTimeout = 250 * time.Millisecond
	c, err := New(cfg, WithDial(srv.dial))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Query(context.Background(), "social", "RETURN 1", nil)
	require.NoError(t, err)
	_, err = c.Query(context.Background(), "social", "RETURN 1", nil, WithTimeout(time.Second))
	require.NoError(t, err)

	calls := srv.commands(CmdQuery)
	require.Len(t, calls, 2)
	assert.Equal(t, int64(250), calls[0].args[4])
	assert.Equal(t, int64(1000), calls[1].args[4])
}

func TestQueryUnsupportedParameter(t *testing.T) {
	srv := newFakeServer(replyWith(list(stats())))
	c := newTestClient(t, srv)

	_, err := c.Query(context.Background(), "social", "RETURN $x", map[string]interface{}{"x": struct{}{}})
	require.Error(t, err)
	assert.Empty(t, srv.commands(CmdQuery), "nothing is sent for an unrenderable parameter")
}

func TestQueryStatistics(t *testing.T) {
	srv := newFakeServer(replyWith(list(stats("Labels added: 1", "Nodes created: 1", "Properties set: 2"))))
	c := newTestClient(t, srv)

	rs, err := c.Query(context.Background(), "social", "CREATE (:person {name: 'roi', age: 32})", nil)
	require.NoError(t, err)
	assert.True(t, rs.Empty())
	assert.Equal(t, 1, rs.Statistics().NodesCreated())
	assert.Equal(t, 1, rs.Statistics().LabelsAdded())
	assert.Equal(t, 2, rs.Statistics().PropertiesSet())
	assert.InDelta(t, 0.25, rs.Statistics().QueryInternalExecutionTime(), 1e-9)
}

// ============================================================================
// Metadata resolution
// ============================================================================

func TestQueryResolvesMetadataOnSameConnection(t *testing.T) {
	srv := newFakeServer(replyWith(personReply()))
	c := newTestClient(t, srv)

	rs, err := c.Query(context.Background(), "social", "MATCH (p:person) RETURN p", nil)
	require.NoError(t, err)
	require.Equal(t, 1, rs.Size())

	rec, err := rs.Next()
	require.NoError(t, err)
	n, ok := rec.GetByIndex(0).(graph.Node)
	require.True(t, ok)
	assert.Equal(t, []string{"person"}, n.Labels())
	assert.Equal(t, map[string]interface{}{"name": "roi", "age": int64(32)}, n.Properties())

	meta := srv.metadataCalls()
	require.Len(t, meta, 2, "labels and property keys")
	query := srv.commands(CmdQuery)[0]
	for _, m := range meta {
		assert.Equal(t, query.conn, m.conn, "reload runs on the connection that got the reply")
		assert.Equal(t, "social", m.args[0])
		assert.Equal(t, "--compact", m.args[2])
	}

	t.Run("second query hits the cache", func(t *testing.T) {
		_, err := c.Query(context.Background(), "social", "MATCH (p:person) RETURN p", nil)
		require.NoError(t, err)
		assert.Len(t, srv.metadataCalls(), 2)

		st := c.CacheStats()
		assert.Equal(t, 2, st.Labels)
		assert.Equal(t, 2, st.PropertyKeys)
		assert.Equal(t, uint64(2), st.Refreshes)
	})

	t.Run("graphs have separate caches", func(t *testing.T) {
		_, err := c.Query(context.Background(), "other", "MATCH (p:person) RETURN p", nil)
		require.NoError(t, err)
		assert.Len(t, srv.metadataCalls(), 4)
	})
}

func TestQueryUnknownLabelAfterReload(t *testing.T) {
	srv := newFakeServer(replyWith(personReply()))
	srv.labels = nil
	c := newTestClient(t, srv)

	_, err := c.Query(context.Background(), "social", "MATCH (p:person) RETURN p", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inconsistent graph metadata")
}

// ============================================================================
// Errors
// ============================================================================

func TestQueryErrors(t *testing.T) {
	tests := []struct {
		name      string
		handle    handlerFunc
		timeout   bool
		queryErr  string
		assertErr func(t *testing.T, err error)
	}{
		{
			name: "syntax error reply",
			handle: func(context.Context, string, []interface{}) (interface{}, error) {
				return nil, redis.Error("errMsg: Invalid input 'X'")
			},
			queryErr: "errMsg: Invalid input 'X'",
		},
		{
			name:     "runtime error inside reply",
			handle:   replyWith(list(header("x"), list(), redis.Error("Division by zero"))),
			queryErr: "Division by zero",
		},
		{
			name: "server timeout",
			handle: func(context.Context, string, []interface{}) (interface{}, error) {
				return nil, redis.Error("Query timed out")
			},
			timeout:  true,
			queryErr: "Query timed out",
		},
		{
			name:   "malformed reply",
			handle: replyWith(list(bulk("a"), bulk("b"))),
			assertErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, resultset.ErrProtocol)
			},
		},
		{
			name: "transport failure",
			handle: func(context.Context, string, []interface{}) (interface{}, error) {
				return nil, errors.New("connection reset by peer")
			},
			assertErr: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "GRAPH.QUERY social: connection reset by peer")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeServer(tt.handle)
			c := newTestClient(t, srv)

			_, err := c.Query(context.Background(), "social", "RETURN 1", nil)
			require.Error(t, err)
			assert.Equal(t, tt.timeout, errors.Is(err, ErrTimeout))

			var qe *QueryError
			if tt.queryErr != "" {
				require.ErrorAs(t, err, &qe)
				assert.Equal(t, tt.queryErr, qe.Message())
				assert.Equal(t, CmdQuery, qe.Command)
				assert.Equal(t, "social", qe.Graph)
			} else {
				assert.False(t, errors.As(err, &qe))
			}
			if tt.assertErr != nil {
				tt.assertErr(t, err)
			}
		})
	}
}

func TestQueryClientDeadline(t *testing.T) {
	block := func(ctx context.Context, _ string, _ []interface{}) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	t.Run("context deadline", func(t *testing.T) {
		srv := newFakeServer(block)
		c := newTestClient(t, srv)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := c.Query(ctx, "social", "MATCH (n) RETURN n", nil)
		assert.ErrorIs(t, err, ErrTimeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("configured default deadline", func(t *testing.T) {
		srv := newFakeServer(block)
		cfg := config.DefaultConfig()
		cfg.Query.DefaultTimeout = 20 * time.Millisecond
		c, err := New(cfg, WithDial(srv.dial))
		require.NoError(t, err)
		defer c.Close()

		_, err = c.Query(context.Background(), "social", "MATCH (n) RETURN n", nil)
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("metadata reload finishes before release", func(t *testing.T) {
		srv := newFakeServer(replyWith(personReply()))
		var finished atomic.Bool
		srv.beforeMetadata = func(ctx context.Context) error {
			<-ctx.Done()
			time.Sleep(20 * time.Millisecond)
			finished.Store(true)
			return ctx.Err()
		}
		c := newTestClient(t, srv)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := c.Query(ctx, "social", "MATCH (p:person) RETURN p", nil)
		assert.ErrorIs(t, err, ErrTimeout)
		assert.True(t, finished.Load(), "connection released while the reload was still reading")
	})

	t.Run("broken connection is not reused", func(t *testing.T) {
		srv := newFakeServer(block)
		c := newTestClient(t, srv)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := c.Query(ctx, "social", "RETURN 1", nil)
		require.Error(t, err)

		srv.mu.Lock()
		srv.handle = replyWith(list(stats()))
		srv.mu.Unlock()
		_, err = c.Query(context.Background(), "social", "RETURN 1", nil)
		require.NoError(t, err)

		calls := srv.commands(CmdQuery)
		require.Len(t, calls, 2)
		assert.NotEqual(t, calls[0].conn, calls[1].conn)
	})
}

// ============================================================================
// Graph administration
// ============================================================================

func TestExplain(t *testing.T) {
	srv := newFakeServer(replyWith(list(bulk("Results"), bulk("    Project"), bulk("        All Node Scan | (n)"))))
	c := newTestClient(t, srv)

	plan, err := c.Explain(context.Background(), "social", "MATCH (n) RETURN n", map[string]interface{}{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Results", "    Project", "        All Node Scan | (n)"}, plan)

	calls := srv.commands(CmdExplain)
	require.Len(t, calls, 1)
	assert.Equal(t, []interface{}{"social", "CYPHER x=1 MATCH (n) RETURN n"}, calls[0].args)
}

func TestDeleteGraph(t *testing.T) {
	srv := newFakeServer(func(_ context.Context, cmd string, _ []interface{}) (interface{}, error) {
		if cmd == CmdDelete {
			return bulk("Graph removed, internal execution time: 0.5 milliseconds"), nil
		}
		return personReply(), nil
	})
	c := newTestClient(t, srv)

	_, err := c.Query(context.Background(), "social", "MATCH (p) RETURN p", nil)
	require.NoError(t, err)
	require.Equal(t, 2, c.CacheStats().Labels)

	msg, err := c.DeleteGraph(context.Background(), "social")
	require.NoError(t, err)
	assert.Contains(t, msg, "Graph removed")
	assert.Equal(t, 0, c.CacheStats().Labels, "deleting a graph drops its metadata")

	srv.mu.Lock()
	srv.labels = []string{"country", "person"}
	srv.mu.Unlock()

	rs, err := c.Query(context.Background(), "social", "MATCH (p) RETURN p", nil)
	require.NoError(t, err)
	rec, err := rs.Next()
	require.NoError(t, err)
	n := rec.GetByIndex(0).(graph.Node)
	assert.Equal(t, []string{"country"}, n.Labels(), "ids resolve against the recreated graph")
}

func TestDeleteGraphError(t *testing.T) {
	srv := newFakeServer(func(context.Context, string, []interface{}) (interface{}, error) {
		return nil, redis.Error("ERR Invalid graph operation on empty key")
	})
	c := newTestClient(t, srv)

	_, err := c.DeleteGraph(context.Background(), "missing")
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, CmdDelete, qe.Command)
	assert.Equal(t, "missing", qe.Graph)
}

func TestListGraphsAndPing(t *testing.T) {
	srv := newFakeServer(replyWith(list(bulk("social"), bulk("imdb"))))
	c := newTestClient(t, srv)

	graphs, err := c.ListGraphs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"social", "imdb"}, graphs)
	assert.Empty(t, srv.commands(CmdList)[0].args)

	assert.NoError(t, c.Ping(context.Background()))
}

// ============================================================================
// Sessions
// ============================================================================

func TestSession(t *testing.T) {
	srv := newFakeServer(replyWith(list(stats("Nodes created: 1"))))
	c := newTestClient(t, srv)

	// Hold a second connection so the pool has a choice.
	other, err := c.Session(context.Background())
	require.NoError(t, err)
	defer other.Close()

	s, err := c.Session(context.Background())
	require.NoError(t, err)

	_, err = s.Query(context.Background(), "social", "CREATE ()", nil)
	require.NoError(t, err)
	_, err = s.ReadOnlyQuery(context.Background(), "social", "MATCH (n) RETURN n", nil)
	require.NoError(t, err)
	_, err = s.Queryf(context.Background(), "social", "CREATE ({s: %s})", "x")
	require.NoError(t, err)

	var conns []int
	for _, cl := range srv.commands("") {
		if cl.cmd == CmdQuery || cl.cmd == CmdROQuery {
			conns = append(conns, cl.conn)
		}
	}
	require.Len(t, conns, 3)
	assert.Equal(t, conns[0], conns[1])
	assert.Equal(t, conns[0], conns[2])

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err = s.Query(context.Background(), "social", "RETURN 1", nil)
	assert.ErrorIs(t, err, ErrClosed)
}

// ============================================================================
// Instrumentation
// ============================================================================

func TestMetrics(t *testing.T) {
	srv := newFakeServer(func(_ context.Context, _ string, args []interface{}) (interface{}, error) {
		if args[1] == "BAD" {
			return nil, redis.Error("errMsg: Invalid input")
		}
		return personReply(), nil
	})
	rec := metrics.New(prometheus.NewRegistry())
	c := newTestClient(t, srv, WithMetrics(rec))

	_, err := c.Query(context.Background(), "social", "MATCH (p) RETURN p", nil)
	require.NoError(t, err)
	_, err = c.Query(context.Background(), "social", "BAD", nil)
	require.Error(t, err)
	_, err = c.ReadOnlyQuery(context.Background(), "social", "MATCH (p) RETURN p", nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.QueriesTotal.WithLabelValues(CmdQuery, metrics.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.QueriesTotal.WithLabelValues(CmdQuery, metrics.StatusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.QueriesTotal.WithLabelValues(CmdROQuery, metrics.StatusOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.RecordsDecoded))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.MetadataRefreshes.WithLabelValues("labels")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.MetadataRefreshes.WithLabelValues("property_keys")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.ConnectionsInFlight))
}

// ============================================================================
// Concurrency
// ============================================================================

func TestConcurrentQueries(t *testing.T) {
	srv := newFakeServer(replyWith(personReply()))
	c := newTestClient(t, srv)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		i := i
		g.Go(func() error {
			rs, err := c.Query(context.Background(), "social", "MATCH (p:person) RETURN p", nil)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			rec, err := rs.Next()
			if err != nil {
				return err
			}
			n := rec.GetByIndex(0).(graph.Node)
			if !n.HasLabel("person") {
				return fmt.Errorf("query %d: labels %v", i, n.Labels())
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	st := c.CacheStats()
	assert.Equal(t, 2, st.Labels)
	assert.GreaterOrEqual(t, len(srv.metadataCalls()), 2)
}
