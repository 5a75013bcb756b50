// Package client dispatches Cypher queries to a RedisGraph server.
//
// A Client owns a redigo connection pool and one metadata cache per graph.
// Each query borrows a pooled connection, sends GRAPH.QUERY (or
// GRAPH.RO_QUERY) with the --compact flag, decodes the reply into a
// resultset.ResultSet and returns the connection. Labels, relationship types
// and property keys are resolved through the graph's cache; a miss reloads the
// category with CALL db.labels() and friends on the same connection.
//
// Example Usage:
//
//	cfg := config.LoadFromEnv()
//	c, err := client.New(cfg, client.WithLogger(logging.New(logging.Config{Level: "debug"})))
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	rs, err := c.Query(ctx, "social",
//		"MATCH (a:person {name: $name}) RETURN a.age",
//		map[string]interface{}{"name": "roi"})
//	if err != nil {
//		return err
//	}
//	for rs.HasNext() {
//		rec, _ := rs.Next()
//		fmt.Println(rec.GetString("a.age"))
//	}
//
// All Client methods are safe for concurrent use. Concurrent callers use
// independent connections and share the metadata caches.
//
// Timeouts:
//
// The caller's context bounds the whole exchange. When it has no deadline,
// Query.DefaultTimeout from the configuration applies. An expired deadline
// abandons the request, the pool discards the connection and ErrTimeout is
// returned. WithTimeout additionally asks the server to stop the query; a
// server-side timeout is also reported as ErrTimeout.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/rs/zerolog"

	"github.com/orneryd/rgraph/pkg/cache"
	"github.com/orneryd/rgraph/pkg/config"
	"github.com/orneryd/rgraph/pkg/cypher"
	"github.com/orneryd/rgraph/pkg/logging"
	"github.com/orneryd/rgraph/pkg/metrics"
	"github.com/orneryd/rgraph/pkg/pool"
	"github.com/orneryd/rgraph/pkg/resultset"
)

// Graph commands.
const (
	CmdQuery   = "GRAPH.QUERY"
	CmdROQuery = "GRAPH.RO_QUERY"
	CmdExplain = "GRAPH.EXPLAIN"
	CmdDelete  = "GRAPH.DELETE"
	CmdList    = "GRAPH.LIST"

	compactFlag = "--compact"
)

// Client is a RedisGraph client backed by a connection pool.
type Client struct {
	cfg     config.Config
	pool    *redis.Pool
	caches  *cache.Registry
	dial    func(ctx context.Context) (redis.Conn, error)
	log     zerolog.Logger
	metrics *metrics.Recorder
}

// New creates a client. No connection is opened until the first command.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:    *cfg,
		caches: cache.NewRegistry(),
		log:    logging.Nop(),
	}
	c.dial = c.dialTCP
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.Component(c.log, "client")

	// Buffer pooling is process-wide.
	pool.Configure(pool.PoolConfig{Enabled: cfg.Pool.Enabled, MaxSize: cfg.Pool.MaxSize})

	c.pool = &redis.Pool{
		MaxIdle:     cfg.Redis.MaxIdle,
		MaxActive:   cfg.Redis.MaxActive,
		IdleTimeout: cfg.Redis.IdleTimeout,
		Wait:        cfg.Redis.Wait,
		DialContext: c.dial,
		TestOnBorrow: func(conn redis.Conn, lastUsed time.Time) error {
			if time.Since(lastUsed) < time.Minute {
				return nil
			}
			_, err := conn.Do("PING")
			return err
		},
	}

	c.log.Debug().Str("config", cfg.String()).Msg("client created")
	return c, nil
}

func (c *Client) dialTCP(ctx context.Context) (redis.Conn, error) {
	r := c.cfg.Redis
	opts := []redis.DialOption{
		redis.DialDatabase(r.Database),
		redis.DialConnectTimeout(r.DialTimeout),
		redis.DialReadTimeout(r.ReadTimeout),
		redis.DialWriteTimeout(r.WriteTimeout),
	}
	if r.Password != "" {
		opts = append(opts, redis.DialPassword(r.Password))
	}
	conn, err := redis.DialContext(ctx, "tcp", r.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RedisGraph at %s: %w", r.Addr, err)
	}
	return conn, nil
}

// Close closes the connection pool. Borrowed connections are closed when
// they are returned.
func (c *Client) Close() error {
	return c.pool.Close()
}

// Query runs a read-write query on graph.
//
// params are rendered into a CYPHER prefix; see cypher.BuildQuery for the
// supported value types.
func (c *Client) Query(ctx context.Context, graph, query string, params map[string]interface{}, opts ...QueryOption) (*resultset.ResultSet, error) {
	return c.withConn(ctx, CmdQuery, graph, func(ctx context.Context, conn redis.Conn) (*resultset.ResultSet, error) {
		return c.execute(ctx, conn, CmdQuery, graph, query, params, opts)
	})
}

// ReadOnlyQuery runs a query with GRAPH.RO_QUERY. The server rejects writes.
func (c *Client) ReadOnlyQuery(ctx context.Context, graph, query string, params map[string]interface{}, opts ...QueryOption) (*resultset.ResultSet, error) {
	return c.withConn(ctx, CmdROQuery, graph, func(ctx context.Context, conn redis.Conn) (*resultset.ResultSet, error) {
		return c.execute(ctx, conn, CmdROQuery, graph, query, params, opts)
	})
}

// Queryf formats a query with cypher.Format, quoting string arguments, and
// runs it without parameters.
//
// Example:
//
//	c.Queryf(ctx, "social", "MATCH (n) WHERE n.s1=%s RETURN n", `S"'`)
func (c *Client) Queryf(ctx context.Context, graph, format string, args ...interface{}) (*resultset.ResultSet, error) {
	return c.Query(ctx, graph, cypher.Format(format, args...), nil)
}

// CallProcedure runs CALL name(args...) [YIELD yields...] on graph.
func (c *Client) CallProcedure(ctx context.Context, graph, name string, args []interface{}, yields []string) (*resultset.ResultSet, error) {
	query, err := cypher.Procedure(name, args, yields)
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, graph, query, nil)
}

// Explain returns the execution plan of a query, one operation per line.
func (c *Client) Explain(ctx context.Context, graph, query string, params map[string]interface{}) ([]string, error) {
	text, err := cypher.BuildQuery(query, params)
	if err != nil {
		return nil, err
	}
	var plan []string
	err = c.simple(ctx, CmdExplain, graph, func(ctx context.Context, conn redis.Conn) error {
		plan, err = redis.Strings(redis.DoContext(conn, ctx, CmdExplain, graph, text))
		return err
	})
	return plan, err
}

// DeleteGraph removes graph from the server and drops its metadata cache.
// It returns the server's confirmation text.
func (c *Client) DeleteGraph(ctx context.Context, graph string) (string, error) {
	var msg string
	err := c.simple(ctx, CmdDelete, graph, func(ctx context.Context, conn redis.Conn) error {
		var err error
		msg, err = redis.String(redis.DoContext(conn, ctx, CmdDelete, graph))
		return err
	})
	if err != nil {
		return "", err
	}
	// The server reuses ids once the graph is recreated.
	c.caches.Remove(graph)
	return msg, nil
}

// ListGraphs returns the names of all graphs on the server.
func (c *Client) ListGraphs(ctx context.Context) ([]string, error) {
	var graphs []string
	err := c.simple(ctx, CmdList, "", func(ctx context.Context, conn redis.Conn) error {
		var err error
		graphs, err = redis.Strings(redis.DoContext(conn, ctx, CmdList))
		return err
	})
	return graphs, err
}

// Ping checks that the server answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.simple(ctx, "PING", "", func(ctx context.Context, conn redis.Conn) error {
		_, err := redis.DoContext(conn, ctx, "PING")
		return err
	})
}

// CacheStats returns aggregated metadata cache statistics.
func (c *Client) CacheStats() cache.Stats {
	return c.caches.Stats()
}

// deadline applies Query.DefaultTimeout when ctx has no deadline.
func (c *Client) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || c.cfg.Query.DefaultTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.Query.DefaultTimeout)
}

func (c *Client) borrow(ctx context.Context, command, graph string) (redis.Conn, error) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return nil, classify(command, graph, err)
	}
	c.metrics.ConnAcquired()
	return conn, nil
}

func (c *Client) release(conn redis.Conn) {
	conn.Close()
	c.metrics.ConnReleased()
}

func (c *Client) withConn(ctx context.Context, command, graph string, fn func(context.Context, redis.Conn) (*resultset.ResultSet, error)) (*resultset.ResultSet, error) {
	ctx, cancel := c.deadline(ctx)
	defer cancel()

	start := time.Now()
	conn, err := c.borrow(ctx, command, graph)
	if err != nil {
		c.observe(command, graph, start, 0, err)
		return nil, err
	}
	defer c.release(conn)
	return fn(ctx, conn)
}

// simple runs a command whose reply needs no result set decoding.
func (c *Client) simple(ctx context.Context, command, graph string, fn func(context.Context, redis.Conn) error) error {
	ctx, cancel := c.deadline(ctx)
	defer cancel()

	start := time.Now()
	conn, err := c.borrow(ctx, command, graph)
	if err != nil {
		c.observe(command, graph, start, 0, err)
		return err
	}
	defer c.release(conn)

	err = classify(command, graph, fn(ctx, conn))
	c.observe(command, graph, start, 0, err)
	return err
}

// execute sends one query on conn and decodes the reply. Metadata reloads
// triggered by the decoder run on the same connection.
func (c *Client) execute(ctx context.Context, conn redis.Conn, command, graph, query string, params map[string]interface{}, opts []QueryOption) (*resultset.ResultSet, error) {
	o := queryOptions{serverTimeout: c.cfg.Query.ServerTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	text, err := cypher.BuildQuery(query, params)
	if err != nil {
		return nil, err
	}
	args := []interface{}{graph, text, compactFlag}
	if ms := o.timeoutMillis(); ms > 0 {
		args = append(args, "timeout", ms)
	}

	start := time.Now()
	reply, err := redis.DoContext(conn, ctx, command, args...)
	if err != nil {
		err = classify(command, graph, err)
		c.observe(command, graph, start, 0, err)
		return nil, err
	}

	meta := c.caches.Get(graph).Bind(&connFetcher{client: c, conn: conn})
	rs, err := resultset.Parse(ctx, reply, meta)
	if err != nil {
		if ctx.Err() != nil {
			err = classify(command, graph, ctx.Err())
		} else {
			err = classify(command, graph, err)
		}
		c.observe(command, graph, start, 0, err)
		return nil, err
	}

	c.observe(command, graph, start, rs.Size(), nil)
	return rs, nil
}

func (c *Client) observe(command, graph string, start time.Time, rows int, err error) {
	d := time.Since(start)
	status := metrics.StatusOK
	switch {
	case err == nil:
	case isTimeout(err):
		status = metrics.StatusTimeout
	default:
		status = metrics.StatusError
	}
	c.metrics.ObserveQuery(command, status, d)
	c.metrics.ObserveRecords(rows)

	if err != nil {
		c.log.Warn().
			Str("command", command).
			Str("graph", graph).
			Dur("duration", d).
			Err(err).
			Msg("graph command failed")
		return
	}
	c.log.Debug().
		Str("command", command).
		Str("graph", graph).
		Dur("duration", d).
		Int("rows", rows).
		Msg("graph command completed")
}
