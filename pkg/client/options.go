package client

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/rs/zerolog"

	"github.com/orneryd/rgraph/pkg/metrics"
)

// Option configures a Client.
type Option func(*Client)

// WithDial replaces the TCP dialer used by the connection pool.
func WithDial(dial func(ctx context.Context) (redis.Conn, error)) Option {
	return func(c *Client) {
		c.dial = dial
	}
}

// WithLogger sets the logger. The client logs nothing without one.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

// QueryOption configures a single query.
type QueryOption func(*queryOptions)

type queryOptions struct {
	serverTimeout time.Duration
}

// WithTimeout asks the server to abort the query after d. The value is sent as
// the "timeout" argument in milliseconds, rounded up. It does not bound the
// client-side wait; use a context deadline for that.
func WithTimeout(d time.Duration) QueryOption {
	return func(o *queryOptions) {
		o.serverTimeout = d
	}
}

func (o queryOptions) timeoutMillis() int64 {
	if o.serverTimeout <= 0 {
		return 0
	}
	ms := int64((o.serverTimeout + time.Millisecond - 1) / time.Millisecond)
	return ms
}
