package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/gomodule/redigo/redis"
)

// Common errors
var (
	// ErrTimeout reports a query abandoned on the client deadline or stopped
	// by the server's own timeout. It wraps context.DeadlineExceeded.
	ErrTimeout = fmt.Errorf("query timed out: %w", context.DeadlineExceeded)

	// ErrClosed is returned by Session methods after Close.
	ErrClosed = errors.New("session closed")
)

// QueryError is a server error reply, such as a Cypher syntax error or a
// runtime failure reported inside a result.
type QueryError struct {
	Command string
	Graph   string
	Err     redis.Error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Command, e.Graph, string(e.Err))
}

// Unwrap exposes the underlying redis.Error.
func (e *QueryError) Unwrap() error { return e.Err }

// Message returns the server's error text.
func (e *QueryError) Message() string { return string(e.Err) }

// classify maps transport, context and server errors onto the client's error
// vocabulary. It never swallows the original cause.
func classify(command, graph string, err error) error {
	if err == nil {
		return nil
	}

	var serverErr redis.Error
	if errors.As(err, &serverErr) {
		qe := &QueryError{Command: command, Graph: graph, Err: serverErr}
		if isServerTimeout(serverErr) {
			return fmt.Errorf("%w: %w", ErrTimeout, qe)
		}
		return qe
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s %s", ErrTimeout, command, graph)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s %s: %w", ErrTimeout, command, graph, err)
	}

	return fmt.Errorf("%s %s: %w", command, graph, err)
}

func isServerTimeout(e redis.Error) bool {
	return strings.Contains(strings.ToLower(string(e)), "timed out")
}

func isTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
