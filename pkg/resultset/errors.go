package resultset

import "errors"

// Common errors
var (
	// ErrProtocol reports a reply whose overall shape is not a compact result.
	ErrProtocol = errors.New("protocol error")

	// ErrDecode reports a cell that cannot be decoded: unknown type tag, wrong
	// arity or an unparsable payload.
	ErrDecode = errors.New("decode error")

	// ErrEndOfSequence is returned by ResultSet.Next once every record was read.
	ErrEndOfSequence = errors.New("no more records")
)
