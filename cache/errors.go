package cache

import (
	"errors"
	"fmt"
)

// Kind classifies façade errors. Store and transport errors are never
// reclassified; they pass through to the caller unchanged.
type Kind int

const (
	// KindInvalidType means the caller passed a value of the wrong shape,
	// e.g. a non-map to a dictionary operation.
	KindInvalidType Kind = iota + 1
	// KindEncode means a value could not be serialized for storage
	// (non-string map keys, unsupported value types).
	KindEncode
	// KindDecode means a stored payload could not be decoded back
	// (corrupt or foreign data). Surfaced, never swallowed.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindInvalidType:
		return "invalid type"
	case KindEncode:
		return "encode"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the typed error returned by dictionary validation and codec
// failures.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s error: %s: %v", e.Op, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Op, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a façade *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}

func newError(op string, kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}
