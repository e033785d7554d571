package lc

import "fmt"

// Code is a stable, negative error code identifying a class of failure.
// It mirrors the fixed error enumeration of the underlying protocol so
// callers can compare against it with errors.Is.
type Code int

const (
	ErrInvalidParams   Code = -1
	ErrMsgAttrUnknown  Code = -2
	ErrAlloc           Code = -3
	ErrSocketRequired  Code = -4
	ErrSocketListening Code = -5
	ErrSocketBind      Code = -6
	ErrSetsockopt      Code = -7
	ErrThreadCancel    Code = -8
	ErrThreadJoin      Code = -9
	ErrMulticastJoin   Code = -10
	ErrMulticastPart   Code = -11
	ErrInvalidBaseAddr Code = -12
	ErrMessageEmpty    Code = -13
)

func (c Code) String() string {
	switch c {
	case ErrInvalidParams:
		return "invalid parameters"
	case ErrMsgAttrUnknown:
		return "unknown message attribute"
	case ErrAlloc:
		return "allocation failure"
	case ErrSocketRequired:
		return "socket required"
	case ErrSocketListening:
		return "socket already listening"
	case ErrSocketBind:
		return "socket bind failed"
	case ErrSetsockopt:
		return "setsockopt failed"
	case ErrThreadCancel:
		return "listener cancel failed"
	case ErrThreadJoin:
		return "listener join failed"
	case ErrMulticastJoin:
		return "multicast join failed"
	case ErrMulticastPart:
		return "multicast part failed"
	case ErrInvalidBaseAddr:
		return "invalid base address"
	case ErrMessageEmpty:
		return "message empty"
	default:
		return fmt.Sprintf("lc error %d", int(c))
	}
}

// Error wraps a Code with the underlying OS error, when one caused it,
// so callers that need the raw errno can still get at it via errors.Unwrap.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Error makes a Code usable as an errors.Is target.
func (c Code) Error() string { return c.String() }

// Is reports whether target is the Code e carries, so that
// errors.Is(err, ErrSocketListening) matches an *Error with that code.
func (e *Error) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.Code
}

func newError(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}
