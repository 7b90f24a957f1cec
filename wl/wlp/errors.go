package wlp

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConnection means no compositor could be reached. Nothing can proceed
	// without one.
	ErrConnection = errors.New("unable to connect to wayland server")

	// ErrConnectionClosed is returned by every call once the connection has been
	// closed, either explicitly or after a fatal error. The fatal cause, when
	// there is one, is wrapped alongside.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrMalformed reports a framing or argument decoding failure. The stream
	// cannot be resynchronised afterwards, so it is always fatal.
	ErrMalformed = errors.New("malformed message")

	ErrUnknownObject      = errors.New("unknown object")
	ErrAlreadyBound       = errors.New("listener already bound")
	ErrUnknownGlobal      = errors.New("global not known")
	ErrInterfaceMismatch  = errors.New("interface does not match global")
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrIO matches every *OpError.
	ErrIO = errors.New("i/o error")

	errMessageTooLarge = errors.New("message too large")
)

// ProtocolError is a fatal error reported by the compositor through
// wl_display.error.
type ProtocolError struct {
	Object  ObjectID
	Code    uint32
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("obj: %d, code: %d -> %s", e.Object, e.Code, e.Message)
}

// OpError is a failed read or write on the underlying socket.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func (e *OpError) Is(target error) bool {
	return target == ErrIO
}

type closedError struct {
	cause error
}

func (e *closedError) Error() string {
	return "connection closed: " + e.cause.Error()
}

func (e *closedError) Unwrap() error {
	return e.cause
}

func (e *closedError) Is(target error) bool {
	return target == ErrConnectionClosed
}
