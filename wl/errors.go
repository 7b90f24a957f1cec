package wl

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedFormat is returned for pixel formats the compositor did
	// not advertise or whose layout is unknown here.
	ErrUnsupportedFormat = errors.New("unsupported pixel format")

	// ErrOutOfBounds is returned when a buffer or pixel does not fit inside
	// its backing memory.
	ErrOutOfBounds = errors.New("out of bounds")

	ErrInvalidSize = errors.New("invalid size")

	// ErrPrematureCommit is returned when a buffer is committed to a window
	// before its first configure has been acknowledged. Nothing is sent.
	ErrPrematureCommit = errors.New("buffer committed before the first configure was acknowledged")

	ErrUnknownSerial = errors.New("unknown configure serial")

	ErrNoPointer = errors.New("seat has no pointer")
)
