package wlp

import (
	"bytes"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	headerSize     = 8
	maxMessageSize = 1<<16 - 1
	bufferSize     = 4096
	maxFDsOut      = 28
)

// Conn frames wayland messages over a unix stream socket. File descriptors
// travel as SCM_RIGHTS control messages next to the bytes of the message they
// belong to.
//
// Send, Flush and Receive must be called from a single goroutine. Close may
// be called from anywhere and unblocks a pending Receive.
type Conn struct {
	c *net.UnixConn

	out    bytes.Buffer
	outFDs []int

	in   []byte
	rbuf []byte
	oob  []byte
	fds  []*os.File

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps an established socket connection.
func NewConn(c *net.UnixConn) *Conn {
	return &Conn{
		c:    c,
		rbuf: make([]byte, bufferSize),
		oob:  make([]byte, unix.CmsgSpace(maxFDsOut*4)),
	}
}

// Send queues one message. When fd is not nil it is duplicated right away, so
// the caller keeps ownership of its copy; the duplicate is closed once it has
// been handed to the kernel.
func (c *Conn) Send(id ObjectID, opcode uint16, args []byte, fd *os.File) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	size := headerSize + len(args)
	if size > maxMessageSize {
		return errors.Wrapf(errMessageTooLarge, "object %d opcode %d: %d bytes", id, opcode, size)
	}
	if len(args)%4 != 0 {
		return errors.Errorf("object %d opcode %d: arguments not word aligned", id, opcode)
	}

	if c.out.Len()+size > bufferSize || (fd != nil && len(c.outFDs) == maxFDsOut) {
		if err := c.Flush(); err != nil {
			return err
		}
	}

	if fd != nil {
		dup, err := unix.FcntlInt(fd.Fd(), unix.F_DUPFD_CLOEXEC, 0)
		if err != nil {
			return &OpError{Op: "dup", Err: err}
		}
		c.outFDs = append(c.outFDs, dup)
	}

	var hdr [headerSize]byte
	EncodeHeader(hdr[:], id, opcode, size)
	c.out.Write(hdr[:])
	c.out.Write(args)
	return nil
}

// Flush writes every queued message. All queued descriptors ride along with
// the first chunk written.
func (c *Conn) Flush() error {
	if c.closed.Load() {
		c.releaseFDs()
		return ErrConnectionClosed
	}
	if c.out.Len() == 0 {
		return nil
	}
	defer c.releaseFDs()
	defer c.out.Reset()

	buf := c.out.Bytes()
	var oob []byte
	if len(c.outFDs) > 0 {
		oob = unix.UnixRights(c.outFDs...)
	}
	for len(buf) > 0 {
		n, _, err := c.c.WriteMsgUnix(buf, oob, nil)
		if err != nil {
			return c.opError("write", err)
		}
		buf = buf[n:]
		oob = nil
	}
	return nil
}

func (c *Conn) releaseFDs() {
	for _, fd := range c.outFDs {
		unix.Close(fd)
	}
	c.outFDs = c.outFDs[:0]
}

// Receive blocks until one complete message has arrived.
func (c *Conn) Receive() (*Message, error) {
	for {
		m, err := c.next()
		if err != nil || m != nil {
			return m, err
		}
		if err := c.fill(); err != nil {
			return nil, err
		}
	}
}

func (c *Conn) next() (*Message, error) {
	if len(c.in) < headerSize {
		return nil, nil
	}
	id, opcode, size := DecodeHeader(c.in)
	if size < headerSize || size%4 != 0 {
		return nil, errors.Wrapf(ErrMalformed, "object %d opcode %d: invalid size %d", id, opcode, size)
	}
	if len(c.in) < size {
		return nil, nil
	}
	m := &Message{
		Sender:  id,
		Opcode:  opcode,
		payload: append([]byte(nil), c.in[headerSize:size]...),
		fds:     c,
	}
	c.in = c.in[size:]
	return m, nil
}

func (c *Conn) fill() error {
	n, oobn, _, _, err := c.c.ReadMsgUnix(c.rbuf, c.oob)
	if oobn > 0 {
		if ferr := c.takeFDs(c.oob[:oobn]); ferr != nil {
			return ferr
		}
	}
	if n > 0 {
		c.in = append(c.in, c.rbuf[:n]...)
		return nil
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return c.eof()
		}
		return c.opError("read", err)
	}
	if oobn == 0 {
		return c.eof()
	}
	return nil
}

func (c *Conn) eof() error {
	if len(c.in) > 0 {
		return errors.Wrapf(ErrMalformed, "stream ended with %d bytes of a partial message", len(c.in))
	}
	return ErrConnectionClosed
}

func (c *Conn) takeFDs(oob []byte) error {
	scms, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return errors.Wrap(ErrMalformed, "ParseSocketControlMessage failed")
	}
	for i := range scms {
		fds, err := unix.ParseUnixRights(&scms[i])
		if err != nil {
			continue
		}
		for _, fd := range fds {
			c.fds = append(c.fds, os.NewFile(uintptr(fd), "wayland-fd"))
		}
	}
	return nil
}

func (c *Conn) nextFD() (*os.File, error) {
	if len(c.fds) == 0 {
		return nil, errors.Wrap(ErrMalformed, "missing file descriptor")
	}
	f := c.fds[0]
	c.fds = c.fds[1:]
	return f, nil
}

func (c *Conn) opError(op string, err error) error {
	if c.closed.Load() || errors.Is(err, net.ErrClosed) {
		return ErrConnectionClosed
	}
	return &OpError{Op: op, Err: err}
}

// SetReadDeadline bounds the next blocking Receive.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.c.SetReadDeadline(t)
}

// Close closes the socket. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.c.Close()
	})
	return c.closeErr
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	return c.closed.Load()
}
