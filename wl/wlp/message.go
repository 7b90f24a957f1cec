package wlp

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
)

type fdSource interface {
	nextFD() (*os.File, error)
}

// Message is one decoded frame. The argument accessors read the payload in
// order; the first failure sticks and is reported by Done.
type Message struct {
	Sender ObjectID
	Opcode uint16

	payload []byte
	off     int
	err     error
	fds     fdSource
}

// Payload returns the raw argument bytes.
func (m *Message) Payload() []byte {
	return m.payload
}

func (m *Message) fail(format string, args ...interface{}) {
	if m.err == nil {
		m.err = errors.Wrapf(ErrMalformed, "object %d opcode %d: "+format, append([]interface{}{m.Sender, m.Opcode}, args...)...)
	}
}

func (m *Message) next(n int) []byte {
	if m.err != nil {
		return nil
	}
	if n < 0 || m.off+n > len(m.payload) {
		m.fail("payload too short (need %d bytes at offset %d of %d)", n, m.off, len(m.payload))
		return nil
	}
	b := m.payload[m.off : m.off+n]
	m.off += n
	return b
}

func (m *Message) Uint32() uint32 {
	b := m.next(4)
	if b == nil {
		return 0
	}
	return hostByteOrder.Uint32(b)
}

func (m *Message) Int32() int32 {
	return int32(m.Uint32())
}

// Fixed decodes a signed 24.8 fixed point number.
func (m *Message) Fixed() float64 {
	return fixedToFloat64(m.Int32())
}

// Object decodes an object reference. Zero is the null object.
func (m *Message) Object() ObjectID {
	return ObjectID(m.Uint32())
}

func (m *Message) NewID() ObjectID {
	return ObjectID(m.Uint32())
}

// Str decodes a string. A zero length is the null string and yields "".
func (m *Message) Str() string {
	l := int(m.Uint32())
	if m.err != nil || l == 0 {
		return ""
	}
	b := m.next(padded(l))
	if b == nil {
		return ""
	}
	if b[l-1] != 0 {
		m.fail("string is not NUL terminated")
		return ""
	}
	return string(b[:l-1])
}

func (m *Message) Array() []byte {
	l := int(m.Uint32())
	if m.err != nil {
		return nil
	}
	b := m.next(padded(l))
	if b == nil {
		return nil
	}
	return append([]byte(nil), b[:l]...)
}

// FD takes the next received file descriptor. Descriptors are matched to
// messages strictly in arrival order.
func (m *Message) FD() *os.File {
	if m.err != nil {
		return nil
	}
	if m.fds == nil {
		m.fail("no descriptor source")
		return nil
	}
	f, err := m.fds.nextFD()
	if err != nil {
		m.fail("%v", err)
		return nil
	}
	return f
}

// Done reports the first decoding error, or ErrMalformed when arguments are
// left over, meaning the sender used a different signature.
func (m *Message) Done() error {
	if m.err != nil {
		return m.err
	}
	if m.off != len(m.payload) {
		m.fail("%d trailing bytes", len(m.payload)-m.off)
	}
	return m.err
}

// Encoder builds the argument payload of a message.
type Encoder struct {
	buf  bytes.Buffer
	file *os.File
}

func (e *Encoder) PutUint32(v uint32) {
	var b [4]byte
	hostByteOrder.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) PutInt32(v int32) {
	e.PutUint32(uint32(v))
}

func (e *Encoder) PutFixed(v float64) {
	e.PutInt32(float64ToFixed(v))
}

func (e *Encoder) PutObject(id ObjectID) {
	e.PutUint32(uint32(id))
}

func (e *Encoder) PutNewID(id ObjectID) {
	e.PutUint32(uint32(id))
}

func (e *Encoder) PutString(s string) {
	e.PutUint32(uint32(len(s) + 1))
	e.buf.WriteString(s)
	e.buf.WriteByte(0)
	if (len(s)+1)%4 != 0 {
		e.buf.Write(make([]byte, 4-(len(s)+1)%4))
	}
}

func (e *Encoder) PutArray(b []byte) {
	e.PutUint32(uint32(len(b)))
	e.buf.Write(b)
	if len(b)%4 != 0 {
		e.buf.Write(make([]byte, 4-len(b)%4))
	}
}

// PutFD attaches a descriptor. A message carries at most one.
func (e *Encoder) PutFD(f *os.File) {
	e.file = f
}

func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

func (e *Encoder) File() *os.File {
	return e.file
}
