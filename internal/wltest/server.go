// Package wltest runs a scripted in-process compositor on one end of a socket
// pair. It answers the requests a client core needs to get a window on screen
// and lets tests inject events and inspect every request received.
package wltest

import (
	"net"
	"os"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/elliotmr/wayclient/wl/wlp"
)

// Request is one request received from the client.
type Request struct {
	Object    wlp.ObjectID
	Interface string
	Opcode    uint16
	Name      string // wire name, e.g. "wl_surface.commit"
	Payload   []byte
	File      *os.File
}

// Word returns the i-th 32-bit argument word.
func (r Request) Word(i int) uint32 {
	return wlp.HostByteOrder().Uint32(r.Payload[4*i:])
}

// Options shape what the compositor advertises.
type Options struct {
	Globals      []wlp.Global
	Formats      []uint32
	Capabilities uint32
	SeatName     string

	// ConfigureOnCommit sends the initial toplevel configure when a toplevel
	// surface is committed for the first time, with this size.
	ConfigureOnCommit bool
	Width, Height     int32
}

// DefaultOptions advertises compositor, shm, shell and a seat with a pointer.
func DefaultOptions() Options {
	return Options{
		Globals: []wlp.Global{
			{Name: 1, Interface: "wl_compositor", Version: 4},
			{Name: 2, Interface: "wl_shm", Version: 1},
			{Name: 3, Interface: "zxdg_shell_v6", Version: 1},
			{Name: 4, Interface: "wl_seat", Version: 5},
		},
		Formats:           []uint32{wlp.ShmFormatArgb8888, wlp.ShmFormatXrgb8888},
		Capabilities:      wlp.SeatCapabilityPointer,
		SeatName:          "seat0",
		ConfigureOnCommit: true,
		Width:             200,
		Height:            200,
	}
}

type toplevel struct {
	id         wlp.ObjectID
	xdgSurface wlp.ObjectID
	surface    wlp.ObjectID
	configured bool
	acked      bool
	closed     bool
	pending    map[uint32]bool
}

// Server is the compositor side of the socket pair.
type Server struct {
	opts   Options
	conn   *wlp.Conn
	client *net.UnixConn

	mu        sync.Mutex
	objects   map[wlp.ObjectID]string
	order     []wlp.ObjectID
	requests  []Request
	registry  wlp.ObjectID
	roles     map[wlp.ObjectID]wlp.ObjectID // xdg surface -> wl_surface
	surfaces  map[wlp.ObjectID]*surfaceState
	toplevels []*toplevel
	serial    uint32
	err       error

	done chan struct{}
}

// New starts a compositor and registers its shutdown with t.Cleanup.
func New(t testing.TB, opts Options) *Server {
	t.Helper()
	s, err := Start(opts)
	if err != nil {
		t.Fatalf("unable to start test compositor: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Start starts a compositor. The caller owns Close.
func Start(opts Options) (*Server, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrap(err, "socketpair failed")
	}
	server, err := fileConn(fds[0], "wltest-server")
	if err != nil {
		unix.Close(fds[1])
		return nil, err
	}
	client, err := fileConn(fds[1], "wltest-client")
	if err != nil {
		server.Close()
		return nil, err
	}
	s := newServer(server, opts)
	s.client = client
	return s, nil
}

// Serve runs a compositor on an accepted connection. ClientConn is nil.
func Serve(conn *net.UnixConn, opts Options) (*Server, error) {
	if conn == nil {
		return nil, errors.New("connection is nil")
	}
	return newServer(conn, opts), nil
}

func newServer(conn *net.UnixConn, opts Options) *Server {
	s := &Server{
		opts:     opts,
		conn:     wlp.NewConn(conn),
		objects:  map[wlp.ObjectID]string{wlp.DisplayID: "wl_display"},
		roles:    make(map[wlp.ObjectID]wlp.ObjectID),
		surfaces: make(map[wlp.ObjectID]*surfaceState),
		serial:   100,
		done:     make(chan struct{}),
	}
	go s.serve()
	return s
}

func fileConn(fd int, name string) (*net.UnixConn, error) {
	f := os.NewFile(uintptr(fd), name)
	defer f.Close()
	c, err := net.FileConn(f)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to wrap %s", name)
	}
	return c.(*net.UnixConn), nil
}

// ClientConn is the client end of the socket pair.
func (s *Server) ClientConn() *net.UnixConn {
	return s.client
}

// Close shuts the compositor down and waits for it to stop.
func (s *Server) Close() error {
	err := s.conn.Close()
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.File != nil {
			r.File.Close()
		}
	}
	return err
}

// Err is the error that ended the serve loop, other than the client hanging
// up.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Requests returns the requests received so far, optionally only those with
// one of the given wire names.
func (s *Server) Requests(names ...string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(names) == 0 {
		return append([]Request(nil), s.requests...)
	}
	var out []Request
	for _, r := range s.requests {
		for _, n := range names {
			if r.Name == n {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Objects returns the ids of live client objects implementing iface, in
// creation order.
func (s *Server) Objects(iface string) []wlp.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []wlp.ObjectID
	for _, id := range s.order {
		if s.objects[id] == iface {
			out = append(out, id)
		}
	}
	return out
}

// Last returns the most recently created live object implementing iface, or 0.
func (s *Server) Last(iface string) wlp.ObjectID {
	ids := s.Objects(iface)
	if len(ids) == 0 {
		return 0
	}
	return ids[len(ids)-1]
}

func (s *Server) serve() {
	defer close(s.done)
	for {
		m, err := s.conn.Receive()
		if err != nil {
			if !errors.Is(err, wlp.ErrConnectionClosed) {
				s.setErr(err)
			}
			return
		}
		if err := s.handle(m); err != nil {
			s.setErr(err)
			s.conn.Close()
			return
		}
	}
}

func (s *Server) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Server) nextSerial() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serial++
	return s.serial
}

// Send writes one event to the client right away.
func (s *Server) Send(id wlp.ObjectID, opcode uint16, build func(e *wlp.Encoder)) error {
	e := &wlp.Encoder{}
	if build != nil {
		build(e)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.Send(id, opcode, e.Bytes(), e.File()); err != nil {
		return err
	}
	return s.conn.Flush()
}
