package wl

import (
	"context"
	"net"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/elliotmr/wayclient/wl/wlp"
)

// Client is a connection with the globals a window needs already bound. It
// is not safe for concurrent use; only Close may be called from another
// goroutine.
type Client struct {
	ctx        *wlp.Context
	compositor *wlp.Compositor
	shm        *wlp.Shm
	shell      *wlp.ZxdgShellV6
	seat       *wlp.Seat
	seatName   string
	pointer    *Pointer
	formats    map[Format]bool
	surfaces   map[wlp.ObjectID]*Surface
	runtimeDir string
}

// Connect dials the compositor described by cfg and binds its globals.
func Connect(cfg Config) (*Client, error) {
	if cfg.Logger != nil {
		SetLogger(cfg.Logger)
	}
	conn, err := cfg.Dial()
	if err != nil {
		return nil, err
	}
	c, err := NewClient(conn)
	if err != nil {
		return nil, err
	}
	c.runtimeDir = cfg.RuntimeDir
	return c, nil
}

// NewClient takes over an established connection. wl_compositor and wl_shm
// are required; the shell and the seat are bound when advertised.
func NewClient(conn *net.UnixConn) (*Client, error) {
	ctx, err := wlp.NewContext(wlp.NewConn(conn))
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "unable to create context")
	}
	c := &Client{
		ctx:      ctx,
		formats:  make(map[Format]bool),
		surfaces: make(map[wlp.ObjectID]*Surface),
	}
	if err := c.start(); err != nil {
		ctx.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) start() error {
	if err := c.ctx.Roundtrip(); err != nil {
		return errors.Wrap(err, "starting context failed")
	}

	cmp, err := c.bind(wlp.KindCompositor)
	if err != nil {
		return errors.Wrap(err, "unable to bind wl_compositor")
	}
	c.compositor = cmp.(*wlp.Compositor)

	shm, err := c.bind(wlp.KindShm)
	if err != nil {
		return errors.Wrap(err, "unable to bind wl_shm")
	}
	c.shm = shm.(*wlp.Shm)
	c.shm.SetListener(c)

	shell, err := c.bind(wlp.KindShell)
	switch {
	case err == nil:
		c.shell = shell.(*wlp.ZxdgShellV6)
		c.shell.SetListener(c)
	case errors.Is(err, wlp.ErrUnknownGlobal):
		Logger().Info("compositor has no xdg shell, windows are unavailable")
	default:
		return errors.Wrap(err, "unable to bind zxdg_shell_v6")
	}

	seat, err := c.bind(wlp.KindSeat)
	switch {
	case err == nil:
		c.seat = seat.(*wlp.Seat)
		c.seat.SetListener(&seatCb{c: c})
	case errors.Is(err, wlp.ErrUnknownGlobal):
		Logger().Info("compositor has no seat, input is unavailable")
	default:
		return errors.Wrap(err, "unable to bind wl_seat")
	}

	// formats and seat capabilities
	return c.Roundtrip()
}

// bind binds the first advertised global of kind at the highest version both
// sides support.
func (c *Client) bind(kind wlp.Kind) (wlp.Object, error) {
	globals := c.ctx.Find(kind)
	if len(globals) == 0 {
		return nil, errors.Wrapf(wlp.ErrUnknownGlobal, "no %s advertised", kind)
	}
	g := globals[0]
	version := g.Version
	if impl := kind.MaxVersion(); version > impl {
		version = impl
	}
	return c.ctx.Bind(g.Name, kind, version)
}

// Context exposes the protocol layer.
func (c *Client) Context() *wlp.Context {
	return c.ctx
}

// Roundtrip blocks until all pending requests are processed by the server and
// every resulting event has been dispatched.
func (c *Client) Roundtrip() error {
	return c.ctx.Roundtrip()
}

// DispatchOne reads and dispatches exactly one event.
func (c *Client) DispatchOne() error {
	return c.ctx.DispatchOne()
}

// Run dispatches events until ctx is done, Stop is called or the connection
// fails.
func (c *Client) Run(ctx context.Context) error {
	return c.ctx.Run(ctx)
}

func (c *Client) Stop() {
	c.ctx.Stop()
}

func (c *Client) Flush() error {
	return c.ctx.Flush()
}

// Err is the fatal error that ended the connection, if any.
func (c *Client) Err() error {
	return c.ctx.Err()
}

func (c *Client) Close() error {
	return c.ctx.Close()
}

// Ping implements ZxdgShellV6Listener.
func (c *Client) Ping(serial uint32) {
	if err := c.shell.Pong(serial); err != nil {
		Logger().Warn("unable to answer ping", zap.Uint32("serial", serial), zap.Error(err))
	}
}

// Format implements ShmListener.
func (c *Client) Format(format uint32) {
	Logger().Debug("valid format", zap.Stringer("format", Format(format)))
	c.formats[Format(format)] = true
}

// Formats lists the pixel formats the compositor accepts.
func (c *Client) Formats() []Format {
	out := make([]Format, 0, len(c.formats))
	for f := range c.formats {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (c *Client) SupportsFormat(f Format) bool {
	return c.formats[f]
}

// HasShell reports whether windows can be created.
func (c *Client) HasShell() bool {
	return c.shell != nil
}

// SeatName is the name the compositor gave the seat, if any.
func (c *Client) SeatName() string {
	return c.seatName
}

// Pointer returns the seat pointer. It fails with ErrNoPointer while the seat
// has no pointer capability.
func (c *Client) Pointer() (*Pointer, error) {
	if c.pointer == nil {
		return nil, ErrNoPointer
	}
	return c.pointer, nil
}

type seatCb struct {
	c *Client
}

func (scb *seatCb) Capabilities(capabilities uint32) {
	c := scb.c
	hasPointer := capabilities&wlp.SeatCapabilityPointer != 0
	switch {
	case hasPointer && c.pointer == nil:
		p, err := newPointer(c)
		if err != nil {
			Logger().Error("unable to get pointer", zap.Error(err))
			return
		}
		c.pointer = p
	case !hasPointer && c.pointer != nil:
		c.pointer.release()
		c.pointer = nil
	}
}

func (scb *seatCb) Name(name string) {
	scb.c.seatName = name
}
