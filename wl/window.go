package wl

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/elliotmr/wayclient/event"
	"github.com/elliotmr/wayclient/wl/wlp"
)

// State is the position of a window in the configure handshake.
type State int

const (
	// StateCreated means nothing has been committed yet.
	StateCreated State = iota
	// StateAwaitingAck means a configure has to be acknowledged.
	StateAwaitingAck
	// StateReady means the last configure is acknowledged and a buffer may be
	// committed.
	StateReady
	// StateCommitted means a buffer was committed after the last acknowledge.
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateAwaitingAck:
		return "awaiting-ack"
	case StateReady:
		return "ready"
	case StateCommitted:
		return "committed"
	}
	return "unknown"
}

// States are the toplevel states of a configure.
type States struct {
	Maximized  bool
	Fullscreen bool
	Resizing   bool
	Activated  bool
}

// Configure is a suggested window size and state. A zero Width or Height
// leaves that dimension to the client.
type Configure struct {
	Serial uint32
	Width  int32
	Height int32
	States States
}

// WindowListener is called on the dispatching goroutine. Configure must be
// answered with Window.AckConfigure before the next buffer commit.
type WindowListener interface {
	Configure(w *Window, cfg Configure)
	Close(w *Window)
}

// Window is a surface with the toplevel role.
type Window struct {
	c          *Client
	surface    *Surface
	xdgSurface *wlp.ZxdgSurfaceV6
	toplevel   *wlp.ZxdgToplevelV6
	l          WindowListener

	state   State
	latched Configure
	pending []Configure
	current Configure
	acked   bool
	closed  bool
}

// CreateWindow creates a toplevel window. Nothing is committed: the caller
// sets title and size hints and then commits the surface without a buffer to
// receive the first configure. With a nil listener every configure is
// acknowledged automatically.
func (c *Client) CreateWindow(l WindowListener) (*Window, error) {
	if c.shell == nil {
		return nil, errors.Wrap(wlp.ErrUnknownGlobal, "compositor has no xdg shell")
	}
	s, err := c.CreateSurface()
	if err != nil {
		return nil, err
	}
	w := &Window{c: c, surface: s, l: l}

	w.xdgSurface, err = c.shell.GetXdgSurface(s.proxy)
	if err != nil {
		s.Destroy()
		return nil, errors.Wrap(err, "unable to get xdg surface")
	}
	w.xdgSurface.SetListener(&xdgSurfaceCb{w: w})

	w.toplevel, err = w.xdgSurface.GetToplevel()
	if err != nil {
		w.xdgSurface.Destroy()
		s.Destroy()
		return nil, errors.Wrap(err, "unable to get toplevel")
	}
	w.toplevel.SetListener(&toplevelCb{w: w})
	s.window = w
	return w, nil
}

func (w *Window) Surface() *Surface {
	return w.surface
}

func (w *Window) State() State {
	return w.state
}

// Current is the last acknowledged configure.
func (w *Window) Current() Configure {
	return w.current
}

// Closed reports whether the compositor asked for the window to be closed.
func (w *Window) Closed() bool {
	return w.closed
}

// AckConfigure acknowledges serial. Configures older than serial are dropped
// without being acknowledged.
func (w *Window) AckConfigure(serial uint32) error {
	i := -1
	for j, cfg := range w.pending {
		if cfg.Serial == serial {
			i = j
			break
		}
	}
	if i < 0 {
		return errors.Wrapf(ErrUnknownSerial, "serial %d", serial)
	}
	if err := w.xdgSurface.AckConfigure(serial); err != nil {
		return errors.Wrap(err, "unable to ack configure")
	}
	w.current = w.pending[i]
	w.pending = append(w.pending[:0], w.pending[i+1:]...)
	w.acked = true
	if len(w.pending) == 0 {
		w.state = StateReady
	}
	return nil
}

// Attach stages buf on the window surface.
func (w *Window) Attach(buf *Buffer, x, y int32) error {
	return w.surface.Attach(buf, x, y)
}

// Commit commits the window surface. It fails with ErrPrematureCommit when a
// buffer is staged before the first configure was acknowledged.
func (w *Window) Commit() error {
	return w.surface.Commit()
}

func (w *Window) committed(withBuffer bool) {
	switch {
	case w.state == StateCreated:
		w.state = StateAwaitingAck
	case w.state == StateReady && withBuffer:
		w.state = StateCommitted
	}
}

func (w *Window) SetTitle(title string) error {
	return w.toplevel.SetTitle(title)
}

func (w *Window) SetAppID(appID string) error {
	return w.toplevel.SetAppID(appID)
}

func (w *Window) SetMinSize(width, height int32) error {
	return w.toplevel.SetMinSize(width, height)
}

func (w *Window) SetMaxSize(width, height int32) error {
	return w.toplevel.SetMaxSize(width, height)
}

func (w *Window) SetMaximized() error {
	return w.toplevel.SetMaximized()
}

func (w *Window) UnsetMaximized() error {
	return w.toplevel.UnsetMaximized()
}

func (w *Window) SetFullscreen() error {
	return w.toplevel.SetFullscreen()
}

func (w *Window) UnsetFullscreen() error {
	return w.toplevel.UnsetFullscreen()
}

func (w *Window) SetMinimized() error {
	return w.toplevel.SetMinimized()
}

// SetWindowGeometry sets the visible part of the surface, excluding shadows.
func (w *Window) SetWindowGeometry(x, y, width, height int32) error {
	return w.xdgSurface.SetWindowGeometry(x, y, width, height)
}

// Move starts an interactive move. serial is the button press that started
// it.
func (w *Window) Move(serial uint32) error {
	if w.c.seat == nil {
		return errors.Wrap(wlp.ErrUnknownGlobal, "compositor has no seat")
	}
	return w.toplevel.Move(w.c.seat, serial)
}

// Destroy destroys the toplevel, its xdg surface and the surface, in that
// order.
func (w *Window) Destroy() error {
	if err := w.toplevel.Destroy(); err != nil {
		return errors.Wrap(err, "unable to destroy toplevel")
	}
	if err := w.xdgSurface.Destroy(); err != nil {
		return errors.Wrap(err, "unable to destroy xdg surface")
	}
	w.surface.window = nil
	return w.surface.Destroy()
}

type xdgSurfaceCb struct {
	w *Window
}

func (xcb *xdgSurfaceCb) Configure(serial uint32) {
	w := xcb.w
	cfg := w.latched
	cfg.Serial = serial
	w.pending = append(w.pending, cfg)
	w.state = StateAwaitingAck
	Logger().Debug("configure",
		zap.Uint32("serial", serial),
		zap.Int32("width", cfg.Width),
		zap.Int32("height", cfg.Height),
	)

	if w.l == nil {
		if err := w.AckConfigure(serial); err != nil {
			Logger().Warn("unable to ack configure", zap.Uint32("serial", serial), zap.Error(err))
		}
		return
	}
	w.l.Configure(w, cfg)
}

type toplevelCb struct {
	w *Window
}

func (tcb *toplevelCb) Configure(width, height int32, states []byte) {
	cfg := Configure{Width: width, Height: height}
	order := wlp.HostByteOrder()
	for i := 0; i+4 <= len(states); i += 4 {
		switch order.Uint32(states[i:]) {
		case wlp.ZxdgToplevelV6StateMaximized:
			cfg.States.Maximized = true
		case wlp.ZxdgToplevelV6StateFullscreen:
			cfg.States.Fullscreen = true
		case wlp.ZxdgToplevelV6StateResizing:
			cfg.States.Resizing = true
		case wlp.ZxdgToplevelV6StateActivated:
			cfg.States.Activated = true
		}
	}
	tcb.w.latched = cfg
}

func (tcb *toplevelCb) Close() {
	w := tcb.w
	w.closed = true
	if w.l != nil {
		w.l.Close(w)
	}
}

// WindowEvents returns a listener that acknowledges every configure and then
// forwards it to h as an event.WindowStateChangeEvent. Close requests arrive
// as event.WindowCloseEvent.
func WindowEvents(h event.Handler) WindowListener {
	return &windowEvents{h: h}
}

type windowEvents struct {
	h event.Handler
}

func (we *windowEvents) Configure(w *Window, cfg Configure) {
	if err := w.AckConfigure(cfg.Serial); err != nil {
		Logger().Warn("unable to ack configure", zap.Uint32("serial", cfg.Serial), zap.Error(err))
		return
	}
	we.h.Handle(event.WindowStateChangeEvent{
		Window:     uint32(w.surface.ID()),
		Serial:     cfg.Serial,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Maximized:  cfg.States.Maximized,
		Fullscreen: cfg.States.Fullscreen,
		Resizing:   cfg.States.Resizing,
		Activated:  cfg.States.Activated,
	})
}

func (we *windowEvents) Close(w *Window) {
	we.h.Handle(event.WindowCloseEvent{Window: uint32(w.surface.ID())})
}
