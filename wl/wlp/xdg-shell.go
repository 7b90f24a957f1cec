package wlp

import (
	"github.com/pkg/errors"
)

const (
	ZxdgShellV6ErrorRole                = 0 // given wl_surface has another role
	ZxdgShellV6ErrorDefunctSurfaces     = 1 // xdg_shell was destroyed before children
	ZxdgShellV6ErrorNotTheTopmostPopup  = 2 // the client tried to map or destroy a non-topmost popup
	ZxdgShellV6ErrorInvalidPopupParent  = 3 // the client specified an invalid popup parent surface
	ZxdgShellV6ErrorInvalidSurfaceState = 4 // the client provided an invalid surface state
	ZxdgShellV6ErrorInvalidPositioner   = 5 // the client provided an invalid positioner
)

const (
	opCodeZxdgShellV6Ping = 0
)

const (
	opCodeZxdgShellV6Destroy       = 0
	opCodeZxdgShellV6GetXdgSurface = 2
	opCodeZxdgShellV6Pong          = 3
)

// ZxdgShellV6 Events
//
// Ping
// The ping event asks the client if it's still alive. Pass the
// serial specified in the event back to the compositor by sending
// a "pong" request back with the specified serial.
type ZxdgShellV6Listener interface {
	Ping(serial uint32)
}

// xdg_shell allows clients to turn a wl_surface into a "real window"
// which can be dragged, resized, stacked, and moved around by the
// user.
type ZxdgShellV6 struct {
	proxy
	l ZxdgShellV6Listener
}

// Kind returns the wayland interface
func (this *ZxdgShellV6) Kind() Kind {
	return KindShell
}

// SetListener attaches l. It fails with ErrAlreadyBound if a listener is set.
func (this *ZxdgShellV6) SetListener(l ZxdgShellV6Listener) error {
	if this.l != nil {
		return errors.Wrapf(ErrAlreadyBound, "%s@%d", this.Kind(), this.id)
	}
	this.l = l
	return nil
}

// ReplaceListener swaps the listener unconditionally.
func (this *ZxdgShellV6) ReplaceListener(l ZxdgShellV6Listener) {
	this.l = l
}

func (this *ZxdgShellV6) dispatch(m *Message) error {
	switch m.Opcode {
	case opCodeZxdgShellV6Ping:
		serial := m.Uint32()
		if err := m.Done(); err != nil {
			return err
		}
		if this.l == nil {
			logIgnored(this, "Ping")
			return nil
		}
		this.l.Ping(serial)
	default:
		return unknownOpcode(this, m)
	}
	return nil
}

// Destroy this xdg_shell object.
//
// Destroying a bound xdg_shell object while there are surfaces
// still alive created by this xdg_shell object instance is illegal
// and will result in a protocol error.
func (this *ZxdgShellV6) Destroy() error {
	if this == nil {
		return errors.New("object is nil")
	}
	if err := this.c.marshal(this, opCodeZxdgShellV6Destroy, "Destroy", nil); err != nil {
		return err
	}
	this.c.objects.Destroy(this.id)
	return nil
}

// This creates an xdg_surface for the given surface. While xdg_surface
// itself is not a role, the corresponding surface may only be assigned
// a role extending xdg_surface, such as xdg_toplevel or xdg_popup.
func (this *ZxdgShellV6) GetXdgSurface(surface *Surface) (*ZxdgSurfaceV6, error) {
	if this == nil {
		return nil, errors.New("object is nil")
	}
	if surface == nil {
		return nil, errors.New("surface is nil")
	}
	ret := &ZxdgSurfaceV6{proxy: this.c.newProxy(this.version)}
	err := this.c.create(this, ret, opCodeZxdgShellV6GetXdgSurface, "GetXdgSurface", func(e *Encoder) {
		e.PutNewID(ret.id)
		e.PutObject(surface.id)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// A client must respond to a ping event with a pong request or
// the client may be deemed unresponsive.
func (this *ZxdgShellV6) Pong(serial uint32) error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeZxdgShellV6Pong, "Pong", func(e *Encoder) {
		e.PutUint32(serial)
	})
}

const (
	ZxdgSurfaceV6ErrorNotConstructed     = 1
	ZxdgSurfaceV6ErrorAlreadyConstructed = 2
	ZxdgSurfaceV6ErrorUnconfiguredBuffer = 3
)

const (
	opCodeZxdgSurfaceV6Configure = 0
)

const (
	opCodeZxdgSurfaceV6Destroy           = 0
	opCodeZxdgSurfaceV6GetToplevel       = 1
	opCodeZxdgSurfaceV6SetWindowGeometry = 3
	opCodeZxdgSurfaceV6AckConfigure      = 4
)

// ZxdgSurfaceV6 Events
//
// Configure
// The configure event marks the end of a configure sequence. A configure
// sequence is a set of one or more configure events which should be
// treated as a unit.
//
// Clients should arrange their surface for the new states, and then
// send an ack_configure request with the serial sent in this configure
// event at some point before committing the new surface.
type ZxdgSurfaceV6Listener interface {
	Configure(serial uint32)
}

// An interface that may be implemented by a wl_surface, for
// implementations that provide a desktop-style user interface.
//
// Creating an xdg_surface from a wl_surface which has a buffer attached or
// committed is a client error, and any attempts by a client to attach or
// manipulate a buffer prior to the first xdg_surface.configure call must
// also be treated as errors.
type ZxdgSurfaceV6 struct {
	proxy
	l ZxdgSurfaceV6Listener
}

// Kind returns the wayland interface
func (this *ZxdgSurfaceV6) Kind() Kind {
	return KindShellSurface
}

// SetListener attaches l. It fails with ErrAlreadyBound if a listener is set.
func (this *ZxdgSurfaceV6) SetListener(l ZxdgSurfaceV6Listener) error {
	if this.l != nil {
		return errors.Wrapf(ErrAlreadyBound, "%s@%d", this.Kind(), this.id)
	}
	this.l = l
	return nil
}

// ReplaceListener swaps the listener unconditionally.
func (this *ZxdgSurfaceV6) ReplaceListener(l ZxdgSurfaceV6Listener) {
	this.l = l
}

func (this *ZxdgSurfaceV6) dispatch(m *Message) error {
	switch m.Opcode {
	case opCodeZxdgSurfaceV6Configure:
		serial := m.Uint32()
		if err := m.Done(); err != nil {
			return err
		}
		if this.l == nil {
			logIgnored(this, "Configure")
			return nil
		}
		this.l.Configure(serial)
	default:
		return unknownOpcode(this, m)
	}
	return nil
}

// Destroy the xdg_surface object. An xdg_surface must only be destroyed
// after its role object has been destroyed.
func (this *ZxdgSurfaceV6) Destroy() error {
	if this == nil {
		return errors.New("object is nil")
	}
	if err := this.c.marshal(this, opCodeZxdgSurfaceV6Destroy, "Destroy", nil); err != nil {
		return err
	}
	this.c.objects.Destroy(this.id)
	return nil
}

// This creates an xdg_toplevel object for the given xdg_surface and gives
// the associated wl_surface the xdg_toplevel role.
func (this *ZxdgSurfaceV6) GetToplevel() (*ZxdgToplevelV6, error) {
	if this == nil {
		return nil, errors.New("object is nil")
	}
	ret := &ZxdgToplevelV6{proxy: this.c.newProxy(this.version)}
	err := this.c.create(this, ret, opCodeZxdgSurfaceV6GetToplevel, "GetToplevel", func(e *Encoder) {
		e.PutNewID(ret.id)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// The window geometry of a surface is its "visible bounds" from the
// user's perspective. Client-side decorations often have invisible
// portions like drop-shadows which should be ignored for the
// purposes of aligning, placing and constraining windows.
func (this *ZxdgSurfaceV6) SetWindowGeometry(x int32, y int32, width int32, height int32) error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeZxdgSurfaceV6SetWindowGeometry, "SetWindowGeometry", func(e *Encoder) {
		e.PutInt32(x)
		e.PutInt32(y)
		e.PutInt32(width)
		e.PutInt32(height)
	})
}

// When a configure event is received, if a client commits the
// surface in response to the configure event, then the client
// must make an ack_configure request sometime before the commit
// request, passing along the serial of the configure event.
func (this *ZxdgSurfaceV6) AckConfigure(serial uint32) error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeZxdgSurfaceV6AckConfigure, "AckConfigure", func(e *Encoder) {
		e.PutUint32(serial)
	})
}

const (
	ZxdgToplevelV6StateMaximized  = 1 // the surface is maximized
	ZxdgToplevelV6StateFullscreen = 2 // the surface is fullscreen
	ZxdgToplevelV6StateResizing   = 3 // the surface is being resized
	ZxdgToplevelV6StateActivated  = 4 // the surface is now activated
)

const (
	opCodeZxdgToplevelV6Configure = 0
	opCodeZxdgToplevelV6Close     = 1
)

const (
	opCodeZxdgToplevelV6Destroy         = 0
	opCodeZxdgToplevelV6SetTitle        = 2
	opCodeZxdgToplevelV6SetAppID        = 3
	opCodeZxdgToplevelV6Move            = 5
	opCodeZxdgToplevelV6SetMaxSize      = 7
	opCodeZxdgToplevelV6SetMinSize      = 8
	opCodeZxdgToplevelV6SetMaximized    = 9
	opCodeZxdgToplevelV6UnsetMaximized  = 10
	opCodeZxdgToplevelV6SetFullscreen   = 11
	opCodeZxdgToplevelV6UnsetFullscreen = 12
	opCodeZxdgToplevelV6SetMinimized    = 13
)

// ZxdgToplevelV6 Events
//
// Configure
// This configure event asks the client to resize its toplevel surface or
// to change its state. The configured state should not be applied
// immediately but only after the xdg_surface.configure that follows.
//
// The width and height arguments specify a hint to the window about how
// its surface should be resized in window geometry coordinates. If the
// width or height arguments are zero, it means the client should decide
// its own window dimension.
//
// Close
// The close event is sent by the compositor when the user
// wants the surface to be closed.
type ZxdgToplevelV6Listener interface {
	Configure(width int32, height int32, states []byte)
	Close()
}

// This interface defines an xdg_surface role which allows a surface to,
// among other things, set window-like properties such as maximize,
// fullscreen, and minimize, set application-specific metadata like title
// and id, and well as trigger user interactive operations such as
// interactive resize and move.
type ZxdgToplevelV6 struct {
	proxy
	l ZxdgToplevelV6Listener
}

// Kind returns the wayland interface
func (this *ZxdgToplevelV6) Kind() Kind {
	return KindToplevel
}

// SetListener attaches l. It fails with ErrAlreadyBound if a listener is set.
func (this *ZxdgToplevelV6) SetListener(l ZxdgToplevelV6Listener) error {
	if this.l != nil {
		return errors.Wrapf(ErrAlreadyBound, "%s@%d", this.Kind(), this.id)
	}
	this.l = l
	return nil
}

// ReplaceListener swaps the listener unconditionally.
func (this *ZxdgToplevelV6) ReplaceListener(l ZxdgToplevelV6Listener) {
	this.l = l
}

func (this *ZxdgToplevelV6) dispatch(m *Message) error {
	switch m.Opcode {
	case opCodeZxdgToplevelV6Configure:
		width := m.Int32()
		height := m.Int32()
		states := m.Array()
		if err := m.Done(); err != nil {
			return err
		}
		if this.l == nil {
			logIgnored(this, "Configure")
			return nil
		}
		this.l.Configure(width, height, states)
	case opCodeZxdgToplevelV6Close:
		if err := m.Done(); err != nil {
			return err
		}
		if this.l == nil {
			logIgnored(this, "Close")
			return nil
		}
		this.l.Close()
	default:
		return unknownOpcode(this, m)
	}
	return nil
}

// Unmap and destroy the window. The window will be effectively
// hidden from the user's point of view, and all state like
// maximization, fullscreen, and so on, will be lost.
func (this *ZxdgToplevelV6) Destroy() error {
	if this == nil {
		return errors.New("object is nil")
	}
	if err := this.c.marshal(this, opCodeZxdgToplevelV6Destroy, "Destroy", nil); err != nil {
		return err
	}
	this.c.objects.Destroy(this.id)
	return nil
}

// Set a short title for the surface.
func (this *ZxdgToplevelV6) SetTitle(title string) error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeZxdgToplevelV6SetTitle, "SetTitle", func(e *Encoder) {
		e.PutString(title)
	})
}

// Set an application identifier for the surface.
func (this *ZxdgToplevelV6) SetAppID(appID string) error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeZxdgToplevelV6SetAppID, "SetAppID", func(e *Encoder) {
		e.PutString(appID)
	})
}

// Start an interactive, user-driven move of the surface.
//
// This request must be used in response to some sort of user action
// like a button press, key press, or touch down event. The passed
// serial is used to determine the type of interactive move.
func (this *ZxdgToplevelV6) Move(seat *Seat, serial uint32) error {
	if this == nil {
		return errors.New("object is nil")
	}
	if seat == nil {
		return errors.New("seat is nil")
	}
	return this.c.marshal(this, opCodeZxdgToplevelV6Move, "Move", func(e *Encoder) {
		e.PutObject(seat.id)
		e.PutUint32(serial)
	})
}

// Set a maximum size for the window. A value of zero in either
// dimension means there is no limit.
func (this *ZxdgToplevelV6) SetMaxSize(width int32, height int32) error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeZxdgToplevelV6SetMaxSize, "SetMaxSize", func(e *Encoder) {
		e.PutInt32(width)
		e.PutInt32(height)
	})
}

// Set a minimum size for the window. A value of zero in either
// dimension means there is no limit.
func (this *ZxdgToplevelV6) SetMinSize(width int32, height int32) error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeZxdgToplevelV6SetMinSize, "SetMinSize", func(e *Encoder) {
		e.PutInt32(width)
		e.PutInt32(height)
	})
}

// Maximize the surface.
func (this *ZxdgToplevelV6) SetMaximized() error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeZxdgToplevelV6SetMaximized, "SetMaximized", nil)
}

// Unmaximize the surface.
func (this *ZxdgToplevelV6) UnsetMaximized() error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeZxdgToplevelV6UnsetMaximized, "UnsetMaximized", nil)
}

// Make the surface fullscreen. The output is chosen by the compositor.
func (this *ZxdgToplevelV6) SetFullscreen() error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeZxdgToplevelV6SetFullscreen, "SetFullscreen", func(e *Encoder) {
		e.PutObject(0)
	})
}

func (this *ZxdgToplevelV6) UnsetFullscreen() error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeZxdgToplevelV6UnsetFullscreen, "UnsetFullscreen", nil)
}

// Request that the compositor minimize your surface. There is no
// way to know if the surface is currently minimized, nor is there
// any way to unset minimization on this surface.
func (this *ZxdgToplevelV6) SetMinimized() error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeZxdgToplevelV6SetMinimized, "SetMinimized", nil)
}
