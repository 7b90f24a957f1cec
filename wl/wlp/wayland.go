package wlp

import (
	"os"

	"github.com/pkg/errors"
)

const (
	DisplayErrorInvalidObject  = 0 // server couldn't find object
	DisplayErrorInvalidMethod  = 1 // method doesn't exist on the specified interface
	DisplayErrorNoMemory       = 2 // server is out of memory
	DisplayErrorImplementation = 3 // implementation error in compositor
)

const (
	opCodeDisplayError    = 0
	opCodeDisplayDeleteID = 1
)

const (
	opCodeDisplaySync        = 0
	opCodeDisplayGetRegistry = 1
)

// Display Events
//
// Error
// The error event is sent out when a fatal (non-recoverable)
// error has occurred.  The object_id argument is the object
// where the error occurred, most often in response to a request
// to that object.  The code identifies the error and is defined
// by the object interface.
//
// DeleteID
// This event is used internally by the object ID management
// logic.  When a client deletes an object, the server will send
// this event to acknowledge that it has seen the delete request.
// When the client receives this event, it will know that it can
// safely reuse the object ID.
type DisplayListener interface {
	Error(objectID ObjectID, code uint32, message string)
	DeleteID(id uint32)
}

// The core global object.  This is a special singleton object.  It
// is used for internal Wayland protocol features.
type Display struct {
	proxy
	l DisplayListener
}

// Kind returns the wayland interface
func (this *Display) Kind() Kind {
	return KindDisplay
}

func (this *Display) dispatch(m *Message) error {
	switch m.Opcode {
	case opCodeDisplayError:
		objectID := m.Object()
		code := m.Uint32()
		message := m.Str()
		if err := m.Done(); err != nil {
			return err
		}
		this.l.Error(objectID, code, message)
	case opCodeDisplayDeleteID:
		id := m.Uint32()
		if err := m.Done(); err != nil {
			return err
		}
		this.l.DeleteID(id)
	default:
		return unknownOpcode(this, m)
	}
	return nil
}

// The sync request asks the server to emit the 'done' event
// on the returned wl_callback object.  Since requests are
// handled in-order and events are delivered in-order, this can
// be used as a barrier to ensure all previous requests and the
// resulting events have been handled.
//
// The callback_data passed in the callback is the event serial.
func (this *Display) Sync(l CallbackListener) (*Callback, error) {
	if this == nil {
		return nil, errors.New("object is nil")
	}
	ret := &Callback{proxy: this.c.newProxy(1), l: l}
	err := this.c.create(this, ret, opCodeDisplaySync, "Sync", func(e *Encoder) {
		e.PutNewID(ret.id)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// This request creates a registry object that allows the client
// to list and bind the global objects available from the
// compositor.
func (this *Display) GetRegistry(l RegistryListener) (*Registry, error) {
	if this == nil {
		return nil, errors.New("object is nil")
	}
	ret := &Registry{proxy: this.c.newProxy(1), l: l}
	err := this.c.create(this, ret, opCodeDisplayGetRegistry, "GetRegistry", func(e *Encoder) {
		e.PutNewID(ret.id)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

const (
	opCodeRegistryGlobal       = 0
	opCodeRegistryGlobalRemove = 1
)

const (
	opCodeRegistryBind = 0
)

// Registry Events
//
// Global
// Notify the client of global objects.
//
// GlobalRemove
// Notify the client of removed global objects.  The object
// remains valid and requests to the object will be ignored
// until the client destroys it.
type RegistryListener interface {
	Global(name uint32, iface string, version uint32)
	GlobalRemove(name uint32)
}

// The singleton global registry object.  When a client creates a
// registry object, the registry object will emit a global event for
// each global currently in the registry.  To mark the end of the
// initial burst of events, the client can use the wl_display.sync
// request immediately after calling wl_display.get_registry.
type Registry struct {
	proxy
	l RegistryListener
}

// Kind returns the wayland interface
func (this *Registry) Kind() Kind {
	return KindRegistry
}

func (this *Registry) dispatch(m *Message) error {
	switch m.Opcode {
	case opCodeRegistryGlobal:
		name := m.Uint32()
		iface := m.Str()
		version := m.Uint32()
		if err := m.Done(); err != nil {
			return err
		}
		if this.l == nil {
			logIgnored(this, "Global")
			return nil
		}
		this.l.Global(name, iface, version)
	case opCodeRegistryGlobalRemove:
		name := m.Uint32()
		if err := m.Done(); err != nil {
			return err
		}
		if this.l == nil {
			logIgnored(this, "GlobalRemove")
			return nil
		}
		this.l.GlobalRemove(name)
	default:
		return unknownOpcode(this, m)
	}
	return nil
}

// Binds a new, client-created object to the server using the
// specified name as the identifier.
func (this *Registry) Bind(name uint32, iface string, version uint32, id ObjectID) error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeRegistryBind, "Bind", func(e *Encoder) {
		e.PutUint32(name)
		e.PutString(iface)
		e.PutUint32(version)
		e.PutNewID(id)
	})
}

const (
	opCodeCallbackDone = 0
)

// Callback Events
//
// Done
// Notify the client when the related request is done.
type CallbackListener interface {
	Done(callbackData uint32)
}

// Clients can handle the 'done' event to get notified when
// the related request is done.  The server destroys the object
// right after.
type Callback struct {
	proxy
	l CallbackListener
}

// Kind returns the wayland interface
func (this *Callback) Kind() Kind {
	return KindCallback
}

// SetListener attaches l. A callback has at most one listener.
func (this *Callback) SetListener(l CallbackListener) error {
	if this.l != nil {
		return errors.Wrapf(ErrAlreadyBound, "%s@%d", this.Kind(), this.id)
	}
	this.l = l
	return nil
}

func (this *Callback) dispatch(m *Message) error {
	switch m.Opcode {
	case opCodeCallbackDone:
		callbackData := m.Uint32()
		if err := m.Done(); err != nil {
			return err
		}
		this.c.objects.Destroy(this.id)
		if this.l == nil {
			logIgnored(this, "Done")
			return nil
		}
		this.l.Done(callbackData)
	default:
		return unknownOpcode(this, m)
	}
	return nil
}

const (
	opCodeCompositorCreateSurface = 0
)

// A compositor.  This object is a singleton global.  The
// compositor is in charge of combining the contents of multiple
// surfaces into one displayable output.
type Compositor struct {
	proxy
}

// Kind returns the wayland interface
func (this *Compositor) Kind() Kind {
	return KindCompositor
}

func (this *Compositor) dispatch(m *Message) error {
	return unknownOpcode(this, m)
}

// Ask the compositor to create a new surface.
func (this *Compositor) CreateSurface() (*Surface, error) {
	if this == nil {
		return nil, errors.New("object is nil")
	}
	ret := &Surface{proxy: this.c.newProxy(this.version)}
	err := this.c.create(this, ret, opCodeCompositorCreateSurface, "CreateSurface", func(e *Encoder) {
		e.PutNewID(ret.id)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

const (
	opCodeShmPoolCreateBuffer = 0
	opCodeShmPoolDestroy      = 1
	opCodeShmPoolResize       = 2
)

// The wl_shm_pool object encapsulates a piece of memory shared
// between the compositor and client.  Through the wl_shm_pool
// object, the client can allocate shared memory wl_buffer objects.
// All objects created through the same pool share the same
// underlying mapped memory.
type ShmPool struct {
	proxy
}

// Kind returns the wayland interface
func (this *ShmPool) Kind() Kind {
	return KindShmPool
}

func (this *ShmPool) dispatch(m *Message) error {
	return unknownOpcode(this, m)
}

// Create a wl_buffer object from the pool.
//
// The buffer is created offset bytes into the pool and has
// width and height as specified.  The stride argument specifies
// the number of bytes from the beginning of one row to the beginning
// of the next.  The format is the pixel format of the buffer and
// must be one of those advertised through the wl_shm.format event.
func (this *ShmPool) CreateBuffer(offset int32, width int32, height int32, stride int32, format uint32) (*Buffer, error) {
	if this == nil {
		return nil, errors.New("object is nil")
	}
	ret := &Buffer{proxy: this.c.newProxy(1)}
	err := this.c.create(this, ret, opCodeShmPoolCreateBuffer, "CreateBuffer", func(e *Encoder) {
		e.PutNewID(ret.id)
		e.PutInt32(offset)
		e.PutInt32(width)
		e.PutInt32(height)
		e.PutInt32(stride)
		e.PutUint32(format)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Destroy the shared memory pool.
//
// The mmapped memory will be released when all
// buffers that have been created from this pool
// are gone.
func (this *ShmPool) Destroy() error {
	if this == nil {
		return errors.New("object is nil")
	}
	if err := this.c.marshal(this, opCodeShmPoolDestroy, "Destroy", nil); err != nil {
		return err
	}
	this.c.objects.Destroy(this.id)
	return nil
}

// This request will cause the server to remap the backing memory
// for the pool from the file descriptor passed when the pool was
// created, but using the new size.  This request can only be
// used to make the pool bigger.
func (this *ShmPool) Resize(size int32) error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeShmPoolResize, "Resize", func(e *Encoder) {
		e.PutInt32(size)
	})
}

const (
	ShmErrorInvalidFormat = 0 // buffer format is not known
	ShmErrorInvalidStride = 1 // invalid size or stride during pool or buffer creation
	ShmErrorInvalidFD     = 2 // mmapping the file descriptor failed
)

const (
	ShmFormatArgb8888 = 0          // 32-bit ARGB format, [31:0] A:R:G:B 8:8:8:8 little endian
	ShmFormatXrgb8888 = 1          // 32-bit RGB format, [31:0] x:R:G:B 8:8:8:8 little endian
	ShmFormatRgb565   = 0x36314752 // 16-bit RGB format, [15:0] R:G:B 5:6:5 little endian
	ShmFormatAbgr8888 = 0x34324241 // 32-bit ABGR format, [31:0] A:B:G:R 8:8:8:8 little endian
	ShmFormatXbgr8888 = 0x34324258 // 32-bit xBGR format, [31:0] x:B:G:R 8:8:8:8 little endian
)

const (
	opCodeShmFormat = 0
)

const (
	opCodeShmCreatePool = 0
)

// Shm Events
//
// Format
// Informs the client about a valid pixel format that
// can be used for buffers.
type ShmListener interface {
	Format(format uint32)
}

// A singleton global object that provides support for shared
// memory.
//
// Clients can create wl_shm_pool objects using the create_pool
// request.
//
// At connection setup time, the wl_shm object emits one or more
// format events to inform clients about the valid pixel formats
// that can be used for buffers.
type Shm struct {
	proxy
	l ShmListener
}

// Kind returns the wayland interface
func (this *Shm) Kind() Kind {
	return KindShm
}

// SetListener attaches l. It fails with ErrAlreadyBound if a listener is set.
func (this *Shm) SetListener(l ShmListener) error {
	if this.l != nil {
		return errors.Wrapf(ErrAlreadyBound, "%s@%d", this.Kind(), this.id)
	}
	this.l = l
	return nil
}

// ReplaceListener swaps the listener unconditionally.
func (this *Shm) ReplaceListener(l ShmListener) {
	this.l = l
}

func (this *Shm) dispatch(m *Message) error {
	switch m.Opcode {
	case opCodeShmFormat:
		format := m.Uint32()
		if err := m.Done(); err != nil {
			return err
		}
		if this.l == nil {
			logIgnored(this, "Format")
			return nil
		}
		this.l.Format(format)
	default:
		return unknownOpcode(this, m)
	}
	return nil
}

// Create a new wl_shm_pool object.
//
// The pool can be used to create shared memory based buffer
// objects.  The server will mmap size bytes of the passed file
// descriptor, to use as backing memory for the pool.
func (this *Shm) CreatePool(fd *os.File, size int32) (*ShmPool, error) {
	if this == nil {
		return nil, errors.New("object is nil")
	}
	if fd == nil {
		return nil, errors.New("fd is nil")
	}
	ret := &ShmPool{proxy: this.c.newProxy(1)}
	err := this.c.create(this, ret, opCodeShmCreatePool, "CreatePool", func(e *Encoder) {
		e.PutNewID(ret.id)
		e.PutFD(fd)
		e.PutInt32(size)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

const (
	opCodeBufferRelease = 0
)

const (
	opCodeBufferDestroy = 0
)

// Buffer Events
//
// Release
// Sent when this wl_buffer is no longer used by the compositor.
// The client is now free to reuse or destroy this buffer and its
// backing storage.
type BufferListener interface {
	Release()
}

// A buffer provides the content for a wl_surface.
type Buffer struct {
	proxy
	l BufferListener
}

// Kind returns the wayland interface
func (this *Buffer) Kind() Kind {
	return KindBuffer
}

// SetListener attaches l. It fails with ErrAlreadyBound if a listener is set.
func (this *Buffer) SetListener(l BufferListener) error {
	if this.l != nil {
		return errors.Wrapf(ErrAlreadyBound, "%s@%d", this.Kind(), this.id)
	}
	this.l = l
	return nil
}

// ReplaceListener swaps the listener unconditionally.
func (this *Buffer) ReplaceListener(l BufferListener) {
	this.l = l
}

func (this *Buffer) dispatch(m *Message) error {
	switch m.Opcode {
	case opCodeBufferRelease:
		if err := m.Done(); err != nil {
			return err
		}
		if this.l == nil {
			logIgnored(this, "Release")
			return nil
		}
		this.l.Release()
	default:
		return unknownOpcode(this, m)
	}
	return nil
}

// Destroy a buffer. If and how you need to release the backing
// storage is defined by the buffer factory interface.
func (this *Buffer) Destroy() error {
	if this == nil {
		return errors.New("object is nil")
	}
	if err := this.c.marshal(this, opCodeBufferDestroy, "Destroy", nil); err != nil {
		return err
	}
	this.c.objects.Destroy(this.id)
	return nil
}

const (
	opCodeSurfaceEnter = 0
	opCodeSurfaceLeave = 1
)

const (
	opCodeSurfaceDestroy        = 0
	opCodeSurfaceAttach         = 1
	opCodeSurfaceDamage         = 2
	opCodeSurfaceFrame          = 3
	opCodeSurfaceCommit         = 6
	opCodeSurfaceSetBufferScale = 8
	opCodeSurfaceDamageBuffer   = 9
)

// Surface Events
//
// Enter
// This is emitted whenever a surface's creation, movement, or resizing
// results in some part of it being within the scanout region of an
// output.
//
// Leave
// This is emitted whenever a surface's creation, movement, or resizing
// results in it no longer having any part of it within the scanout region
// of an output.
type SurfaceListener interface {
	Enter(output ObjectID)
	Leave(output ObjectID)
}

// A surface is a rectangular area that may be displayed on zero
// or more outputs, and shown any number of times at the compositor's
// discretion.  They can present wl_buffers, receive user input, and
// define a local coordinate system.
type Surface struct {
	proxy
	l SurfaceListener
}

// Kind returns the wayland interface
func (this *Surface) Kind() Kind {
	return KindSurface
}

// SetListener attaches l. It fails with ErrAlreadyBound if a listener is set.
func (this *Surface) SetListener(l SurfaceListener) error {
	if this.l != nil {
		return errors.Wrapf(ErrAlreadyBound, "%s@%d", this.Kind(), this.id)
	}
	this.l = l
	return nil
}

// ReplaceListener swaps the listener unconditionally.
func (this *Surface) ReplaceListener(l SurfaceListener) {
	this.l = l
}

func (this *Surface) dispatch(m *Message) error {
	switch m.Opcode {
	case opCodeSurfaceEnter:
		output := m.Object()
		if err := m.Done(); err != nil {
			return err
		}
		if this.l == nil {
			logIgnored(this, "Enter")
			return nil
		}
		this.l.Enter(output)
	case opCodeSurfaceLeave:
		output := m.Object()
		if err := m.Done(); err != nil {
			return err
		}
		if this.l == nil {
			logIgnored(this, "Leave")
			return nil
		}
		this.l.Leave(output)
	default:
		return unknownOpcode(this, m)
	}
	return nil
}

// Deletes the surface and invalidates its object ID.
func (this *Surface) Destroy() error {
	if this == nil {
		return errors.New("object is nil")
	}
	if err := this.c.marshal(this, opCodeSurfaceDestroy, "Destroy", nil); err != nil {
		return err
	}
	this.c.objects.Destroy(this.id)
	return nil
}

// Set a buffer as the content of this surface.
//
// Surface contents are double-buffered state, see wl_surface.commit.
// A nil buffer removes the content.
func (this *Surface) Attach(buffer *Buffer, x int32, y int32) error {
	if this == nil {
		return errors.New("object is nil")
	}
	var id ObjectID
	if buffer != nil {
		id = buffer.id
	}
	return this.c.marshal(this, opCodeSurfaceAttach, "Attach", func(e *Encoder) {
		e.PutObject(id)
		e.PutInt32(x)
		e.PutInt32(y)
	})
}

// This request is used to describe the regions where the pending
// buffer is different from the current surface contents, in
// surface-local coordinates.
func (this *Surface) Damage(x int32, y int32, width int32, height int32) error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeSurfaceDamage, "Damage", func(e *Encoder) {
		e.PutInt32(x)
		e.PutInt32(y)
		e.PutInt32(width)
		e.PutInt32(height)
	})
}

// Request a notification when it is a good time to start drawing a new
// frame, by creating a frame callback.  The callback fires once.
func (this *Surface) Frame(l CallbackListener) (*Callback, error) {
	if this == nil {
		return nil, errors.New("object is nil")
	}
	ret := &Callback{proxy: this.c.newProxy(1), l: l}
	err := this.c.create(this, ret, opCodeSurfaceFrame, "Frame", func(e *Encoder) {
		e.PutNewID(ret.id)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Surface state (input, opaque, and damage regions, attached buffers,
// etc.) is double-buffered.  Commit atomically applies all pending
// state.
func (this *Surface) Commit() error {
	if this == nil {
		return errors.New("object is nil")
	}
	return this.c.marshal(this, opCodeSurfaceCommit, "Commit", nil)
}

// This request sets an optional scaling factor on how the compositor
// interprets the contents of the buffer attached to the window.
func (this *Surface) SetBufferScale(scale int32) error {
	if this == nil {
		return errors.New("object is nil")
	}
	if err := requireVersion(this, "SetBufferScale", 3); err != nil {
		return err
	}
	return this.c.marshal(this, opCodeSurfaceSetBufferScale, "SetBufferScale", func(e *Encoder) {
		e.PutInt32(scale)
	})
}

// Same as Damage, but in buffer coordinates.
func (this *Surface) DamageBuffer(x int32, y int32, width int32, height int32) error {
	if this == nil {
		return errors.New("object is nil")
	}
	if err := requireVersion(this, "DamageBuffer", 4); err != nil {
		return err
	}
	return this.c.marshal(this, opCodeSurfaceDamageBuffer, "DamageBuffer", func(e *Encoder) {
		e.PutInt32(x)
		e.PutInt32(y)
		e.PutInt32(width)
		e.PutInt32(height)
	})
}

const (
	SeatCapabilityPointer  = 1 // the seat has pointer devices
	SeatCapabilityKeyboard = 2 // the seat has one or more keyboards
	SeatCapabilityTouch    = 4 // the seat has touch devices
)

const (
	opCodeSeatCapabilities = 0
	opCodeSeatName         = 1
)

const (
	opCodeSeatGetPointer = 0
	opCodeSeatRelease    = 3
)

// Seat Events
//
// Capabilities
// This is emitted whenever a seat gains or loses the pointer,
// keyboard or touch capabilities.
//
// Name
// In a multiseat configuration this can be used by the client to help
// identify which physical devices the seat represents.
type SeatListener interface {
	Capabilities(capabilities uint32)
	Name(name string)
}

// A seat is a group of keyboards, pointer and touch devices.  This
// object is published as a global during start up, or when such a
// device is hot plugged.
type Seat struct {
	proxy
	l SeatListener
}

// Kind returns the wayland interface
func (this *Seat) Kind() Kind {
	return KindSeat
}

// SetListener attaches l. It fails with ErrAlreadyBound if a listener is set.
func (this *Seat) SetListener(l SeatListener) error {
	if this.l != nil {
		return errors.Wrapf(ErrAlreadyBound, "%s@%d", this.Kind(), this.id)
	}
	this.l = l
	return nil
}

// ReplaceListener swaps the listener unconditionally.
func (this *Seat) ReplaceListener(l SeatListener) {
	this.l = l
}

func (this *Seat) dispatch(m *Message) error {
	switch m.Opcode {
	case opCodeSeatCapabilities:
		capabilities := m.Uint32()
		if err := m.Done(); err != nil {
			return err
		}
		if this.l == nil {
			logIgnored(this, "Capabilities")
			return nil
		}
		this.l.Capabilities(capabilities)
	case opCodeSeatName:
		name := m.Str()
		if err := m.Done(); err != nil {
			return err
		}
		if this.l == nil {
			logIgnored(this, "Name")
			return nil
		}
		this.l.Name(name)
	default:
		return unknownOpcode(this, m)
	}
	return nil
}

// The ID provided will be initialized to the wl_pointer interface
// for this seat.
func (this *Seat) GetPointer() (*Pointer, error) {
	if this == nil {
		return nil, errors.New("object is nil")
	}
	ret := &Pointer{proxy: this.c.newProxy(this.version)}
	err := this.c.create(this, ret, opCodeSeatGetPointer, "GetPointer", func(e *Encoder) {
		e.PutNewID(ret.id)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Using this request a client can tell the server that it is not going to
// use the seat object anymore.
func (this *Seat) Release() error {
	if this == nil {
		return errors.New("object is nil")
	}
	if err := requireVersion(this, "Release", 5); err != nil {
		return err
	}
	if err := this.c.marshal(this, opCodeSeatRelease, "Release", nil); err != nil {
		return err
	}
	this.c.objects.Destroy(this.id)
	return nil
}

const (
	PointerButtonStateReleased = 0 // the button is not pressed
	PointerButtonStatePressed  = 1 // the button is pressed
)

const (
	PointerAxisVerticalScroll   = 0
	PointerAxisHorizontalScroll = 1
)

const (
	PointerAxisSourceWheel      = 0
	PointerAxisSourceFinger     = 1
	PointerAxisSourceContinuous = 2
	PointerAxisSourceWheelTilt  = 3
)

const (
	opCodePointerEnter        = 0
	opCodePointerLeave        = 1
	opCodePointerMotion       = 2
	opCodePointerButton       = 3
	opCodePointerAxis         = 4
	opCodePointerFrame        = 5
	opCodePointerAxisSource   = 6
	opCodePointerAxisStop     = 7
	opCodePointerAxisDiscrete = 8
)

const (
	opCodePointerSetCursor = 0
	opCodePointerRelease   = 1
)

// Pointer Events
//
// Enter
// Notification that this seat's pointer is focused on a certain
// surface.  The serial is required by set_cursor.
//
// Leave
// Notification that this seat's pointer is no longer focused on
// a certain surface.
//
// Motion, Button, Axis
// Location change, button click and scroll on the focused surface.
//
// Frame, AxisSource, AxisStop, AxisDiscrete
// Grouping and axis detail events (version 5).
type PointerListener interface {
	Enter(serial uint32, surface *Surface, surfaceX float64, surfaceY float64)
	Leave(serial uint32, surface *Surface)
	Motion(time uint32, surfaceX float64, surfaceY float64)
	Button(serial uint32, time uint32, button uint32, state uint32)
	Axis(time uint32, axis uint32, value float64)
	Frame()
	AxisSource(axisSource uint32)
	AxisStop(time uint32, axis uint32)
	AxisDiscrete(axis uint32, discrete int32)
}

// The wl_pointer interface represents one or more input devices,
// such as mice, which control the pointer location and pointer_focus
// of a seat.
type Pointer struct {
	proxy
	l PointerListener
}

// Kind returns the wayland interface
func (this *Pointer) Kind() Kind {
	return KindPointer
}

// SetListener attaches l. It fails with ErrAlreadyBound if a listener is set.
func (this *Pointer) SetListener(l PointerListener) error {
	if this.l != nil {
		return errors.Wrapf(ErrAlreadyBound, "%s@%d", this.Kind(), this.id)
	}
	this.l = l
	return nil
}

// ReplaceListener swaps the listener unconditionally.
func (this *Pointer) ReplaceListener(l PointerListener) {
	this.l = l
}

func (this *Pointer) dispatch(m *Message) error {
	if this.l == nil {
		if m.Opcode > opCodePointerAxisDiscrete {
			return unknownOpcode(this, m)
		}
		logIgnored(this, "Event")
		return nil
	}
	switch m.Opcode {
	case opCodePointerEnter:
		serial := m.Uint32()
		surface := m.Object()
		surfaceX := m.Fixed()
		surfaceY := m.Fixed()
		if err := m.Done(); err != nil {
			return err
		}
		this.l.Enter(serial, lookup[*Surface](this.c, surface), surfaceX, surfaceY)
	case opCodePointerLeave:
		serial := m.Uint32()
		surface := m.Object()
		if err := m.Done(); err != nil {
			return err
		}
		this.l.Leave(serial, lookup[*Surface](this.c, surface))
	case opCodePointerMotion:
		time := m.Uint32()
		surfaceX := m.Fixed()
		surfaceY := m.Fixed()
		if err := m.Done(); err != nil {
			return err
		}
		this.l.Motion(time, surfaceX, surfaceY)
	case opCodePointerButton:
		serial := m.Uint32()
		time := m.Uint32()
		button := m.Uint32()
		state := m.Uint32()
		if err := m.Done(); err != nil {
			return err
		}
		this.l.Button(serial, time, button, state)
	case opCodePointerAxis:
		time := m.Uint32()
		axis := m.Uint32()
		value := m.Fixed()
		if err := m.Done(); err != nil {
			return err
		}
		this.l.Axis(time, axis, value)
	case opCodePointerFrame:
		if err := m.Done(); err != nil {
			return err
		}
		this.l.Frame()
	case opCodePointerAxisSource:
		axisSource := m.Uint32()
		if err := m.Done(); err != nil {
			return err
		}
		this.l.AxisSource(axisSource)
	case opCodePointerAxisStop:
		time := m.Uint32()
		axis := m.Uint32()
		if err := m.Done(); err != nil {
			return err
		}
		this.l.AxisStop(time, axis)
	case opCodePointerAxisDiscrete:
		axis := m.Uint32()
		discrete := m.Int32()
		if err := m.Done(); err != nil {
			return err
		}
		this.l.AxisDiscrete(axis, discrete)
	default:
		return unknownOpcode(this, m)
	}
	return nil
}

// Set the pointer surface, i.e., the surface that contains the
// pointer image (cursor).  The serial must be the one of the last
// enter event; requests with any other serial are ignored by the
// compositor.  A nil surface hides the pointer.
func (this *Pointer) SetCursor(serial uint32, surface *Surface, hotspotX int32, hotspotY int32) error {
	if this == nil {
		return errors.New("object is nil")
	}
	var id ObjectID
	if surface != nil {
		id = surface.id
	}
	return this.c.marshal(this, opCodePointerSetCursor, "SetCursor", func(e *Encoder) {
		e.PutUint32(serial)
		e.PutObject(id)
		e.PutInt32(hotspotX)
		e.PutInt32(hotspotY)
	})
}

// Using this request a client can tell the server that it is not going to
// use the pointer object anymore.
func (this *Pointer) Release() error {
	if this == nil {
		return errors.New("object is nil")
	}
	if err := requireVersion(this, "Release", 3); err != nil {
		return err
	}
	if err := this.c.marshal(this, opCodePointerRelease, "Release", nil); err != nil {
		return err
	}
	this.c.objects.Destroy(this.id)
	return nil
}
