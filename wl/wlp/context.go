package wlp

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Global is a capability advertised through wl_registry.global.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// Kind is the object kind a bind of this global produces.
func (g Global) Kind() Kind {
	return KindOf(g.Interface)
}

// Context is one connection to a compositor. It owns the transport and the
// object table and is driven from a single goroutine; only Close and Stop may
// be called concurrently.
type Context struct {
	*Display
	*Registry

	conn    *Conn
	objects *Table
	globals map[uint32]Global
	order   []uint32
	watch   RegistryListener
	err     error
	stopped atomic.Bool
}

// NewContext takes over conn and requests the registry. Globals are only
// guaranteed to be known after the first Roundtrip.
func NewContext(conn *Conn) (*Context, error) {
	c := &Context{
		conn:    conn,
		objects: NewTable(),
		globals: make(map[uint32]Global),
	}
	c.Display = &Display{proxy: proxy{id: DisplayID, version: 1, c: c}}
	c.Display.l = c
	if err := c.objects.Insert(c.Display); err != nil {
		return nil, err
	}
	registry, err := c.Display.GetRegistry(c)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get registry")
	}
	c.Registry = registry
	return c, nil
}

// Objects exposes the object table.
func (c *Context) Objects() *Table {
	return c.objects
}

// Err returns the fatal error that closed the connection, if any.
func (c *Context) Err() error {
	return c.err
}

// Error implements DisplayListener. Protocol errors are fatal.
func (c *Context) Error(objectID ObjectID, code uint32, message string) {
	c.fail(&ProtocolError{Object: objectID, Code: code, Message: message})
}

// DeleteID implements DisplayListener.
func (c *Context) DeleteID(id uint32) {
	c.objects.confirmDelete(ObjectID(id))
}

// Global is an implementation of the RegistryListener interface. It will
// receive callbacks from the global registry and store them in announcement
// order.
func (c *Context) Global(name uint32, iface string, version uint32) {
	if _, exists := c.globals[name]; !exists {
		c.order = append(c.order, name)
	}
	c.globals[name] = Global{Name: name, Interface: iface, Version: version}
	Logger().Debug("global added", zap.Uint32("name", name), zap.String("interface", iface), zap.Uint32("version", version))
	if c.watch != nil {
		c.watch.Global(name, iface, version)
	}
}

// GlobalRemove is an implementation of the RegistryListener interface for
// removing global objects when they are no longer present in the server.
// Proxies already bound to the global stay valid.
func (c *Context) GlobalRemove(name uint32) {
	if _, exists := c.globals[name]; !exists {
		return
	}
	delete(c.globals, name)
	b := c.order[:0]
	for _, n := range c.order {
		if n != name {
			b = append(b, n)
		}
	}
	c.order = b
	if c.watch != nil {
		c.watch.GlobalRemove(name)
	}
}

// WatchGlobals forwards registry events to l after they have been recorded.
func (c *Context) WatchGlobals(l RegistryListener) error {
	if c.watch != nil {
		return errors.Wrap(ErrAlreadyBound, "registry watcher")
	}
	c.watch = l
	return nil
}

// Globals returns the currently advertised globals in announcement order.
func (c *Context) Globals() []Global {
	out := make([]Global, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.globals[name])
	}
	return out
}

// Find returns the advertised globals of one kind.
func (c *Context) Find(kind Kind) []Global {
	var out []Global
	for _, name := range c.order {
		if g := c.globals[name]; g.Kind() == kind {
			out = append(out, g)
		}
	}
	return out
}

// Bind creates a proxy for the global with the given name.
func (c *Context) Bind(name uint32, kind Kind, version uint32) (Object, error) {
	glb, exists := c.globals[name]
	if !exists {
		return nil, errors.Wrapf(ErrUnknownGlobal, "name %d", name)
	}
	if glb.Kind() != kind {
		return nil, errors.Wrapf(ErrInterfaceMismatch, "global %d is %s, not %s", name, glb.Interface, kind)
	}
	if version == 0 || version > glb.Version {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "%s: requested %d, advertised %d", glb.Interface, version, glb.Version)
	}
	if version > kind.MaxVersion() {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "%s: requested %d, implemented %d", glb.Interface, version, kind.MaxVersion())
	}

	var o Object
	p := c.newProxy(version)
	switch kind {
	case KindCompositor:
		o = &Compositor{proxy: p}
	case KindShm:
		o = &Shm{proxy: p}
	case KindSeat:
		o = &Seat{proxy: p}
	case KindShell:
		o = &ZxdgShellV6{proxy: p}
	default:
		c.objects.forget(p.id)
		return nil, errors.Wrapf(ErrInterfaceMismatch, "%s is not bindable", kind)
	}
	if err := c.objects.Insert(o); err != nil {
		return nil, errors.Wrapf(err, "unable to bind object: %s", glb.Interface)
	}
	err := c.Registry.Bind(name, glb.Interface, version, o.ID())
	if err != nil {
		c.objects.forget(o.ID())
		return nil, errors.Wrapf(err, "unable to bind object: %s", glb.Interface)
	}
	return o, nil
}

// DispatchOne flushes pending requests, reads exactly one event and runs its
// listener to completion.
func (c *Context) DispatchOne() error {
	if c.err != nil {
		return c.err
	}
	if err := c.conn.Flush(); err != nil {
		return c.fail(err)
	}
	m, err := c.conn.Receive()
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return err
		}
		return c.fail(err)
	}
	return c.dispatch(m)
}

func (c *Context) dispatch(m *Message) error {
	obj, err := c.objects.Resolve(m.Sender)
	if err != nil {
		Logger().Debug("dropping event",
			zap.Uint32("id", uint32(m.Sender)),
			zap.Uint16("opcode", m.Opcode),
			zap.Bool("zombie", c.objects.Zombie(m.Sender)),
		)
		return nil
	}
	logEvent(obj, m)
	if err := obj.dispatch(m); err != nil {
		return c.fail(err)
	}
	return c.err
}

// Run dispatches until the connection fails, Stop is called or ctx is done.
// Cancelling ctx interrupts a blocked read.
func (c *Context) Run(ctx context.Context) error {
	defer c.stopped.Store(false)

	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
		close(interrupted)
	})
	defer func() {
		if !stop() {
			<-interrupted
			c.conn.SetReadDeadline(time.Time{})
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.stopped.Load() {
			return nil
		}
		if err := c.DispatchOne(); err != nil {
			if ctx.Err() != nil && errors.Is(err, os.ErrDeadlineExceeded) {
				return ctx.Err()
			}
			return err
		}
	}
}

// Stop makes Run return after the event being dispatched.
func (c *Context) Stop() {
	c.stopped.Store(true)
}

type syncDone struct {
	fired bool
	data  uint32
}

func (s *syncDone) Done(callbackData uint32) {
	s.fired = true
	s.data = callbackData
}

// Roundtrip blocks until the server has processed every request sent so far
// and all resulting events have been dispatched.
func (c *Context) Roundtrip() error {
	done := &syncDone{}
	if _, err := c.Display.Sync(done); err != nil {
		return errors.Wrap(err, "unable to create display sync")
	}
	for !done.fired {
		if err := c.DispatchOne(); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes queued requests without waiting for anything.
func (c *Context) Flush() error {
	if c.err != nil {
		return c.err
	}
	if err := c.conn.Flush(); err != nil {
		return c.fail(err)
	}
	return nil
}

// Close closes the connection. Pending and future calls fail with
// ErrConnectionClosed. It may be called from any goroutine.
func (c *Context) Close() error {
	return c.conn.Close()
}

func (c *Context) fail(cause error) error {
	if c.err != nil {
		return c.err
	}
	if errors.Is(cause, ErrConnectionClosed) {
		c.err = cause
	} else {
		c.err = &closedError{cause: cause}
		Logger().Error("fatal wayland error", zap.Error(cause))
	}
	c.conn.Close()
	return c.err
}

func (c *Context) newProxy(version uint32) proxy {
	return proxy{id: c.objects.Allocate(), version: version, c: c}
}

// marshal queues a request on behalf of sender.
func (c *Context) marshal(sender Object, opcode uint16, method string, encode func(e *Encoder)) error {
	if c.err != nil {
		return errors.Wrap(c.err, "global wayland error")
	}
	// a destroyed proxy must not write through an id that has been reissued
	if o, err := c.objects.Resolve(sender.ID()); err != nil || o != sender {
		return errors.Wrapf(ErrUnknownObject, "%s on id %d", wireName(sender.Kind(), method), sender.ID())
	}
	e := &Encoder{}
	if encode != nil {
		encode(e)
	}
	logRequest(sender, method, e.Bytes())
	err := c.conn.Send(sender.ID(), opcode, e.Bytes(), e.File())
	if err != nil && !errors.Is(err, errMessageTooLarge) {
		return c.fail(err)
	}
	return err
}

// create allocates the proxy for a new_id argument, queues the request and
// takes the id back if the request could not be queued.
func (c *Context) create(sender Object, o Object, opcode uint16, method string, encode func(e *Encoder)) error {
	if err := c.objects.Insert(o); err != nil {
		return errors.Wrap(err, wireName(sender.Kind(), method))
	}
	if err := c.marshal(sender, opcode, method, encode); err != nil {
		c.objects.forget(o.ID())
		return err
	}
	return nil
}

func lookup[T Object](c *Context, id ObjectID) T {
	var zero T
	o, err := c.objects.Resolve(id)
	if err != nil {
		return zero
	}
	t, _ := o.(T)
	return t
}

type proxy struct {
	id      ObjectID
	version uint32
	c       *Context
}

// ID returns the wayland object identifier
func (p *proxy) ID() ObjectID {
	return p.id
}

// Version returns the protocol version the object was created with
func (p *proxy) Version() uint32 {
	return p.version
}

func unknownOpcode(o Object, m *Message) error {
	return errors.Wrapf(ErrMalformed, "%s@%d: unknown event opcode %d", o.Kind(), o.ID(), m.Opcode)
}

func requireVersion(o Object, method string, since uint32) error {
	if o.Version() < since {
		return errors.Wrapf(ErrUnsupportedVersion, "%s needs version %d, object has %d", wireName(o.Kind(), method), since, o.Version())
	}
	return nil
}
