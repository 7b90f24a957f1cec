package wl

import (
	"image"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/elliotmr/wayclient/event"
	"github.com/elliotmr/wayclient/wl/wlp"
)

// Pointer routes seat pointer events to the pointer listener of the surface
// that has focus.
type Pointer struct {
	c     *Client
	proxy *wlp.Pointer

	focus  *Surface
	serial uint32
	x, y   float64

	cursor     *Surface
	cursorPool *Pool
	// cursor buffers the compositor may still read, the last one is shown
	cursorBufs []*Buffer
}

func newPointer(c *Client) (*Pointer, error) {
	proxy, err := c.seat.GetPointer()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get pointer")
	}
	p := &Pointer{c: c, proxy: proxy}
	proxy.SetListener(&pointerCb{p: p})
	return p, nil
}

// Serial is the serial of the last enter. Cursor changes must quote it.
func (p *Pointer) Serial() uint32 {
	return p.serial
}

// Focus is the surface under the pointer, or nil.
func (p *Pointer) Focus() *Surface {
	return p.focus
}

// Position is the last known position in focus surface coordinates.
func (p *Pointer) Position() (x, y float64) {
	return p.x, p.y
}

// SetCursor shows cursor as the pointer image, or hides the pointer if cursor
// is nil. A serial other than the last enter serial is not an error, the
// compositor just ignores the request.
func (p *Pointer) SetCursor(serial uint32, cursor *Surface, hotspotX, hotspotY int32) error {
	var proxy *wlp.Surface
	if cursor != nil {
		proxy = cursor.proxy
	}
	if serial != p.serial {
		Logger().Debug("set_cursor with a stale serial",
			zap.Uint32("serial", serial),
			zap.Uint32("enter", p.serial),
		)
	}
	return p.proxy.SetCursor(serial, proxy, hotspotX, hotspotY)
}

// SetCursorImage uploads img to a cursor surface and makes it the pointer
// image for the current enter serial. The image is drawn into a part of the
// cursor pool that no busy buffer uses.
func (p *Pointer) SetCursorImage(img image.Image, hotspotX, hotspotY int) error {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return errors.Wrapf(ErrInvalidSize, "cursor image is %dx%d", width, height)
	}
	if p.cursor == nil {
		s, err := p.c.CreateSurface()
		if err != nil {
			return errors.Wrap(err, "unable to create cursor surface")
		}
		p.cursor = s
	}

	size := width * height * 4
	var offset int
	if p.cursorPool == nil {
		pool, err := p.c.CreateAnonymousPool(size)
		if err != nil {
			return errors.Wrap(err, "unable to create cursor pool")
		}
		p.cursorPool = pool
	} else if offset = p.cursorPool.FreeOffset(size); p.cursorPool.Size() < offset+size {
		if err := p.cursorPool.Resize(offset + size); err != nil {
			return errors.Wrap(err, "unable to grow cursor pool")
		}
	}

	buf, err := p.cursorPool.CreateBuffer(int32(offset), int32(width), int32(height), int32(width*4), FormatARGB8888)
	if err != nil {
		return errors.Wrap(err, "unable to create cursor buffer")
	}
	dst, err := buf.Image()
	if err != nil {
		buf.Destroy()
		return err
	}
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)

	if err := p.cursor.Attach(buf, 0, 0); err != nil {
		buf.Destroy()
		return err
	}
	if err := p.cursor.Damage(0, 0, int32(width), int32(height)); err != nil {
		buf.Destroy()
		return err
	}
	if err := p.cursor.Commit(); err != nil {
		buf.Destroy()
		return err
	}
	p.retireCursorBuffers()
	p.cursorBufs = append(p.cursorBufs, buf)
	return p.SetCursor(p.serial, p.cursor, int32(hotspotX), int32(hotspotY))
}

// CursorBuffer is the buffer of the current cursor image, or nil.
func (p *Pointer) CursorBuffer() *Buffer {
	if n := len(p.cursorBufs); n > 0 {
		return p.cursorBufs[n-1]
	}
	return nil
}

// retireCursorBuffers destroys the replaced cursor buffers, waiting for the
// release of those still busy.
func (p *Pointer) retireCursorBuffers() {
	old := p.cursorBufs
	p.cursorBufs = nil
	for _, b := range old {
		if !b.Busy() {
			b.Destroy()
			continue
		}
		p.cursorBufs = append(p.cursorBufs, b)
		b.OnRelease(func(b *Buffer) {
			p.dropCursorBuffer(b)
			if err := b.Destroy(); err != nil {
				Logger().Warn("unable to destroy cursor buffer", zap.Error(err))
			}
		})
	}
}

func (p *Pointer) dropCursorBuffer(b *Buffer) {
	for i, o := range p.cursorBufs {
		if o == b {
			p.cursorBufs = append(p.cursorBufs[:i], p.cursorBufs[i+1:]...)
			return
		}
	}
}

// release gives the pointer back when the seat loses the capability.
func (p *Pointer) release() {
	if p.focus != nil && p.focus.pointer != nil {
		p.focus.pointer.Handle(event.MouseLeaveEvent{Serial: p.serial, Surface: uint32(p.focus.ID())})
	}
	p.focus = nil

	for _, b := range p.cursorBufs {
		b.Destroy()
	}
	p.cursorBufs = nil
	if p.cursorPool != nil {
		p.cursorPool.Destroy()
	}
	if p.cursor != nil {
		p.cursor.Destroy()
	}
	if p.proxy.Version() >= 3 {
		if err := p.proxy.Release(); err != nil {
			Logger().Warn("unable to release pointer", zap.Error(err))
		}
	}
}

func (p *Pointer) deliver(ev event.Event) {
	if p.focus == nil || p.focus.pointer == nil {
		Logger().Debug("pointer event without a listener", zap.Uint32("type", ev.Type()))
		return
	}
	p.focus.pointer.Handle(ev)
}

type pointerCb struct {
	p *Pointer
}

func (pcb *pointerCb) surface(proxy *wlp.Surface) *Surface {
	if proxy == nil {
		return nil
	}
	return pcb.p.c.surfaces[proxy.ID()]
}

func (pcb *pointerCb) Enter(serial uint32, surface *wlp.Surface, x, y float64) {
	p := pcb.p
	p.serial = serial
	p.focus = pcb.surface(surface)
	p.x, p.y = x, y
	if p.focus == nil {
		return
	}
	p.deliver(event.MouseEnterEvent{Serial: serial, Surface: uint32(p.focus.ID()), X: x, Y: y})
}

func (pcb *pointerCb) Leave(serial uint32, surface *wlp.Surface) {
	p := pcb.p
	left := pcb.surface(surface)
	if left == nil {
		left = p.focus
	}
	p.focus = left
	if left != nil {
		p.deliver(event.MouseLeaveEvent{Serial: serial, Surface: uint32(left.ID())})
	}
	p.focus = nil
}

func (pcb *pointerCb) Motion(time uint32, x, y float64) {
	p := pcb.p
	p.x, p.y = x, y
	p.deliver(event.MouseMotionEvent{Time: time, X: x, Y: y})
}

func (pcb *pointerCb) Button(serial uint32, time uint32, button uint32, state uint32) {
	pcb.p.deliver(event.MouseButtonEvent{
		Serial:  serial,
		Time:    time,
		Button:  button,
		Pressed: state == wlp.PointerButtonStatePressed,
	})
}

func (pcb *pointerCb) Axis(time uint32, axis uint32, value float64) {
	pcb.p.deliver(event.MouseWheelEvent{Time: time, Axis: axis, Value: value})
}

func (pcb *pointerCb) Frame() {
	pcb.p.deliver(event.MouseFrameEvent{})
}

func (pcb *pointerCb) AxisSource(source uint32) {
	pcb.p.deliver(event.MouseWheelSourceEvent{Source: source})
}

func (pcb *pointerCb) AxisStop(time uint32, axis uint32) {
	pcb.p.deliver(event.MouseWheelStopEvent{Time: time, Axis: axis})
}

func (pcb *pointerCb) AxisDiscrete(axis uint32, discrete int32) {
	pcb.p.deliver(event.MouseWheelDiscreteEvent{Axis: axis, Discrete: discrete})
}
