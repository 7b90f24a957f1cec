package wl

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/elliotmr/wayclient/event"
	"github.com/elliotmr/wayclient/wl/wlp"
)

// Surface is a wl_surface. Attach, damage, buffer scale and frame callbacks
// are held back and only sent, in that order, by Commit.
type Surface struct {
	c     *Client
	proxy *wlp.Surface

	staged  bool
	pending *Buffer
	x, y    int32
	damage  []damageRect
	scale   int32
	frames  []func(uint32)

	current *Buffer
	pointer event.Handler
	window  *Window

	destroyed bool
}

type damageRect struct {
	buffer              bool
	x, y, width, height int32
}

// CreateSurface creates a surface with no role.
func (c *Client) CreateSurface() (*Surface, error) {
	proxy, err := c.compositor.CreateSurface()
	if err != nil {
		return nil, errors.Wrap(err, "unable to create surface")
	}
	s := &Surface{c: c, proxy: proxy}
	proxy.SetListener(&surfaceCb{s: s})
	c.surfaces[proxy.ID()] = s
	return s, nil
}

func (s *Surface) ID() wlp.ObjectID {
	return s.proxy.ID()
}

// Attach stages buf as the next content of the surface. A nil buffer removes
// the content.
func (s *Surface) Attach(buf *Buffer, x, y int32) error {
	if s.destroyed {
		return errors.New("surface is destroyed")
	}
	if buf != nil && buf.destroyed {
		return errors.New("buffer is destroyed")
	}
	s.staged = true
	s.pending = buf
	s.x, s.y = x, y
	return nil
}

// Damage marks a rectangle in surface coordinates as changed.
func (s *Surface) Damage(x, y, width, height int32) error {
	if s.destroyed {
		return errors.New("surface is destroyed")
	}
	s.damage = append(s.damage, damageRect{x: x, y: y, width: width, height: height})
	return nil
}

// DamageBuffer marks a rectangle in buffer coordinates as changed. It needs
// wl_compositor version 4.
func (s *Surface) DamageBuffer(x, y, width, height int32) error {
	if err := s.since("damage_buffer", 4); err != nil {
		return err
	}
	s.damage = append(s.damage, damageRect{buffer: true, x: x, y: y, width: width, height: height})
	return nil
}

func (s *Surface) SetBufferScale(scale int32) error {
	if err := s.since("set_buffer_scale", 3); err != nil {
		return err
	}
	if scale < 1 {
		return errors.Wrapf(ErrInvalidSize, "buffer scale %d", scale)
	}
	s.scale = scale
	return nil
}

// Frame calls f once, with a millisecond timestamp, when it is a good time to
// draw the next frame. The callback is requested by the next commit.
func (s *Surface) Frame(f func(time uint32)) error {
	if s.destroyed {
		return errors.New("surface is destroyed")
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *Surface) since(request string, version uint32) error {
	if s.destroyed {
		return errors.New("surface is destroyed")
	}
	if v := s.proxy.Version(); v < version {
		return errors.Wrapf(wlp.ErrUnsupportedVersion, "wl_surface.%s needs version %d, surface has %d", request, version, v)
	}
	return nil
}

// Commit sends the held back requests and applies them. Nothing is sent when
// Commit fails its checks: a buffer destroyed after Attach, or on a window a
// buffer before the first configure was acknowledged.
func (s *Surface) Commit() error {
	if s.destroyed {
		return errors.New("surface is destroyed")
	}
	withBuffer := s.staged && s.pending != nil
	if withBuffer && s.pending.destroyed {
		return errors.New("attached buffer was destroyed before commit")
	}
	if w := s.window; w != nil && withBuffer && !w.acked {
		return ErrPrematureCommit
	}

	if err := s.flush(); err != nil {
		return err
	}
	if err := s.proxy.Commit(); err != nil {
		return errors.Wrap(err, "unable to commit surface")
	}

	if s.staged {
		s.current = s.pending
		if s.current != nil {
			s.current.busy = true
		}
		s.staged = false
		s.pending = nil
		s.x, s.y = 0, 0
	}
	if s.window != nil {
		s.window.committed(withBuffer)
	}
	return nil
}

func (s *Surface) flush() error {
	if s.staged {
		var proxy *wlp.Buffer
		if s.pending != nil {
			proxy = s.pending.proxy
		}
		if err := s.proxy.Attach(proxy, s.x, s.y); err != nil {
			return errors.Wrap(err, "unable to attach buffer")
		}
	}

	damage := s.damage
	s.damage = nil
	for _, r := range damage {
		var err error
		if r.buffer {
			err = s.proxy.DamageBuffer(r.x, r.y, r.width, r.height)
		} else {
			err = s.proxy.Damage(r.x, r.y, r.width, r.height)
		}
		if err != nil {
			return errors.Wrap(err, "unable to damage surface")
		}
	}

	if s.scale != 0 {
		scale := s.scale
		s.scale = 0
		if err := s.proxy.SetBufferScale(scale); err != nil {
			return errors.Wrap(err, "unable to set buffer scale")
		}
	}

	frames := s.frames
	s.frames = nil
	for _, f := range frames {
		if _, err := s.proxy.Frame(callbackFunc(f)); err != nil {
			return errors.Wrap(err, "unable to request frame")
		}
	}
	return nil
}

// Buffer is the buffer shown by the last commit.
func (s *Surface) Buffer() *Buffer {
	return s.current
}

// SetPointerListener makes h receive the pointer events of this surface.
// Passing nil removes the handler.
func (s *Surface) SetPointerListener(h event.Handler) error {
	if h != nil && s.pointer != nil {
		return errors.Wrapf(wlp.ErrAlreadyBound, "surface %d has a pointer listener", s.ID())
	}
	s.pointer = h
	return nil
}

func (s *Surface) Destroy() error {
	if s.destroyed {
		return nil
	}
	if err := s.proxy.Destroy(); err != nil {
		return errors.Wrap(err, "unable to destroy surface")
	}
	s.destroyed = true
	delete(s.c.surfaces, s.ID())
	if p := s.c.pointer; p != nil && p.focus == s {
		p.focus = nil
	}
	return nil
}

type surfaceCb struct {
	s *Surface
}

// wl_output is never bound, so the compositor has no output to report.
func (scb *surfaceCb) Enter(output wlp.ObjectID) {
	Logger().Debug("surface entered an unbound output",
		zap.Uint32("surface", uint32(scb.s.ID())),
		zap.Uint32("output", uint32(output)),
	)
}

func (scb *surfaceCb) Leave(output wlp.ObjectID) {}

type callbackFunc func(uint32)

func (f callbackFunc) Done(data uint32) {
	if f != nil {
		f(data)
	}
}
