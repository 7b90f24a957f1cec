package wltest

import (
	"github.com/pkg/errors"

	"github.com/elliotmr/wayclient/wl/wlp"
)

func (s *Server) last(iface string) (wlp.ObjectID, error) {
	id := s.Last(iface)
	if id == 0 {
		return 0, errors.Errorf("client has no %s", iface)
	}
	return id, nil
}

// Global announces a new global on the registry.
func (s *Server) Global(name uint32, iface string, version uint32) error {
	s.mu.Lock()
	registry := s.registry
	s.mu.Unlock()
	return s.Send(registry, registryGlobal, func(e *wlp.Encoder) {
		e.PutUint32(name)
		e.PutString(iface)
		e.PutUint32(version)
	})
}

func (s *Server) GlobalRemove(name uint32) error {
	s.mu.Lock()
	registry := s.registry
	s.mu.Unlock()
	return s.Send(registry, registryGlobalRemove, func(e *wlp.Encoder) {
		e.PutUint32(name)
	})
}

// Error posts wl_display.error. The client is expected to give up on the
// connection.
func (s *Server) Error(object wlp.ObjectID, code uint32, message string) error {
	return s.Send(wlp.DisplayID, displayError, func(e *wlp.Encoder) {
		e.PutObject(object)
		e.PutUint32(code)
		e.PutString(message)
	})
}

// Ping sends a shell ping and returns its serial.
func (s *Server) Ping() (uint32, error) {
	shell, err := s.last("zxdg_shell_v6")
	if err != nil {
		return 0, err
	}
	serial := s.nextSerial()
	return serial, s.Send(shell, shellPing, func(e *wlp.Encoder) { e.PutUint32(serial) })
}

// Configure sends a configure sequence to the newest toplevel and returns the
// serial the client has to acknowledge.
func (s *Server) Configure(width, height int32, states ...uint32) (uint32, error) {
	s.mu.Lock()
	if len(s.toplevels) == 0 {
		s.mu.Unlock()
		return 0, errors.New("client has no toplevel")
	}
	t := s.toplevels[len(s.toplevels)-1]
	t.configured = true
	sends := s.configureLocked(t, width, height, states...)
	serial := s.serial
	s.mu.Unlock()

	for _, send := range sends {
		if err := send(); err != nil {
			return 0, err
		}
	}
	return serial, nil
}

// CloseToplevel asks the newest toplevel to close.
func (s *Server) CloseToplevel() error {
	s.mu.Lock()
	if len(s.toplevels) == 0 {
		s.mu.Unlock()
		return errors.New("client has no toplevel")
	}
	t := s.toplevels[len(s.toplevels)-1]
	t.closed = true
	s.mu.Unlock()
	return s.Send(t.id, toplevelClose, nil)
}

// Capabilities changes the seat capabilities.
func (s *Server) Capabilities(caps uint32) error {
	seat, err := s.last("wl_seat")
	if err != nil {
		return err
	}
	return s.Send(seat, seatCapabilities, func(e *wlp.Encoder) { e.PutUint32(caps) })
}

// Release hands a buffer back to the client.
func (s *Server) Release(buffer wlp.ObjectID) error {
	return s.Send(buffer, bufferRelease, nil)
}

// PointerEnter focuses surface with a fresh serial.
func (s *Server) PointerEnter(surface wlp.ObjectID, x, y float64) (uint32, error) {
	serial := s.nextSerial()
	return serial, s.PointerEnterSerial(serial, surface, x, y)
}

// PointerEnterSerial focuses surface with the given serial.
func (s *Server) PointerEnterSerial(serial uint32, surface wlp.ObjectID, x, y float64) error {
	pointer, err := s.last("wl_pointer")
	if err != nil {
		return err
	}
	return s.Send(pointer, pointerEnter, func(e *wlp.Encoder) {
		e.PutUint32(serial)
		e.PutObject(surface)
		e.PutFixed(x)
		e.PutFixed(y)
	})
}

func (s *Server) PointerLeave(surface wlp.ObjectID) (uint32, error) {
	pointer, err := s.last("wl_pointer")
	if err != nil {
		return 0, err
	}
	serial := s.nextSerial()
	return serial, s.Send(pointer, pointerLeave, func(e *wlp.Encoder) {
		e.PutUint32(serial)
		e.PutObject(surface)
	})
}

func (s *Server) PointerMotion(time uint32, x, y float64) error {
	pointer, err := s.last("wl_pointer")
	if err != nil {
		return err
	}
	return s.Send(pointer, pointerMotion, func(e *wlp.Encoder) {
		e.PutUint32(time)
		e.PutFixed(x)
		e.PutFixed(y)
	})
}

func (s *Server) PointerButton(time, button uint32, pressed bool) (uint32, error) {
	pointer, err := s.last("wl_pointer")
	if err != nil {
		return 0, err
	}
	serial := s.nextSerial()
	var state uint32
	if pressed {
		state = wlp.PointerButtonStatePressed
	}
	return serial, s.Send(pointer, pointerButton, func(e *wlp.Encoder) {
		e.PutUint32(serial)
		e.PutUint32(time)
		e.PutUint32(button)
		e.PutUint32(state)
	})
}

func (s *Server) PointerAxis(time, axis uint32, value float64) error {
	pointer, err := s.last("wl_pointer")
	if err != nil {
		return err
	}
	return s.Send(pointer, pointerAxis, func(e *wlp.Encoder) {
		e.PutUint32(time)
		e.PutUint32(axis)
		e.PutFixed(value)
	})
}

func (s *Server) PointerFrame() error {
	pointer, err := s.last("wl_pointer")
	if err != nil {
		return err
	}
	return s.Send(pointer, pointerFrame, nil)
}
