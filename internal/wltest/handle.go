package wltest

import (
	"github.com/pkg/errors"

	"github.com/elliotmr/wayclient/wl/wlp"
)

var requestNames = map[string][]string{
	"wl_display":       {"sync", "get_registry"},
	"wl_registry":      {"bind"},
	"wl_compositor":    {"create_surface", "create_region"},
	"wl_shm":           {"create_pool"},
	"wl_shm_pool":      {"create_buffer", "destroy", "resize"},
	"wl_buffer":        {"destroy"},
	"wl_surface":       {"destroy", "attach", "damage", "frame", "set_opaque_region", "set_input_region", "commit", "set_buffer_transform", "set_buffer_scale", "damage_buffer"},
	"wl_seat":          {"get_pointer", "get_keyboard", "get_touch", "release"},
	"wl_pointer":       {"set_cursor", "release"},
	"zxdg_shell_v6":    {"destroy", "create_positioner", "get_xdg_surface", "pong"},
	"zxdg_surface_v6":  {"destroy", "get_toplevel", "get_popup", "set_window_geometry", "ack_configure"},
	"zxdg_toplevel_v6": {"destroy", "set_parent", "set_title", "set_app_id", "show_window_menu", "move", "resize", "set_max_size", "set_min_size", "set_maximized", "unset_maximized", "set_fullscreen", "unset_fullscreen", "set_minimized"},
}

var destructors = map[string]bool{
	"wl_shm_pool.destroy":      true,
	"wl_buffer.destroy":        true,
	"wl_surface.destroy":       true,
	"wl_seat.release":          true,
	"wl_pointer.release":       true,
	"zxdg_shell_v6.destroy":    true,
	"zxdg_surface_v6.destroy":  true,
	"zxdg_toplevel_v6.destroy": true,
}

// event opcodes sent by the compositor
const (
	displayError          = 0
	displayDeleteID       = 1
	registryGlobal        = 0
	registryGlobalRemove  = 1
	callbackDone          = 0
	shmFormat             = 0
	bufferRelease         = 0
	seatCapabilities      = 0
	seatName              = 1
	pointerEnter          = 0
	pointerLeave          = 1
	pointerMotion         = 2
	pointerButton         = 3
	pointerAxis           = 4
	pointerFrame          = 5
	shellPing             = 0
	xdgSurfaceConfigure   = 0
	toplevelConfigure     = 0
	toplevelClose         = 1
	unconfiguredBufferErr = wlp.ZxdgSurfaceV6ErrorUnconfiguredBuffer
)

func requestName(iface string, opcode uint16) string {
	names := requestNames[iface]
	if int(opcode) < len(names) {
		return iface + "." + names[opcode]
	}
	return ""
}

func canonical(iface string) string {
	if iface == "xdg_wm_base" {
		return "zxdg_shell_v6"
	}
	return iface
}

type surfaceState struct {
	attached bool
	frames   []wlp.ObjectID
}

func (s *Server) create(id wlp.ObjectID, iface string) {
	s.objects[id] = iface
	s.order = append(s.order, id)
}

func (s *Server) destroy(id wlp.ObjectID) {
	delete(s.objects, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Server) surface(id wlp.ObjectID) *surfaceState {
	st, exists := s.surfaces[id]
	if !exists {
		st = &surfaceState{}
		s.surfaces[id] = st
	}
	return st
}

func (s *Server) toplevelFor(field func(t *toplevel) wlp.ObjectID, id wlp.ObjectID) *toplevel {
	for _, t := range s.toplevels {
		if field(t) == id {
			return t
		}
	}
	return nil
}

// handle records m and performs the compositor side effects of the request.
// Everything that has to be sent back is collected and written after the
// lock is released.
func (s *Server) handle(m *wlp.Message) error {
	var replies []func() error
	reply := func(id wlp.ObjectID, opcode uint16, build func(e *wlp.Encoder)) {
		replies = append(replies, func() error { return s.Send(id, opcode, build) })
	}
	deleteID := func(id wlp.ObjectID) {
		reply(wlp.DisplayID, displayDeleteID, func(e *wlp.Encoder) { e.PutUint32(uint32(id)) })
	}

	s.mu.Lock()
	iface := s.objects[m.Sender]
	r := Request{
		Object:    m.Sender,
		Interface: iface,
		Opcode:    m.Opcode,
		Name:      requestName(iface, m.Opcode),
		Payload:   append([]byte(nil), m.Payload()...),
	}

	switch r.Name {
	case "wl_display.sync":
		id := m.NewID()
		s.serial++
		serial := s.serial
		reply(id, callbackDone, func(e *wlp.Encoder) { e.PutUint32(serial) })
		deleteID(id)
	case "wl_display.get_registry":
		id := m.NewID()
		s.create(id, "wl_registry")
		s.registry = id
		for _, g := range s.opts.Globals {
			g := g
			reply(id, registryGlobal, func(e *wlp.Encoder) {
				e.PutUint32(g.Name)
				e.PutString(g.Interface)
				e.PutUint32(g.Version)
			})
		}
	case "wl_registry.bind":
		m.Uint32()
		bound := canonical(m.Str())
		version := m.Uint32()
		id := m.NewID()
		s.create(id, bound)
		switch bound {
		case "wl_shm":
			for _, f := range s.opts.Formats {
				f := f
				reply(id, shmFormat, func(e *wlp.Encoder) { e.PutUint32(f) })
			}
		case "wl_seat":
			caps := s.opts.Capabilities
			reply(id, seatCapabilities, func(e *wlp.Encoder) { e.PutUint32(caps) })
			if version >= 2 && s.opts.SeatName != "" {
				name := s.opts.SeatName
				reply(id, seatName, func(e *wlp.Encoder) { e.PutString(name) })
			}
		}
	case "wl_compositor.create_surface":
		s.create(m.NewID(), "wl_surface")
	case "wl_shm.create_pool":
		id := m.NewID()
		r.File = m.FD()
		m.Int32()
		s.create(id, "wl_shm_pool")
	case "wl_shm_pool.create_buffer":
		s.create(m.NewID(), "wl_buffer")
	case "wl_seat.get_pointer":
		s.create(m.NewID(), "wl_pointer")
	case "zxdg_shell_v6.get_xdg_surface":
		id := m.NewID()
		surface := m.Object()
		s.create(id, "zxdg_surface_v6")
		s.roles[id] = surface
	case "zxdg_surface_v6.get_toplevel":
		id := m.NewID()
		s.create(id, "zxdg_toplevel_v6")
		s.toplevels = append(s.toplevels, &toplevel{id: id, xdgSurface: m.Sender, surface: s.roles[m.Sender]})
	case "zxdg_surface_v6.ack_configure":
		serial := m.Uint32()
		t := s.toplevelFor(func(t *toplevel) wlp.ObjectID { return t.xdgSurface }, m.Sender)
		if t != nil {
			if !t.pending[serial] {
				s.requests = append(s.requests, r)
				s.mu.Unlock()
				return s.protocolError(m.Sender, wlp.ZxdgShellV6ErrorInvalidSurfaceState, "ack_configure with unknown serial")
			}
			for sent := range t.pending {
				if sent <= serial {
					delete(t.pending, sent)
				}
			}
			t.acked = true
		}
	case "wl_surface.attach":
		buffer := m.Object()
		s.surface(m.Sender).attached = buffer != 0
	case "wl_surface.frame":
		id := m.NewID()
		s.create(id, "wl_callback")
		st := s.surface(m.Sender)
		st.frames = append(st.frames, id)
	case "wl_surface.commit":
		st := s.surface(m.Sender)
		t := s.toplevelFor(func(t *toplevel) wlp.ObjectID { return t.surface }, m.Sender)
		if t != nil && st.attached && !t.acked {
			s.requests = append(s.requests, r)
			s.mu.Unlock()
			return s.protocolError(t.xdgSurface, unconfiguredBufferErr, "buffer committed before the first ack_configure")
		}
		st.attached = false
		for _, id := range st.frames {
			id := id
			s.serial++
			time := s.serial
			reply(id, callbackDone, func(e *wlp.Encoder) { e.PutUint32(time) })
			s.destroy(id)
			deleteID(id)
		}
		st.frames = nil
		if t != nil && !t.configured && s.opts.ConfigureOnCommit {
			t.configured = true
			replies = append(replies, s.configureLocked(t, s.opts.Width, s.opts.Height)...)
		}
	}
	if destructors[r.Name] {
		s.destroy(m.Sender)
		deleteID(m.Sender)
	}
	s.requests = append(s.requests, r)
	s.mu.Unlock()

	for _, send := range replies {
		if err := send(); err != nil {
			return errors.Wrapf(err, "reply to %s", r.Name)
		}
	}
	return nil
}

func (s *Server) protocolError(object wlp.ObjectID, code uint32, message string) error {
	err := s.Error(object, code, message)
	if err != nil {
		return err
	}
	return errors.Errorf("posted protocol error on %d: %s", object, message)
}

// configureLocked builds the toplevel and xdg_surface configure pair.
func (s *Server) configureLocked(t *toplevel, width, height int32, states ...uint32) []func() error {
	s.serial++
	serial := s.serial
	if t.pending == nil {
		t.pending = make(map[uint32]bool)
	}
	t.pending[serial] = true

	array := make([]byte, 4*len(states))
	for i, st := range states {
		wlp.HostByteOrder().PutUint32(array[4*i:], st)
	}
	return []func() error{
		func() error {
			return s.Send(t.id, toplevelConfigure, func(e *wlp.Encoder) {
				e.PutInt32(width)
				e.PutInt32(height)
				e.PutArray(array)
			})
		},
		func() error {
			return s.Send(t.xdgSurface, xdgSurfaceConfigure, func(e *wlp.Encoder) {
				e.PutUint32(serial)
			})
		},
	}
}
